// Package display holds presentation helpers shared by the commands: the
// startup banner, byte and duration formatting, and fixed-width cells.
package display

import (
	"fmt"
	"io"

	"github.com/backmassage/sdrnorm/internal/term"
)

// PrintBanner writes the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, `         _
 ___  __| |_ __ _ __   ___  _ __ _ __ ___
/ __|/ _`+"`"+` | '__| '_ \ / _ \| '__| '_ `+"`"+` _ \
\__ \ (_| | |  | | | | (_) | |  | | | | | |
|___/\__,_|_|  |_| |_|\___/|_|  |_| |_| |_|
`)
	fmt.Fprintln(w, term.NC)
}

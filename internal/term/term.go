// Package term holds the process-wide ANSI palette used by console log
// tags, the banner, and the analyze table.
//
// The palette entries are plain strings so callers can concatenate them
// unconditionally; with colors off every entry is "".
package term

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/backmassage/sdrnorm/internal/config"
)

// Palette entries. Empty when colors are disabled.
var (
	Red     string
	Green   string
	Yellow  string
	Orange  string
	Blue    string
	Cyan    string
	Magenta string
	NC      string // reset
)

const (
	ansiRed     = "\033[1;91m"
	ansiGreen   = "\033[1;92m"
	ansiYellow  = "\033[1;93m"
	ansiOrange  = "\033[1;38;5;208m"
	ansiBlue    = "\033[1;94m"
	ansiCyan    = "\033[1;96m"
	ansiMagenta = "\033[1;95m"
	ansiReset   = "\033[0m"
)

// Configure sets the palette for mode. Auto enables colors only when stdout
// is a terminal, NO_COLOR is unset, and TERM is not "dumb".
func Configure(mode config.ColorMode) {
	set(useColor(mode, os.Stdout, os.Getenv))
}

// Enabled reports whether the palette is populated.
func Enabled() bool { return NC != "" }

// Paint wraps s in color and a reset. It returns s unchanged when color is
// empty, so disabled palettes never emit a stray reset.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + NC
}

// IsTerminal reports whether f is attached to a TTY, including Cygwin and
// MSYS pseudo-terminals.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func useColor(mode config.ColorMode, out *os.File, getenv func(string) string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if getenv("NO_COLOR") != "" || strings.EqualFold(getenv("TERM"), "dumb") {
		return false
	}
	return IsTerminal(out)
}

func set(on bool) {
	if !on {
		Red, Green, Yellow, Orange, Blue, Cyan, Magenta, NC = "", "", "", "", "", "", "", ""
		return
	}
	Red, Green, Yellow, Orange = ansiRed, ansiGreen, ansiYellow, ansiOrange
	Blue, Cyan, Magenta, NC = ansiBlue, ansiCyan, ansiMagenta, ansiReset
}

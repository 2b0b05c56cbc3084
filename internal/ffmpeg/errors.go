package ffmpeg

import (
	"fmt"
	"regexp"
	"strings"
)

// EncodeError is returned when ffmpeg exits non-zero. Stderr holds the
// complete diagnostic stream.
type EncodeError struct {
	Input  string
	Stderr string
	Err    error
}

func (e *EncodeError) Error() string {
	if hint := e.Hint(); hint != "" {
		return fmt.Sprintf("encode %s: %v (%s)", e.Input, e.Err, hint)
	}
	return fmt.Sprintf("encode %s: %v", e.Input, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Tail returns the last n non-empty stderr lines.
func (e *EncodeError) Tail(n int) []string {
	return tailLines(e.Stderr, n)
}

// Hint classifies Stderr into a short operator-facing cause, or "" when no
// known pattern matches.
func (e *EncodeError) Hint() string {
	return Diagnose(e.Stderr)
}

// Pre-compiled patterns for classifying ffmpeg stderr. Checked in order by
// Diagnose; the first match wins.
var diagnoses = []struct {
	re   *regexp.Regexp
	hint string
}{
	{regexp.MustCompile(`(?i)No such filter: '(zscale|tonemap)'`),
		"ffmpeg was built without zimg (zscale/tonemap filters missing)"},
	{regexp.MustCompile(`(?i)Unknown encoder '[^']*'|Encoder .* not found`),
		"ffmpeg was built without the libx264 encoder"},
	{regexp.MustCompile(`(?i)No such file or directory`),
		"input or output path does not exist"},
	{regexp.MustCompile(`(?i)Permission denied`),
		"permission denied"},
	{regexp.MustCompile(`(?i)No space left on device`),
		"output device is full"},
	{regexp.MustCompile(`(?i)Invalid data found when processing input|moov atom not found`),
		"input is corrupt or not a media file"},
	{regexp.MustCompile(`(?i)Error (initializing|reinitializing) filters?|Failed to configure (input|output) pad`),
		"filter graph could not be configured for this stream"},
}

// Diagnose returns a short cause for a failed ffmpeg run based on stderr.
func Diagnose(stderr string) string {
	for _, d := range diagnoses {
		if d.re.MatchString(stderr) {
			return d.hint
		}
	}
	return ""
}

func tailLines(s string, n int) []string {
	if n <= 0 {
		return nil
	}
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimRight(l, "\r "); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

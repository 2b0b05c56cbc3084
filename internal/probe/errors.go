package probe

import (
	"errors"
	"fmt"
)

// Causes wrapped by [ProbeError].
var (
	ErrProbeFailed     = errors.New("ffprobe exited with an error")
	ErrMalformedOutput = errors.New("ffprobe output is not valid JSON")
	ErrNoVideoStream   = errors.New("no video stream found")
)

// ProbeError reports why metadata could not be read for one file. It is
// fatal to that file only; callers decide whether it ends the run.
type ProbeError struct {
	Path   string
	Stderr string // truncated ffprobe diagnostics, if any
	Err    error
}

func (e *ProbeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("probe %s: %v (stderr: %s)", e.Path, e.Err, e.Stderr)
	}
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

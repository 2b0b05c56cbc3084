package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/backmassage/sdrnorm/internal/planner"
)

// Request is one unit of work for the media engine.
type Request struct {
	InputPath  string
	OutputPath string
	Plan       *planner.Plan
}

// Engine runs a plan to completion. A failed run returns *EncodeError.
type Engine interface {
	Encode(ctx context.Context, req Request) error
}

// Executor is the exec-backed Engine.
type Executor struct {
	BinaryPath string
	// Tee, when set, receives ffmpeg's stderr in real time in addition to
	// the capture kept for EncodeError.
	Tee io.Writer
}

// NewExecutor returns an Executor using binaryPath, or "ffmpeg" when empty.
func NewExecutor(binaryPath string) *Executor {
	if binaryPath == "" {
		binaryPath = "ffmpeg"
	}
	return &Executor{BinaryPath: binaryPath}
}

// Binary returns the ffmpeg binary the executor runs.
func (e *Executor) Binary() string {
	if e.BinaryPath == "" {
		return "ffmpeg"
	}
	return e.BinaryPath
}

// Encode builds and runs the ffmpeg command for req. Stdout is discarded;
// stderr is captured for diagnostics.
func (e *Executor) Encode(ctx context.Context, req Request) error {
	args := Build(req.Plan, req.InputPath, req.OutputPath)

	// #nosec G204 -- binary comes from config; arguments are built, not interpolated.
	cmd := exec.CommandContext(ctx, e.Binary(), args...)

	var stderrBuf bytes.Buffer
	if e.Tee != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, e.Tee)
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Run(); err != nil {
		return &EncodeError{
			Input:  req.InputPath,
			Stderr: stderrBuf.String(),
			Err:    err,
		}
	}
	return nil
}

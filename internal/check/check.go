// Package check provides system diagnostics (the check command) and
// pre-run dependency validation (CheckDeps) for ffmpeg and ffprobe: both
// binaries, the zscale/tonemap/colorspace filters, and the libx264 encoder.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/backmassage/sdrnorm/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool or component is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrMissingFilter   = errors.New("ffmpeg is missing required filters")
	ErrMissingEncoder  = errors.New("ffmpeg is missing the required encoder")
)

// RequiredFilters are used by the plans: zscale and tonemap for HDR,
// colorspace for SDR normalization.
var RequiredFilters = []string{"zscale", "tonemap", "colorspace"}

// RequiredEncoder is the video encoder every plan uses.
const RequiredEncoder = "libx264"

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// CommandRunner executes commands and returns their stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner executes commands using os/exec.
type ExecRunner struct{}

// Run runs name with args and returns stdout.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 -- binary comes from config; arguments are fixed.
	return exec.CommandContext(ctx, name, args...).Output()
}

// Checker probes the configured ffmpeg/ffprobe binaries.
type Checker struct {
	FFmpeg   string
	FFprobe  string
	Runner   CommandRunner
	LookPath func(string) (string, error)
}

// New returns a Checker for the binaries in cfg using os/exec.
func New(cfg *config.Config) *Checker {
	return &Checker{
		FFmpeg:   cfg.FFmpegPath,
		FFprobe:  cfg.FFprobePath,
		Runner:   ExecRunner{},
		LookPath: exec.LookPath,
	}
}

// CheckDeps is the pre-run validation: ffmpeg and ffprobe resolve, and
// ffmpeg provides every required filter and the encoder.
func CheckDeps(ctx context.Context, cfg *config.Config) error {
	return New(cfg).Deps(ctx)
}

// RunCheck runs the interactive check flow and reports whether everything
// required is present.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	return New(cfg).Run(ctx, log)
}

// Deps returns a sentinel-wrapped error for the first missing dependency.
func (c *Checker) Deps(ctx context.Context) error {
	if _, err := c.LookPath(c.FFmpeg); err != nil {
		return fmt.Errorf("%w: %s", ErrFfmpegNotFound, c.FFmpeg)
	}
	if _, err := c.LookPath(c.FFprobe); err != nil {
		return fmt.Errorf("%w: %s", ErrFfprobeNotFound, c.FFprobe)
	}

	missing, err := c.missingFilters(ctx)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s (build ffmpeg with --enable-libzimg)", ErrMissingFilter, strings.Join(missing, ", "))
	}

	ok, err := c.hasEncoder(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingEncoder, RequiredEncoder)
	}
	return nil
}

// Run logs the availability of each dependency. It does not stop at the
// first failure.
func (c *Checker) Run(ctx context.Context, log Logger) bool {
	log.Info("=== System Check ===")
	ok := true

	v, err := c.version(ctx, c.FFmpeg)
	if err != nil {
		log.Error("ffmpeg not usable (%s): %v", c.FFmpeg, err)
		return false
	}
	log.Success("ffmpeg: %s", v)

	if v, err := c.version(ctx, c.FFprobe); err != nil {
		log.Error("ffprobe not usable (%s): %v", c.FFprobe, err)
		ok = false
	} else {
		log.Success("ffprobe: %s", v)
	}

	missing, err := c.missingFilters(ctx)
	switch {
	case err != nil:
		log.Warn("Could not list filters: %v", err)
		ok = false
	case len(missing) > 0:
		log.Error("Missing filters: %s (HDR tone mapping needs ffmpeg built with zimg)", strings.Join(missing, ", "))
		ok = false
	default:
		log.Success("Filters: %s", strings.Join(RequiredFilters, ", "))
	}

	has, err := c.hasEncoder(ctx)
	switch {
	case err != nil:
		log.Warn("Could not list encoders: %v", err)
		ok = false
	case !has:
		log.Error("Encoder %s not available", RequiredEncoder)
		ok = false
	default:
		log.Success("Encoder: %s", RequiredEncoder)
	}

	return ok
}

// version returns the first line of "<bin> -version".
func (c *Checker) version(ctx context.Context, bin string) (string, error) {
	if _, err := c.LookPath(bin); err != nil {
		return "", err
	}
	out, err := c.Runner.Run(ctx, bin, "-version")
	if err != nil {
		return "", err
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	return strings.TrimSpace(firstLine), nil
}

func (c *Checker) missingFilters(ctx context.Context) ([]string, error) {
	out, err := c.Runner.Run(ctx, c.FFmpeg, "-hide_banner", "-filters")
	if err != nil {
		return nil, fmt.Errorf("list ffmpeg filters: %w", err)
	}
	var missing []string
	for _, f := range RequiredFilters {
		if !listed(out, f) {
			missing = append(missing, f)
		}
	}
	return missing, nil
}

func (c *Checker) hasEncoder(ctx context.Context) (bool, error) {
	out, err := c.Runner.Run(ctx, c.FFmpeg, "-hide_banner", "-encoders")
	if err != nil {
		return false, fmt.Errorf("list ffmpeg encoders: %w", err)
	}
	return listed(out, RequiredEncoder), nil
}

// listed reports whether name appears as the second column of an
// "ffmpeg -filters" or "ffmpeg -encoders" listing, e.g.
//
//	... zscale            V->V       Apply resizing, colorspace and bit depth conversion.
//	V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC
func listed(out []byte, name string) bool {
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

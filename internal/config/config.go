// Package config holds runtime configuration: defaults, an optional YAML
// file, CLI flag binding, and validation. Precedence is defaults, then the
// file, then flags the user set explicitly.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// --- Enum types for validated string fields ---

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// LogFormat selects the console log encoding.
type LogFormat string

const (
	LogConsole LogFormat = "console" // Human-readable lines (default).
	LogJSON    LogFormat = "json"    // One JSON object per line.
)

// MaxJobs bounds the worker pool; encodes are CPU-bound and each ffmpeg
// process is already multi-threaded.
const MaxJobs = 16

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally merged with a YAML file by [MergeFile], and mutated by flags
// before being passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args).
	InputPath  string
	OutputPath string

	// External tools.
	FFmpegPath  string // Default: "ffmpeg" (resolved on PATH).
	FFprobePath string // Default: "ffprobe".

	// Behavior.
	Jobs      int  // Default: 1 (sequential). Files encoded in parallel.
	DryRun    bool // Plan and log commands without running ffmpeg.
	SkipCheck bool // Skip the ffmpeg/ffprobe preflight.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFormat LogFormat // Default: "console".
	LogFile   string    // Optional JSON log file (appended).

	// Reporting.
	MetricsFile string // Optional Prometheus textfile written at exit.
	VerifyDir   string // Default: "outputs". Directory scanned by verify.
	ReportFile  string // Optional JSON verification report.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// the config file and CLI flags are applied.
func DefaultConfig() Config {
	return Config{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		Jobs:        1,
		ColorMode:   ColorAuto,
		LogFormat:   LogConsole,
		VerifyDir:   "outputs",
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric ranges.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	switch c.LogFormat {
	case LogConsole, LogJSON:
		// valid
	default:
		return errors.New("invalid log format (use 'console' or 'json')")
	}

	if c.Jobs < 1 || c.Jobs > MaxJobs {
		return fmt.Errorf("jobs must be between 1 and %d (got %d)", MaxJobs, c.Jobs)
	}
	if strings.TrimSpace(c.FFmpegPath) == "" {
		return errors.New("ffmpeg path must not be empty")
	}
	if strings.TrimSpace(c.FFprobePath) == "" {
		return errors.New("ffprobe path must not be empty")
	}
	return nil
}

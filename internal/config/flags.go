package config

// This file binds Config fields to pflag flags. Enum fields use pflag.Value
// adapters so invalid values are rejected at parse time.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Flag names, shared with MergeFile so explicit flags win over the file.
const (
	FlagConfig      = "config"
	FlagFFmpeg      = "ffmpeg"
	FlagFFprobe     = "ffprobe"
	FlagJobs        = "jobs"
	FlagDryRun      = "dry-run"
	FlagSkipCheck   = "skip-check"
	FlagVerbose     = "verbose"
	FlagColor       = "color"
	FlagLogFormat   = "log-format"
	FlagLogFile     = "log"
	FlagMetricsFile = "metrics-file"
	FlagVerifyDir   = "dir"
	FlagReportFile  = "report"
)

// BindGlobalFlags registers flags shared by every command: tool paths,
// display, logging, and the config file path.
func BindGlobalFlags(fs *pflag.FlagSet, cfg *Config, configPath *string) {
	fs.StringVar(configPath, FlagConfig, "", "YAML config file")
	fs.StringVar(&cfg.FFmpegPath, FlagFFmpeg, cfg.FFmpegPath, "ffmpeg binary")
	fs.StringVar(&cfg.FFprobePath, FlagFFprobe, cfg.FFprobePath, "ffprobe binary")
	fs.BoolVarP(&cfg.Verbose, FlagVerbose, "v", cfg.Verbose, "Verbose output (ffmpeg commands, stderr)")
	fs.Var(&colorModeValue{&cfg.ColorMode}, FlagColor, "Colored logs: auto | always | never")
	fs.Var(&logFormatValue{&cfg.LogFormat}, FlagLogFormat, "Console log format: console | json")
	fs.StringVarP(&cfg.LogFile, FlagLogFile, "l", cfg.LogFile, "Append JSON logs to file")
	fs.StringVar(&cfg.MetricsFile, FlagMetricsFile, cfg.MetricsFile, "Write Prometheus metrics to this textfile at exit")
}

// BindNormalizeFlags registers flags for the normalize (root) command.
func BindNormalizeFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVarP(&cfg.Jobs, FlagJobs, "j", cfg.Jobs, fmt.Sprintf("Files to encode in parallel (1-%d)", MaxJobs))
	fs.BoolVarP(&cfg.DryRun, FlagDryRun, "d", cfg.DryRun, "Preview only; print ffmpeg commands without running them")
	fs.BoolVar(&cfg.SkipCheck, FlagSkipCheck, cfg.SkipCheck, "Skip the ffmpeg/ffprobe preflight check")
}

// BindVerifyFlags registers flags for the verify command.
func BindVerifyFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.VerifyDir, FlagVerifyDir, cfg.VerifyDir, "Directory containing *_normalized outputs")
	fs.StringVar(&cfg.ReportFile, FlagReportFile, cfg.ReportFile, "Write a JSON verification report to this path")
}

// pflag.Value adapters so we can use enum types with fs.Var.

type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string { return string(*c.p) }
func (c *colorModeValue) Type() string   { return "mode" }
func (c *colorModeValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "auto":
		*c.p = ColorAuto
	case "always":
		*c.p = ColorAlways
	case "never":
		*c.p = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}

type logFormatValue struct{ p *LogFormat }

func (l *logFormatValue) String() string { return string(*l.p) }
func (l *logFormatValue) Type() string   { return "format" }
func (l *logFormatValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "console":
		*l.p = LogConsole
	case "json":
		*l.p = LogJSON
	default:
		return fmt.Errorf("invalid log format %q (use 'console' or 'json')", s)
	}
	return nil
}

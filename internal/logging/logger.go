// Package logging provides the leveled, optionally colored logger used by
// every command. It is backed by zerolog: the console gets human-readable
// lines (or JSON with --log-format=json) and an optional file sink gets JSON.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/backmassage/sdrnorm/internal/config"
	"github.com/backmassage/sdrnorm/internal/term"
)

// Level tags written to the "level" field. Success has no zerolog
// equivalent, so it is written as a literal tag on an unleveled event.
const (
	TagDebug   = "debug"
	TagInfo    = "info"
	TagSuccess = "success"
	TagWarn    = "warn"
	TagError   = "error"
)

// Structured fields. RunIDField is attached to every entry so lines from
// one run can be grouped in an appended log file; the others are attached
// by per-file reporters. None of them are shown on the console.
const (
	RunIDField   = "run_id"
	FileField    = "file"
	ProfileField = "profile"
	EventField   = "event"
)

// Options configures a Logger. Zero writers default to os.Stdout/os.Stderr.
type Options struct {
	Stdout  io.Writer
	Stderr  io.Writer
	File    io.Writer // Optional JSON sink.
	Format  config.LogFormat
	Color   bool
	Verbose bool
	RunID   string
}

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	zl      zerolog.Logger
	verbose bool
	runID   string
	closer  io.Closer
}

// NewLogger resolves colors from cfg, optionally opens cfg.LogFile for
// appending, and returns a Logger writing to stdout and stderr (nil means
// the process streams). Call Close when done.
func NewLogger(cfg *config.Config, stdout, stderr io.Writer) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	opts := Options{
		Stdout:  stdout,
		Stderr:  stderr,
		Format:  cfg.LogFormat,
		Color:   term.Enabled(),
		Verbose: cfg.Verbose,
	}

	var f *os.File
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		var err error
		f, err = os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		opts.File = f
	}

	l := New(opts)
	if f != nil {
		l.closer = f
	}
	return l, nil
}

// New builds a Logger from explicit writers.
func New(opts Options) *Logger {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	var out, errOut io.Writer = opts.Stdout, opts.Stderr
	if opts.Format != config.LogJSON {
		out = consoleWriter(opts.Stdout, opts.Color)
		errOut = consoleWriter(opts.Stderr, opts.Color)
	}

	var w zerolog.LevelWriter = splitWriter{out: out, err: errOut}
	if opts.File != nil {
		w = zerolog.MultiLevelWriter(w, opts.File)
	}

	zl := zerolog.New(&lockedWriter{w: w}).With().
		Timestamp().
		Str(RunIDField, opts.RunID).
		Logger()

	return &Logger{zl: zl, verbose: opts.Verbose, runID: opts.RunID}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// With returns a child Logger whose entries carry key=value. The child
// shares sinks with l and does not own the log file.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{
		zl:      l.zl.With().Str(key, value).Logger(),
		verbose: l.verbose,
		runID:   l.runID,
	}
}

// RunID returns the identifier attached to every entry of this run.
func (l *Logger) RunID() string { return l.runID }

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Log().Str(zerolog.LevelFieldName, TagSuccess).Msgf(format, args...)
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs at ERROR level (red) to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Debug logs at DEBUG level (cyan) only when verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.zl.Debug().Msgf(format, args...)
}

// consoleWriter renders entries as "2006-01-02 15:04:05 [LEVEL] message k=v".
func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       !color,
		TimeFormat:    "2006-01-02 15:04:05",
		FieldsExclude: []string{RunIDField, FileField, ProfileField, EventField},
		FormatLevel: func(i interface{}) string {
			tag, _ := i.(string)
			label := "[" + strings.ToUpper(tag) + "]"
			if !color {
				return label
			}
			return levelColor(tag) + label + term.NC
		},
	}
}

func levelColor(tag string) string {
	switch tag {
	case TagSuccess:
		return term.Green
	case TagWarn:
		return term.Yellow
	case TagError:
		return term.Red
	case TagDebug:
		return term.Cyan
	default:
		return term.Blue
	}
}

// splitWriter sends error-level entries to err and everything else to out.
type splitWriter struct {
	out io.Writer
	err io.Writer
}

func (s splitWriter) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s splitWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel && level != zerolog.NoLevel {
		return s.err.Write(p)
	}
	return s.out.Write(p)
}

// lockedWriter serializes writes so concurrent workers never interleave
// partial lines.
type lockedWriter struct {
	mu sync.Mutex
	w  zerolog.LevelWriter
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (l *lockedWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.WriteLevel(level, p)
}

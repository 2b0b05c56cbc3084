package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/backmassage/sdrnorm/internal/classify"
	"github.com/backmassage/sdrnorm/internal/display"
	"github.com/backmassage/sdrnorm/internal/ffmpeg"
	"github.com/backmassage/sdrnorm/internal/logging"
	"github.com/backmassage/sdrnorm/internal/planner"
	"github.com/backmassage/sdrnorm/internal/probe"
)

// EventKind identifies a step in one file's processing.
type EventKind int

const (
	EventStarted    EventKind = iota // Job picked up.
	EventProbed                      // Metadata read.
	EventClassified                  // Profile decided.
	EventAmbiguous                   // HDR-like stream without an HDR transfer tag.
	EventPlanned                     // Plan built; Command holds the ffmpeg line.
	EventSucceeded                   // Output written (or would be, in dry run).
	EventFailed                      // Probe, output dir, or encode failure.
	EventSkipped                     // Input missing or run interrupted.
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventProbed:
		return "probed"
	case EventClassified:
		return "classified"
	case EventAmbiguous:
		return "ambiguous"
	case EventPlanned:
		return "planned"
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Event describes one step for one file. Fields beyond Kind, Index, Total
// and Job are set only when the step produced them.
type Event struct {
	Kind  EventKind
	Index int // 1-based position in the batch.
	Total int
	Job   Job

	Metadata probe.Metadata
	Profile  classify.Profile
	Plan     *planner.Plan
	Command  string // Shell-quoted ffmpeg command line.
	DryRun   bool

	Err         error
	Elapsed     time.Duration
	InputBytes  int64
	OutputBytes int64
}

// Reporter receives pipeline events. Implementations must be safe for use
// from the goroutine that flushes a file's events.
type Reporter interface {
	Report(Event)
}

// MultiReporter fans each event out to every non-nil reporter in order.
type MultiReporter []Reporter

// Report forwards ev.
func (m MultiReporter) Report(ev Event) {
	for _, r := range m {
		if r != nil {
			r.Report(ev)
		}
	}
}

type nopReporter struct{}

func (nopReporter) Report(Event) {}

// bufferReporter collects one file's events for a later ordered flush.
type bufferReporter struct {
	events []Event
}

func (b *bufferReporter) Report(ev Event) { b.events = append(b.events, ev) }

// serialReporter forwards to next under a lock and can replay a buffer as
// one uninterrupted block.
type serialReporter struct {
	mu   sync.Mutex
	next Reporter
}

func (s *serialReporter) Report(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next.Report(ev)
}

func (s *serialReporter) flush(b *bufferReporter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range b.events {
		s.next.Report(ev)
	}
	b.events = nil
}

// stderrTailLines is how much ffmpeg output is echoed for a failed encode.
const stderrTailLines = 20

// LogReporter renders events as operator-facing log lines. Structured
// fields (file, profile, event) are attached for JSON sinks.
type LogReporter struct {
	Log *logging.Logger
}

// NewLogReporter returns a LogReporter writing to log.
func NewLogReporter(log *logging.Logger) *LogReporter {
	return &LogReporter{Log: log}
}

// Report renders ev.
func (r *LogReporter) Report(ev Event) {
	log := r.Log.
		With(logging.FileField, ev.Job.InputPath).
		With(logging.EventField, ev.Kind.String())
	if ev.Plan != nil || ev.Kind == EventClassified || ev.Kind == EventAmbiguous {
		log = log.With(logging.ProfileField, ev.Profile.String())
	}

	switch ev.Kind {
	case EventStarted:
		log.Info("%sProcessing: %s -> %s", progressPrefix(ev), ev.Job.InputPath, ev.Job.OutputPath)

	case EventProbed:
		log.Info("  Detected transfer function: %s", ev.Metadata.Transfer)
		log.Debug("  color_space=%s color_primaries=%s pix_fmt=%s",
			ev.Metadata.ColorSpace, ev.Metadata.Primaries, ev.Metadata.PixelFormat)

	case EventClassified:
		log.Debug("  Classified as %s", ev.Profile)

	case EventAmbiguous:
		log.Warn("  Transfer is not HLG/PQ, but stream looks HDR (BT.2020 and/or 10-bit). Using HDR->SDR fallback tone map.")

	case EventPlanned:
		if ev.Plan != nil {
			log.Info("  -> %s", ev.Plan.Describe())
			log.Debug("  Filter chain: %s", ffmpeg.FilterChain(ev.Plan.Stages))
		}
		log.Debug("  Command: %s", ev.Command)

	case EventSucceeded:
		name := filepath.Base(ev.Job.OutputPath)
		if ev.DryRun {
			log.Success("[DRY] Would encode: %s", name)
			log.Info("  %s", ev.Command)
			return
		}
		log.Success("Done: %s in %s (%d%% of original)",
			name, display.FormatDuration(ev.Elapsed), display.Percent(ev.OutputBytes, ev.InputBytes))

	case EventFailed:
		r.reportFailure(log, ev)

	case EventSkipped:
		log.Warn("Skip: %s (%v)", ev.Job.InputPath, ev.Err)
	}
}

func (r *LogReporter) reportFailure(log *logging.Logger, ev Event) {
	var encErr *ffmpeg.EncodeError
	var probeErr *probe.ProbeError
	switch {
	case errors.As(ev.Err, &probeErr):
		log.Error("Error probing file %s: %v", ev.Job.InputPath, probeErr.Err)
		if probeErr.Stderr != "" {
			log.Error("  ffprobe: %s", strings.TrimSpace(probeErr.Stderr))
		}
	case errors.As(ev.Err, &encErr):
		log.Error("Error encoding %s: %v", ev.Job.InputPath, encErr.Err)
		if hint := encErr.Hint(); hint != "" {
			log.Error("  Hint: %s", hint)
		}
		if lines := encErr.Tail(stderrTailLines); len(lines) > 0 {
			log.Error("Last ffmpeg output:")
			for _, line := range lines {
				log.Error("  %s", line)
			}
		}
	default:
		log.Error("Error processing %s: %v", ev.Job.InputPath, ev.Err)
	}
}

func progressPrefix(ev Event) string {
	if ev.Total <= 1 {
		return ""
	}
	return fmt.Sprintf("[%d/%d] ", ev.Index, ev.Total)
}

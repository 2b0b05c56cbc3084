package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/sdrnorm/internal/classify"
	"github.com/backmassage/sdrnorm/internal/ffmpeg"
	"github.com/backmassage/sdrnorm/internal/planner"
	"github.com/backmassage/sdrnorm/internal/probe"
)

var (
	// ErrNoVideoFiles is returned by RunDir when the input directory holds
	// no allow-listed video files.
	ErrNoVideoFiles = errors.New("no video files found in input directory")

	// ErrInputNotFound marks a job whose input file does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrOutputDir marks a failure to create an output directory.
	ErrOutputDir = errors.New("cannot create output directory")

	// ErrSameFile marks a job whose output path resolves to its input.
	ErrSameFile = errors.New("output path is the input file")
)

// Outcome is the terminal state of one job.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result is what processing one job produced.
type Result struct {
	Job        Job
	Outcome    Outcome
	Classified bool
	Profile    classify.Profile
	Err        error

	Elapsed     time.Duration
	InputBytes  int64
	OutputBytes int64
}

// Runner drives jobs through probe, classify, plan and encode.
type Runner struct {
	Prober   probe.Prober
	Engine   ffmpeg.Engine
	Reporter Reporter

	// Jobs bounds how many files are encoded at once. Values below 2 run
	// strictly sequentially.
	Jobs int

	// DryRun builds and reports every plan and command without encoding.
	DryRun bool
}

// RunDir creates outDir (unless DryRun), discovers inputs in inDir, and
// processes them. It returns ErrNoVideoFiles when nothing matches.
func (r *Runner) RunDir(ctx context.Context, inDir, outDir string) (RunStats, error) {
	if !r.DryRun {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return RunStats{}, fmt.Errorf("%w %s: %v", ErrOutputDir, outDir, err)
		}
	}
	files, err := Discover(inDir)
	if err != nil {
		return RunStats{}, fmt.Errorf("discover %s: %w", inDir, err)
	}
	if len(files) == 0 {
		return RunStats{}, ErrNoVideoFiles
	}
	return r.Run(ctx, BatchJobs(files, outDir)), nil
}

// Run processes jobs and returns aggregate stats. A failing job is reported
// and counted; it never stops the batch. Once ctx is cancelled, jobs not yet
// started are reported as skipped.
func (r *Runner) Run(ctx context.Context, jobs []Job) RunStats {
	start := time.Now()
	stats := newStatsCollector(len(jobs))
	rep := &serialReporter{next: r.reporter()}
	total := len(jobs)

	if r.Jobs < 2 {
		for i, job := range jobs {
			stats.record(r.runOne(ctx, i+1, total, job, rep))
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.Jobs)
		for i, job := range jobs {
			g.Go(func() error {
				buf := &bufferReporter{}
				res := r.runOne(ctx, i+1, total, job, buf)
				rep.flush(buf)
				stats.record(res)
				return nil
			})
		}
		_ = g.Wait()
	}

	out := stats.snapshot()
	out.Elapsed = time.Since(start)
	return out
}

// RunSingle processes one explicit input/output pair. A missing input, an
// output that is the input, a probe failure, or an uncreatable output
// directory is returned as an error
// so the caller can end the run; an encode failure is reported and returned
// only in the Result.
func (r *Runner) RunSingle(ctx context.Context, job Job) (Result, error) {
	rep := r.reporter()
	if _, err := os.Stat(job.InputPath); err != nil {
		res := Result{Job: job, Outcome: OutcomeSkipped, Err: fmt.Errorf("%w: %s", ErrInputNotFound, job.InputPath)}
		rep.Report(Event{Kind: EventSkipped, Index: 1, Total: 1, Job: job, Err: res.Err})
		return res, res.Err
	}

	res := r.Process(ctx, 1, 1, job, rep)
	if res.Outcome == OutcomeFailed && (probe.IsProbeError(res.Err) ||
		errors.Is(res.Err, ErrOutputDir) || errors.Is(res.Err, ErrSameFile)) {
		return res, res.Err
	}
	return res, nil
}

func (r *Runner) runOne(ctx context.Context, index, total int, job Job, rep Reporter) Result {
	if err := ctx.Err(); err != nil {
		rep.Report(Event{Kind: EventSkipped, Index: index, Total: total, Job: job, Err: err})
		return Result{Job: job, Outcome: OutcomeSkipped, Err: err}
	}
	return r.Process(ctx, index, total, job, rep)
}

// Process runs one job end to end, reporting each step to rep.
func (r *Runner) Process(ctx context.Context, index, total int, job Job, rep Reporter) Result {
	res := Result{Job: job}
	base := Event{Index: index, Total: total, Job: job}
	emit := func(kind EventKind, fill func(*Event)) {
		ev := base
		ev.Kind = kind
		if fill != nil {
			fill(&ev)
		}
		rep.Report(ev)
	}
	fail := func(err error, plan *planner.Plan) Result {
		res.Outcome = OutcomeFailed
		res.Err = err
		emit(EventFailed, func(ev *Event) {
			ev.Err = err
			ev.Plan = plan
			ev.Profile = res.Profile
		})
		return res
	}

	emit(EventStarted, nil)

	// --- Validate ---
	fi, err := os.Stat(job.InputPath)
	if err != nil || !fi.Mode().IsRegular() {
		res.Outcome = OutcomeSkipped
		res.Err = fmt.Errorf("%w: %s", ErrInputNotFound, job.InputPath)
		emit(EventSkipped, func(ev *Event) { ev.Err = res.Err })
		return res
	}
	res.InputBytes = fi.Size()
	if sameFile(job.InputPath, job.OutputPath) {
		return fail(fmt.Errorf("%w: %s", ErrSameFile, job.OutputPath), nil)
	}

	// --- Probe ---
	md, err := r.Prober.Probe(ctx, job.InputPath)
	if err != nil {
		return fail(err, nil)
	}
	emit(EventProbed, func(ev *Event) { ev.Metadata = md })

	// --- Classify ---
	profile := classify.Classify(md)
	res.Classified = true
	res.Profile = profile
	base.Metadata = md
	base.Profile = profile
	emit(EventClassified, nil)
	if profile == classify.ProfileHeuristicHDR {
		emit(EventAmbiguous, nil)
	}

	// --- Plan ---
	plan := planner.BuildPlan(profile)
	req := ffmpeg.Request{InputPath: job.InputPath, OutputPath: job.OutputPath, Plan: &plan}
	command := ffmpeg.CommandLine(r.binary(), ffmpeg.Build(&plan, job.InputPath, job.OutputPath))
	base.Plan = &plan
	base.Command = command
	emit(EventPlanned, nil)

	// --- Create output directory ---
	if dir := filepath.Dir(job.OutputPath); dir != "" && !r.DryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(fmt.Errorf("%w %s: %v", ErrOutputDir, dir, err), &plan)
		}
	}

	// --- Dry-run ---
	if r.DryRun {
		res.Outcome = OutcomeSucceeded
		res.InputBytes = 0
		emit(EventSucceeded, func(ev *Event) { ev.DryRun = true })
		return res
	}

	// --- Encode ---
	// A file already at the output path is only replaced by a successful
	// encode; a failed one leaves it alone.
	_, statErr := os.Lstat(job.OutputPath)
	preexisting := statErr == nil
	start := time.Now()
	if err := r.Engine.Encode(ctx, req); err != nil {
		if !preexisting {
			_ = os.Remove(job.OutputPath)
		}
		if ctx.Err() != nil {
			res.Outcome = OutcomeSkipped
			res.Err = ctx.Err()
			emit(EventSkipped, func(ev *Event) { ev.Err = res.Err })
			return res
		}
		return fail(err, &plan)
	}
	res.Elapsed = time.Since(start)
	if outInfo, err := os.Stat(job.OutputPath); err == nil {
		res.OutputBytes = outInfo.Size()
	}

	res.Outcome = OutcomeSucceeded
	emit(EventSucceeded, func(ev *Event) {
		ev.Elapsed = res.Elapsed
		ev.InputBytes = res.InputBytes
		ev.OutputBytes = res.OutputBytes
	})
	return res
}

// sameFile reports whether out names the same file as in, either by
// cleaned absolute path or, when out exists, by identity (hard links,
// symlinks, case-insensitive filesystems).
func sameFile(in, out string) bool {
	absIn, errIn := filepath.Abs(in)
	absOut, errOut := filepath.Abs(out)
	if errIn == nil && errOut == nil && absIn == absOut {
		return true
	}
	inInfo, err := os.Stat(in)
	if err != nil {
		return false
	}
	outInfo, err := os.Stat(out)
	if err != nil {
		return false
	}
	return os.SameFile(inInfo, outInfo)
}

func (r *Runner) reporter() Reporter {
	if r.Reporter == nil {
		return nopReporter{}
	}
	return r.Reporter
}

// binary returns the engine's ffmpeg path for command display.
func (r *Runner) binary() string {
	if b, ok := r.Engine.(interface{ Binary() string }); ok {
		return b.Binary()
	}
	return "ffmpeg"
}

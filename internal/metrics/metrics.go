// Package metrics records run outcomes as Prometheus metrics on a private
// registry and writes them in textfile-collector format at exit.
package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/backmassage/sdrnorm/internal/ffmpeg"
	"github.com/backmassage/sdrnorm/internal/pipeline"
	"github.com/backmassage/sdrnorm/internal/probe"
	"github.com/backmassage/sdrnorm/internal/verify"
)

const namespace = "sdrnorm"

// Label values used when an event carries no profile or error.
const (
	ProfileNone   = "none"
	OutcomeDryRun = "dry_run"
)

// Recorder owns the registry and the run's collectors.
type Recorder struct {
	reg *prometheus.Registry

	Files          *prometheus.CounterVec
	EncodeDuration *prometheus.HistogramVec
	InputBytes     prometheus.Counter
	OutputBytes    prometheus.Counter
	Errors         *prometheus.CounterVec
	Ambiguous      prometheus.Counter
	Verified       *prometheus.CounterVec
	LastRun        prometheus.Gauge
}

// NewRecorder registers all collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,

		// Files tracks finished jobs by classified profile and outcome
		Files: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files processed, by color profile and outcome",
		}, []string{"profile", "outcome"}),

		// EncodeDuration tracks wall time of successful encodes
		EncodeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Duration of successful ffmpeg encodes",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14), // 1s to ~2.3h
		}, []string{"profile"}),

		InputBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "Bytes read from inputs of successful encodes",
		}),
		OutputBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Bytes written by successful encodes",
		}),

		// Errors tracks per-file failures by the stage that failed
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Per-file failures and skips, by stage",
		}, []string{"stage"}),

		Ambiguous: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ambiguous_classifications_total",
			Help:      "Streams that looked HDR without an HLG/PQ transfer tag",
		}),

		Verified: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verified_files_total",
			Help:      "Verified output files, by result",
		}, []string{"result"}),

		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the metrics were last written",
		}),
	}
}

// Report implements pipeline.Reporter. Only terminal and ambiguous events
// change metrics.
func (r *Recorder) Report(ev pipeline.Event) {
	profile := ProfileNone
	if ev.Plan != nil {
		profile = ev.Profile.String()
	}

	switch ev.Kind {
	case pipeline.EventAmbiguous:
		r.Ambiguous.Inc()

	case pipeline.EventSucceeded:
		if ev.DryRun {
			r.Files.WithLabelValues(profile, OutcomeDryRun).Inc()
			return
		}
		r.Files.WithLabelValues(profile, pipeline.OutcomeSucceeded.String()).Inc()
		r.EncodeDuration.WithLabelValues(profile).Observe(ev.Elapsed.Seconds())
		r.InputBytes.Add(float64(ev.InputBytes))
		r.OutputBytes.Add(float64(ev.OutputBytes))

	case pipeline.EventFailed:
		r.Files.WithLabelValues(profile, pipeline.OutcomeFailed.String()).Inc()
		r.Errors.WithLabelValues(Stage(ev.Err)).Inc()

	case pipeline.EventSkipped:
		r.Files.WithLabelValues(profile, pipeline.OutcomeSkipped.String()).Inc()
		r.Errors.WithLabelValues(Stage(ev.Err)).Inc()
	}
}

// ObserveVerification counts each verified file as passed, failed, or
// error (metadata unreadable).
func (r *Recorder) ObserveVerification(sum verify.Summary) {
	for _, rec := range sum.Records {
		switch {
		case rec.Err != nil:
			r.Verified.WithLabelValues("error").Inc()
		case rec.Passed:
			r.Verified.WithLabelValues("passed").Inc()
		default:
			r.Verified.WithLabelValues("failed").Inc()
		}
	}
}

// Stage maps a per-file error to a low-cardinality label.
func Stage(err error) string {
	var probeErr *probe.ProbeError
	var encErr *ffmpeg.EncodeError
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &probeErr):
		return "probe"
	case errors.As(err, &encErr):
		return "encode"
	case errors.Is(err, pipeline.ErrOutputDir):
		return "output_dir"
	case errors.Is(err, pipeline.ErrInputNotFound):
		return "input_missing"
	case errors.Is(err, pipeline.ErrSameFile):
		return "same_file"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "other"
	}
}

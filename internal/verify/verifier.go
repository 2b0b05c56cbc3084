package verify

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/backmassage/sdrnorm/internal/logging"
	"github.com/backmassage/sdrnorm/internal/probe"
)

// Verifier re-probes files and compares them to the target.
type Verifier struct {
	Prober probe.Prober
	Log    *logging.Logger
}

// Check verifies one file.
func (v *Verifier) Check(ctx context.Context, path string) Record {
	log := v.logger().With(logging.FileField, path)
	log.Info("Verifying: %s", filepath.Base(path))

	md, err := v.Prober.Probe(ctx, path)
	if err != nil {
		log.Error("ERROR: Could not read metadata. %v", reason(err))
		return Record{Path: path, Err: err}
	}

	rec := Record{Path: path, Metadata: md, Mismatches: Compare(md)}
	rec.Passed = len(rec.Mismatches) == 0
	if rec.Passed {
		log.Success("PASS")
		return rec
	}
	log.Error("FAIL")
	for _, m := range rec.Mismatches {
		log.Error("   - %s: expected '%s', got '%s'", m.Field, m.Expected, m.Actual)
	}
	return rec
}

// Run verifies every path and aggregates the result. No paths yields
// StatusNoFiles. Cancellation stops the pass and marks it failed.
func (v *Verifier) Run(ctx context.Context, paths []string) Summary {
	log := v.logger()
	if len(paths) == 0 {
		log.Error("No output files found to verify.")
		return Summary{Status: StatusNoFiles}
	}

	sum := Summary{Status: StatusPassed}
	for _, p := range paths {
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			sum.Status = StatusFailed
			break
		}
		rec := v.Check(ctx, p)
		sum.Records = append(sum.Records, rec)
		if rec.Passed {
			sum.Passed++
		} else {
			sum.Failed++
			sum.Status = StatusFailed
		}
	}

	if sum.Status == StatusPassed {
		log.Success("All %d files match Rec.709 SDR standards!", sum.Passed)
	} else {
		log.Warn("Some files failed verification (%d passed, %d failed).", sum.Passed, sum.Failed)
	}
	return sum
}

func (v *Verifier) logger() *logging.Logger {
	if v.Log == nil {
		return logging.Nop()
	}
	return v.Log
}

// reason strips the ProbeError path prefix; the file is already named on
// the preceding line.
func reason(err error) error {
	var pe *probe.ProbeError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

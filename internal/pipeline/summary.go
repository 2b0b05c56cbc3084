package pipeline

import (
	"fmt"

	"github.com/backmassage/sdrnorm/internal/classify"
	"github.com/backmassage/sdrnorm/internal/display"
	"github.com/backmassage/sdrnorm/internal/logging"
	"github.com/backmassage/sdrnorm/internal/planner"
)

// LogBatchHeader logs the fixed target and settings before a batch starts.
func LogBatchHeader(log *logging.Logger, jobs int, dryRun bool) {
	log.Info("Target: Rec.709 SDR (%s, %s), %s preset=%s crf=%d, audio %s",
		planner.TargetStandard, planner.TargetPixFmt,
		planner.VideoCodec, planner.Preset, planner.CRF, planner.AudioCopy)
	if jobs > 1 {
		log.Info("Parallel encodes: %d", jobs)
	}
	if dryRun {
		log.Info("Dry run: commands are printed, nothing is encoded")
	}
}

// LogSummary logs the aggregate outcome of a run.
func LogSummary(log *logging.Logger, stats RunStats, dryRun bool) {
	log.Info("==============================")
	log.Info("Done: %d succeeded, %d skipped, %d failed", stats.Succeeded, stats.Skipped, stats.Failed)
	log.Info("Summary report:")
	log.Info("  Total files processed: %d of %d", stats.Processed(), stats.Total)
	for _, p := range classify.Profiles() {
		if n := stats.Profiles[p]; n > 0 {
			log.Info("  %-14s %d", p.String()+":", n)
		}
	}
	log.Info("  Elapsed: %s", display.FormatDuration(stats.Elapsed))

	if dryRun {
		log.Info("  Size change: n/a (dry run)")
		return
	}
	if stats.TotalInputBytes == 0 {
		return
	}

	delta := -stats.SpaceSaved()
	sizes := fmt.Sprintf("%s (input %s -> output %s, %d%% of original)",
		display.FormatBytesWithSign(delta),
		display.FormatBytes(stats.TotalInputBytes),
		display.FormatBytes(stats.TotalOutputBytes),
		display.Percent(stats.TotalOutputBytes, stats.TotalInputBytes))
	if delta <= 0 {
		log.Success("  Size change: %s", sizes)
	} else {
		log.Warn("  Size change: %s", sizes)
	}
}

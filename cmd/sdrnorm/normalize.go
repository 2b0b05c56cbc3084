package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/sdrnorm/internal/check"
	"github.com/backmassage/sdrnorm/internal/config"
	"github.com/backmassage/sdrnorm/internal/ffmpeg"
	"github.com/backmassage/sdrnorm/internal/pipeline"
	"github.com/backmassage/sdrnorm/internal/probe"
)

func (a *app) runNormalize(cmd *cobra.Command, args []string) error {
	cfg := &a.cfg
	log := a.log
	cfg.InputPath = config.NormalizeDirArg(args[0])
	cfg.OutputPath = config.NormalizeDirArg(args[1])

	in, err := os.Stat(cfg.InputPath)
	if err != nil || (!in.IsDir() && !in.Mode().IsRegular()) {
		log.Error("Input path is invalid: %s", cfg.InputPath)
		a.code = 1
		return nil
	}
	if in.IsDir() {
		if out, err := os.Stat(cfg.OutputPath); err == nil && !out.IsDir() {
			log.Error("Output must be a directory when input is a directory: %s", cfg.OutputPath)
			a.code = 1
			return nil
		}
	}

	log.Info("=== sdrnorm %s ===", version)
	log.Info("In:  %s", cfg.InputPath)
	log.Info("Out: %s", cfg.OutputPath)
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fail fast if ffmpeg/ffprobe or the filters and encoder are unavailable.
	if !cfg.SkipCheck {
		if err := check.CheckDeps(ctx, cfg); err != nil {
			log.Error("%v", err)
			log.Error("Run 'sdrnorm check' for details, or pass --skip-check")
			a.code = 1
			return nil
		}
	}

	runner := a.newRunner()
	if in.IsDir() {
		a.code = a.normalizeDir(ctx, runner)
	} else {
		a.code = a.normalizeFile(ctx, runner)
	}
	if ctx.Err() != nil {
		log.Warn("Interrupted")
		a.code = exitInterrupted
	}
	return nil
}

func (a *app) newRunner() *pipeline.Runner {
	executor := ffmpeg.NewExecutor(a.cfg.FFmpegPath)
	if a.cfg.Verbose && a.cfg.Jobs == 1 {
		executor.Tee = a.stderr
	}

	reporters := pipeline.MultiReporter{pipeline.NewLogReporter(a.log)}
	if a.metrics != nil {
		reporters = append(reporters, a.metrics)
	}

	return &pipeline.Runner{
		Prober:   probe.NewFFprobe(a.cfg.FFprobePath),
		Engine:   executor,
		Reporter: reporters,
		Jobs:     a.cfg.Jobs,
		DryRun:   a.cfg.DryRun,
	}
}

func (a *app) normalizeDir(ctx context.Context, runner *pipeline.Runner) int {
	log := a.log
	log.Info("Batch mode detected. Scanning %s...", a.cfg.InputPath)
	pipeline.LogBatchHeader(log, a.cfg.Jobs, a.cfg.DryRun)

	stats, err := runner.RunDir(ctx, a.cfg.InputPath, a.cfg.OutputPath)
	switch {
	case errors.Is(err, pipeline.ErrNoVideoFiles):
		log.Warn("No video files found in input directory.")
		return 0
	case err != nil:
		log.Error("%v", err)
		return 1
	}

	pipeline.LogSummary(log, stats, a.cfg.DryRun)
	return 0
}

func (a *app) normalizeFile(ctx context.Context, runner *pipeline.Runner) int {
	job := pipeline.Job{InputPath: a.cfg.InputPath, OutputPath: a.cfg.OutputPath}
	if _, err := runner.RunSingle(ctx, job); err != nil {
		return 1
	}
	return 0
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/backmassage/sdrnorm/internal/config"
	"github.com/backmassage/sdrnorm/internal/pipeline"
	"github.com/backmassage/sdrnorm/internal/probe"
	"github.com/backmassage/sdrnorm/internal/term"
)

func (a *app) analyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <dir>",
		Short: "Probe and classify every video in dir without encoding",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runAnalyze,
	}
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string) error {
	dir := config.NormalizeDirArg(args[0])
	files, err := pipeline.Discover(dir)
	if err != nil {
		a.log.Error("File discovery failed: %v", err)
		a.code = 1
		return nil
	}
	if len(files) == 0 {
		a.log.Warn("No video files found in %s", dir)
		return nil
	}
	a.log.Info("Analyzing %d files in %s", len(files), dir)

	an := &pipeline.Analyzer{
		Prober:   probe.NewFFprobe(a.cfg.FFprobePath),
		Log:      a.log,
		Out:      a.stdout,
		Progress: a.cfg.LogFormat == config.LogConsole && a.stdout == os.Stdout && term.IsTerminal(os.Stdout),
	}
	rows := an.Analyze(cmd.Context(), files)
	pipeline.PrintTable(a.stdout, rows)
	pipeline.LogAnalysisSummary(a.log, rows)
	return nil
}

// Command sdrnorm normalizes video files to Rec.709 SDR and verifies the
// results.
//
//	sdrnorm [flags] <input> <output>   normalize a file or a directory
//	sdrnorm verify [dir]               check *_normalized outputs
//	sdrnorm check                      report ffmpeg/ffprobe capabilities
//	sdrnorm analyze <dir>              probe and classify without encoding
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/backmassage/sdrnorm/internal/config"
	"github.com/backmassage/sdrnorm/internal/display"
	"github.com/backmassage/sdrnorm/internal/logging"
	"github.com/backmassage/sdrnorm/internal/metrics"
	"github.com/backmassage/sdrnorm/internal/naming"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// exitInterrupted is returned when SIGINT/SIGTERM stops a run early.
const exitInterrupted = 130

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// app holds state shared by every command for one invocation.
type app struct {
	cfg        config.Config
	configPath string

	stdout io.Writer
	stderr io.Writer

	log     *logging.Logger
	metrics *metrics.Recorder
	code    int
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{cfg: config.DefaultConfig(), stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	// Bootstrap errors (flags, config file, logger) happen before the
	// logger exists, so they go directly to stderr.
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "sdrnorm: %v\n", err)
		a.close()
		return 1
	}
	a.close()
	return a.code
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sdrnorm [flags] <input> <output>",
		Short: "Normalize video files to Rec.709 SDR",
		Long: "Normalize video files with arbitrary color encoding (HLG, PQ, untagged HDR, SDR)\n" +
			"to Rec.709 SDR using ffmpeg. Input and output may both be files, or both directories;\n" +
			"in directory mode each " + strings.Join(naming.VideoExtensions(), "/") + " file becomes <name>" + naming.Suffix + "<ext>.",
		Version:           fmt.Sprintf("%s (%s)", version, commit),
		Args:              cobra.ExactArgs(2),
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runNormalize,
	}

	config.BindGlobalFlags(root.PersistentFlags(), &a.cfg, &a.configPath)
	config.BindNormalizeFlags(root.Flags(), &a.cfg)

	root.AddCommand(a.verifyCommand(), a.checkCommand(), a.analyzeCommand())
	return root
}

// setup merges the config file under explicit flags, validates, and opens
// the logger and metrics recorder.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.configPath != "" {
		fc, err := config.LoadFile(a.configPath)
		if err != nil {
			return err
		}
		config.MergeFile(&a.cfg, fc, cmd.Flags().Changed)
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewLogger(&a.cfg, a.stdout, a.stderr)
	if err != nil {
		return err
	}
	a.log = log

	if a.cfg.MetricsFile != "" {
		a.metrics = metrics.NewRecorder()
	}
	if a.cfg.LogFormat == config.LogConsole {
		display.PrintBanner(a.stdout)
	}
	return nil
}

// close flushes metrics and closes the log file.
func (a *app) close() {
	if a.metrics != nil && a.log != nil {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			a.log.Warn("Metrics not written: %v", err)
		} else {
			a.log.Debug("Metrics written to %s", a.cfg.MetricsFile)
		}
	}
	if a.log != nil {
		if err := a.log.Close(); err != nil {
			fmt.Fprintf(a.stderr, "sdrnorm: close log: %v\n", err)
		}
	}
}

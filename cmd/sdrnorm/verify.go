package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/backmassage/sdrnorm/internal/config"
	"github.com/backmassage/sdrnorm/internal/probe"
	"github.com/backmassage/sdrnorm/internal/verify"
)

func (a *app) verifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [dir]",
		Short: "Verify *_normalized outputs are Rec.709 SDR",
		Long: "Re-probe every *_normalized<ext> file in dir (default: outputs) and compare\n" +
			"pix_fmt, color_space, color_primaries and color_transfer to yuv420p/bt709.\n" +
			"Exits 0 only when files were found and all of them pass.",
		Args: cobra.MaximumNArgs(1),
		RunE: a.runVerify,
	}
	config.BindVerifyFlags(cmd.Flags(), &a.cfg)
	return cmd
}

func (a *app) runVerify(cmd *cobra.Command, args []string) error {
	dir := a.cfg.VerifyDir
	if len(args) == 1 {
		dir = config.NormalizeDirArg(args[0])
	}

	files, err := verify.Find(dir)
	if err != nil {
		a.log.Error("Cannot scan %s: %v", dir, err)
		a.code = 1
		return nil
	}

	v := &verify.Verifier{Prober: probe.NewFFprobe(a.cfg.FFprobePath), Log: a.log}
	sum := v.Run(cmd.Context(), files)
	if a.metrics != nil {
		a.metrics.ObserveVerification(sum)
	}

	if a.cfg.ReportFile != "" {
		if err := verify.WriteReport(a.cfg.ReportFile, verify.NewReport(sum, a.log.RunID(), time.Now())); err != nil {
			a.log.Error("%v", err)
		} else {
			a.log.Info("Report written to %s", a.cfg.ReportFile)
		}
	}

	a.code = sum.ExitCode()
	return nil
}

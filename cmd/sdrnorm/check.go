package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/sdrnorm/internal/check"
)

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether ffmpeg and ffprobe can run every plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !check.RunCheck(cmd.Context(), &a.cfg, a.log) {
				a.code = 1
			}
			return nil
		},
	}
}

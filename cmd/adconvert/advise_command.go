package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"adconvert/internal/advisor"
)

func newAdviseCommand(ctx *commandContext) *cobra.Command {
	var bitrate int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Ask the advisory model whether a bitrate suits delivery",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("bitrate") {
				bitrate = cfg.Convert.DefaultBitrateKbps
			}
			if bitrate <= 0 {
				return fmt.Errorf("bitrate must be positive, got %d", bitrate)
			}
			logger, err := ctx.logger(false)
			if err != nil {
				return err
			}

			advice := advisor.NewFromConfig(cfg, logger).GetAdvice(cmd.Context(), bitrate)
			if advice.Fallback {
				reason := "advisory service unavailable"
				if advice.Err != nil {
					reason = advice.Err.Error()
				}
				renderBanner(cmd.ErrOrStderr(), statusWarn, reason)
			}
			if jsonOutput {
				payload := map[string]any{
					"bitrate_kbps": bitrate,
					"text":         advice.Text,
					"fallback":     advice.Fallback,
				}
				sections := advisor.Sections(advice.Text)
				if len(sections) > 0 {
					payload["sections"] = sections
				}
				return writeJSON(cmd, payload)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Advice for %d kbps\n\n", bitrate)
			fmt.Fprintln(cmd.OutOrStdout(), advisor.Highlight(advice.Text, advisor.TerminalStyle()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&bitrate, "bitrate", "b", 12000, "Video bitrate in kbps to ask about")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print advice as JSON")
	return cmd
}

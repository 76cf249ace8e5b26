package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"adconvert/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var probeLLM bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the engine, directories and advisory configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{ProbeLLM: probeLLM})
			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				source := "local binaries"
				if cfg.Engine.BaseURL != "" {
					source = fmt.Sprintf("%s (core %s)", cfg.Engine.BaseURL, cfg.Engine.CoreVersion)
				}
				fmt.Fprintln(out, renderPairs("adconvert", [][2]string{
					{"Config", ctx.configPath},
					{"Config file present", yesNo(ctx.configSeen)},
					{"Engine source", source},
					{"Bitrate range", fmt.Sprintf("%d-%d kbps (step %d)", cfg.Convert.MinBitrateKbps, cfg.Convert.MaxBitrateKbps, cfg.Convert.StepKbps)},
				}))
				fmt.Fprintln(out, renderChecks(results, shouldColorize(out)))
			}
			if preflight.Blocking(results) {
				return errors.New("required checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&probeLLM, "probe-llm", false, "Send a live health request to the advisory model")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	return cmd
}

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag string
		verbose    bool
	)
	ctx := newCommandContext(&configFlag, &verbose)

	root := &cobra.Command{
		Use:           "adconvert",
		Short:         "Convert videos to an H.264 High@4.2 / AAC delivery master",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Load the config up front so a broken file fails before any work.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Mirror log records to stderr")

	root.AddCommand(
		newConvertCommand(ctx),
		newAdviseCommand(ctx),
		newServeCommand(ctx),
		newStatusCommand(ctx),
		newConfigCommand(ctx),
	)
	return root
}

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:   "dubforge",
		Short: "Automated speech dubbing pipeline",
		Long: "Dubforge queues media files, transcribes them with word-level timing,\n" +
			"translates the transcript, clones each speaker's voice, and renders a\n" +
			"dubbed audio track aligned to the original timeline.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	ctx := newCommandContext(&configFlag)

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to configuration file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if shouldSkipConfig(cmd) {
			return nil
		}
		_, err := ctx.ensureConfig()
		return err
	}

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newSegmentsCommand(ctx))
	rootCmd.AddCommand(newRenderCommand(ctx))

	return rootCmd
}

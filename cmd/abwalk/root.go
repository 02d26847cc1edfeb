package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Batch transcode a directory tree with ab-av1",
		Long: `abwalk walks a directory tree and runs ab-av1 auto-encode on every video
file that has not been encoded yet, lowering the VMAF target one step at a
time until an encode succeeds. Outputs are written next to their inputs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newEncodeCommand())
	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("%s version %s\n", appName, appVersion)
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionTemplate())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionTemplate() string {
	if commit != "unknown" && commit != "" {
		return fmt.Sprintf("onionpad %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("onionpad %s\n", version)
}

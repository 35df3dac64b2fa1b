package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/onionpad/internal/app"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration, icons, macros and scripts",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	infos, err := app.Check(options())
	if err != nil {
		return err
	}

	source := configPath
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: OK, %d modes defined\n", source, len(infos))
	return nil
}

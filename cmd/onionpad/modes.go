package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/onionpad/internal/app"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List the defined modes",
	Long: `Loads the configuration, macros and scripts and lists every mode kind
with its name. Registered modes appear in the mode selection; hidden ones
never do.`,
	Args: cobra.NoArgs,
	RunE: runModes,
}

func init() {
	rootCmd.AddCommand(modesCmd)
}

func runModes(cmd *cobra.Command, args []string) error {
	infos, err := app.Check(options())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tFLAGS")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Kind, info.Name, modeFlags(info))
	}
	return w.Flush()
}

func modeFlags(info app.ModeInfo) string {
	var flags []string
	if info.Default {
		flags = append(flags, "default")
	}
	if info.Registered {
		flags = append(flags, "registered")
	}
	if info.Hidden {
		flags = append(flags, "hidden")
	}
	if info.Active {
		flags = append(flags, "active")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

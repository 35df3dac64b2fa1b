package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/onionpad/internal/app"
)

var (
	configPath string
	iconsDir   string
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "onionpad",
	Short: "Layered mode dispatcher for a 12-key macropad",
	Long: `OnionPad stacks modes on a 12-key macropad with a rotary encoder.
Each active mode contributes key, encoder and LED mappings; the topmost
mode that maps a key wins. Without hardware, "onionpad run" draws the
macropad in the terminal.`,
	PersistentPreRunE: validateFlags,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&iconsDir, "icons", "", "Directory with icons.yaml (default: embedded icons)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file (default: "+app.DefaultLogFile+")")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
}

func validateFlags(cmd *cobra.Command, args []string) error {
	switch logLevel {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", logLevel)
	}
}

// options returns the application options set by the persistent flags.
func options() app.Options {
	return app.Options{
		ConfigPath: configPath,
		IconsDir:   iconsDir,
		LogLevel:   logLevel,
		LogFile:    logFile,
	}
}

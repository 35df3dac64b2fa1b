package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/onionpad/internal/app"
	"github.com/dshills/onionpad/internal/platform/term"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the macropad in the terminal",
	Long: `Draws the macropad in the terminal and runs the mode stack.

Keys 1234, qwer and asdf are the keypad rows. Upper-case letters hold a key
until typed again. [ and ] turn the encoder. Escape quits.

The configuration file and the scripts are reloaded when they change.`,
	Args: cobra.NoArgs,
	RunE: runPad,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPad(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	board, err := term.Open(term.WithQuit(cancel))
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}

	opts := options()
	b := board.Board()
	opts.Board = &b
	opts.Watch = true

	application, err := app.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	board.SetBrightness(application.Config().Display.Brightness)
	board.SetIconSource(application.Pad().KeypadIcons)
	if err := board.Start(); err != nil {
		return fmt.Errorf("failed to start terminal: %w", err)
	}
	defer board.Stop()

	return application.Run(ctx)
}

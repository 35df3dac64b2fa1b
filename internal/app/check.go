package app

import (
	"io"

	"github.com/dshills/onionpad/internal/platform"
)

// Check loads the configuration, icons, macros, scripts and composites the
// way Run would, on a board without hardware, and describes the resulting
// modes. Script errors are fatal.
func Check(opts Options) ([]ModeInfo, error) {
	board := platform.NewNullBoard().Board()
	opts.Board = &board
	opts.Watch = false
	opts.Strict = true
	if opts.LogOutput == nil {
		opts.LogOutput = io.Discard
	}

	app, err := New(opts)
	if err != nil {
		return nil, err
	}
	defer app.Close()
	return app.Modes(), nil
}

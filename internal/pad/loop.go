package pad

import (
	"context"
	"time"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/platform"
)

// Run ticks every tick interval until ctx is cancelled.
func (p *Pad) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.tickInterval)
	defer ticker.Stop()

	p.logger.Info("running, tick interval %s", p.tickInterval)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stopped after %d ticks", p.ticks)
			return nil
		case <-ticker.C:
			p.Tick()
		}
	}
}

// Tick runs one iteration of the main loop:
//
//  1. run the before-tick hooks
//  2. run the key action of every pending key event
//  3. run the encoder action if the encoder moved
//  4. tick every active mode
//  5. flush the display and the LEDs if requested
//  6. update the idle policy
func (p *Pad) Tick() {
	for _, hook := range p.hooks {
		hook()
	}

	input := false
	for {
		ev, ok := p.board.Input.NextKeyEvent()
		if !ok {
			break
		}
		p.handleKey(ev)
		input = true
	}

	pos := p.board.Input.EncoderPosition()
	if change := pos - p.encoderPos; change != 0 {
		p.encoderPos = pos
		a := p.stack.Encoder()
		p.logger.Debug("encoder %d (%+d): %s", pos, change, action.Describe(a))
		p.runner.Execute(a, action.Args{Encoder: pos, Change: change}, true)
		input = true
	}

	// Active returns a copy, so modes may push and pop while ticking. A mode
	// deactivated by an earlier tick in this loop is skipped.
	for _, m := range p.stack.Active() {
		if !p.stack.Contains(m.Kind()) {
			continue
		}
		m.Tick()
	}

	if p.refreshDisplay {
		p.refreshDisplay = false
		p.board.Display.Refresh()
	}
	if p.refreshPixels {
		p.refreshPixels = false
		p.board.Pixels.Show()
	}

	p.idle.Update(input)
	p.ticks++
}

func (p *Pad) handleKey(ev platform.KeyEvent) {
	if ev.Index < 0 || ev.Index >= mode.Keys {
		p.logger.Warn("ignoring %s: no such key", ev)
		return
	}

	row, col := mode.Position(ev.Index)
	var a action.Action
	if ev.Pressed {
		a = p.stack.KeyDown(row, col)
		if owner := p.stack.Owner(row, col); owner != "" {
			p.logger.Debug("%s: %s from %s", ev, action.Describe(a), owner)
		} else {
			p.logger.Debug("%s: %s", ev, action.Describe(a))
		}
	} else {
		a = p.stack.KeyUp(row, col)
		p.logger.Debug("%s: %s", ev, action.Describe(a))
	}
	p.runner.Execute(a, action.Args{}, true)
}

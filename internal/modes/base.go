package modes

import (
	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/pad"
)

// Base is the default mode. Holding its first key opens the mode selection.
type Base struct {
	mode.Base
	keydown mode.KeyGrid
	icons   mode.IconGrid
}

// NewBase creates the base mode.
func NewBase(p *pad.Pad, opts Options) *Base {
	m := &Base{}
	m.keydown[0][0] = action.Do("select-mode", func() {
		if err := p.PushMode(KindPreSelection); err != nil {
			p.Logger().Error("open mode selection: %v", err)
		}
	})
	m.icons[0][0] = lookupIcon(p, opts.Icons, IconLayers)
	return m
}

func (m *Base) Kind() mode.Kind           { return KindBase }
func (m *Base) Name() string              { return "Base Mode" }
func (m *Base) Title() string             { return "Base Mode" }
func (m *Base) KeyDown() mode.KeyGrid     { return m.keydown }
func (m *Base) KeyUp() mode.KeyGrid       { return mode.KeyGrid{} }
func (m *Base) Encoder() mode.EncoderGrid { return mode.EncoderGrid{} }
func (m *Base) Icons() mode.IconGrid      { return m.icons }

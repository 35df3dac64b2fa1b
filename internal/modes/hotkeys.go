package modes

import (
	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/pad"
)

// Hotkeys shows the icons of the keys mapped by all active modes.
type Hotkeys struct {
	mode.Base
	mode.Unmapped

	pad *pad.Pad
	hm  *display.HotkeyMap
}

// NewHotkeys creates the hotkey map mode.
func NewHotkeys(p *pad.Pad) *Hotkeys {
	return &Hotkeys{pad: p, hm: display.NewHotkeyMap()}
}

func (m *Hotkeys) Kind() mode.Kind      { return KindHotkeys }
func (m *Hotkeys) Name() string         { return "Hotkeys" }
func (m *Hotkeys) Group() display.Group { return m.hm }

// Tick redraws the map when the composited icons changed.
func (m *Hotkeys) Tick() {
	if m.hm.SetContents(m.pad.KeypadIcons()) {
		m.pad.ScheduleDisplayRefresh()
	}
}

package modes

import (
	"time"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/pad"
	"github.com/dshills/onionpad/internal/platform"
)

// jigglerLED is the LED that shows whether the jiggler is armed.
const jigglerLED = 11

// Colors of the jiggler LED.
var (
	jigglerArmed = platform.RGB(0, 48, 0)
	jigglerMoved = platform.RGB(0, 160, 0)
)

// Jiggler keeps the host awake by moving the mouse back and forth. The last
// key toggles it while the mode is active.
type Jiggler struct {
	mode.Base

	pad      *pad.Pad
	interval time.Duration
	distance int

	armed     bool
	direction int
	last      time.Time
	moves     int

	keydown mode.KeyGrid
	icons   mode.IconGrid
}

// NewJiggler creates the jiggler mode.
func NewJiggler(p *pad.Pad, opts Options) *Jiggler {
	m := &Jiggler{
		pad:      p,
		interval: opts.JiggleInterval,
		distance: opts.JiggleDistance,
	}
	m.keydown[2][3] = action.Do("toggle-jiggler", m.toggle)
	m.icons[2][3] = lookupIcon(p, opts.Icons, IconMouse)
	return m
}

func (m *Jiggler) Kind() mode.Kind           { return KindJiggler }
func (m *Jiggler) Name() string              { return "Jiggler" }
func (m *Jiggler) KeyDown() mode.KeyGrid     { return m.keydown }
func (m *Jiggler) KeyUp() mode.KeyGrid       { return mode.KeyGrid{} }
func (m *Jiggler) Encoder() mode.EncoderGrid { return mode.EncoderGrid{} }
func (m *Jiggler) Icons() mode.IconGrid      { return m.icons }
func (m *Jiggler) LEDs() []int               { return []int{jigglerLED} }

// Start arms the jiggler.
func (m *Jiggler) Start() {
	m.armed = true
	m.direction = 1
	m.last = m.pad.Clock().Now()
	m.setLED(jigglerArmed)
}

// Pause turns the indicator off.
func (m *Jiggler) Pause() {
	m.armed = false
	m.setLED(platform.Black)
}

// Tick moves the mouse once per interval while armed.
func (m *Jiggler) Tick() {
	if !m.armed || m.interval <= 0 {
		return
	}
	now := m.pad.Clock().Now()
	if now.Sub(m.last) < m.interval {
		return
	}
	m.last = now
	m.pad.ExecuteAction(action.MouseMove{X: m.direction * m.distance})
	m.direction = -m.direction
	m.moves++

	if m.moves%2 == 1 {
		m.setLED(jigglerMoved)
	} else {
		m.setLED(jigglerArmed)
	}
}

// Armed reports whether the jiggler moves the mouse.
func (m *Jiggler) Armed() bool {
	return m.armed
}

// Moves returns the number of movements since creation.
func (m *Jiggler) Moves() int {
	return m.moves
}

func (m *Jiggler) toggle() {
	m.armed = !m.armed
	if m.armed {
		m.last = m.pad.Clock().Now()
		m.setLED(jigglerArmed)
		return
	}
	m.setLED(platform.Black)
}

func (m *Jiggler) setLED(c platform.Color) {
	m.pad.Pixels().Set(jigglerLED, c)
	m.pad.SchedulePixelRefresh()
}

package modes

import (
	"time"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/pad"
)

// PreSelection shows a loading animation while the mode key is held. When
// the animation completes the mode selection opens; releasing the key
// earlier returns to the default mode.
type PreSelection struct {
	mode.Base

	pad      *pad.Pad
	duration time.Duration
	progress *display.Progress
	keyup    mode.KeyGrid
	started  time.Time
}

// NewPreSelection creates the preselection mode.
func NewPreSelection(p *pad.Pad, opts Options) *PreSelection {
	m := &PreSelection{
		pad:      p,
		duration: opts.PreSelectionDuration,
		progress: display.NewProgress(),
	}
	m.keyup[0][0] = action.Do("abort-selection", m.abort)
	return m
}

func (m *PreSelection) Kind() mode.Kind           { return KindPreSelection }
func (m *PreSelection) Name() string              { return "Preselection" }
func (m *PreSelection) Hidden() bool              { return true }
func (m *PreSelection) Group() display.Group      { return m.progress }
func (m *PreSelection) KeyDown() mode.KeyGrid     { return mode.KeyGrid{} }
func (m *PreSelection) KeyUp() mode.KeyGrid       { return m.keyup }
func (m *PreSelection) Encoder() mode.EncoderGrid { return mode.EncoderGrid{} }
func (m *PreSelection) Icons() mode.IconGrid      { return mode.IconGrid{} }

// Start restarts the animation.
func (m *PreSelection) Start() {
	m.started = m.pad.Clock().Now()
	m.progress.Reset()
}

// Tick advances the animation and opens the selection once it is full.
func (m *PreSelection) Tick() {
	fraction := 1.0
	if m.duration > 0 {
		fraction = float64(m.pad.Clock().Now().Sub(m.started)) / float64(m.duration)
	}
	if fraction >= 1 {
		m.pad.PopMode(KindPreSelection)
		if err := m.pad.PushMode(KindSelection); err != nil {
			m.pad.Logger().Error("open mode selection: %v", err)
		}
		return
	}
	m.progress.SetProgress(fraction)
	m.pad.ScheduleDisplayRefresh()
}

// Progress returns the animation, for tests and the simulator.
func (m *PreSelection) Progress() *display.Progress {
	return m.progress
}

func (m *PreSelection) abort() {
	def := m.pad.DefaultMode()
	if def == "" {
		m.pad.PopMode(KindPreSelection)
		return
	}
	if err := m.pad.SetMode(def); err != nil {
		m.pad.Logger().Error("abort mode selection: %v", err)
	}
}

// Selection lists the registered modes. Turning the encoder moves the
// cursor and releasing the mode key activates the entry under it.
type Selection struct {
	mode.Base

	pad     *pad.Pad
	layout  *display.Selection
	kinds   map[string]mode.Kind
	keydown mode.KeyGrid
	keyup   mode.KeyGrid
	encoder mode.EncoderGrid
}

// NewSelection creates the selection mode.
func NewSelection(p *pad.Pad) *Selection {
	m := &Selection{
		pad:    p,
		layout: display.NewSelection(nil, display.DefaultVisibleEntries),
		kinds:  make(map[string]mode.Kind),
	}
	// The press that follows the preselection must not reach lower modes.
	m.keydown[0][0] = action.Nop()
	m.keyup[0][0] = action.Do("select", m.selectActive)
	m.encoder[0][0] = action.Func("scroll", m.scroll)
	return m
}

func (m *Selection) Kind() mode.Kind           { return KindSelection }
func (m *Selection) Name() string              { return "Selection" }
func (m *Selection) Hidden() bool              { return true }
func (m *Selection) Title() string             { return "Modes:" }
func (m *Selection) Group() display.Group      { return m.layout }
func (m *Selection) KeyDown() mode.KeyGrid     { return m.keydown }
func (m *Selection) KeyUp() mode.KeyGrid       { return m.keyup }
func (m *Selection) Encoder() mode.EncoderGrid { return m.encoder }
func (m *Selection) Icons() mode.IconGrid      { return mode.IconGrid{} }

// Start lists the modes registered at this time.
func (m *Selection) Start() {
	clear(m.kinds)
	var names []string
	for _, reg := range m.pad.Registered() {
		if reg.Hidden() {
			continue
		}
		names = append(names, reg.Name())
		m.kinds[reg.Name()] = reg.Kind()
	}
	m.layout.SetEntries(names, display.DefaultVisibleEntries)
}

// Layout returns the entry list, for tests and the simulator.
func (m *Selection) Layout() *display.Selection {
	return m.layout
}

func (m *Selection) scroll(args action.Args) {
	if args.Change > 0 {
		m.layout.Next()
	} else {
		m.layout.Previous()
	}
	m.pad.ScheduleDisplayRefresh()
}

func (m *Selection) selectActive() {
	m.pad.PopMode(KindSelection)
	kind, ok := m.kinds[m.layout.Active()]
	if !ok {
		return
	}
	if err := m.pad.PushMode(kind); err != nil {
		m.pad.Logger().Error("select %s: %v", kind, err)
	}
}

package modes

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/pad"
	"github.com/dshills/onionpad/internal/platform"
)

// drift is the color state of one LED. Hue is in [0, 1) and speed is in
// hue turns per second.
type drift struct {
	hue        float64
	saturation float64
	speed      float64
}

// Ambient lets every LED drift slowly through the color wheel. LEDs driven
// by another active mode are left alone.
type Ambient struct {
	mode.Base
	mode.Unmapped

	pad   *pad.Pad
	value float64
	leds  []drift
	last  time.Time
}

// NewAmbient creates the ambient mode with a random color per LED.
func NewAmbient(p *pad.Pad, opts Options) *Ambient {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	m := &Ambient{
		pad:   p,
		value: opts.AmbientValue,
		leds:  make([]drift, p.Pixels().Len()),
	}
	for i := range m.leds {
		sign := 1.0
		if rng.IntN(2) == 0 {
			sign = -1
		}
		m.leds[i] = drift{
			hue:        rng.Float64(),
			saturation: 0.2*rng.Float64() + 0.8,
			speed:      sign * (0.2*rng.Float64() + 0.2),
		}
	}
	return m
}

func (m *Ambient) Kind() mode.Kind { return KindAmbient }
func (m *Ambient) Name() string    { return "Ambience" }

// Start resets the time base so a paused mode does not jump on resume.
func (m *Ambient) Start() {
	m.last = m.pad.Clock().Now()
}

// Pause turns its LEDs off.
func (m *Ambient) Pause() {
	claimed := m.pad.ClaimedLEDs()
	pixels := m.pad.Pixels()
	for i := 0; i < pixels.Len(); i++ {
		if !claimed[i] {
			pixels.Set(i, platform.Black)
		}
	}
	m.pad.SchedulePixelRefresh()
}

// Tick advances the hue of every LED by the elapsed time.
func (m *Ambient) Tick() {
	now := m.pad.Clock().Now()
	dt := now.Sub(m.last).Seconds()
	m.last = now

	claimed := m.pad.ClaimedLEDs()
	pixels := m.pad.Pixels()
	for i := range m.leds {
		led := &m.leds[i]
		led.hue = wrapUnit(led.hue + led.speed*dt)
		if !claimed[i] {
			pixels.Set(i, hsv(led.hue, led.saturation, m.value))
		}
	}
	m.pad.SchedulePixelRefresh()
}

// Hue returns the current hue of LED i, for tests and the simulator.
func (m *Ambient) Hue(i int) float64 {
	return m.leds[i].hue
}

// hsv converts a hue in [0, 1) and saturation and value in [0, 1] to an LED
// color.
func hsv(h, s, v float64) platform.Color {
	r, g, b := colorful.Hsv(h*360, s, v).Clamped().RGB255()
	return platform.RGB(r, g, b)
}

// wrapUnit maps x into [0, 1).
func wrapUnit(x float64) float64 {
	x = math.Mod(x, 1)
	if x < 0 {
		x++
	}
	if x >= 1 {
		x = 0
	}
	return x
}

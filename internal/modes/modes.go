// Package modes provides the built-in macropad modes.
//
// Every mode holds the pad it was created for and talks to the hardware only
// through it. DefineAll makes the built-in kinds known to a pad; which of
// them are selectable or active at boot is decided by the configuration.
package modes

import (
	"math/rand/v2"
	"time"

	"github.com/dshills/onionpad/internal/asset"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/pad"
)

// Built-in mode kinds.
const (
	KindBase         mode.Kind = "base"
	KindAmbient      mode.Kind = "ambient"
	KindHotkeys      mode.Kind = "hotkeys"
	KindMedia        mode.Kind = "media"
	KindVolume       mode.Kind = "volume"
	KindPreSelection mode.Kind = "preselection"
	KindSelection    mode.Kind = "selection"
	KindJiggler      mode.Kind = "jiggler"
)

// Icon names used by the built-in modes.
const (
	IconLayers     = "generic.layers"
	IconNext       = "generic.next"
	IconPrevious   = "generic.previous"
	IconPlayPause  = "generic.play_pause"
	IconStop       = "generic.stop"
	IconMute       = "generic.mute"
	IconVolumeUp   = "generic.volume_up"
	IconVolumeDown = "generic.volume_down"
	IconMouse      = "generic.mouse"
)

// Options tunes the built-in modes.
type Options struct {
	// Icons resolves icon names. A nil registry leaves keys without icons.
	Icons *asset.Registry

	// AmbientValue is the HSV value of the ambient LED colors.
	AmbientValue float64

	// PreSelectionDuration is how long the mode key must be held.
	PreSelectionDuration time.Duration

	// JiggleInterval is the time between two mouse movements.
	JiggleInterval time.Duration

	// JiggleDistance is the movement in pixels.
	JiggleDistance int

	// Rand seeds the ambient colors. Nil uses a random seed.
	Rand *rand.Rand
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		AmbientValue:         0.2,
		PreSelectionDuration: time.Second,
		JiggleInterval:       time.Minute,
		JiggleDistance:       1,
	}
}

// DefineAll defines every built-in kind on p.
func DefineAll(p *pad.Pad, opts Options) {
	p.Define(KindBase, func(p *pad.Pad) mode.Mode { return NewBase(p, opts) })
	p.Define(KindAmbient, func(p *pad.Pad) mode.Mode { return NewAmbient(p, opts) })
	p.Define(KindHotkeys, func(p *pad.Pad) mode.Mode { return NewHotkeys(p) })
	p.Define(KindMedia, func(p *pad.Pad) mode.Mode { return NewMedia(p, opts) })
	p.Define(KindVolume, func(p *pad.Pad) mode.Mode { return NewVolume(p, opts) })
	p.Define(KindPreSelection, func(p *pad.Pad) mode.Mode { return NewPreSelection(p, opts) })
	p.Define(KindSelection, func(p *pad.Pad) mode.Mode { return NewSelection(p) })
	p.Define(KindJiggler, func(p *pad.Pad) mode.Mode { return NewJiggler(p, opts) })
}

// lookupIcon resolves name, logging and returning no icon if it is unknown.
func lookupIcon(p *pad.Pad, reg *asset.Registry, name string) asset.Icon {
	if reg == nil || name == "" {
		return asset.Icon{}
	}
	icon, err := reg.Lookup(name)
	if err != nil {
		p.Logger().Warn("%v", err)
		return asset.Icon{}
	}
	return icon
}

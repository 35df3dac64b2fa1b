package modes

import (
	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/hid"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/pad"
)

// Media maps the second keypad row to track controls.
type Media struct {
	mode.Base
	keydown mode.KeyGrid
	icons   mode.IconGrid
}

// NewMedia creates the media mode.
func NewMedia(p *pad.Pad, opts Options) *Media {
	m := &Media{}
	m.keydown[1] = [mode.Columns]action.Action{
		action.Consumer(hid.ScanPreviousTrack),
		action.Consumer(hid.PlayPause),
		action.Consumer(hid.Stop),
		action.Consumer(hid.ScanNextTrack),
	}
	for col, name := range []string{IconPrevious, IconPlayPause, IconStop, IconNext} {
		m.icons[1][col] = lookupIcon(p, opts.Icons, name)
	}
	return m
}

func (m *Media) Kind() mode.Kind           { return KindMedia }
func (m *Media) Name() string              { return "Media" }
func (m *Media) KeyDown() mode.KeyGrid     { return m.keydown }
func (m *Media) KeyUp() mode.KeyGrid       { return mode.KeyGrid{} }
func (m *Media) Encoder() mode.EncoderGrid { return mode.EncoderGrid{} }
func (m *Media) Icons() mode.IconGrid      { return m.icons }

// Volume maps the encoder to the host volume and the first key of the last
// row to mute.
type Volume struct {
	mode.Base
	keydown mode.KeyGrid
	encoder mode.EncoderGrid
	icons   mode.IconGrid
}

// NewVolume creates the volume mode.
func NewVolume(p *pad.Pad, opts Options) *Volume {
	m := &Volume{}
	m.keydown[2][0] = action.Consumer(hid.Mute)
	m.icons[2][0] = lookupIcon(p, opts.Icons, IconMute)
	m.encoder[0][0] = action.Func("volume", func(args action.Args) {
		code, n := hid.VolumeIncrement, args.Change
		if n < 0 {
			code, n = hid.VolumeDecrement, -n
		}
		for range n {
			p.ExecuteAction(action.Consumer(code))
		}
	})
	return m
}

func (m *Volume) Kind() mode.Kind           { return KindVolume }
func (m *Volume) Name() string              { return "Volume" }
func (m *Volume) KeyDown() mode.KeyGrid     { return m.keydown }
func (m *Volume) KeyUp() mode.KeyGrid       { return mode.KeyGrid{} }
func (m *Volume) Encoder() mode.EncoderGrid { return m.encoder }
func (m *Volume) Icons() mode.IconGrid      { return m.icons }

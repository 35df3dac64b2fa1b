package mode

import (
	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/asset"
	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/layer"
)

// Kind identifies a type of mode. Each kind has at most one instance.
type Kind string

// Keypad dimensions.
const (
	Rows    = display.Rows
	Columns = display.Columns
	Keys    = Rows * Columns
)

// KeyGrid holds one optional action per key, laid out like the keypad.
type KeyGrid [Rows][Columns]action.Action

// EncoderGrid holds the optional action of the rotary encoder.
type EncoderGrid [1][1]action.Action

// IconGrid holds one optional icon per key.
type IconGrid [Rows][Columns]asset.Icon

// Mode is a pluggable behavior that contributes key, encoder and icon
// mappings and display content while it is on the stack.
//
// Embed Base to get empty defaults for the optional methods.
type Mode interface {
	// Kind returns the identity of the mode.
	Kind() Kind

	// Name returns the unique display name. It is also the layer key the
	// mode's mappings are installed under.
	Name() string

	// Hidden reports whether the mode is left out of the mode selection.
	Hidden() bool

	// Title returns the text for the title bar, or "" for none.
	Title() string

	// Group returns the display content of the mode, or nil.
	Group() display.Group

	// KeyDown returns the actions run when a key is pressed.
	KeyDown() KeyGrid

	// KeyUp returns the actions run when a key is released.
	KeyUp() KeyGrid

	// Encoder returns the action run when the encoder turns.
	Encoder() EncoderGrid

	// Icons returns the icons describing the key actions.
	Icons() IconGrid

	// Start is called each time the mode is activated, before its
	// mappings are installed.
	Start()

	// Pause is called each time the mode is deactivated, before its
	// mappings are removed. It must release hardware the mode drives.
	Pause()

	// Tick is called once per main loop iteration while the mode is active.
	Tick()
}

// Grouping is implemented by modes that activate other modes as part of
// themselves. A kind is on the stack at most once, either on its own or as
// a member of one grouping mode.
type Grouping interface {
	// Members returns the kinds activated with the mode, nested members
	// included.
	Members() []Kind
}

// LEDOwner is implemented by modes that drive individual LEDs. Modes that
// paint every LED leave these alone while the owner is active.
type LEDOwner interface {
	// LEDs returns the indices of the LEDs the mode drives.
	LEDs() []int
}

// Base provides empty implementations of the optional Mode methods.
type Base struct{}

func (Base) Hidden() bool         { return false }
func (Base) Title() string        { return "" }
func (Base) Group() display.Group { return nil }
func (Base) Start()               {}
func (Base) Pause()               {}
func (Base) Tick()                {}

// Unmapped provides empty action and icon grids for modes that only show
// content or drive LEDs.
type Unmapped struct{}

func (Unmapped) KeyDown() KeyGrid     { return KeyGrid{} }
func (Unmapped) KeyUp() KeyGrid       { return KeyGrid{} }
func (Unmapped) Encoder() EncoderGrid { return EncoderGrid{} }
func (Unmapped) Icons() IconGrid      { return IconGrid{} }

// Position converts a linear key index into its row and column.
func Position(index int) (row, col int) {
	return index / Columns, index % Columns
}

// Index converts a row and column into a linear key index.
func Index(row, col int) int {
	return row*Columns + col
}

func keyLayer(g KeyGrid) layer.Grid[action.Action] {
	out := layer.NewGrid[action.Action](Columns, Rows)
	for r := range g {
		copy(out[r], g[r][:])
	}
	return out
}

func encoderLayer(g EncoderGrid) layer.Grid[action.Action] {
	return layer.Grid[action.Action]{{g[0][0]}}
}

func iconLayer(g IconGrid) layer.Grid[asset.Icon] {
	out := layer.NewGrid[asset.Icon](Columns, Rows)
	for r := range g {
		copy(out[r], g[r][:])
	}
	return out
}

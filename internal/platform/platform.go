// Package platform defines the hardware the macropad core talks to.
//
// The core polls key and encoder input once per tick, draws into a display
// tree that is flushed explicitly, sets LED colors that are flushed
// explicitly, and writes host output to an hid.Sink. Implementations must
// not block in any of these calls.
package platform

import (
	"fmt"

	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/hid"
)

// KeyEvent is a single key transition.
type KeyEvent struct {
	// Index is the linear key number, 0 through 11, row by row.
	Index int
	// Pressed is true for a press and false for a release.
	Pressed bool
}

// String returns a short description of the event.
func (e KeyEvent) String() string {
	if e.Pressed {
		return fmt.Sprintf("key %d down", e.Index)
	}
	return fmt.Sprintf("key %d up", e.Index)
}

// Input provides key transitions and the encoder position.
type Input interface {
	// NextKeyEvent returns the next pending key transition. The second
	// result is false when there is none.
	NextKeyEvent() (KeyEvent, bool)

	// EncoderPosition returns the absolute encoder position.
	EncoderPosition() int
}

// Display is the screen of the macropad.
type Display interface {
	// Show sets the display tree. The screen is updated on Refresh.
	Show(root *display.Root)

	// Refresh redraws the screen from the display tree.
	Refresh()

	// Sleep turns the screen off.
	Sleep()

	// Wake turns the screen on.
	Wake()

	// Width returns the number of text cells per line.
	Width() int
}

// Pixels is the LED array under the keys.
type Pixels interface {
	// Len returns the number of LEDs.
	Len() int

	// Set changes the color of an LED. The LED changes on Show.
	// Out of range indices are ignored.
	Set(i int, c Color)

	// Get returns the pending color of an LED.
	Get(i int) Color

	// Show writes the pending colors to the LEDs.
	Show()
}

// Board bundles the hardware of one macropad.
type Board struct {
	Input   Input
	Display Display
	Pixels  Pixels
	Host    hid.Sink
}

// Color is a packed 0xRRGGBB LED color.
type Color uint32

// Black turns an LED off.
const Black Color = 0

// RGB packs red, green and blue components.
func RGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

// RGB unpacks the red, green and blue components.
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// String returns the color as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF)
}

// Package action defines what a key or the encoder can do and executes it.
//
// An Action is one of a closed set of variants:
//
//   - *Call: a Go function invoked with the event arguments
//   - Text: a string typed on the host keyboard
//   - Key: a keyboard key press, or release when Release is set
//   - Consumer: a consumer-control code such as play/pause
//   - Mouse: a mouse button press, or release when Release is set
//   - MouseMove: a relative pointer and wheel movement
//   - *Sequence: an ordered list of actions
//
// A nil Action means no mapping and does nothing.
//
// All variants are comparable so that actions can be stored in a layer.Map.
// Call and Sequence only implement Action through their pointer types.
package action

import (
	"fmt"
	"strings"

	"github.com/dshills/onionpad/internal/hid"
)

// Action is an executable unit bound to a key or encoder event.
type Action interface {
	isAction()
	String() string
}

// Args are the arguments passed to a Call.
// Key events leave them zero; encoder events set both fields.
type Args struct {
	// Encoder is the absolute encoder position after the change.
	Encoder int
	// Change is the relative encoder movement since the last tick.
	Change int
}

// Call invokes a Go function.
type Call struct {
	Name string
	Fn   func(Args)
}

// Func creates a Call from a function that uses the event arguments.
func Func(name string, fn func(Args)) *Call {
	return &Call{Name: name, Fn: fn}
}

// Do creates a Call from a function that ignores the event arguments.
func Do(name string, fn func()) *Call {
	return &Call{Name: name, Fn: func(Args) { fn() }}
}

// Nop returns a Call that does nothing. It is used to claim a cell so that
// lower layers do not handle it.
func Nop() *Call {
	return &Call{Name: "nop", Fn: func(Args) {}}
}

func (*Call) isAction() {}

func (c *Call) String() string {
	if c.Name == "" {
		return "call"
	}
	return "call:" + c.Name
}

// Text is typed on the host keyboard character by character.
type Text string

func (Text) isAction() {}

func (t Text) String() string {
	return fmt.Sprintf("text:%q", string(t))
}

// Key presses a keyboard key, or releases it when Release is set.
type Key struct {
	Code    hid.Keycode
	Release bool
}

// Press returns a Key action that presses code.
func Press(code hid.Keycode) Key {
	return Key{Code: code}
}

// Release returns a Key action that releases code.
func Release(code hid.Keycode) Key {
	return Key{Code: code, Release: true}
}

func (Key) isAction() {}

func (k Key) String() string {
	if k.Release {
		return "release:" + k.Code.String()
	}
	return "key:" + k.Code.String()
}

// Consumer sends a consumer-control code.
type Consumer hid.ConsumerCode

func (Consumer) isAction() {}

func (c Consumer) String() string {
	return "cc:" + hid.ConsumerCode(c).String()
}

// Mouse presses a mouse button, or releases it when Release is set.
type Mouse struct {
	Button  hid.MouseButton
	Release bool
}

func (Mouse) isAction() {}

func (m Mouse) String() string {
	if m.Release {
		return "mouseup:" + m.Button.String()
	}
	return "mouse:" + m.Button.String()
}

// MouseMove moves the pointer and the scroll wheel.
type MouseMove struct {
	X, Y, Wheel int
}

func (MouseMove) isAction() {}

func (m MouseMove) String() string {
	if m.Wheel != 0 {
		return fmt.Sprintf("move:%d,%d,%d", m.X, m.Y, m.Wheel)
	}
	return fmt.Sprintf("move:%d,%d", m.X, m.Y)
}

// Sequence executes its actions in order.
type Sequence struct {
	Actions []Action
}

// Seq creates a Sequence from the given actions.
func Seq(actions ...Action) *Sequence {
	return &Sequence{Actions: actions}
}

func (*Sequence) isAction() {}

func (s *Sequence) String() string {
	parts := make([]string, len(s.Actions))
	for i, a := range s.Actions {
		if a == nil {
			parts[i] = "nil"
			continue
		}
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Describe returns a printable form of a possibly nil action.
func Describe(a Action) string {
	if a == nil {
		return "none"
	}
	return a.String()
}

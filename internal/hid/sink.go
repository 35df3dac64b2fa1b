package hid

import "fmt"

// Sink receives the host output of the macropad.
//
// Implementations talk to the USB HID devices (or a simulator). Write
// failures are the implementation's concern; the dispatch core assumes
// every call succeeds.
type Sink interface {
	// Write types text character by character using the keyboard layout.
	Write(text string)

	// Press reports a keyboard key as held down.
	Press(code Keycode)

	// Release reports a keyboard key as released.
	Release(code Keycode)

	// Send presses a consumer-control code.
	Send(code ConsumerCode)

	// MousePress reports a mouse button as held down.
	MousePress(button MouseButton)

	// MouseRelease reports a mouse button as released.
	MouseRelease(button MouseButton)

	// MouseMove moves the pointer and scroll wheel by a relative amount.
	MouseMove(x, y, wheel int)

	// ReleaseAll reports every keyboard key, consumer-control code and mouse
	// button as released. Calling it with nothing held is harmless.
	ReleaseAll()
}

// Op identifies a recorded sink call.
type Op uint8

const (
	OpWrite Op = iota
	OpPress
	OpRelease
	OpSend
	OpMousePress
	OpMouseRelease
	OpMouseMove
	OpReleaseAll
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpWrite:
		return "write"
	case OpPress:
		return "press"
	case OpRelease:
		return "release"
	case OpSend:
		return "send"
	case OpMousePress:
		return "mouse-press"
	case OpMouseRelease:
		return "mouse-release"
	case OpMouseMove:
		return "mouse-move"
	case OpReleaseAll:
		return "release-all"
	default:
		return "unknown"
	}
}

// Call is a single recorded sink call.
type Call struct {
	Op       Op
	Text     string
	Key      Keycode
	Consumer ConsumerCode
	Button   MouseButton
	X, Y, W  int
}

// String renders the call for logs and the simulator output panel.
func (c Call) String() string {
	switch c.Op {
	case OpWrite:
		return fmt.Sprintf("write %q", c.Text)
	case OpPress, OpRelease:
		return fmt.Sprintf("%s %s", c.Op, c.Key)
	case OpSend:
		return fmt.Sprintf("send %s", c.Consumer)
	case OpMousePress, OpMouseRelease:
		return fmt.Sprintf("%s %s", c.Op, c.Button)
	case OpMouseMove:
		return fmt.Sprintf("mouse-move %d,%d,%d", c.X, c.Y, c.W)
	default:
		return c.Op.String()
	}
}

// Recorder is a Sink that keeps every call in order.
// It is used by tests and as the host side of the terminal simulator.
type Recorder struct {
	calls []Call
	limit int

	// OnCall is invoked after each call is recorded, if set.
	OnCall func(Call)
}

// NewRecorder creates a recorder. A positive limit keeps only the most
// recent calls.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) record(c Call) {
	r.calls = append(r.calls, c)
	if r.limit > 0 && len(r.calls) > r.limit {
		r.calls = append(r.calls[:0], r.calls[len(r.calls)-r.limit:]...)
	}
	if r.OnCall != nil {
		r.OnCall(c)
	}
}

func (r *Recorder) Write(text string)              { r.record(Call{Op: OpWrite, Text: text}) }
func (r *Recorder) Press(code Keycode)             { r.record(Call{Op: OpPress, Key: code}) }
func (r *Recorder) Release(code Keycode)           { r.record(Call{Op: OpRelease, Key: code}) }
func (r *Recorder) Send(code ConsumerCode)         { r.record(Call{Op: OpSend, Consumer: code}) }
func (r *Recorder) MousePress(button MouseButton)  { r.record(Call{Op: OpMousePress, Button: button}) }
func (r *Recorder) MouseRelease(button MouseButton) {
	r.record(Call{Op: OpMouseRelease, Button: button})
}
func (r *Recorder) MouseMove(x, y, wheel int) { r.record(Call{Op: OpMouseMove, X: x, Y: y, W: wheel}) }
func (r *Recorder) ReleaseAll()               { r.record(Call{Op: OpReleaseAll}) }

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many recorded calls have the given op.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset discards all recorded calls.
func (r *Recorder) Reset() {
	r.calls = r.calls[:0]
}

// Ensure Recorder implements Sink.
var _ Sink = (*Recorder)(nil)

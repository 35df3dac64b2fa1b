package action

import (
	"github.com/dshills/onionpad/internal/hid"
)

// Runner executes actions against a host output sink.
type Runner struct {
	sink hid.Sink

	// depth counts nested Execute calls made through Call functions.
	depth int
}

// NewRunner creates a runner writing to sink.
func NewRunner(sink hid.Sink) *Runner {
	return &Runner{sink: sink}
}

// Execute runs an action.
//
// A nil action does nothing, not even a release. When release is true the
// host is told that every key and button is released once the action
// finished. Elements of a Sequence run with release disabled so a sequence
// ends with a single release, however deeply it is nested. A Call function
// that executes further actions through the same runner is nested as well.
func (r *Runner) Execute(a Action, args Args, release bool) {
	if a == nil {
		return
	}

	outer := r.depth == 0
	r.depth++
	defer func() { r.depth-- }()

	r.run(a, args)

	if release && outer {
		r.sink.ReleaseAll()
	}
}

// ReleaseAll reports every key, consumer-control code and mouse button as
// released. It is safe to call when nothing is held.
func (r *Runner) ReleaseAll() {
	r.sink.ReleaseAll()
}

func (r *Runner) run(a Action, args Args) {
	switch v := a.(type) {
	case *Call:
		if v.Fn != nil {
			v.Fn(args)
		}
	case Text:
		r.sink.Write(string(v))
	case Key:
		if v.Release {
			r.sink.Release(v.Code)
		} else {
			r.sink.Press(v.Code)
		}
	case Consumer:
		r.sink.Send(hid.ConsumerCode(v))
	case Mouse:
		if v.Release {
			r.sink.MouseRelease(v.Button)
		} else {
			r.sink.MousePress(v.Button)
		}
	case MouseMove:
		r.sink.MouseMove(v.X, v.Y, v.Wheel)
	case *Sequence:
		for _, elem := range v.Actions {
			if elem != nil {
				r.run(elem, args)
			}
		}
	}
}

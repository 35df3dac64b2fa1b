package mode

import (
	"fmt"
	"slices"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/asset"
	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/layer"
)

// Change describes a stack transition reported to callbacks.
type Change uint8

const (
	// Pushed is reported after a mode was activated.
	Pushed Change = iota
	// Popped is reported after a mode was deactivated.
	Popped
)

// String returns a human-readable change name.
func (c Change) String() string {
	switch c {
	case Pushed:
		return "push"
	case Popped:
		return "pop"
	default:
		return "unknown"
	}
}

// ChangeCallback is called after every individual push and pop.
type ChangeCallback func(change Change, m Mode)

// Stack is the ordered set of active modes.
type Stack struct {
	// active holds the modes in push order; the last one is the top.
	active []Mode

	// def is pushed whenever a pop empties the stack.
	def Mode

	encoder *layer.Map[action.Action]
	keydown *layer.Map[action.Action]
	keyup   *layer.Map[action.Action]
	icons   *layer.Map[asset.Icon]

	// root receives mode groups and the title.
	root *display.Root

	callbacks []ChangeCallback
}

// NewStack creates an empty stack drawing into root.
func NewStack(root *display.Root) *Stack {
	return &Stack{
		active:  make([]Mode, 0, 8),
		encoder: layer.NewMap[action.Action](1, 1),
		keydown: layer.NewMap[action.Action](Columns, Rows),
		keyup:   layer.NewMap[action.Action](Columns, Rows),
		icons:   layer.NewMap[asset.Icon](Columns, Rows),
		root:    root,
	}
}

// OnChange registers a callback for push and pop transitions.
func (s *Stack) OnChange(cb ChangeCallback) {
	s.callbacks = append(s.callbacks, cb)
}

// Push activates m on top of the stack.
//
// If m is already active, it and every mode above it are popped first, so
// m is restarted and ends up on top with everything below it unchanged.
// The same applies to an active mode that shares a kind with m through a
// Grouping, so no kind is ever active twice.
func (s *Stack) Push(m Mode) {
	for _, kind := range append([]Kind{m.Kind()}, members(m)...) {
		for i := s.holderOf(kind); i >= 0; i = s.holderOf(kind) {
			s.popThrough(s.active[i].Kind())
		}
	}

	m.Start()
	s.active = append(s.active, m)
	if g := m.Group(); g != nil {
		s.root.Append(g)
	}

	name := m.Name()
	mustInstall(s.encoder.PushLayer(name, encoderLayer(m.Encoder())))
	mustInstall(s.keydown.PushLayer(name, keyLayer(m.KeyDown())))
	mustInstall(s.keyup.PushLayer(name, keyLayer(m.KeyUp())))
	mustInstall(s.icons.PushLayer(name, iconLayer(m.Icons())))

	s.updateTitle()
	s.notify(Pushed, m)
}

// Pop deactivates m and every mode above it. A nil m pops only the top mode.
// Popping a mode that is not active does nothing. If the stack ends up
// empty and a default mode is set, the default mode is pushed.
func (s *Stack) Pop(m Mode) {
	if m == nil {
		s.popTop()
	} else {
		if s.indexOf(m.Kind()) < 0 {
			return
		}
		s.popThrough(m.Kind())
	}
	s.refill()
}

// SetMode makes m the only active mode. The default mode is not pushed in
// between, even though the stack is briefly empty.
func (s *Stack) SetMode(m Mode) {
	for len(s.active) > 0 {
		s.popTop()
	}
	s.Push(m)
}

// SetDefault sets the mode pushed whenever the stack becomes empty. If the
// stack is empty now, m is pushed immediately. A nil m clears the default.
func (s *Stack) SetDefault(m Mode) {
	s.def = m
	s.refill()
}

// Default returns the default mode, or nil.
func (s *Stack) Default() Mode {
	return s.def
}

// Active returns the active modes, top first. The slice is a copy, so it is
// safe to iterate while modes are pushed or popped.
func (s *Stack) Active() []Mode {
	out := make([]Mode, len(s.active))
	for i, m := range s.active {
		out[len(s.active)-1-i] = m
	}
	return out
}

// Top returns the most recently pushed mode, or nil.
func (s *Stack) Top() Mode {
	if len(s.active) == 0 {
		return nil
	}
	return s.active[len(s.active)-1]
}

// Len returns the number of active modes.
func (s *Stack) Len() int {
	return len(s.active)
}

// Contains returns true if a mode of the given kind is active.
func (s *Stack) Contains(kind Kind) bool {
	return s.indexOf(kind) >= 0
}

// KeyDown returns the resolved key-down action for a key.
func (s *Stack) KeyDown(row, col int) action.Action {
	return s.keydown.At(row, col)
}

// KeyUp returns the resolved key-up action for a key.
func (s *Stack) KeyUp(row, col int) action.Action {
	return s.keyup.At(row, col)
}

// Encoder returns the resolved encoder action.
func (s *Stack) Encoder() action.Action {
	return s.encoder.At(0, 0)
}

// KeyDownActions returns a snapshot of the resolved key-down actions.
func (s *Stack) KeyDownActions() KeyGrid {
	return toKeyGrid(s.keydown.Snapshot())
}

// KeyUpActions returns a snapshot of the resolved key-up actions.
func (s *Stack) KeyUpActions() KeyGrid {
	return toKeyGrid(s.keyup.Snapshot())
}

// KeypadIcons returns a snapshot of the resolved icons.
func (s *Stack) KeypadIcons() IconGrid {
	var out IconGrid
	snap := s.icons.Snapshot()
	for r := range out {
		copy(out[r][:], snap[r])
	}
	return out
}

// Owner returns the name of the mode that provides the key-down action of a
// key, or "" if the key is unmapped.
func (s *Stack) Owner(row, col int) string {
	return s.keydown.Which(row, col)
}

// Title returns the title shown for the active modes.
func (s *Stack) Title() string {
	return s.root.Title()
}

func (s *Stack) popTop() {
	if len(s.active) == 0 {
		return
	}
	m := s.active[len(s.active)-1]
	s.active = s.active[:len(s.active)-1]

	m.Pause()
	if g := m.Group(); g != nil {
		s.root.Remove(g)
	}

	name := m.Name()
	mustInstall(s.encoder.RemoveLayer(name))
	mustInstall(s.keydown.RemoveLayer(name))
	mustInstall(s.keyup.RemoveLayer(name))
	mustInstall(s.icons.RemoveLayer(name))

	s.updateTitle()
	s.notify(Popped, m)
}

// popThrough pops from the top until the mode of kind is gone. It never
// refills the stack.
func (s *Stack) popThrough(kind Kind) {
	for {
		top := s.Top()
		if top == nil {
			return
		}
		s.popTop()
		if top.Kind() == kind {
			return
		}
	}
}

func (s *Stack) refill() {
	if len(s.active) == 0 && s.def != nil {
		s.Push(s.def)
	}
}

// updateTitle shows the title of the topmost mode that has one.
func (s *Stack) updateTitle() {
	for i := len(s.active) - 1; i >= 0; i-- {
		if t := s.active[i].Title(); t != "" {
			s.root.SetTitle(t)
			return
		}
	}
	s.root.SetTitle("")
}

// holderOf returns the index of the lowest active mode that is kind or
// groups it, or -1.
func (s *Stack) holderOf(kind Kind) int {
	for i, m := range s.active {
		if m.Kind() == kind || slices.Contains(members(m), kind) {
			return i
		}
	}
	return -1
}

// members returns the kinds m groups, if any.
func members(m Mode) []Kind {
	if g, ok := m.(Grouping); ok {
		return g.Members()
	}
	return nil
}

func (s *Stack) indexOf(kind Kind) int {
	for i, m := range s.active {
		if m.Kind() == kind {
			return i
		}
	}
	return -1
}

func (s *Stack) notify(change Change, m Mode) {
	for _, cb := range s.callbacks {
		if cb != nil {
			cb(change, m)
		}
	}
}

// mustInstall panics on a layer error. Grids have a fixed shape and names
// are unique, so a failure here is a broken mode.
func mustInstall(err error) {
	if err != nil {
		panic(fmt.Errorf("mode stack: %w", err))
	}
}

func toKeyGrid(g layer.Grid[action.Action]) KeyGrid {
	var out KeyGrid
	for r := range out {
		copy(out[r][:], g[r])
	}
	return out
}

package mode

import (
	"errors"
	"testing"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/asset"
	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/hid"
)

// testMode is a configurable mode that counts lifecycle calls.
type testMode struct {
	Base
	kind    Kind
	name    string
	title   string
	hidden  bool
	group   display.Group
	keydown KeyGrid
	keyup   KeyGrid
	encoder EncoderGrid
	icons   IconGrid

	starts, pauses, ticks int
	log                   *[]string
}

func newTestMode(kind string) *testMode {
	return &testMode{kind: Kind(kind), name: kind}
}

func (m *testMode) Kind() Kind           { return m.kind }
func (m *testMode) Name() string         { return m.name }
func (m *testMode) Hidden() bool         { return m.hidden }
func (m *testMode) Title() string        { return m.title }
func (m *testMode) Group() display.Group { return m.group }
func (m *testMode) KeyDown() KeyGrid     { return m.keydown }
func (m *testMode) KeyUp() KeyGrid       { return m.keyup }
func (m *testMode) Encoder() EncoderGrid { return m.encoder }
func (m *testMode) Icons() IconGrid      { return m.icons }
func (m *testMode) Tick()                { m.ticks++ }

func (m *testMode) Start() {
	m.starts++
	if m.log != nil {
		*m.log = append(*m.log, "start "+m.name)
	}
}

func (m *testMode) Pause() {
	m.pauses++
	if m.log != nil {
		*m.log = append(*m.log, "pause "+m.name)
	}
}

type lineGroup string

func (g lineGroup) Lines(int) []string { return []string{string(g)} }

func kinds(modes []Mode) []Kind {
	out := make([]Kind, len(modes))
	for i, m := range modes {
		out[i] = m.Kind()
	}
	return out
}

func equalKinds(got []Mode, want ...string) bool {
	k := kinds(got)
	if len(k) != len(want) {
		return false
	}
	for i := range k {
		if string(k[i]) != want[i] {
			return false
		}
	}
	return true
}

func TestStack_PushInstallsLayers(t *testing.T) {
	s := NewStack(display.NewRoot())

	low := newTestMode("low")
	low.keydown[1][1] = action.Text("low")
	low.keydown[0][0] = action.Text("only-low")
	high := newTestMode("high")
	high.keydown[1][1] = action.Text("high")
	high.icons[2][3] = asset.Icon{Name: "generic.stop"}

	s.Push(low)
	s.Push(high)

	if got := s.KeyDown(1, 1); got != action.Action(action.Text("high")) {
		t.Errorf("KeyDown(1, 1) = %v, want high", got)
	}
	if got := s.KeyDown(0, 0); got != action.Action(action.Text("only-low")) {
		t.Errorf("KeyDown(0, 0) = %v, want only-low", got)
	}
	if got := s.KeypadIcons()[2][3].Name; got != "generic.stop" {
		t.Errorf("KeypadIcons()[2][3] = %q", got)
	}
	if s.Owner(1, 1) != "high" {
		t.Errorf("Owner(1, 1) = %q, want high", s.Owner(1, 1))
	}
	if !equalKinds(s.Active(), "high", "low") {
		t.Errorf("Active() = %v, want [high low]", kinds(s.Active()))
	}
}

func TestStack_PushActiveReinitializes(t *testing.T) {
	s := NewStack(display.NewRoot())
	a, b, c, d := newTestMode("a"), newTestMode("b"), newTestMode("c"), newTestMode("d")

	s.Push(a)
	s.Push(b)
	s.Push(c)
	s.Push(d)

	s.Push(b)

	if !equalKinds(s.Active(), "b", "a") {
		t.Errorf("Active() = %v, want [b a]", kinds(s.Active()))
	}
	if b.starts != 2 || b.pauses != 1 {
		t.Errorf("b starts/pauses = %d/%d, want 2/1", b.starts, b.pauses)
	}
	if c.pauses != 1 || d.pauses != 1 {
		t.Errorf("c/d pauses = %d/%d, want 1/1", c.pauses, d.pauses)
	}
	if a.starts != 1 || a.pauses != 0 {
		t.Errorf("a starts/pauses = %d/%d, want 1/0", a.starts, a.pauses)
	}
}

// groupMode is a test mode that groups other kinds.
type groupMode struct {
	*testMode
	members []Kind
}

func (m *groupMode) Members() []Kind { return m.members }

func TestStack_PushGroupPopsActiveMember(t *testing.T) {
	s := NewStack(display.NewRoot())
	a, b := newTestMode("a"), newTestMode("b")
	g := &groupMode{testMode: newTestMode("g"), members: []Kind{"b"}}

	s.Push(a)
	s.Push(b)
	s.Push(g)

	if !equalKinds(s.Active(), "g", "a") {
		t.Errorf("Active() = %v, want [g a]", kinds(s.Active()))
	}
	if b.pauses != 1 {
		t.Errorf("b pauses = %d, want 1", b.pauses)
	}

	s.Pop(g)
	if !equalKinds(s.Active(), "a") {
		t.Errorf("Active() = %v, want [a]", kinds(s.Active()))
	}
	if a.pauses != 0 || g.pauses != 1 {
		t.Errorf("a/g pauses = %d/%d, want 0/1", a.pauses, g.pauses)
	}
}

func TestStack_PushMemberPopsActiveGroup(t *testing.T) {
	s := NewStack(display.NewRoot())
	a, b := newTestMode("a"), newTestMode("b")
	g := &groupMode{testMode: newTestMode("g"), members: []Kind{"b"}}

	s.Push(a)
	s.Push(g)
	s.Push(b)

	if !equalKinds(s.Active(), "b", "a") {
		t.Errorf("Active() = %v, want [b a]", kinds(s.Active()))
	}
	if g.starts != 1 || g.pauses != 1 {
		t.Errorf("g starts/pauses = %d/%d, want 1/1", g.starts, g.pauses)
	}
	if b.starts != 1 || b.pauses != 0 {
		t.Errorf("b starts/pauses = %d/%d, want 1/0", b.starts, b.pauses)
	}
}

func TestStack_PopOrderIsTopDown(t *testing.T) {
	var log []string
	s := NewStack(display.NewRoot())
	a, b, c := newTestMode("a"), newTestMode("b"), newTestMode("c")
	for _, m := range []*testMode{a, b, c} {
		m.log = &log
		s.Push(m)
	}
	log = nil

	s.Pop(b)

	want := []string{"pause c", "pause b"}
	if len(log) != len(want) || log[0] != want[0] || log[1] != want[1] {
		t.Errorf("log = %v, want %v", log, want)
	}
	if !equalKinds(s.Active(), "a") {
		t.Errorf("Active() = %v, want [a]", kinds(s.Active()))
	}
}

func TestStack_PopInactiveIsNoop(t *testing.T) {
	s := NewStack(display.NewRoot())
	a := newTestMode("a")
	s.Push(a)

	s.Pop(newTestMode("b"))

	if !equalKinds(s.Active(), "a") || a.pauses != 0 {
		t.Errorf("Active() = %v, pauses = %d", kinds(s.Active()), a.pauses)
	}
}

func TestStack_PopTopRemovesLayers(t *testing.T) {
	s := NewStack(display.NewRoot())
	a, b := newTestMode("a"), newTestMode("b")
	a.encoder[0][0] = action.Text("a")
	b.encoder[0][0] = action.Text("b")
	s.Push(a)
	s.Push(b)

	s.Pop(nil)

	if got := s.Encoder(); got != action.Action(action.Text("a")) {
		t.Errorf("Encoder() = %v, want a", got)
	}
	if b.pauses != 1 {
		t.Errorf("b.pauses = %d, want 1", b.pauses)
	}
}

func TestStack_DefaultRefill(t *testing.T) {
	s := NewStack(display.NewRoot())
	def := newTestMode("default")

	s.SetDefault(def)
	if !equalKinds(s.Active(), "default") || def.starts != 1 {
		t.Fatalf("SetDefault on empty stack: Active() = %v, starts = %d", kinds(s.Active()), def.starts)
	}

	other := newTestMode("other")
	s.Push(other)
	s.Pop(other)
	if !equalKinds(s.Active(), "default") {
		t.Errorf("Active() = %v, want [default]", kinds(s.Active()))
	}

	// Popping the default itself refills with a restarted default.
	s.Pop(nil)
	if !equalKinds(s.Active(), "default") {
		t.Errorf("Active() = %v, want [default]", kinds(s.Active()))
	}
	if def.starts != 2 || def.pauses != 1 {
		t.Errorf("default starts/pauses = %d/%d, want 2/1", def.starts, def.pauses)
	}
}

func TestStack_PopEmptyWithDefault(t *testing.T) {
	s := NewStack(display.NewRoot())
	def := newTestMode("default")
	s.def = def

	s.Pop(nil)

	if !equalKinds(s.Active(), "default") {
		t.Errorf("Active() = %v, want [default]", kinds(s.Active()))
	}
}

func TestStack_SetDefaultNonEmpty(t *testing.T) {
	s := NewStack(display.NewRoot())
	a := newTestMode("a")
	s.Push(a)

	def := newTestMode("default")
	s.SetDefault(def)
	if def.starts != 0 || s.Len() != 1 {
		t.Error("SetDefault on non-empty stack should not push")
	}

	s.SetDefault(nil)
	s.Pop(nil)
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0 without default", s.Len())
	}
}

func TestStack_SetModeSkipsDefault(t *testing.T) {
	s := NewStack(display.NewRoot())
	def := newTestMode("default")
	s.SetDefault(def)

	a, b := newTestMode("a"), newTestMode("b")
	s.Push(a)
	s.Push(b)

	x := newTestMode("x")
	s.SetMode(x)

	if !equalKinds(s.Active(), "x") {
		t.Errorf("Active() = %v, want [x]", kinds(s.Active()))
	}
	if a.pauses != 1 || b.pauses != 1 || def.pauses != 1 {
		t.Errorf("pauses a/b/default = %d/%d/%d, want 1/1/1", a.pauses, b.pauses, def.pauses)
	}
	if x.starts != 1 {
		t.Errorf("x.starts = %d, want 1", x.starts)
	}
	if def.starts != 1 {
		t.Errorf("default restarted during SetMode: starts = %d", def.starts)
	}
}

func TestStack_SetModeActive(t *testing.T) {
	s := NewStack(display.NewRoot())
	a, b := newTestMode("a"), newTestMode("b")
	s.Push(a)
	s.Push(b)

	s.SetMode(a)

	if !equalKinds(s.Active(), "a") {
		t.Errorf("Active() = %v, want [a]", kinds(s.Active()))
	}
	if a.starts != 2 || a.pauses != 1 {
		t.Errorf("a starts/pauses = %d/%d, want 2/1", a.starts, a.pauses)
	}
}

func TestStack_Title(t *testing.T) {
	root := display.NewRoot()
	s := NewStack(root)

	a := newTestMode("a")
	b := newTestMode("b")
	b.title = "T1"
	c := newTestMode("c")

	s.Push(a)
	if !root.IsPlaceholder() {
		t.Errorf("Title() = %q, want placeholder", root.Title())
	}
	s.Push(b)
	s.Push(c)
	if root.Title() != "T1" {
		t.Errorf("Title() = %q, want T1", root.Title())
	}

	s.Pop(b)
	if root.Title() != display.NoMode {
		t.Errorf("Title() = %q, want placeholder", root.Title())
	}
}

func TestStack_TitleTopmostWins(t *testing.T) {
	root := display.NewRoot()
	s := NewStack(root)
	a, b := newTestMode("a"), newTestMode("b")
	a.title, b.title = "A", "B"

	s.Push(a)
	s.Push(b)
	if root.Title() != "B" {
		t.Errorf("Title() = %q, want B", root.Title())
	}
	s.Pop(nil)
	if root.Title() != "A" {
		t.Errorf("Title() = %q, want A", root.Title())
	}
}

func TestStack_Groups(t *testing.T) {
	root := display.NewRoot()
	s := NewStack(root)
	a := newTestMode("a")
	a.group = lineGroup("a")
	b := newTestMode("b")

	s.Push(a)
	s.Push(b)
	if got := len(root.Groups()); got != 1 {
		t.Fatalf("len(Groups()) = %d, want 1", got)
	}

	s.Pop(a)
	if got := len(root.Groups()); got != 0 {
		t.Errorf("len(Groups()) = %d, want 0", got)
	}
}

func TestStack_ActiveIsSnapshot(t *testing.T) {
	s := NewStack(display.NewRoot())
	a, b := newTestMode("a"), newTestMode("b")
	s.Push(a)

	active := s.Active()
	s.Push(b)

	if len(active) != 1 {
		t.Errorf("snapshot changed: %v", kinds(active))
	}
}

func TestStack_OnChange(t *testing.T) {
	s := NewStack(display.NewRoot())
	var events []string
	s.OnChange(func(c Change, m Mode) {
		events = append(events, c.String()+" "+m.Name())
	})

	a := newTestMode("a")
	s.Push(a)
	s.Push(a)

	want := []string{"push a", "pop a", "push a"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestStack_SnapshotGrids(t *testing.T) {
	s := NewStack(display.NewRoot())
	a := newTestMode("a")
	a.keyup[2][0] = action.Press(hid.KeyEnter)
	s.Push(a)

	up := s.KeyUpActions()
	if up[2][0] != action.Action(action.Press(hid.KeyEnter)) {
		t.Errorf("KeyUpActions()[2][0] = %v", up[2][0])
	}
	down := s.KeyDownActions()
	if down[2][0] != nil {
		t.Errorf("KeyDownActions()[2][0] = %v, want nil", down[2][0])
	}
}

func TestContainer(t *testing.T) {
	c := NewContainer()
	first := newTestMode("a")

	if err := c.Add(first); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := c.Add(newTestMode("a")); err != nil {
		t.Fatalf("Add(same kind) error = %v", err)
	}

	got, err := c.Get("a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != Mode(first) {
		t.Error("Add(same kind) replaced the stored instance")
	}
	if !c.Contains("a") || c.Contains("b") {
		t.Error("Contains() mismatch")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	if _, err := c.Get("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(b) error = %v, want ErrNotFound", err)
	}
}

func TestContainer_DuplicateName(t *testing.T) {
	c := NewContainer()
	_ = c.Add(newTestMode("a"))

	clash := newTestMode("b")
	clash.name = "a"
	if err := c.Add(clash); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Add() error = %v, want ErrDuplicateName", err)
	}
	if c.Contains("b") {
		t.Error("clashing mode should not be stored")
	}
}

func TestContainer_Order(t *testing.T) {
	c := NewContainer()
	for _, k := range []string{"z", "a", "m"} {
		_ = c.Add(newTestMode(k))
	}

	got := c.Kinds()
	if len(got) != 3 || got[0] != "z" || got[1] != "a" || got[2] != "m" {
		t.Errorf("Kinds() = %v, want [z a m]", got)
	}
	if len(c.Modes()) != 3 {
		t.Errorf("len(Modes()) = %d", len(c.Modes()))
	}
}

func TestPosition(t *testing.T) {
	tests := []struct {
		index    int
		row, col int
	}{
		{0, 0, 0},
		{3, 0, 3},
		{5, 1, 1},
		{11, 2, 3},
	}
	for _, tt := range tests {
		row, col := Position(tt.index)
		if row != tt.row || col != tt.col {
			t.Errorf("Position(%d) = (%d, %d), want (%d, %d)", tt.index, row, col, tt.row, tt.col)
		}
		if got := Index(row, col); got != tt.index {
			t.Errorf("Index(%d, %d) = %d, want %d", row, col, got, tt.index)
		}
	}
}

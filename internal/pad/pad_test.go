package pad

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/hid"
	"github.com/dshills/onionpad/internal/idle"
	"github.com/dshills/onionpad/internal/logging"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/platform"
)

// stubMode is a mode built from plain fields.
type stubMode struct {
	mode.Base
	kind    mode.Kind
	title   string
	keydown mode.KeyGrid
	keyup   mode.KeyGrid
	encoder mode.EncoderGrid
	onTick  func()

	starts, pauses, ticks int
}

func (m *stubMode) Kind() mode.Kind           { return m.kind }
func (m *stubMode) Name() string              { return string(m.kind) }
func (m *stubMode) Title() string             { return m.title }
func (m *stubMode) KeyDown() mode.KeyGrid     { return m.keydown }
func (m *stubMode) KeyUp() mode.KeyGrid       { return m.keyup }
func (m *stubMode) Encoder() mode.EncoderGrid { return m.encoder }
func (m *stubMode) Icons() mode.IconGrid      { return mode.IconGrid{} }
func (m *stubMode) Start()                    { m.starts++ }
func (m *stubMode) Pause()                    { m.pauses++ }

func (m *stubMode) Tick() {
	m.ticks++
	if m.onTick != nil {
		m.onTick()
	}
}

func newTestPad(t *testing.T, opts ...Option) (*Pad, *platform.NullBoard) {
	t.Helper()
	board := platform.NewNullBoard()
	opts = append([]Option{WithIdleTimeout(0)}, opts...)
	return New(board.Board(), opts...), board
}

func define(p *Pad, m *stubMode) *stubMode {
	p.Define(m.kind, func(*Pad) mode.Mode { return m })
	return m
}

func TestPad_UnknownKind(t *testing.T) {
	p, _ := newTestPad(t)

	for name, err := range map[string]error{
		"push":     p.PushMode("nope"),
		"set":      p.SetMode("nope"),
		"register": p.RegisterMode("nope"),
		"default":  p.SetDefaultMode("nope"),
	} {
		if !errors.Is(err, ErrUnknownKind) {
			t.Errorf("%s error = %v, want ErrUnknownKind", name, err)
		}
	}

	// Popping an unknown kind is a no-op.
	p.PopMode("nope")
}

func TestPad_SingletonInstances(t *testing.T) {
	p, _ := newTestPad(t)
	created := 0
	p.Define("a", func(*Pad) mode.Mode {
		created++
		return &stubMode{kind: "a"}
	})

	_ = p.RegisterMode("a")
	_ = p.PushMode("a")
	_ = p.SetMode("a")
	_ = p.RegisterMode("a")

	if created != 1 {
		t.Errorf("factory called %d times, want 1", created)
	}
	if len(p.Registered()) != 1 {
		t.Errorf("len(Registered()) = %d, want 1", len(p.Registered()))
	}
}

func TestPad_FactoryKindMismatch(t *testing.T) {
	p, _ := newTestPad(t)
	p.Define("a", func(*Pad) mode.Mode { return &stubMode{kind: "b"} })

	if err := p.PushMode("a"); err == nil {
		t.Error("PushMode() should fail when the factory returns another kind")
	}
}

func TestPad_KeyEventUsesTopmostMapping(t *testing.T) {
	p, board := newTestPad(t)

	low := define(p, &stubMode{kind: "low"})
	low.keydown[1][1] = action.Text("low")
	registeredOnly := define(p, &stubMode{kind: "registered"})
	registeredOnly.keydown[1][1] = action.Text("registered")
	high := define(p, &stubMode{kind: "high"})
	high.keydown[1][1] = action.Text("high")
	high.keydown[0][0] = nil

	_ = p.RegisterMode("registered")
	_ = p.PushMode("low")
	_ = p.PushMode("high")

	board.Input.Press(5)
	p.Tick()

	calls := board.Host.Calls()
	if len(calls) != 2 || calls[0].Text != "high" || calls[1].Op != hid.OpReleaseAll {
		t.Errorf("host calls = %v, want write high + release-all", calls)
	}
}

func TestPad_KeyEventLogsOwner(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LogLevelDebug, Output: &buf})
	p, board := newTestPad(t, WithLogger(log))

	low := define(p, &stubMode{kind: "low"})
	low.keydown[0][0] = action.Text("low")
	high := define(p, &stubMode{kind: "high"})
	high.keydown[1][1] = action.Text("high")
	_ = p.PushMode("low")
	_ = p.PushMode("high")

	board.Input.Press(0)
	board.Input.Press(5)
	p.Tick()

	out := buf.String()
	for _, want := range []string{"from low", "from high"} {
		if !strings.Contains(out, want) {
			t.Errorf("log lacks %s:\n%s", want, out)
		}
	}
}

func TestPad_KeyUpAndUnmapped(t *testing.T) {
	p, board := newTestPad(t)
	m := define(p, &stubMode{kind: "m"})
	m.keyup[2][3] = action.Press(hid.KeyEnter)
	_ = p.PushMode("m")

	board.Input.Tap(11)
	board.Input.Tap(0)
	p.Tick()

	calls := board.Host.Calls()
	if len(calls) != 2 || calls[0].Key != hid.KeyEnter {
		t.Errorf("host calls = %v, want press ENTER + release-all only", calls)
	}
}

func TestPad_InvalidKeyIndexIgnored(t *testing.T) {
	p, board := newTestPad(t)
	board.Input.Press(12)
	board.Input.Press(-1)

	p.Tick()

	if len(board.Host.Calls()) != 0 {
		t.Errorf("host calls = %v, want none", board.Host.Calls())
	}
	if board.Input.Pending() != 0 {
		t.Error("events should be drained")
	}
}

func TestPad_Encoder(t *testing.T) {
	p, board := newTestPad(t)
	var got []action.Args
	m := define(p, &stubMode{kind: "m"})
	m.encoder[0][0] = action.Func("enc", func(a action.Args) { got = append(got, a) })
	_ = p.PushMode("m")

	p.Tick()
	board.Input.Turn(3)
	p.Tick()
	board.Input.Turn(-1)
	p.Tick()
	p.Tick()

	want := []action.Args{{Encoder: 3, Change: 3}, {Encoder: 2, Change: -1}}
	if len(got) != len(want) {
		t.Fatalf("encoder calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPad_RefreshCoalescing(t *testing.T) {
	p, board := newTestPad(t)
	m := define(p, &stubMode{kind: "m"})
	m.onTick = func() {
		p.ScheduleDisplayRefresh()
		p.ScheduleDisplayRefresh()
		p.SchedulePixelRefresh()
		p.SchedulePixelRefresh()
	}
	_ = p.PushMode("m")

	p.Tick()
	if board.Display.Refreshes != 1 || board.Pixels.Shows != 1 {
		t.Errorf("refreshes/shows = %d/%d, want 1/1", board.Display.Refreshes, board.Pixels.Shows)
	}

	m.onTick = nil
	p.Tick()
	if board.Display.Refreshes != 1 || board.Pixels.Shows != 1 {
		t.Errorf("idle tick flushed: refreshes/shows = %d/%d", board.Display.Refreshes, board.Pixels.Shows)
	}
}

func TestPad_FirstTickShowsRoot(t *testing.T) {
	p, board := newTestPad(t)
	if board.Display.Root() == nil {
		t.Fatal("New() should show the display tree")
	}
	p.Tick()
	if board.Display.Refreshes != 1 || board.Display.Frame[0] != display.Center(display.NoMode, 21) {
		t.Errorf("first frame = %q", board.Display.Frame)
	}
}

func TestPad_TickSnapshotAllowsStackChanges(t *testing.T) {
	p, _ := newTestPad(t)
	a := define(p, &stubMode{kind: "a"})
	b := define(p, &stubMode{kind: "b"})
	c := define(p, &stubMode{kind: "c"})

	// b replaces itself with c while ticking.
	b.onTick = func() {
		p.PopMode("b")
		_ = p.PushMode("c")
	}
	_ = p.PushMode("a")
	_ = p.PushMode("b")

	p.Tick()

	if a.ticks != 1 || b.ticks != 1 {
		t.Errorf("ticks a/b = %d/%d, want 1/1", a.ticks, b.ticks)
	}
	if c.ticks != 0 {
		t.Errorf("c ticked in the tick it was pushed: %d", c.ticks)
	}

	p.Tick()
	if c.ticks != 1 || b.ticks != 1 {
		t.Errorf("second tick: c/b = %d/%d, want 1/1", c.ticks, b.ticks)
	}
}

func TestPad_TickSkipsModesPoppedEarlierInTick(t *testing.T) {
	p, _ := newTestPad(t)
	low := define(p, &stubMode{kind: "low"})
	top := define(p, &stubMode{kind: "top"})
	top.onTick = func() { p.PopMode("low") }

	_ = p.PushMode("low")
	_ = p.PushMode("top")
	p.Tick()

	if low.ticks != 0 {
		t.Errorf("popped mode ticked %d times", low.ticks)
	}
}

func TestPad_DefaultAndSetMode(t *testing.T) {
	p, _ := newTestPad(t)
	base := define(p, &stubMode{kind: "base", title: "Base Mode"})
	define(p, &stubMode{kind: "media"})
	sel := define(p, &stubMode{kind: "selection", title: "Modes:"})

	if err := p.SetDefaultMode("base"); err != nil {
		t.Fatalf("SetDefaultMode() error = %v", err)
	}
	_ = p.PushMode("media")
	_ = p.PushMode("selection")
	if p.Title() != "Modes:" {
		t.Errorf("Title() = %q, want Modes:", p.Title())
	}

	p.PopTop()
	p.PopTop()
	if p.Title() != "Base Mode" {
		t.Errorf("Title() = %q, want Base Mode", p.Title())
	}

	// Popping the default refills it.
	p.PopMode("base")
	if !p.IsActive("base") || base.starts != 2 {
		t.Errorf("default not refilled: active = %v, starts = %d", p.IsActive("base"), base.starts)
	}

	if err := p.SetMode("selection"); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	active := p.Active()
	if len(active) != 1 || active[0].Kind() != "selection" {
		t.Errorf("Active() after SetMode = %v", active)
	}
	if base.starts != 2 || sel.starts != 2 {
		t.Errorf("starts base/selection = %d/%d, want 2/2", base.starts, sel.starts)
	}
}

func TestPad_ExecuteAction(t *testing.T) {
	p, board := newTestPad(t)
	p.ExecuteAction(action.Seq(action.Press(hid.KeyA), action.Press(hid.KeyB)))

	if got := board.Host.Count(hid.OpReleaseAll); got != 1 {
		t.Errorf("release-all count = %d, want 1", got)
	}
}

func TestPad_IdleSleepAndWake(t *testing.T) {
	clock := idle.NewManualClock(time.Unix(0, 0))
	p, board := newTestPad(t, WithClock(clock), WithIdleTimeout(30*time.Second))

	clock.Advance(31 * time.Second)
	p.Tick()
	if !board.Display.Asleep || !p.DisplayAsleep() {
		t.Fatal("display should sleep after the idle timeout")
	}

	board.Input.Tap(0)
	p.Tick()
	if board.Display.Asleep {
		t.Error("key input should wake the display")
	}

	clock.Advance(31 * time.Second)
	p.Tick()
	board.Input.Turn(1)
	p.Tick()
	if board.Display.Asleep || board.Display.Wakes != 2 {
		t.Errorf("encoder input should wake the display: asleep = %v, wakes = %d", board.Display.Asleep, board.Display.Wakes)
	}

	p.SetIdleTimeout(time.Second)
	clock.Advance(2 * time.Second)
	p.SetIdleTimeout(time.Second)
	if !board.Display.Asleep {
		t.Error("SetIdleTimeout should re-evaluate immediately")
	}
}

func TestPad_BeforeTickHooks(t *testing.T) {
	p, board := newTestPad(t)
	m := define(p, &stubMode{kind: "m"})
	m.keydown[0][0] = action.Text("x")

	var order []string
	p.BeforeTick(func() {
		order = append(order, "hook")
		_ = p.PushMode("m")
	})
	board.Input.Press(0)
	p.Tick()

	if len(order) != 1 {
		t.Fatalf("hooks ran %d times", len(order))
	}
	if board.Host.Count(hid.OpWrite) != 1 {
		t.Error("hook should run before key events are handled")
	}
	if p.Ticks() != 1 {
		t.Errorf("Ticks() = %d, want 1", p.Ticks())
	}
}

func TestPad_Run(t *testing.T) {
	p, _ := newTestPad(t, WithTickInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	p.BeforeTick(func() {
		if p.Ticks() >= 3 {
			cancel()
		}
	})

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("Run() did not stop after cancel")
	}
	if p.Ticks() < 3 {
		t.Errorf("Ticks() = %d, want >= 3", p.Ticks())
	}
}

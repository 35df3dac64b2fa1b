package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/onionpad/assets"
	"github.com/dshills/onionpad/internal/asset"
	"github.com/dshills/onionpad/internal/hid"
	"github.com/dshills/onionpad/internal/idle"
	"github.com/dshills/onionpad/internal/pad"
	"github.com/dshills/onionpad/internal/platform"
)

func TestState_Sandbox(t *testing.T) {
	s := NewState(0)
	defer s.Close()

	for _, name := range []string{"io", "os", "debug", "require", "load", "loadstring", "dofile", "loadfile", "package"} {
		v, err := s.DoString("return " + name)
		if err != nil {
			t.Fatalf("DoString(%s) error = %v", name, err)
		}
		if v != lua.LNil {
			t.Errorf("%s = %v, want nil", name, v)
		}
	}

	v, err := s.DoString(`return string.upper("a") .. math.floor(2.5) .. table.concat({"x", "y"})`)
	if err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if v.String() != "A2xy" {
		t.Errorf("DoString() = %q, want A2xy", v.String())
	}
}

func TestState_Timeout(t *testing.T) {
	s := NewState(20 * time.Millisecond)
	defer s.Close()

	if _, err := s.DoString("while true do end"); err == nil {
		t.Fatal("endless loop should time out")
	}

	// The state stays usable.
	v, err := s.DoString("return 1 + 1")
	if err != nil || v.String() != "2" {
		t.Errorf("DoString() = %v, %v after timeout", v, err)
	}
}

func TestState_Closed(t *testing.T) {
	s := NewState(0)
	s.Close()
	s.Close()

	if _, err := s.DoString("return 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() error = %v, want ErrStateClosed", err)
	}
}

type fixture struct {
	p     *pad.Pad
	board *platform.NullBoard
	clock *idle.ManualClock
	icons *asset.Registry
	dir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	icons, err := asset.Load(assets.Icons, assets.Manifest)
	if err != nil {
		t.Fatalf("asset.Load() error = %v", err)
	}
	clock := idle.NewManualClock(time.Unix(0, 0))
	board := platform.NewNullBoard()
	return &fixture{
		p:     pad.New(board.Board(), pad.WithClock(clock), pad.WithIdleTimeout(0)),
		board: board,
		clock: clock,
		icons: icons,
		dir:   t.TempDir(),
	}
}

func (f *fixture) write(t *testing.T, name, code string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

const gitScript = `
local ticks = 0
return {
  name = "Git",
  title = "Git",
  icons = { [0] = "generic.next" },
  keydown = {
    [0] = function() pad.write("git status\n") end,
    [1] = function() pad.press("CONTROL", "C") end,
    [2] = function() pad.push("script:other") end,
  },
  keyup = {
    [11] = function() pad.pop() end,
  },
  encoder = function(position, change)
    pad.write(position .. "/" .. change)
  end,
  tick = function()
    ticks = ticks + 1
    pad.pixel(0, ticks, 0, 0)
    pad.show("ticks " .. ticks)
  end,
}
`

func TestMode(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "git.lua", gitScript)

	m, err := Define(f.p, f.icons, path)
	if err != nil {
		t.Fatalf("Define() error = %v", err)
	}
	if m.Kind() != "script:git" || m.Name() != "Git" {
		t.Errorf("Kind(), Name() = %s, %s", m.Kind(), m.Name())
	}
	if err := f.p.PushMode(m.Kind()); err != nil {
		t.Fatalf("PushMode() error = %v", err)
	}
	if f.p.Title() != "Git" {
		t.Errorf("Title() = %q, want Git", f.p.Title())
	}
	if got := f.p.KeypadIcons()[0][0].Name; got != "generic.next" {
		t.Errorf("icon of key 0 = %q", got)
	}

	f.board.Input.Tap(0)
	f.board.Input.Tap(1)
	f.board.Input.Turn(2)
	f.p.Tick()

	want := []hid.Call{
		{Op: hid.OpWrite, Text: "git status\n"},
		{Op: hid.OpReleaseAll},
		{Op: hid.OpPress, Key: hid.KeyLeftControl},
		{Op: hid.OpPress, Key: hid.KeyC},
		{Op: hid.OpReleaseAll},
		{Op: hid.OpWrite, Text: "2/2"},
		{Op: hid.OpReleaseAll},
	}
	calls := f.board.Host.Calls()
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, calls[i], want[i])
		}
	}

	f.p.Tick()
	if r, _, _ := f.board.Pixels.Shown()[0].RGB(); r != 2 {
		t.Errorf("LED 0 red = %d, want 2 after two ticks", r)
	}
	if lines := m.Group().Lines(21); len(lines) != 1 || lines[0] != "ticks 2" {
		t.Errorf("group lines = %q", lines)
	}

	f.board.Input.Tap(11)
	f.p.Tick()
	if f.p.IsActive(m.Kind()) {
		t.Error("pad.pop() should pop the script mode")
	}
}

func TestMode_RuntimeErrorsAreContained(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "broken.lua", `
return {
  keydown = {
    [0] = function() pad.press("NO_SUCH_KEY") end,
    [1] = function() pad.push("nope") end,
  },
  tick = function() error("boom") end,
}
`)
	m, err := Define(f.p, f.icons, path)
	if err != nil {
		t.Fatalf("Define() error = %v", err)
	}
	if m.Name() != "broken" {
		t.Errorf("Name() = %q, want the file stem", m.Name())
	}
	_ = f.p.PushMode(m.Kind())

	f.board.Input.Tap(0)
	f.board.Input.Tap(1)
	f.p.Tick()
	f.p.Tick()

	for _, c := range f.board.Host.Calls() {
		if c.Op != hid.OpReleaseAll {
			t.Errorf("host call %v, want only releases", c)
		}
	}
	if !f.p.IsActive(m.Kind()) {
		t.Error("script errors should not deactivate the mode")
	}
}

func TestLoad_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		code string
		want string
	}{
		{"syntax", "return {", ""},
		{"not_table", "return 42", "instead of a table"},
		{"bad_key", "return { keydown = { [12] = function() end } }", "invalid key"},
		{"bad_handler", `return { keyup = { [0] = "x" } }`, "want a function"},
		{"bad_hook", "return { tick = 1 }", "tick is number"},
		{"bad_icon", `return { icons = { [0] = "missing" } }`, "icons[0]"},
		{"sandbox", `io.write("x") return {}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := f.write(t, tt.name+".lua", tt.code)
			_, err := Define(f.p, f.icons, path)
			if err == nil {
				t.Fatal("Define() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Define() error = %v, want mention of %q", err, tt.want)
			}
			if f.p.IsDefined(Kind(path)) {
				t.Error("failed script should not be defined")
			}
		})
	}
}

func TestMode_Reload(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "reload.lua", `return { name = "R", title = "One" }`)
	first, err := Define(f.p, f.icons, path)
	if err != nil {
		t.Fatalf("Define() error = %v", err)
	}

	f.write(t, "reload.lua", `return { name = "Renamed", title = "Two" }`)
	second, err := Define(f.p, f.icons, path)
	if err != nil {
		t.Fatalf("Define() error = %v", err)
	}
	if first != second {
		t.Error("reloading should keep the instance")
	}
	if first.Title() != "Two" || first.Name() != "R" {
		t.Errorf("Title(), Name() = %q, %q, want Two, R", first.Title(), first.Name())
	}

	f.write(t, "reload.lua", `return {`)
	if err := first.Reload(); err == nil {
		t.Fatal("Reload() should fail")
	}
	if first.Title() != "Two" {
		t.Errorf("Title() = %q after failed reload, want Two", first.Title())
	}
}

func TestMode_StartPauseAndTime(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "life.lua", `
return {
  start = function() pad.consumer("MUTE") end,
  pause = function() pad.click("RIGHT") end,
  tick = function()
    if pad.time() >= 1 then pad.move(1, -1) end
  end,
}
`)
	m, err := Define(f.p, f.icons, path)
	if err != nil {
		t.Fatalf("Define() error = %v", err)
	}

	_ = f.p.PushMode(m.Kind())
	if f.board.Host.Count(hid.OpSend) != 1 {
		t.Error("start hook did not run")
	}

	f.p.Tick()
	if f.board.Host.Count(hid.OpMouseMove) != 0 {
		t.Error("tick moved before one second")
	}
	f.clock.Advance(time.Second)
	f.p.Tick()
	if f.board.Host.Count(hid.OpMouseMove) != 1 {
		t.Error("tick did not move after one second")
	}

	f.p.PopMode(m.Kind())
	if f.board.Host.Count(hid.OpMousePress) != 1 || f.board.Host.Count(hid.OpMouseRelease) != 1 {
		t.Error("pause hook did not click")
	}
}

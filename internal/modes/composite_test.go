package modes

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/hid"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/pad"
)

func TestFlatten(t *testing.T) {
	var low, high mode.KeyGrid
	low[0][0] = action.Text("low")
	low[0][1] = action.Text("low")
	high[0][0] = action.Text("high")

	got := flatten[action.Action]([]mode.KeyGrid{low, high})
	if got[0][0] != action.Text("high") {
		t.Errorf("cell (0,0) = %v, want high", got[0][0])
	}
	if got[0][1] != action.Text("low") {
		t.Errorf("cell (0,1) = %v, want low", got[0][1])
	}
	if got[2][3] != nil {
		t.Errorf("cell (2,3) = %v, want nil", got[2][3])
	}
}

func TestComposite(t *testing.T) {
	f := newFixture(t)
	if err := DefineComposite(f.p, "desk", "", false, []mode.Kind{KindMedia, KindVolume, KindJiggler}); err != nil {
		t.Fatalf("DefineComposite() error = %v", err)
	}
	kind := CompositeKind("desk")
	f.mustPush(t, kind)

	if n := len(f.p.Active()); n != 1 {
		t.Errorf("len(Active()) = %d, want one stack entry", n)
	}
	if f.p.Title() != display.NoMode {
		t.Errorf("Title() = %q, want placeholder", f.p.Title())
	}

	f.board.Input.Tap(5)
	f.board.Input.Turn(1)
	f.p.Tick()
	calls := f.board.Host.Calls()
	if len(calls) != 4 || calls[0].Consumer != hid.PlayPause || calls[2].Consumer != hid.VolumeIncrement {
		t.Errorf("calls = %v, want play/pause then volume up", calls)
	}

	icons := f.p.KeypadIcons()
	if icons[1][1].Name != IconPlayPause || icons[2][0].Name != IconMute || icons[2][3].Name != IconMouse {
		t.Errorf("icons = %v", icons)
	}

	jiggler := f.get(t, KindJiggler).(*Jiggler)
	if !jiggler.Armed() {
		t.Error("Start should reach the children")
	}
	f.p.PopMode(kind)
	if jiggler.Armed() {
		t.Error("Pause should reach the children")
	}
}

func TestComposite_ChildActiveOnItsOwn(t *testing.T) {
	f := newFixture(t)
	if err := DefineComposite(f.p, "desk", "", false, []mode.Kind{KindMedia, KindJiggler}); err != nil {
		t.Fatalf("DefineComposite() error = %v", err)
	}
	kind := CompositeKind("desk")
	jiggler := f.get(t, KindJiggler).(*Jiggler)

	f.mustPush(t, KindJiggler, kind)
	if got := activeKinds(f.p); len(got) != 1 || got[0] != kind {
		t.Errorf("active = %v, want only the composite", got)
	}
	if !jiggler.Armed() {
		t.Error("jiggler should be armed inside the composite")
	}

	f.p.PopMode(kind)
	if f.p.IsActive(KindJiggler) || jiggler.Armed() {
		t.Errorf("active = %v, armed = %v after popping the composite", activeKinds(f.p), jiggler.Armed())
	}

	f.mustPush(t, kind, KindJiggler)
	if got := activeKinds(f.p); len(got) != 1 || got[0] != KindJiggler {
		t.Errorf("active = %v, want only the jiggler", got)
	}
	f.clock.Advance(time.Minute)
	f.p.Tick()
	if !jiggler.Armed() || jiggler.Moves() != 1 {
		t.Errorf("armed = %v, moves = %d, want an armed jiggler that moved once", jiggler.Armed(), jiggler.Moves())
	}
}

func TestComposite_Title(t *testing.T) {
	f := newFixture(t)
	_ = DefineComposite(f.p, "titled", "Desk", false, []mode.Kind{KindMedia})
	_ = DefineComposite(f.p, "inherit", "", true, []mode.Kind{KindBase, KindMedia})

	f.mustPush(t, CompositeKind("titled"))
	if f.p.Title() != "Desk" {
		t.Errorf("Title() = %q, want Desk", f.p.Title())
	}

	if err := f.p.SetMode(CompositeKind("inherit")); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	if f.p.Title() != "Base Mode" {
		t.Errorf("Title() = %q, want Base Mode", f.p.Title())
	}
	if !f.get(t, CompositeKind("inherit")).Hidden() {
		t.Error("Hidden() = false, want true")
	}
}

func TestComposite_Group(t *testing.T) {
	f := newFixture(t)
	_ = DefineComposite(f.p, "plain", "", false, []mode.Kind{KindMedia})
	_ = DefineComposite(f.p, "shown", "", false, []mode.Kind{KindMedia, KindHotkeys})

	if g := f.get(t, CompositeKind("plain")).Group(); g != nil {
		t.Errorf("Group() = %v, want nil without child content", g)
	}

	f.mustPush(t, CompositeKind("shown"))
	f.p.Tick()
	lines := f.get(t, CompositeKind("shown")).Group().Lines(21)
	if len(lines) == 0 {
		t.Error("composite group rendered nothing")
	}
}

func TestDefineComposite_Errors(t *testing.T) {
	f := newFixture(t)

	err := DefineComposite(f.p, "bad", "", false, []mode.Kind{KindMedia, "nope"})
	if !errors.Is(err, pad.ErrUnknownKind) {
		t.Errorf("DefineComposite() error = %v, want ErrUnknownKind", err)
	}
	if f.p.IsDefined(CompositeKind("bad")) {
		t.Error("failed composite should not be defined")
	}

	if err := DefineComposite(f.p, "self", "", false, []mode.Kind{CompositeKind("self")}); err == nil {
		t.Error("DefineComposite() should reject a composite containing itself")
	}
	if err := DefineComposite(f.p, "twice", "", false, []mode.Kind{KindMedia, KindMedia}); err == nil {
		t.Error("DefineComposite() should reject a kind listed twice")
	}

	_ = DefineComposite(f.p, "inner", "", false, []mode.Kind{KindMedia})
	if err := DefineComposite(f.p, "outer", "", false, []mode.Kind{KindMedia, CompositeKind("inner"), KindVolume}); err != nil {
		t.Fatalf("DefineComposite(outer) error = %v", err)
	}
	outer := f.get(t, CompositeKind("outer")).(*Composite)
	if n := len(outer.Children()); n != 2 {
		t.Errorf("len(Children()) = %d, want the nested duplicate left out", n)
	}
	if got := outer.Members(); len(got) != 2 || got[0] != KindMedia || got[1] != KindVolume {
		t.Errorf("Members() = %v, want [media volume]", got)
	}
}

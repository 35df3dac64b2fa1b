package script

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/asset"
	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/logging"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/pad"
)

// Kind returns the mode kind of the script at path.
func Kind(path string) mode.Kind {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return mode.Kind("script:" + stem)
}

// Mode is a mode whose behavior is defined by a Lua script.
//
// A script returns a table:
//
//	return {
//	  name = "Git",                -- layer key and selection entry
//	  title = "Git",               -- optional title bar text
//	  hidden = false,              -- leave out of the mode selection
//	  icons = { [0] = "generic.next" },
//	  keydown = { [0] = function() pad.write("git status\n") end },
//	  keyup = {},
//	  encoder = function(position, change) end,
//	  start = function() end,
//	  pause = function() end,
//	  tick = function() end,
//	}
//
// Key indices run from 0 to 11. Errors raised by the script are logged and
// never stop the pad.
type Mode struct {
	pad     *pad.Pad
	icons   *asset.Registry
	log     *logging.Logger
	path    string
	timeout time.Duration

	state    *State
	compiled *compiled
	text     *textGroup
	started  time.Time

	// pending holds host output of the running script call.
	pending []action.Action
	depth   int
}

// compiled is everything built from one run of the script.
type compiled struct {
	name    string
	title   string
	hidden  bool
	keydown mode.KeyGrid
	keyup   mode.KeyGrid
	encoder mode.EncoderGrid
	icons   mode.IconGrid

	start, pause, tick *lua.LFunction
}

// Option configures a script mode.
type Option func(*Mode)

// WithTimeout sets the limit for a single call into the script.
func WithTimeout(d time.Duration) Option {
	return func(m *Mode) {
		m.timeout = d
	}
}

// Load runs the script at path and creates its mode.
func Load(p *pad.Pad, icons *asset.Registry, path string, opts ...Option) (*Mode, error) {
	m := &Mode{
		pad:     p,
		icons:   icons,
		path:    path,
		timeout: DefaultCallTimeout,
		text:    &textGroup{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = p.Logger().WithComponent("script").WithField("script", path)

	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Define loads the script at path and defines its kind on p. If the kind
// already has an instance, that instance is reloaded instead.
func Define(p *pad.Pad, icons *asset.Registry, path string, opts ...Option) (*Mode, error) {
	kind := Kind(path)
	if p.IsDefined(kind) {
		if existing, err := p.Mode(kind); err == nil {
			if m, ok := existing.(*Mode); ok {
				return m, m.Reload()
			}
		}
	}

	m, err := Load(p, icons, path, opts...)
	if err != nil {
		return nil, err
	}
	p.Define(kind, func(*pad.Pad) mode.Mode { return m })
	return m, nil
}

// Reload runs the script again in a fresh interpreter. On error the mode
// keeps its previous behavior. The name of a loaded mode cannot change.
// New mappings take effect the next time the mode is pushed.
func (m *Mode) Reload() error {
	st := NewState(m.timeout)
	st.SetModule(ModuleName, padModule(m))

	ret, err := st.DoFile(m.path)
	if err != nil {
		st.Close()
		return fmt.Errorf("load %s: %w", m.path, err)
	}
	c, err := m.compile(st, ret)
	if err != nil {
		st.Close()
		return fmt.Errorf("load %s: %w", m.path, err)
	}

	if m.compiled != nil && c.name != m.compiled.name {
		m.log.Warn("name changed from %q to %q, keeping the old one", m.compiled.name, c.name)
		c.name = m.compiled.name
	}
	if m.state != nil {
		m.state.Close()
	}
	m.state = st
	m.compiled = c
	m.log.Debug("loaded %s", c.name)
	return nil
}

// Path returns the script file.
func (m *Mode) Path() string {
	return m.path
}

func (m *Mode) Kind() mode.Kind           { return Kind(m.path) }
func (m *Mode) Name() string              { return m.compiled.name }
func (m *Mode) Hidden() bool              { return m.compiled.hidden }
func (m *Mode) Title() string             { return m.compiled.title }
func (m *Mode) Group() display.Group      { return m.text }
func (m *Mode) KeyDown() mode.KeyGrid     { return m.compiled.keydown }
func (m *Mode) KeyUp() mode.KeyGrid       { return m.compiled.keyup }
func (m *Mode) Encoder() mode.EncoderGrid { return m.compiled.encoder }
func (m *Mode) Icons() mode.IconGrid      { return m.compiled.icons }

func (m *Mode) Start() {
	m.started = m.pad.Clock().Now()
	m.call(m.state, "start", m.compiled.start)
}

func (m *Mode) Pause() {
	m.call(m.state, "pause", m.compiled.pause)
}

func (m *Mode) Tick() {
	m.call(m.state, "tick", m.compiled.tick)
}

// call runs fn and then the host output it produced. Errors are logged.
func (m *Mode) call(st *State, what string, fn *lua.LFunction, args ...lua.LValue) {
	if fn == nil {
		return
	}

	m.depth++
	err := st.Call(fn, args...)
	m.depth--
	if err != nil {
		m.log.Warn("%s: %v", what, err)
	}

	if m.depth == 0 && len(m.pending) > 0 {
		out := m.pending
		m.pending = nil
		m.pad.ExecuteAction(action.Seq(out...))
	}
}

// emit queues host output of the running call.
func (m *Mode) emit(a action.Action) {
	m.pending = append(m.pending, a)
}

func (m *Mode) compile(st *State, ret lua.LValue) (*compiled, error) {
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: returned %s instead of a table", ErrInvalidScript, ret.Type())
	}

	c := &compiled{
		name:   strings.TrimPrefix(string(Kind(m.path)), "script:"),
		hidden: lua.LVAsBool(tbl.RawGetString("hidden")),
	}
	if s, ok := tbl.RawGetString("name").(lua.LString); ok && s != "" {
		c.name = string(s)
	}
	if s, ok := tbl.RawGetString("title").(lua.LString); ok {
		c.title = string(s)
	}

	var errs []error
	var err error
	if c.start, err = optFunction(tbl, "start"); err != nil {
		errs = append(errs, err)
	}
	if c.pause, err = optFunction(tbl, "pause"); err != nil {
		errs = append(errs, err)
	}
	if c.tick, err = optFunction(tbl, "tick"); err != nil {
		errs = append(errs, err)
	}

	encoder, err := optFunction(tbl, "encoder")
	if err != nil {
		errs = append(errs, err)
	}
	if encoder != nil {
		c.encoder[0][0] = action.Func(c.name+":encoder", func(args action.Args) {
			m.call(st, "encoder", encoder, lua.LNumber(args.Encoder), lua.LNumber(args.Change))
		})
	}

	for _, field := range []struct {
		name string
		grid *mode.KeyGrid
	}{
		{"keydown", &c.keydown},
		{"keyup", &c.keyup},
	} {
		err := forEachKey(tbl, field.name, func(index int, v lua.LValue) error {
			fn, ok := v.(*lua.LFunction)
			if !ok {
				return fmt.Errorf("%s[%d] is %s, want a function", field.name, index, v.Type())
			}
			row, col := mode.Position(index)
			what := fmt.Sprintf("%s[%d]", field.name, index)
			field.grid[row][col] = action.Do(c.name+":"+what, func() {
				m.call(st, what, fn)
			})
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	err = forEachKey(tbl, "icons", func(index int, v lua.LValue) error {
		name, ok := v.(lua.LString)
		if !ok {
			return fmt.Errorf("icons[%d] is %s, want a string", index, v.Type())
		}
		if m.icons == nil {
			return fmt.Errorf("icons[%d]: %w: %s", index, asset.ErrNotFound, name)
		}
		icon, err := m.icons.Lookup(string(name))
		if err != nil {
			return fmt.Errorf("icons[%d]: %w", index, err)
		}
		row, col := mode.Position(index)
		c.icons[row][col] = icon
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, errors.Join(errs...))
	}
	return c, nil
}

func optFunction(tbl *lua.LTable, field string) (*lua.LFunction, error) {
	switch v := tbl.RawGetString(field).(type) {
	case *lua.LNilType:
		return nil, nil
	case *lua.LFunction:
		return v, nil
	default:
		return nil, fmt.Errorf("%s is %s, want a function", field, v.Type())
	}
}

// forEachKey calls fn for every entry of the key-indexed table field.
func forEachKey(tbl *lua.LTable, field string, fn func(index int, v lua.LValue) error) error {
	v := tbl.RawGetString(field)
	if v == lua.LNil {
		return nil
	}
	keys, ok := v.(*lua.LTable)
	if !ok {
		return fmt.Errorf("%s is %s, want a table", field, v.Type())
	}

	var errs []error
	keys.ForEach(func(k, v lua.LValue) {
		n, ok := k.(lua.LNumber)
		index := int(n)
		if !ok || lua.LNumber(index) != n || index < 0 || index >= mode.Keys {
			errs = append(errs, fmt.Errorf("%s: invalid key %s", field, k.String()))
			return
		}
		if err := fn(index, v); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// textGroup shows the lines set by pad.show.
type textGroup struct {
	lines []string
}

func (g *textGroup) set(lines []string) {
	g.lines = lines
}

func (g *textGroup) Lines(width int) []string {
	out := make([]string, len(g.lines))
	for i, line := range g.lines {
		out[i] = display.Truncate(line, width)
	}
	return out
}

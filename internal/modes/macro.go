package modes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/asset"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/pad"
)

// MacroKey binds actions to one key of a macro mode.
type MacroKey struct {
	Index int
	Down  []string
	Up    []string
	Icon  string
}

// MacroDef describes a declarative mode. Actions are written in the text
// form accepted by action.Parse, plus the mode controls
//
//	mode:push:<kind>   activate a mode
//	mode:set:<kind>    make a mode the only active one
//	mode:pop           deactivate the macro mode itself
type MacroDef struct {
	Name       string
	Title      string
	Hidden     bool
	Keys       []MacroKey
	EncoderCW  []string
	EncoderCCW []string
}

// MacroKind returns the kind of the macro mode called name.
func MacroKind(name string) mode.Kind {
	return mode.Kind("macro:" + name)
}

// Macro is a mode built from a MacroDef. Its mappings can be replaced
// while the pad runs.
type Macro struct {
	mode.Base

	pad  *pad.Pad
	name string
	def  MacroDef

	keydown mode.KeyGrid
	keyup   mode.KeyGrid
	encoder mode.EncoderGrid
	icons   mode.IconGrid
}

// CompileMacro checks def and creates its mode. Every invalid action and
// icon is reported.
func CompileMacro(p *pad.Pad, icons *asset.Registry, def MacroDef) (*Macro, error) {
	m := &Macro{pad: p, name: def.Name}
	if err := m.Update(icons, def); err != nil {
		return nil, err
	}
	return m, nil
}

// DefineMacro compiles def and defines its kind on p. Defining a name that
// already has an instance updates that instance in place.
func DefineMacro(p *pad.Pad, icons *asset.Registry, def MacroDef) (*Macro, error) {
	kind := MacroKind(def.Name)
	if p.IsDefined(kind) {
		if existing, err := p.Mode(kind); err == nil {
			if m, ok := existing.(*Macro); ok {
				if err := m.Update(icons, def); err != nil {
					return nil, err
				}
				return m, nil
			}
		}
	}

	m, err := CompileMacro(p, icons, def)
	if err != nil {
		return nil, err
	}
	p.Define(kind, func(*pad.Pad) mode.Mode { return m })
	return m, nil
}

// Update replaces the mappings of the mode. On error the mode is left
// unchanged. Changes take effect the next time the mode is pushed.
func (m *Macro) Update(icons *asset.Registry, def MacroDef) error {
	if def.Name == "" {
		return errors.New("macro without name")
	}
	if m.name != "" && def.Name != m.name {
		return fmt.Errorf("macro %s cannot be renamed to %s", m.name, def.Name)
	}

	var (
		errs    []error
		keydown mode.KeyGrid
		keyup   mode.KeyGrid
		grid    mode.IconGrid
	)
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("macro %s: "+format, append([]any{def.Name}, args...)...))
	}

	seen := make(map[int]bool)
	for _, key := range def.Keys {
		if key.Index < 0 || key.Index >= mode.Keys {
			fail("key %d out of range", key.Index)
			continue
		}
		if seen[key.Index] {
			fail("key %d mapped twice", key.Index)
			continue
		}
		seen[key.Index] = true

		row, col := mode.Position(key.Index)
		var err error
		if keydown[row][col], err = m.compile(key.Down); err != nil {
			fail("key %d down: %w", key.Index, err)
		}
		if keyup[row][col], err = m.compile(key.Up); err != nil {
			fail("key %d up: %w", key.Index, err)
		}
		if key.Icon != "" {
			if icons == nil {
				fail("key %d: %w: %s", key.Index, asset.ErrNotFound, key.Icon)
			} else if grid[row][col], err = icons.Lookup(key.Icon); err != nil {
				fail("key %d: %w", key.Index, err)
			}
		}
	}

	cw, err := m.compile(def.EncoderCW)
	if err != nil {
		fail("encoder_cw: %w", err)
	}
	ccw, err := m.compile(def.EncoderCCW)
	if err != nil {
		fail("encoder_ccw: %w", err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	m.def = def
	m.keydown = keydown
	m.keyup = keyup
	m.icons = grid
	m.encoder = mode.EncoderGrid{}
	if cw != nil || ccw != nil {
		m.encoder[0][0] = action.Func("macro-encoder", func(args action.Args) {
			a, n := cw, args.Change
			if n < 0 {
				a, n = ccw, -n
			}
			for range n {
				m.pad.ExecuteAction(a)
			}
		})
	}
	return nil
}

func (m *Macro) Kind() mode.Kind           { return MacroKind(m.name) }
func (m *Macro) Name() string              { return m.name }
func (m *Macro) Hidden() bool              { return m.def.Hidden }
func (m *Macro) Title() string             { return m.def.Title }
func (m *Macro) KeyDown() mode.KeyGrid     { return m.keydown }
func (m *Macro) KeyUp() mode.KeyGrid       { return m.keyup }
func (m *Macro) Encoder() mode.EncoderGrid { return m.encoder }
func (m *Macro) Icons() mode.IconGrid      { return m.icons }

// Def returns the definition the mode was last updated with.
func (m *Macro) Def() MacroDef {
	return m.def
}

func (m *Macro) compile(specs []string) (action.Action, error) {
	return action.ParseAllWith(specs, m.resolve)
}

// resolve handles the mode control specs.
func (m *Macro) resolve(kind, arg string) (action.Action, bool, error) {
	if kind != "mode" {
		return nil, false, nil
	}
	op, target, _ := strings.Cut(arg, ":")
	target = strings.TrimSpace(target)

	switch strings.ToLower(strings.TrimSpace(op)) {
	case "push":
		if target == "" {
			return nil, true, errors.New("mode:push needs a kind")
		}
		return action.Do("push:"+target, func() {
			if err := m.pad.PushMode(mode.Kind(target)); err != nil {
				m.pad.Logger().Warn("macro %s: %v", m.name, err)
			}
		}), true, nil
	case "set":
		if target == "" {
			return nil, true, errors.New("mode:set needs a kind")
		}
		return action.Do("set:"+target, func() {
			if err := m.pad.SetMode(mode.Kind(target)); err != nil {
				m.pad.Logger().Warn("macro %s: %v", m.name, err)
			}
		}), true, nil
	case "pop":
		return action.Do("pop", func() {
			m.pad.PopMode(m.Kind())
		}), true, nil
	default:
		return nil, true, fmt.Errorf("unknown mode operation %q", op)
	}
}

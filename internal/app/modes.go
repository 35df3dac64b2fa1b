package app

import (
	"errors"

	"github.com/dshills/onionpad/internal/config"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/modes"
	"github.com/dshills/onionpad/internal/script"
)

// defineModes defines the built-in kinds, the configured macros, the
// scripts and finally the composites, which may group any of them.
func (app *Application) defineModes() error {
	modes.DefineAll(app.pad, modeOptions(app.cfg, app.icons))

	var errs []error
	for _, m := range app.cfg.Macros {
		if _, err := modes.DefineMacro(app.pad, app.icons, macroDef(m)); err != nil {
			errs = append(errs, NewOperationError("define macro", m.Name, err))
		}
	}

	if _, err := app.defineScripts(app.cfg); err != nil {
		if app.opts.Strict {
			errs = append(errs, err)
		} else {
			app.log.Error("%v", err)
		}
	}

	for _, c := range app.cfg.Composites {
		kinds := make([]mode.Kind, len(c.Modes))
		for i, k := range c.Modes {
			kinds[i] = mode.Kind(k)
		}
		if err := modes.DefineComposite(app.pad, c.Name, c.Title, c.Hidden, kinds); err != nil {
			errs = append(errs, NewOperationError("define composite", c.Name, err))
		}
	}
	return errors.Join(errs...)
}

// defineScripts loads or reloads every script of cfg and returns the kinds
// that were loaded.
func (app *Application) defineScripts(cfg *config.Config) ([]mode.Kind, error) {
	paths, err := cfg.ScriptPaths()
	if err != nil {
		return nil, NewOperationError("find scripts", "", err)
	}

	var kinds []mode.Kind
	var errs []error
	for _, path := range paths {
		kind := script.Kind(path)
		if other, ok := app.scriptOwner(kind); ok && other != path {
			errs = append(errs, NewOperationError("load script", path, errors.New("same kind as "+other)))
			continue
		}
		if _, err := script.Define(app.pad, app.icons, path); err != nil {
			errs = append(errs, NewOperationError("load script", path, err))
			continue
		}
		app.scripts[path] = kind
		kinds = append(kinds, kind)
	}
	return kinds, errors.Join(errs...)
}

// scriptOwner returns the file that defined kind.
func (app *Application) scriptOwner(kind mode.Kind) (string, bool) {
	for path, k := range app.scripts {
		if k == kind {
			return path, true
		}
	}
	return "", false
}

// macroDef converts a configured macro.
func macroDef(m config.Macro) modes.MacroDef {
	def := modes.MacroDef{
		Name:       m.Name,
		Title:      m.Title,
		Hidden:     m.Hidden,
		EncoderCW:  m.EncoderCW,
		EncoderCCW: m.EncoderCCW,
	}
	for _, k := range m.Keys {
		def.Keys = append(def.Keys, modes.MacroKey{
			Index: k.Key,
			Down:  k.Down,
			Up:    k.Up,
			Icon:  k.Icon,
		})
	}
	return def
}

package app

import (
	"errors"

	"github.com/dshills/onionpad/internal/config"
	"github.com/dshills/onionpad/internal/logging"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/modes"
)

// initWatcher watches the configuration file and the script globs and
// reloads before the next tick when one of them changes.
func (app *Application) initWatcher() error {
	w, err := config.NewWatcher(config.DefaultDebounce, app.log)
	if err != nil {
		return err
	}
	app.watcher = w
	if err := w.Watch(app.cfg.Path); err != nil {
		return err
	}
	app.watchScripts(app.cfg)

	app.pad.BeforeTick(func() {
		if app.watcher != nil && app.watcher.Changed() {
			if err := app.Reload(); err != nil {
				app.log.Error("reload: %v", err)
			}
		}
	})
	return nil
}

// watchScripts adds the script globs of cfg. Globs whose directory does not
// exist are skipped.
func (app *Application) watchScripts(cfg *config.Config) {
	for _, pattern := range cfg.ScriptPatterns() {
		if err := app.watcher.WatchGlob(pattern); err != nil {
			app.log.Warn("not watching scripts %s: %v", pattern, err)
		}
	}
}

// Reload reads the configuration file again and applies the parts that can
// change at runtime: idle timeout, log level, macros and scripts. Reloaded
// modes keep their instance; active ones are pushed again so their new
// mappings take effect. An invalid configuration is rejected as a whole.
func (app *Application) Reload() error {
	cfg, err := app.loadConfig()
	if err != nil {
		return err
	}
	app.log.Info("reloading %s", cfg.Path)

	app.pad.SetIdleTimeout(cfg.Display.IdleTimeout.Std())
	app.log.SetLevel(logging.ParseLogLevel(cfg.Log.Level))

	var errs []error
	var reloaded []mode.Kind
	for _, m := range cfg.Macros {
		macro, err := modes.DefineMacro(app.pad, app.icons, macroDef(m))
		if err != nil {
			errs = append(errs, NewOperationError("reload macro", m.Name, err))
			continue
		}
		reloaded = append(reloaded, macro.Kind())
	}

	kinds, err := app.defineScripts(cfg)
	reloaded = append(reloaded, kinds...)
	if err != nil {
		errs = append(errs, err)
	}

	if app.watcher != nil {
		app.watchScripts(cfg)
	}
	app.cfg = cfg
	app.restart(reloaded)
	return errors.Join(errs...)
}

// restart pushes the active modes again from the lowest reloaded one
// upwards, keeping their order.
func (app *Application) restart(reloaded []mode.Kind) {
	changed := make(map[mode.Kind]bool, len(reloaded))
	for _, k := range reloaded {
		changed[k] = true
	}

	active := app.pad.Active()
	lowest := -1
	for i, m := range active {
		if changed[m.Kind()] {
			lowest = i
		}
	}
	if lowest < 0 {
		return
	}

	for i := lowest; i >= 0; i-- {
		kind := active[i].Kind()
		if err := app.pad.PushMode(kind); err != nil {
			app.log.Error("restart %s: %v", kind, err)
		}
	}
}

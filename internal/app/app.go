// Package app wires the macropad together. It loads the configuration,
// sets up logging and icons, defines every mode on a pad and keeps
// macros and scripts in sync with their files while the pad runs.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/onionpad/assets"
	"github.com/dshills/onionpad/internal/asset"
	"github.com/dshills/onionpad/internal/config"
	"github.com/dshills/onionpad/internal/idle"
	"github.com/dshills/onionpad/internal/logging"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/modes"
	"github.com/dshills/onionpad/internal/pad"
	"github.com/dshills/onionpad/internal/platform"
)

// DefaultLogFile is the log file used when none is configured.
var DefaultLogFile = filepath.Join(os.TempDir(), "onionpad.log")

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses the
	// built-in defaults.
	ConfigPath string

	// IconsDir overrides assets.icons from the configuration.
	IconsDir string

	// LogLevel overrides log.level from the configuration.
	LogLevel string

	// LogFile overrides log.file from the configuration.
	LogFile string

	// LogOutput receives the log instead of a file, if set.
	LogOutput io.Writer

	// Board is the hardware. Required.
	Board *platform.Board

	// Clock replaces the system clock.
	Clock idle.Clock

	// Watch reloads macros and scripts when their files change.
	Watch bool

	// Strict makes script errors fatal. By default a broken script is
	// logged and left out.
	Strict bool
}

// Application is a configured macropad.
type Application struct {
	opts    Options
	cfg     *config.Config
	log     *logging.Logger
	logFile io.Closer
	session string
	icons   *asset.Registry
	pad     *pad.Pad
	watcher *config.Watcher

	// scripts maps script files to their kinds.
	scripts map[string]mode.Kind

	running atomic.Bool
}

// New creates an application and boots its mode stack.
func New(opts Options) (*Application, error) {
	if opts.Board == nil {
		return nil, &InitError{Component: "board", Err: ErrNoBoard}
	}
	app := &Application{
		opts:    opts,
		session: uuid.NewString(),
		scripts: make(map[string]mode.Kind),
	}
	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Configuration
	cfg, err := app.loadConfig()
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.cfg = cfg

	// 2. Logging
	if err := app.initLogging(); err != nil {
		return &InitError{Component: "logging", Err: err}
	}

	// 3. Icons
	if app.icons, err = loadIcons(cfg); err != nil {
		return &InitError{Component: "assets", Err: err}
	}

	// 4. Pad
	padOpts := []pad.Option{
		pad.WithLogger(app.log),
		pad.WithIdleTimeout(cfg.Display.IdleTimeout.Std()),
		pad.WithTickInterval(cfg.Pad.TickInterval.Std()),
	}
	if app.opts.Clock != nil {
		padOpts = append(padOpts, pad.WithClock(app.opts.Clock))
	}
	app.pad = pad.New(*app.opts.Board, padOpts...)

	// 5. Modes
	if err := app.defineModes(); err != nil {
		return &InitError{Component: "modes", Err: err}
	}
	if err := app.setupStack(); err != nil {
		return &InitError{Component: "stack", Err: err}
	}

	// 6. Hot reload
	if app.opts.Watch && cfg.Path != "" {
		if err := app.initWatcher(); err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
	}

	app.log.Info("ready: config %q, %d modes defined", cfg.Path, len(app.pad.Defined()))
	return nil
}

// loadConfig reads the configuration and applies the command line.
func (app *Application) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(app.opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	app.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (app *Application) applyOverrides(cfg *config.Config) {
	if app.opts.IconsDir != "" {
		cfg.Assets.Icons = app.opts.IconsDir
	}
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
	}
	if app.opts.LogFile != "" {
		cfg.Log.File = app.opts.LogFile
	}
}

func (app *Application) initLogging() error {
	out := app.opts.LogOutput
	if out == nil {
		path := app.cfg.Resolve(app.cfg.Log.File)
		if path == "" {
			path = DefaultLogFile
		}
		f, err := logging.OpenFile(path)
		if err != nil {
			return err
		}
		app.logFile = f
		out = f
	}

	app.log = logging.New(logging.Config{
		Level:  logging.ParseLogLevel(app.cfg.Log.Level),
		Output: out,
	}).WithField("session", app.session)
	return nil
}

// loadIcons reads the icon manifest from the configured directory, or the
// embedded icons.
func loadIcons(cfg *config.Config) (*asset.Registry, error) {
	if cfg.Assets.Icons == "" {
		return asset.Load(assets.Icons, assets.Manifest)
	}
	dir := cfg.Resolve(cfg.Assets.Icons)
	return asset.Load(os.DirFS(dir), asset.ManifestFile)
}

// modeOptions converts the configuration of the built-in modes.
func modeOptions(cfg *config.Config, icons *asset.Registry) modes.Options {
	opts := modes.DefaultOptions()
	opts.Icons = icons
	opts.AmbientValue = cfg.Ambient.Value
	opts.PreSelectionDuration = cfg.PreSelection.Duration.Std()
	opts.JiggleInterval = cfg.Jiggler.Interval.Std()
	opts.JiggleDistance = cfg.Jiggler.Distance
	return opts
}

// setupStack registers the selectable modes, sets the default mode and
// pushes the start modes.
func (app *Application) setupStack() error {
	for _, kind := range app.cfg.Pad.Modes {
		if err := app.pad.RegisterMode(mode.Kind(kind)); err != nil {
			return fmt.Errorf("pad.modes: %w", err)
		}
	}
	if err := app.pad.SetDefaultMode(mode.Kind(app.cfg.Pad.DefaultMode)); err != nil {
		return fmt.Errorf("pad.default_mode: %w", err)
	}
	for _, kind := range app.cfg.Pad.Start {
		if err := app.pad.PushMode(mode.Kind(kind)); err != nil {
			return fmt.Errorf("pad.start: %w", err)
		}
	}
	return nil
}

// Run ticks the pad until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.log.Info("session %s started", app.session)
	return app.pad.Run(ctx)
}

// Close releases the watcher and the log file. It is safe to call more
// than once.
func (app *Application) Close() error {
	var firstErr error
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			firstErr = err
		}
		app.watcher = nil
	}
	if app.logFile != nil {
		if err := app.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		app.logFile = nil
	}
	return firstErr
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Pad returns the pad.
func (app *Application) Pad() *pad.Pad {
	return app.pad
}

// Config returns the configuration in effect.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Icons returns the icon registry.
func (app *Application) Icons() *asset.Registry {
	return app.icons
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.log
}

// Session returns the identifier of this run, included in every log line.
func (app *Application) Session() string {
	return app.session
}

// ModeInfo describes a defined mode kind.
type ModeInfo struct {
	Kind       mode.Kind
	Name       string
	Registered bool
	Hidden     bool
	Active     bool
	Default    bool
}

// Modes describes every defined kind, sorted by kind.
func (app *Application) Modes() []ModeInfo {
	registered := make(map[mode.Kind]bool)
	for _, m := range app.pad.Registered() {
		registered[m.Kind()] = true
	}

	var out []ModeInfo
	for _, kind := range app.pad.Defined() {
		m, err := app.pad.Mode(kind)
		if err != nil {
			app.log.Warn("mode %s: %v", kind, err)
			continue
		}
		out = append(out, ModeInfo{
			Kind:       kind,
			Name:       m.Name(),
			Registered: registered[kind],
			Hidden:     m.Hidden(),
			Active:     app.pad.IsActive(kind),
			Default:    app.pad.DefaultMode() == kind,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

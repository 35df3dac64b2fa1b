// Package config loads the macropad configuration.
//
// Configuration is read from a TOML file, decoded over the built-in
// defaults, and then overridden by ONIONPAD_ environment variables.
// Command line flags are applied last by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the complete macropad configuration.
type Config struct {
	Pad          Pad          `toml:"pad"`
	Display      Display      `toml:"display"`
	Log          Log          `toml:"log"`
	Ambient      Ambient      `toml:"ambient"`
	Jiggler      Jiggler      `toml:"jiggler"`
	PreSelection PreSelection `toml:"preselection"`
	Assets       Assets       `toml:"assets"`

	// Scripts are glob patterns of Lua mode files, relative to the
	// directory of the configuration file.
	Scripts []string `toml:"scripts"`

	Macros     []Macro     `toml:"macro"`
	Composites []Composite `toml:"composite"`

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-"`
}

// Pad configures the mode stack and the tick loop.
type Pad struct {
	// DefaultMode is the kind pushed whenever the stack empties.
	DefaultMode string `toml:"default_mode"`
	// Modes are the kinds offered by the mode selection.
	Modes []string `toml:"modes"`
	// Start are the kinds pushed on top of the default mode at boot.
	Start        []string `toml:"start"`
	TickInterval Duration `toml:"tick_interval"`
}

// Display configures the screen.
type Display struct {
	// IdleTimeout puts the display to sleep after this long without
	// input. Zero keeps it awake.
	IdleTimeout Duration `toml:"idle_timeout"`
	Brightness  float64  `toml:"brightness"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Ambient configures the ambient light mode.
type Ambient struct {
	Value float64 `toml:"value"`
}

// Jiggler configures the mouse jiggler mode.
type Jiggler struct {
	Interval Duration `toml:"interval"`
	Distance int      `toml:"distance"`
}

// PreSelection configures the hold-to-select animation.
type PreSelection struct {
	Duration Duration `toml:"duration"`
}

// Assets configures where icons come from.
type Assets struct {
	// Icons is a directory holding an icons.yaml manifest. Empty selects
	// the embedded icons.
	Icons string `toml:"icons"`
}

// Macro is a declarative mode.
type Macro struct {
	Name       string     `toml:"name"`
	Title      string     `toml:"title"`
	Hidden     bool       `toml:"hidden"`
	Keys       []MacroKey `toml:"keys"`
	EncoderCW  []string   `toml:"encoder_cw"`
	EncoderCCW []string   `toml:"encoder_ccw"`
}

// MacroKey maps one key of a macro mode.
type MacroKey struct {
	Key  int      `toml:"key"`
	Down []string `toml:"down"`
	Up   []string `toml:"up"`
	Icon string   `toml:"icon"`
}

// Composite groups several modes into one stack entry.
type Composite struct {
	Name   string   `toml:"name"`
	Title  string   `toml:"title"`
	Hidden bool     `toml:"hidden"`
	Modes  []string `toml:"modes"`
}

// Duration is a time.Duration written as a string such as "1m30s".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Pad: Pad{
			DefaultMode:  "base",
			Modes:        []string{"ambient", "hotkeys", "media", "volume", "jiggler"},
			Start:        []string{"ambient", "hotkeys"},
			TickInterval: Duration(10 * time.Millisecond),
		},
		Display: Display{
			IdleTimeout: Duration(30 * time.Second),
			Brightness:  0.2,
		},
		Log: Log{
			Level: "info",
		},
		Ambient: Ambient{
			Value: 0.2,
		},
		Jiggler: Jiggler{
			Interval: Duration(time.Minute),
			Distance: 1,
		},
		PreSelection: PreSelection{
			Duration: Duration(time.Second),
		},
	}
}

// Load reads the configuration file at path over the defaults and applies
// environment overrides. An empty path loads the defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := cfg.decode(path, data); err != nil {
			return nil, err
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		cfg.Path = path
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadReader decodes a configuration from r over the defaults. Environment
// overrides are not applied.
func LoadReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := cfg.decode("<reader>", data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unmarshals data over c. Unknown keys are errors.
func (c *Config) decode(source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return newParseError(source, err)
	}
	return nil
}

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var decodeErr *toml.DecodeError
	var strictErr *toml.StrictMissingError
	switch {
	case errors.As(err, &decodeErr):
		pe.Line, pe.Column = decodeErr.Position()
	case errors.As(err, &strictErr):
		pe.Message = "unknown keys\n" + strictErr.String()
		if len(strictErr.Errors) > 0 {
			pe.Line, pe.Column = strictErr.Errors[0].Position()
		}
	}
	return pe
}

// BaseDir returns the directory relative paths in the configuration are
// resolved against.
func (c *Config) BaseDir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// Resolve returns path relative to BaseDir unless it is absolute or empty.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BaseDir(), path)
}

// ScriptPatterns returns the script globs resolved against BaseDir.
func (c *Config) ScriptPatterns() []string {
	patterns := make([]string, len(c.Scripts))
	for i, p := range c.Scripts {
		patterns[i] = c.Resolve(p)
	}
	return patterns
}

// ScriptPaths expands the script globs into a sorted list of files.
func (c *Config) ScriptPaths() ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range c.ScriptPatterns() {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("scripts %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Marshal returns the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

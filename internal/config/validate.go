package config

import (
	"errors"
	"fmt"
	"strings"
)

// KeyCount is the number of keys a macro can map.
const KeyCount = 12

// Validate checks the configuration. All problems are reported, each as a
// *ValidationError.
func (c *Config) Validate() error {
	var v validator

	if c.Pad.DefaultMode == "" {
		v.fail("pad.default_mode", nil, "must not be empty")
	}
	for i, kind := range c.Pad.Modes {
		if strings.TrimSpace(kind) == "" {
			v.fail(fmt.Sprintf("pad.modes[%d]", i), nil, "must not be empty")
		}
	}
	for i, kind := range c.Pad.Start {
		if strings.TrimSpace(kind) == "" {
			v.fail(fmt.Sprintf("pad.start[%d]", i), nil, "must not be empty")
		}
	}
	if c.Pad.TickInterval <= 0 {
		v.fail("pad.tick_interval", c.Pad.TickInterval, "must be positive")
	}

	if c.Display.IdleTimeout < 0 {
		v.fail("display.idle_timeout", c.Display.IdleTimeout, "must not be negative")
	}
	v.unit("display.brightness", c.Display.Brightness)
	v.unit("ambient.value", c.Ambient.Value)

	if c.Jiggler.Interval <= 0 {
		v.fail("jiggler.interval", c.Jiggler.Interval, "must be positive")
	}
	if c.Jiggler.Distance < 1 {
		v.fail("jiggler.distance", c.Jiggler.Distance, "must be at least 1")
	}
	if c.PreSelection.Duration <= 0 {
		v.fail("preselection.duration", c.PreSelection.Duration, "must be positive")
	}

	for i, pattern := range c.Scripts {
		if pattern == "" {
			v.fail(fmt.Sprintf("scripts[%d]", i), nil, "must not be empty")
		}
	}

	names := make(map[string]int)
	for i, m := range c.Macros {
		field := fmt.Sprintf("macro[%d]", i)
		if m.Name == "" {
			v.fail(field+".name", nil, "must not be empty")
		} else if first, ok := names[m.Name]; ok {
			v.fail(field+".name", m.Name, fmt.Sprintf("already used by macro[%d]", first))
		} else {
			names[m.Name] = i
		}
		for j, k := range m.Keys {
			if k.Key < 0 || k.Key >= KeyCount {
				v.fail(fmt.Sprintf("%s.keys[%d].key", field, j), k.Key, fmt.Sprintf("must be between 0 and %d", KeyCount-1))
			}
		}
	}

	names = make(map[string]int)
	for i, comp := range c.Composites {
		field := fmt.Sprintf("composite[%d]", i)
		if comp.Name == "" {
			v.fail(field+".name", nil, "must not be empty")
		} else if first, ok := names[comp.Name]; ok {
			v.fail(field+".name", comp.Name, fmt.Sprintf("already used by composite[%d]", first))
		} else {
			names[comp.Name] = i
		}
		if len(comp.Modes) == 0 {
			v.fail(field+".modes", nil, "must list at least one mode")
		}
	}

	return v.err()
}

type validator struct {
	errs []error
}

func (v *validator) fail(field string, value any, msg string) {
	v.errs = append(v.errs, &ValidationError{Field: field, Value: value, Message: msg})
}

func (v *validator) unit(field string, f float64) {
	if f < 0 || f > 1 {
		v.fail(field, f, "must be between 0 and 1")
	}
}

func (v *validator) err() error {
	return errors.Join(v.errs...)
}

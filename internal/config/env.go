package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// EnvPrefix starts every environment variable read by ApplyEnv.
const EnvPrefix = "ONIONPAD_"

// LookupFunc reports the value of an environment variable.
type LookupFunc func(name string) (string, bool)

// envSetter parses an environment value into the configuration.
type envSetter func(c *Config, value string) error

// envMapping maps environment variables to the settings they override.
func envMapping() map[string]envSetter {
	return map[string]envSetter{
		"ONIONPAD_PAD_DEFAULT_MODE":      envString(func(c *Config) *string { return &c.Pad.DefaultMode }),
		"ONIONPAD_PAD_MODES":             envList(func(c *Config) *[]string { return &c.Pad.Modes }),
		"ONIONPAD_PAD_START":             envList(func(c *Config) *[]string { return &c.Pad.Start }),
		"ONIONPAD_PAD_TICK_INTERVAL":     envDuration(func(c *Config) *Duration { return &c.Pad.TickInterval }),
		"ONIONPAD_DISPLAY_IDLE_TIMEOUT":  envDuration(func(c *Config) *Duration { return &c.Display.IdleTimeout }),
		"ONIONPAD_DISPLAY_BRIGHTNESS":    envFloat(func(c *Config) *float64 { return &c.Display.Brightness }),
		"ONIONPAD_LOG_LEVEL":             envString(func(c *Config) *string { return &c.Log.Level }),
		"ONIONPAD_LOG_FILE":              envString(func(c *Config) *string { return &c.Log.File }),
		"ONIONPAD_AMBIENT_VALUE":         envFloat(func(c *Config) *float64 { return &c.Ambient.Value }),
		"ONIONPAD_JIGGLER_INTERVAL":      envDuration(func(c *Config) *Duration { return &c.Jiggler.Interval }),
		"ONIONPAD_JIGGLER_DISTANCE":      envInt(func(c *Config) *int { return &c.Jiggler.Distance }),
		"ONIONPAD_PRESELECTION_DURATION": envDuration(func(c *Config) *Duration { return &c.PreSelection.Duration }),
		"ONIONPAD_ASSETS_ICONS":          envString(func(c *Config) *string { return &c.Assets.Icons }),
		"ONIONPAD_SCRIPTS":               envList(func(c *Config) *[]string { return &c.Scripts }),
	}
}

// EnvVars returns the names of the supported environment variables.
func EnvVars() []string {
	mapping := envMapping()
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyEnv overrides settings from environment variables. A nil lookup
// reads the process environment. Empty values are treated as set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	mapping := envMapping()
	for _, name := range EnvVars() {
		value, ok := lookup(name)
		if !ok {
			continue
		}
		if err := mapping[name](c, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func envString(field func(*Config) *string) envSetter {
	return func(c *Config, value string) error {
		*field(c) = value
		return nil
	}
}

// envList splits a comma separated value.
func envList(field func(*Config) *[]string) envSetter {
	return func(c *Config, value string) error {
		var list []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
		*field(c) = list
		return nil
	}
}

func envDuration(field func(*Config) *Duration) envSetter {
	return func(c *Config, value string) error {
		return field(c).UnmarshalText([]byte(value))
	}
}

func envFloat(field func(*Config) *float64) envSetter {
	return func(c *Config, value string) error {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func envInt(field func(*Config) *int) envSetter {
	return func(c *Config, value string) error {
		i, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		*field(c) = i
		return nil
	}
}

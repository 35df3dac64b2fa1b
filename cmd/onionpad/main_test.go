package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/onionpad/internal/app"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, iconsDir, logLevel, logFile = "", "", "", ""
	t.Cleanup(func() { configPath, iconsDir, logLevel, logFile = "", "", "", "" })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "onionpad.toml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "icons", "log-level", "log-file"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag not found", name)
		}
	}
	if flag := rootCmd.PersistentFlags().Lookup("config"); flag != nil && flag.Shorthand != "c" {
		t.Errorf("--config shorthand = %q, want %q", flag.Shorthand, "c")
	}
}

func TestSubcommands(t *testing.T) {
	want := map[string]bool{"run": false, "modes": false, "check": false, "version": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVersionTemplate(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	defer func() { version, commit, date = origVersion, origCommit, origDate }()

	tests := []struct {
		name     string
		commit   string
		expected string
	}{
		{"dev build", "unknown", "onionpad 1.2.0\n"},
		{"release", "abc123", "onionpad 1.2.0\n  commit: abc123\n  built:  today\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, commit, date = "1.2.0", tt.commit, "today"
			if got := versionTemplate(); got != tt.expected {
				t.Errorf("versionTemplate() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "onionpad ") {
		t.Errorf("version output = %q", out)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if _, err := execute(t, "check", "--log-level", "loud"); err == nil {
		t.Error("check should reject an unknown log level")
	}
}

func TestCheckCommand(t *testing.T) {
	path := writeConfig(t, "[pad]\nstart = [\"media\"]\n")
	out, err := execute(t, "check", "--config", path)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(out, "OK") {
		t.Errorf("check output = %q, want OK", out)
	}

	path = writeConfig(t, "[display]\nbrightness = 3.0\n")
	if _, err := execute(t, "check", "--config", path); err == nil {
		t.Error("check should fail for an invalid configuration")
	}
}

func TestModesCommand(t *testing.T) {
	path := writeConfig(t, "[[macro]]\nname = \"dev\"\ntitle = \"Dev\"\n")
	out, err := execute(t, "modes", "--config", path)
	if err != nil {
		t.Fatalf("modes error = %v", err)
	}

	for _, want := range []string{"KIND", "macro:dev", "base", "Base Mode", "selection"} {
		if !strings.Contains(out, want) {
			t.Errorf("modes output lacks %q:\n%s", want, out)
		}
	}
}

func TestModeFlags(t *testing.T) {
	tests := []struct {
		name     string
		info     app.ModeInfo
		expected string
	}{
		{"none", app.ModeInfo{}, "-"},
		{"default", app.ModeInfo{Default: true, Active: true}, "default,active"},
		{"registered", app.ModeInfo{Registered: true}, "registered"},
		{"hidden", app.ModeInfo{Hidden: true}, "hidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := modeFlags(tt.info); got != tt.expected {
				t.Errorf("modeFlags() = %q, want %q", got, tt.expected)
			}
		})
	}
}

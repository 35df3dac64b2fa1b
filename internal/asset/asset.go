// Package asset resolves symbolic icon names to bitmap files.
//
// Icons are listed in a YAML manifest that maps a dotted name such as
// "generic.layers" to a path relative to the manifest's file system. Every
// path is checked when the registry is loaded, so a missing bitmap is
// reported at startup instead of when a mode first shows it.
package asset

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the default manifest name inside an icon directory.
const ManifestFile = "icons.yaml"

// ErrNotFound indicates an icon name is not in the registry or its file
// does not exist.
var ErrNotFound = errors.New("asset not found")

// Icon is a handle to a validated icon. The zero Icon means no icon.
type Icon struct {
	Name  string
	Path  string
	Label string
}

// IsZero reports whether the icon is empty.
func (i Icon) IsZero() bool {
	return i == Icon{}
}

// Short returns the label, or the last segment of the name.
func (i Icon) Short() string {
	if i.Label != "" {
		return i.Label
	}
	if j := strings.LastIndexByte(i.Name, '.'); j >= 0 {
		return i.Name[j+1:]
	}
	return i.Name
}

// Registry maps icon names to icons.
type Registry struct {
	icons map[string]Icon
}

type manifest struct {
	Icons map[string]manifestEntry `yaml:"icons"`
}

type manifestEntry struct {
	Path  string `yaml:"path"`
	Label string `yaml:"label"`
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{icons: make(map[string]Icon)}
}

// Load reads a manifest from fsys and validates every listed file.
// All missing files are reported together.
func Load(fsys fs.FS, name string) (*Registry, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", name, err)
	}

	base := path.Dir(name)
	r := &Registry{icons: make(map[string]Icon, len(m.Icons))}

	var errs []error
	for iconName, entry := range m.Icons {
		if entry.Path == "" {
			errs = append(errs, fmt.Errorf("icon %s: empty path", iconName))
			continue
		}
		p := path.Join(base, entry.Path)
		if _, err := fs.Stat(fsys, p); err != nil {
			errs = append(errs, fmt.Errorf("icon %s: %w: %s", iconName, ErrNotFound, p))
			continue
		}
		r.icons[iconName] = Icon{Name: iconName, Path: p, Label: entry.Label}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// Lookup returns the icon with the given name.
func (r *Registry) Lookup(name string) (Icon, error) {
	icon, ok := r.icons[name]
	if !ok {
		return Icon{}, fmt.Errorf("%w: icon %s", ErrNotFound, name)
	}
	return icon, nil
}

// Names returns all icon names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.icons))
	for name := range r.icons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of icons.
func (r *Registry) Len() int {
	return len(r.icons)
}

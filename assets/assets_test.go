package assets

import (
	"testing"

	"github.com/dshills/onionpad/internal/asset"
)

func TestEmbeddedIconsLoad(t *testing.T) {
	reg, err := asset.Load(Icons, Manifest)
	if err != nil {
		t.Fatalf("asset.Load() error = %v", err)
	}

	for _, name := range []string{"generic.layers", "generic.play_pause", "loading_circle"} {
		if _, err := reg.Lookup(name); err != nil {
			t.Errorf("Lookup(%q) error = %v", name, err)
		}
	}
}

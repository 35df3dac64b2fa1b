package display

import (
	"strings"

	"github.com/dshills/onionpad/internal/asset"
)

// Keypad dimensions.
const (
	Rows    = 3
	Columns = 4
)

// HotkeyMap shows a legend of the icons bound to the keypad.
type HotkeyMap struct {
	icons [Rows][Columns]asset.Icon
}

// NewHotkeyMap creates an empty legend.
func NewHotkeyMap() *HotkeyMap {
	return &HotkeyMap{}
}

// SetContents replaces the legend and reports whether anything changed.
func (h *HotkeyMap) SetContents(icons [Rows][Columns]asset.Icon) bool {
	if h.icons == icons {
		return false
	}
	h.icons = icons
	return true
}

// Icon returns the icon shown for a key.
func (h *HotkeyMap) Icon(row, col int) asset.Icon {
	if row < 0 || row >= Rows || col < 0 || col >= Columns {
		return asset.Icon{}
	}
	return h.icons[row][col]
}

// Lines renders one line per keypad row with a short label per key.
func (h *HotkeyMap) Lines(width int) []string {
	cell := width / Columns
	if cell < 1 {
		cell = 1
	}
	lines := make([]string, Rows)
	for r := range h.icons {
		var b strings.Builder
		for _, icon := range h.icons[r] {
			label := "."
			if !icon.IsZero() {
				label = icon.Short()
			}
			b.WriteString(Center(label, cell))
		}
		lines[r] = b.String()
	}
	return lines
}

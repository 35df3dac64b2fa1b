// Package display models the content shown on the macropad screen.
//
// The display is a tree: a Root with a title bar and the groups contributed
// by the active modes, in the order they were attached. Groups render
// themselves as text lines; the platform decides how lines become pixels.
package display

import (
	"strings"
	"unicode/utf8"
)

// NoMode is the title shown when no active mode provides one.
const NoMode = "No Mode"

// Group is display content owned by a mode.
type Group interface {
	// Lines renders the group for a display that is width cells wide.
	Lines(width int) []string
}

// Root is the top of the display tree.
type Root struct {
	title  string
	groups []Group
}

// NewRoot creates a root showing the placeholder title.
func NewRoot() *Root {
	return &Root{}
}

// Title returns the text in the title bar.
func (r *Root) Title() string {
	if r.title == "" {
		return NoMode
	}
	return r.title
}

// SetTitle sets the title bar text. An empty title shows the placeholder.
func (r *Root) SetTitle(title string) {
	r.title = title
}

// IsPlaceholder reports whether the title bar shows the placeholder.
func (r *Root) IsPlaceholder() bool {
	return r.title == ""
}

// Append attaches a group on top of the already attached ones.
// Attaching a group twice is a no-op.
func (r *Root) Append(g Group) {
	if g == nil || r.index(g) >= 0 {
		return
	}
	r.groups = append(r.groups, g)
}

// Remove detaches a group. Unknown groups are ignored.
func (r *Root) Remove(g Group) {
	if i := r.index(g); i >= 0 {
		r.groups = append(r.groups[:i], r.groups[i+1:]...)
	}
}

// Groups returns the attached groups, oldest first.
func (r *Root) Groups() []Group {
	out := make([]Group, len(r.groups))
	copy(out, r.groups)
	return out
}

// Lines renders the title bar followed by every attached group.
func (r *Root) Lines(width int) []string {
	lines := []string{Center(r.Title(), width)}
	for _, g := range r.groups {
		lines = append(lines, g.Lines(width)...)
	}
	return lines
}

func (r *Root) index(g Group) int {
	for i, existing := range r.groups {
		if existing == g {
			return i
		}
	}
	return -1
}

// Center pads s with spaces so it is centered in width cells.
// Text wider than width is truncated.
func Center(s string, width int) string {
	s = Truncate(s, width)
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

// Truncate shortens s to at most width runes.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}

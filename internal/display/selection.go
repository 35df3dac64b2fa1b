package display

// DefaultVisibleEntries is the number of entries a Selection shows at once.
const DefaultVisibleEntries = 7

// Selection lets the user pick one entry from a list that wraps around.
type Selection struct {
	entries []string
	index   int
	visible int
}

// NewSelection creates a selection over entries with the first one active.
func NewSelection(entries []string, maxVisible int) *Selection {
	if maxVisible <= 0 {
		maxVisible = DefaultVisibleEntries
	}
	s := &Selection{
		entries: append([]string(nil), entries...),
		visible: min(maxVisible, len(entries)),
	}
	return s
}

// SetEntries replaces the entries and selects the first one.
func (s *Selection) SetEntries(entries []string, maxVisible int) {
	*s = *NewSelection(entries, maxVisible)
}

// Entries returns a copy of the entries.
func (s *Selection) Entries() []string {
	return append([]string(nil), s.entries...)
}

// Active returns the selected entry, or "" if there are no entries.
func (s *Selection) Active() string {
	if len(s.entries) == 0 {
		return ""
	}
	return s.entries[s.index]
}

// Next selects the following entry and returns it.
func (s *Selection) Next() string {
	if len(s.entries) == 0 {
		return ""
	}
	s.index = (s.index + 1) % len(s.entries)
	return s.Active()
}

// Previous selects the preceding entry and returns it.
func (s *Selection) Previous() string {
	if len(s.entries) == 0 {
		return ""
	}
	s.index = (s.index - 1 + len(s.entries)) % len(s.entries)
	return s.Active()
}

// Window returns the visible entries and the position of the active entry
// within them. The list wraps, so short lists may show an entry twice.
func (s *Selection) Window() ([]string, int) {
	if len(s.entries) == 0 {
		return nil, 0
	}
	marker := max(s.visible/2-1, 0)
	window := make([]string, s.visible)
	n := len(s.entries)
	for i := range window {
		j := ((s.index-marker+i)%n + n) % n
		window[i] = s.entries[j]
	}
	return window, marker
}

// Lines renders the window with the active entry marked.
func (s *Selection) Lines(width int) []string {
	window, marker := s.Window()
	lines := make([]string, len(window))
	for i, e := range window {
		prefix := "  "
		if i == marker {
			prefix = "> "
		}
		lines[i] = Truncate(prefix+e, width)
	}
	return lines
}

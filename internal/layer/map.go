package layer

import "fmt"

// Map composites named layers of a fixed width and height.
//
// The zero value of T marks an empty cell. Layers are kept in push order;
// the last pushed layer has the highest priority. When T is an interface
// type, the dynamic values stored in it must be comparable.
//
// Map is not safe for concurrent use. It is owned by the single tick loop.
type Map[T comparable] struct {
	width  int
	height int
	layers []namedLayer[T] // Push order (ascending priority)
}

// NewMap creates an empty map with the given number of columns and rows.
func NewMap[T comparable](width, height int) *Map[T] {
	return &Map[T]{
		width:  width,
		height: height,
		layers: make([]namedLayer[T], 0, 4),
	}
}

// Width returns the number of columns.
func (m *Map[T]) Width() int {
	return m.width
}

// Height returns the number of rows.
func (m *Map[T]) Height() int {
	return m.height
}

// PushLayer adds a layer on top of the map.
//
// The grid must have exactly Height rows of Width cells, otherwise a
// *DimensionError wrapping ErrDimensionMismatch is returned and the map is
// left untouched. Pushing a name that is already present replaces that
// layer and moves it to the top. The grid is copied.
func (m *Map[T]) PushLayer(name string, cells Grid[T]) error {
	if err := m.check(name, cells); err != nil {
		return err
	}

	if i := m.index(name); i >= 0 {
		m.layers = append(m.layers[:i], m.layers[i+1:]...)
	}
	m.layers = append(m.layers, namedLayer[T]{name: name, cells: cells.Clone()})
	return nil
}

// RemoveLayer removes the named layer, keeping the order of the others.
// Returns ErrUnknownLayer if no layer has that name.
func (m *Map[T]) RemoveLayer(name string) error {
	i := m.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, name)
	}
	m.layers = append(m.layers[:i], m.layers[i+1:]...)
	return nil
}

// HasLayer returns true if a layer with the given name exists.
func (m *Map[T]) HasLayer(name string) bool {
	return m.index(name) >= 0
}

// Names returns the layer names from bottom to top.
func (m *Map[T]) Names() []string {
	names := make([]string, len(m.layers))
	for i, l := range m.layers {
		names[i] = l.name
	}
	return names
}

// LayerCount returns the number of layers.
func (m *Map[T]) LayerCount() int {
	return len(m.layers)
}

// At resolves a single cell. Positions outside the map are empty.
func (m *Map[T]) At(row, col int) T {
	var zero T
	if row < 0 || row >= m.height || col < 0 || col >= m.width {
		return zero
	}

	// Search layers from highest to lowest priority
	for i := len(m.layers) - 1; i >= 0; i-- {
		if v := m.layers[i].cells[row][col]; v != zero {
			return v
		}
	}
	return zero
}

// Which returns the name of the layer that provides a cell, or "" when the
// cell resolves to empty.
func (m *Map[T]) Which(row, col int) string {
	var zero T
	if row < 0 || row >= m.height || col < 0 || col >= m.width {
		return ""
	}
	for i := len(m.layers) - 1; i >= 0; i-- {
		if m.layers[i].cells[row][col] != zero {
			return m.layers[i].name
		}
	}
	return ""
}

// Snapshot resolves every cell into a new grid. The result reflects the
// layers at call time and is not affected by later pushes or removals.
func (m *Map[T]) Snapshot() Grid[T] {
	var zero T
	out := NewGrid[T](m.width, m.height)
	for i := len(m.layers) - 1; i >= 0; i-- {
		cells := m.layers[i].cells
		for r := range out {
			for c := range out[r] {
				if out[r][c] == zero {
					out[r][c] = cells[r][c]
				}
			}
		}
	}
	return out
}

// Clear removes all layers.
func (m *Map[T]) Clear() {
	m.layers = m.layers[:0]
}

// check validates the shape of a grid.
func (m *Map[T]) check(name string, cells Grid[T]) error {
	if len(cells) != m.height {
		return &DimensionError{Layer: name, Width: m.width, Height: m.height, Row: -1, Got: len(cells)}
	}
	for i, row := range cells {
		if len(row) != m.width {
			return &DimensionError{Layer: name, Width: m.width, Height: m.height, Row: i, Got: len(row)}
		}
	}
	return nil
}

// index finds a layer by name.
func (m *Map[T]) index(name string) int {
	for i, l := range m.layers {
		if l.name == name {
			return i
		}
	}
	return -1
}

package mode

import "fmt"

// Container keeps the single instance of every registered mode kind.
type Container struct {
	// modes holds the instance per kind.
	modes map[Kind]Mode

	// order is the registration order.
	order []Kind

	// names maps layer names back to their kind.
	names map[string]Kind
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		modes: make(map[Kind]Mode),
		names: make(map[string]Kind),
	}
}

// Add stores m under its kind. If the kind is already present, Add does
// nothing and the stored instance is kept. Adding a mode whose name is
// taken by another kind fails with ErrDuplicateName.
func (c *Container) Add(m Mode) error {
	kind := m.Kind()
	if _, ok := c.modes[kind]; ok {
		return nil
	}
	if other, ok := c.names[m.Name()]; ok {
		return fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateName, m.Name(), other, kind)
	}

	c.modes[kind] = m
	c.names[m.Name()] = kind
	c.order = append(c.order, kind)
	return nil
}

// Contains returns true if an instance of kind is stored.
func (c *Container) Contains(kind Kind) bool {
	_, ok := c.modes[kind]
	return ok
}

// Get returns the instance of kind, or ErrNotFound.
func (c *Container) Get(kind Kind) (Mode, error) {
	m, ok := c.modes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, kind)
	}
	return m, nil
}

// Kinds returns the stored kinds in registration order.
func (c *Container) Kinds() []Kind {
	out := make([]Kind, len(c.order))
	copy(out, c.order)
	return out
}

// Modes returns the stored instances in registration order.
func (c *Container) Modes() []Mode {
	out := make([]Mode, len(c.order))
	for i, kind := range c.order {
		out[i] = c.modes[kind]
	}
	return out
}

// Len returns the number of stored instances.
func (c *Container) Len() int {
	return len(c.order)
}

package modes

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/asset"
	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/layer"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/pad"
)

// CompositeKind returns the kind of the composite mode called name.
func CompositeKind(name string) mode.Kind {
	return mode.Kind("composite:" + name)
}

// Composite groups several modes into a single stack entry. The children
// are layered in order, so a later child overrides an earlier one on keys
// both of them map.
type Composite struct {
	name     string
	title    string
	hidden   bool
	children []mode.Mode
	group    *compositeGroup
}

// NewComposite creates a composite of children. An empty title shows the
// title of the topmost child that has one.
func NewComposite(name, title string, hidden bool, children []mode.Mode) *Composite {
	c := &Composite{
		name:     name,
		title:    title,
		hidden:   hidden,
		children: append([]mode.Mode(nil), children...),
	}
	c.group = &compositeGroup{children: c.children}
	return c
}

// DefineComposite defines a composite kind made of the given kinds, which
// must already be defined and distinct.
//
// The children are the pad's instances of their kinds. Pushing the
// composite pops a child that is active on its own, and pushing a child
// pops the composite.
func DefineComposite(p *pad.Pad, name, title string, hidden bool, kinds []mode.Kind) error {
	kind := CompositeKind(name)
	for i, k := range kinds {
		if k == kind {
			return fmt.Errorf("composite %s contains itself", name)
		}
		if slices.Contains(kinds[:i], k) {
			return fmt.Errorf("composite %s lists %s twice", name, k)
		}
		if !p.IsDefined(k) {
			return fmt.Errorf("composite %s: %w: %s", name, pad.ErrUnknownKind, k)
		}
	}

	kinds = append([]mode.Kind(nil), kinds...)
	p.Define(kind, func(p *pad.Pad) mode.Mode {
		children := make([]mode.Mode, 0, len(kinds))
		var seen []mode.Kind
		for _, k := range kinds {
			child, err := p.Mode(k)
			if err != nil {
				p.Logger().Error("composite %s: %v", name, err)
				continue
			}
			// A nested composite may already hold a kind listed here.
			own := append([]mode.Kind{child.Kind()}, membersOf(child)...)
			if dup := slices.IndexFunc(own, func(k mode.Kind) bool { return slices.Contains(seen, k) }); dup >= 0 {
				p.Logger().Error("composite %s: %s is already a member", name, own[dup])
				continue
			}
			seen = append(seen, own...)
			children = append(children, child)
		}
		return NewComposite(name, title, hidden, children)
	})
	return nil
}

func (c *Composite) Kind() mode.Kind { return CompositeKind(c.name) }
func (c *Composite) Name() string    { return c.name }
func (c *Composite) Hidden() bool    { return c.hidden }

// Members returns the kinds of the children and of their own members.
func (c *Composite) Members() []mode.Kind {
	var kinds []mode.Kind
	for _, child := range c.children {
		kinds = append(kinds, child.Kind())
		kinds = append(kinds, membersOf(child)...)
	}
	return kinds
}

// LEDs returns the LEDs driven by the children.
func (c *Composite) LEDs() []int {
	var leds []int
	for _, child := range c.children {
		if o, ok := child.(mode.LEDOwner); ok {
			leds = append(leds, o.LEDs()...)
		}
	}
	return leds
}

func membersOf(m mode.Mode) []mode.Kind {
	if g, ok := m.(mode.Grouping); ok {
		return g.Members()
	}
	return nil
}

// Children returns the grouped modes, bottom first.
func (c *Composite) Children() []mode.Mode {
	return append([]mode.Mode(nil), c.children...)
}

// Title returns the configured title or the topmost child title.
func (c *Composite) Title() string {
	if c.title != "" {
		return c.title
	}
	for i := len(c.children) - 1; i >= 0; i-- {
		if t := c.children[i].Title(); t != "" {
			return t
		}
	}
	return ""
}

// Group returns the content of every child that has some.
func (c *Composite) Group() display.Group {
	for _, child := range c.children {
		if child.Group() != nil {
			return c.group
		}
	}
	return nil
}

func (c *Composite) KeyDown() mode.KeyGrid {
	grids := make([]mode.KeyGrid, len(c.children))
	for i, child := range c.children {
		grids[i] = child.KeyDown()
	}
	return flatten[action.Action](grids)
}

func (c *Composite) KeyUp() mode.KeyGrid {
	grids := make([]mode.KeyGrid, len(c.children))
	for i, child := range c.children {
		grids[i] = child.KeyUp()
	}
	return flatten[action.Action](grids)
}

func (c *Composite) Icons() mode.IconGrid {
	grids := make([]mode.IconGrid, len(c.children))
	for i, child := range c.children {
		grids[i] = child.Icons()
	}
	return flatten[asset.Icon](grids)
}

// Encoder returns the encoder action of the topmost child that maps it.
func (c *Composite) Encoder() mode.EncoderGrid {
	for i := len(c.children) - 1; i >= 0; i-- {
		if g := c.children[i].Encoder(); g[0][0] != nil {
			return g
		}
	}
	return mode.EncoderGrid{}
}

// Start starts the children, bottom first.
func (c *Composite) Start() {
	for _, child := range c.children {
		child.Start()
	}
}

// Pause pauses the children, top first.
func (c *Composite) Pause() {
	for i := len(c.children) - 1; i >= 0; i-- {
		c.children[i].Pause()
	}
}

// Tick ticks the children, top first.
func (c *Composite) Tick() {
	for i := len(c.children) - 1; i >= 0; i-- {
		c.children[i].Tick()
	}
}

// flatten resolves a list of keypad grids, last one on top.
func flatten[T comparable, G ~[mode.Rows][mode.Columns]T](grids []G) G {
	m := layer.NewMap[T](mode.Columns, mode.Rows)
	for i, g := range grids {
		cells := layer.NewGrid[T](mode.Columns, mode.Rows)
		for r := range cells {
			for col := range cells[r] {
				cells[r][col] = g[r][col]
			}
		}
		if err := m.PushLayer(strconv.Itoa(i), cells); err != nil {
			panic(err)
		}
	}

	var out G
	snap := m.Snapshot()
	for r := range snap {
		for col := range snap[r] {
			out[r][col] = snap[r][col]
		}
	}
	return out
}

// compositeGroup renders the groups of the children in order.
type compositeGroup struct {
	children []mode.Mode
}

func (g *compositeGroup) Lines(width int) []string {
	var lines []string
	for _, child := range g.children {
		if cg := child.Group(); cg != nil {
			lines = append(lines, cg.Lines(width)...)
		}
	}
	return lines
}

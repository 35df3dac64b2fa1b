// Package pad ties the macropad hardware to the mode stack.
//
// A Pad owns the board, the mode container, the mode stack, the action
// runner and the idle policy. It is created once and passed to every mode
// factory, so modes can push and pop other modes, run actions and request
// display or LED refreshes. All methods must be called from the goroutine
// that runs the tick loop.
package pad

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/onionpad/internal/action"
	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/idle"
	"github.com/dshills/onionpad/internal/logging"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/platform"
)

// DefaultTickInterval is the period of the main loop.
const DefaultTickInterval = 10 * time.Millisecond

// ErrUnknownKind indicates no factory is defined for a mode kind.
var ErrUnknownKind = errors.New("pad: unknown mode kind")

// Factory creates the single instance of a mode kind.
type Factory func(p *Pad) mode.Mode

// Pad is the dispatcher context of the macropad.
type Pad struct {
	board platform.Board
	root  *display.Root

	// factories holds the definition of every known kind.
	factories map[mode.Kind]Factory
	defined   []mode.Kind

	// registered lists the kinds offered in the mode selection.
	registered []mode.Kind

	container *mode.Container
	stack     *mode.Stack
	runner    *action.Runner
	idle      *idle.Policy
	clock     idle.Clock

	encoderPos     int
	refreshDisplay bool
	refreshPixels  bool
	ticks          uint64

	hooks        []func()
	tickInterval time.Duration
	idleTimeout  time.Duration
	logger       *logging.Logger
}

// Option configures a Pad.
type Option func(*Pad)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pad) {
		p.logger = l
	}
}

// WithClock sets the clock used by the idle policy and by modes.
func WithClock(c idle.Clock) Option {
	return func(p *Pad) {
		p.clock = c
	}
}

// WithIdleTimeout sets the inactivity period before the display sleeps.
// Zero disables sleeping.
func WithIdleTimeout(d time.Duration) Option {
	return func(p *Pad) {
		p.idleTimeout = d
	}
}

// WithTickInterval sets the period used by Run.
func WithTickInterval(d time.Duration) Option {
	return func(p *Pad) {
		if d > 0 {
			p.tickInterval = d
		}
	}
}

// New creates a pad on board and shows its empty display tree.
func New(board platform.Board, opts ...Option) *Pad {
	p := &Pad{
		board:        board,
		root:         display.NewRoot(),
		factories:    make(map[mode.Kind]Factory),
		container:    mode.NewContainer(),
		runner:       action.NewRunner(board.Host),
		clock:        idle.SystemClock{},
		tickInterval: DefaultTickInterval,
		idleTimeout:  idle.DefaultDelay,
		logger:       logging.NullLogger,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.logger = p.logger.WithComponent("pad")
	p.stack = mode.NewStack(p.root)
	p.stack.OnChange(p.onStackChange)
	p.idle = idle.NewPolicy(board.Display, p.clock, p.idleTimeout)
	p.encoderPos = board.Input.EncoderPosition()

	board.Display.Show(p.root)
	p.ScheduleDisplayRefresh()
	return p
}

// Define makes a mode kind known. Defining a kind again replaces its
// factory; an existing instance is kept.
func (p *Pad) Define(kind mode.Kind, factory Factory) {
	if _, ok := p.factories[kind]; !ok {
		p.defined = append(p.defined, kind)
	}
	p.factories[kind] = factory
}

// Defined returns every defined kind in definition order.
func (p *Pad) Defined() []mode.Kind {
	return append([]mode.Kind(nil), p.defined...)
}

// IsDefined reports whether a factory exists for kind.
func (p *Pad) IsDefined(kind mode.Kind) bool {
	_, ok := p.factories[kind]
	return ok
}

// Mode returns the instance of kind, creating it on first use.
func (p *Pad) Mode(kind mode.Kind) (mode.Mode, error) {
	if m, err := p.container.Get(kind); err == nil {
		return m, nil
	}

	factory, ok := p.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	m := factory(p)
	if m.Kind() != kind {
		return nil, fmt.Errorf("factory for %s created a %s mode", kind, m.Kind())
	}
	if err := p.container.Add(m); err != nil {
		return nil, err
	}
	p.logger.Debug("created mode %s (%s)", kind, m.Name())
	return m, nil
}

// RegisterMode instantiates kind and lists it in the mode selection.
func (p *Pad) RegisterMode(kind mode.Kind) error {
	if _, err := p.Mode(kind); err != nil {
		return err
	}
	for _, k := range p.registered {
		if k == kind {
			return nil
		}
	}
	p.registered = append(p.registered, kind)
	return nil
}

// Registered returns the registered modes in registration order.
func (p *Pad) Registered() []mode.Mode {
	out := make([]mode.Mode, 0, len(p.registered))
	for _, kind := range p.registered {
		if m, err := p.container.Get(kind); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// SetDefaultMode sets the mode that is pushed whenever the stack empties.
// An empty kind clears the default.
func (p *Pad) SetDefaultMode(kind mode.Kind) error {
	if kind == "" {
		p.stack.SetDefault(nil)
		return nil
	}
	m, err := p.Mode(kind)
	if err != nil {
		return err
	}
	p.stack.SetDefault(m)
	p.ScheduleDisplayRefresh()
	return nil
}

// DefaultMode returns the kind of the default mode, or "" if none is set.
func (p *Pad) DefaultMode() mode.Kind {
	if m := p.stack.Default(); m != nil {
		return m.Kind()
	}
	return ""
}

// PushMode activates kind on top of the stack. An already active kind is
// restarted and everything above it is popped.
func (p *Pad) PushMode(kind mode.Kind) error {
	m, err := p.Mode(kind)
	if err != nil {
		return err
	}
	p.stack.Push(m)
	p.ScheduleDisplayRefresh()
	return nil
}

// PopMode deactivates kind and everything above it. Kinds that are not
// active are ignored.
func (p *Pad) PopMode(kind mode.Kind) {
	m, err := p.container.Get(kind)
	if err != nil {
		return
	}
	p.stack.Pop(m)
	p.ScheduleDisplayRefresh()
}

// PopTop deactivates the most recently pushed mode.
func (p *Pad) PopTop() {
	p.stack.Pop(nil)
	p.ScheduleDisplayRefresh()
}

// SetMode makes kind the only active mode.
func (p *Pad) SetMode(kind mode.Kind) error {
	m, err := p.Mode(kind)
	if err != nil {
		return err
	}
	p.stack.SetMode(m)
	p.ScheduleDisplayRefresh()
	return nil
}

// IsActive reports whether kind is on the stack.
func (p *Pad) IsActive(kind mode.Kind) bool {
	return p.stack.Contains(kind)
}

// Active returns the active modes, top first.
func (p *Pad) Active() []mode.Mode {
	return p.stack.Active()
}

// Title returns the text of the title bar.
func (p *Pad) Title() string {
	return p.root.Title()
}

// KeypadIcons returns the icons of the composited key mappings.
func (p *Pad) KeypadIcons() mode.IconGrid {
	return p.stack.KeypadIcons()
}

// ScheduleDisplayRefresh requests a display flush at the end of the tick.
func (p *Pad) ScheduleDisplayRefresh() {
	p.refreshDisplay = true
}

// SchedulePixelRefresh requests an LED flush at the end of the tick.
func (p *Pad) SchedulePixelRefresh() {
	p.refreshPixels = true
}

// ExecuteAction runs a as if it was bound to a key.
func (p *Pad) ExecuteAction(a action.Action) {
	p.runner.Execute(a, action.Args{}, true)
}

// Pixels returns the LED array.
func (p *Pad) Pixels() platform.Pixels {
	return p.board.Pixels
}

// ClaimedLEDs returns the LEDs driven by active modes that implement
// mode.LEDOwner.
func (p *Pad) ClaimedLEDs() map[int]bool {
	claimed := make(map[int]bool)
	for _, m := range p.stack.Active() {
		if o, ok := m.(mode.LEDOwner); ok {
			for _, i := range o.LEDs() {
				claimed[i] = true
			}
		}
	}
	return claimed
}

// DisplayWidth returns the width of the display in text cells.
func (p *Pad) DisplayWidth() int {
	return p.board.Display.Width()
}

// Clock returns the time source of the pad.
func (p *Pad) Clock() idle.Clock {
	return p.clock
}

// Logger returns the pad logger.
func (p *Pad) Logger() *logging.Logger {
	return p.logger
}

// SetIdleTimeout changes the inactivity period and re-evaluates it.
func (p *Pad) SetIdleTimeout(d time.Duration) {
	p.idleTimeout = d
	p.idle.SetDelay(d)
}

// DisplayAsleep reports whether the idle policy turned the display off.
func (p *Pad) DisplayAsleep() bool {
	return p.idle.Asleep()
}

// BeforeTick registers fn to run at the start of every tick.
func (p *Pad) BeforeTick(fn func()) {
	p.hooks = append(p.hooks, fn)
}

// Ticks returns the number of completed ticks.
func (p *Pad) Ticks() uint64 {
	return p.ticks
}

func (p *Pad) onStackChange(change mode.Change, m mode.Mode) {
	p.logger.Debug("%s %s, stack depth %d", change, m.Kind(), p.stack.Len())
}

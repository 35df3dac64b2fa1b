package platform

import (
	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/hid"
)

// NullBoard is an in-memory board for tests. Input is scripted and every
// output is recorded.
type NullBoard struct {
	Input   *NullInput
	Display *NullDisplay
	Pixels  *NullPixels
	Host    *hid.Recorder
}

// NewNullBoard creates an in-memory board with 12 LEDs and a 21 cell wide
// display.
func NewNullBoard() *NullBoard {
	return &NullBoard{
		Input:   &NullInput{},
		Display: &NullDisplay{width: 21},
		Pixels:  NewNullPixels(12),
		Host:    hid.NewRecorder(0),
	}
}

// Board returns the board view used by the core.
func (b *NullBoard) Board() Board {
	return Board{
		Input:   b.Input,
		Display: b.Display,
		Pixels:  b.Pixels,
		Host:    b.Host,
	}
}

// NullInput replays queued key events.
type NullInput struct {
	events  []KeyEvent
	encoder int
}

// Press queues a key press.
func (n *NullInput) Press(index int) {
	n.events = append(n.events, KeyEvent{Index: index, Pressed: true})
}

// Release queues a key release.
func (n *NullInput) Release(index int) {
	n.events = append(n.events, KeyEvent{Index: index})
}

// Tap queues a press followed by a release.
func (n *NullInput) Tap(index int) {
	n.Press(index)
	n.Release(index)
}

// Turn moves the encoder by delta.
func (n *NullInput) Turn(delta int) {
	n.encoder += delta
}

// Pending returns the number of queued events.
func (n *NullInput) Pending() int {
	return len(n.events)
}

func (n *NullInput) NextKeyEvent() (KeyEvent, bool) {
	if len(n.events) == 0 {
		return KeyEvent{}, false
	}
	ev := n.events[0]
	n.events = n.events[1:]
	return ev, true
}

func (n *NullInput) EncoderPosition() int {
	return n.encoder
}

// NullDisplay records display calls.
type NullDisplay struct {
	width int
	root  *display.Root

	// Refreshes counts Refresh calls.
	Refreshes int
	// Asleep is true between Sleep and Wake.
	Asleep bool
	// Sleeps and Wakes count power changes.
	Sleeps, Wakes int
	// Frame holds the lines rendered by the last Refresh.
	Frame []string
}

func (d *NullDisplay) Show(root *display.Root) {
	d.root = root
}

func (d *NullDisplay) Refresh() {
	d.Refreshes++
	if d.root != nil {
		d.Frame = d.root.Lines(d.width)
	}
}

func (d *NullDisplay) Sleep() {
	d.Asleep = true
	d.Sleeps++
}

func (d *NullDisplay) Wake() {
	d.Asleep = false
	d.Wakes++
}

func (d *NullDisplay) Width() int {
	return d.width
}

// Root returns the tree passed to Show.
func (d *NullDisplay) Root() *display.Root {
	return d.root
}

// NullPixels records LED colors.
type NullPixels struct {
	pending []Color
	shown   []Color

	// Shows counts Show calls.
	Shows int
}

// NewNullPixels creates n LEDs, all off.
func NewNullPixels(n int) *NullPixels {
	return &NullPixels{pending: make([]Color, n), shown: make([]Color, n)}
}

func (p *NullPixels) Len() int {
	return len(p.pending)
}

func (p *NullPixels) Set(i int, c Color) {
	if i >= 0 && i < len(p.pending) {
		p.pending[i] = c
	}
}

func (p *NullPixels) Get(i int) Color {
	if i < 0 || i >= len(p.pending) {
		return Black
	}
	return p.pending[i]
}

func (p *NullPixels) Show() {
	p.Shows++
	copy(p.shown, p.pending)
}

// Shown returns the colors written by the last Show.
func (p *NullPixels) Shown() []Color {
	return append([]Color(nil), p.shown...)
}

// Ensure the null devices implement the interfaces.
var (
	_ Input   = (*NullInput)(nil)
	_ Display = (*NullDisplay)(nil)
	_ Pixels  = (*NullPixels)(nil)
)

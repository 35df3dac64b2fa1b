// Package term simulates the macropad in a terminal.
//
// Keys 1234, qwer and asdf are the three rows of the keypad. A lower-case
// key taps the macropad key. The upper-case letter (or the shifted digit)
// holds the key down until it is typed again. [ and ] or the left and right
// arrows turn the encoder. Escape and Ctrl-C quit.
package term

import (
	"strings"
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/hid"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/platform"
)

// Keypad layout. Row by row, left to right.
const (
	tapKeys  = "1234qwerasdf"
	holdKeys = "!@#$QWERASDF"
)

const (
	// DisplayWidth is the number of text cells per display line.
	DisplayWidth = 21
	// DisplayLines is the number of display lines drawn.
	DisplayLines = 7

	keyWidth    = 10
	hostHistory = 10
	eventBuffer = 64
)

// Board is a macropad drawn on a tcell screen.
//
// Input is read by a goroutine started with Start and queued for the tick
// loop. The display tree, key icons and host output are copied on the tick
// loop's goroutine so that the input goroutine can redraw without touching
// them.
type Board struct {
	screen tcell.Screen

	mu         sync.Mutex
	root       *display.Root
	frame      []string
	keyIcons   mode.IconGrid
	hostLines  []string
	asleep     bool
	started    bool
	encoder    int
	held       [mode.Keys]bool
	pending    []platform.Color
	shown      []platform.Color
	brightness float64
	icons      func() mode.IconGrid
	onQuit     func()

	events chan platform.KeyEvent
	host   *hid.Recorder
	done   chan struct{}
	stop   sync.Once
	wg     sync.WaitGroup
}

// Option configures a Board.
type Option func(*Board)

// WithBrightness scales LED colors. Values are clamped to [0, 1].
func WithBrightness(b float64) Option {
	return func(t *Board) {
		t.brightness = min(max(b, 0), 1)
	}
}

// WithQuit sets the function called when the user quits.
func WithQuit(fn func()) Option {
	return func(t *Board) {
		t.onQuit = fn
	}
}

// New creates a board drawing on screen. The screen is initialized by
// Start.
func New(screen tcell.Screen, opts ...Option) *Board {
	t := &Board{
		screen:     screen,
		pending:    make([]platform.Color, mode.Keys),
		shown:      make([]platform.Color, mode.Keys),
		brightness: 1,
		events:     make(chan platform.KeyEvent, eventBuffer),
		host:       hid.NewRecorder(hostHistory),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.host.OnCall = t.recordHost
	return t
}

// Open creates a board on the controlling terminal.
func Open(opts ...Option) (*Board, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return New(screen, opts...), nil
}

// Start initializes the screen and starts reading input.
func (t *Board) Start() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.HideCursor()
	t.mu.Lock()
	t.started = true
	t.mu.Unlock()
	t.redraw()

	t.wg.Add(1)
	go t.pollLoop()
	return nil
}

// Stop stops reading input and restores the terminal.
func (t *Board) Stop() {
	t.stop.Do(func() {
		t.mu.Lock()
		started := t.started
		t.started = false
		t.mu.Unlock()
		close(t.done)
		if !started {
			return
		}
		t.screen.Fini()
		t.wg.Wait()
	})
}

// Board returns the board view used by the core.
func (t *Board) Board() platform.Board {
	return platform.Board{
		Input:   (*input)(t),
		Display: (*screenDisplay)(t),
		Pixels:  (*pixels)(t),
		Host:    t.host,
	}
}

// Host returns the recorder receiving host output.
func (t *Board) Host() *hid.Recorder {
	return t.host
}

// SetBrightness scales LED colors from now on. Values are clamped to [0, 1].
func (t *Board) SetBrightness(b float64) {
	t.mu.Lock()
	t.brightness = min(max(b, 0), 1)
	t.mu.Unlock()
	t.redraw()
}

// SetIconSource sets the function providing the key labels.
func (t *Board) SetIconSource(fn func() mode.IconGrid) {
	t.mu.Lock()
	t.icons = fn
	t.mu.Unlock()
}

// pollLoop turns terminal events into key events until Stop.
func (t *Board) pollLoop() {
	defer t.wg.Done()

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case <-t.done:
			return
		default:
		}
		t.handleEvent(ev)
	}
}

func (t *Board) handleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
		t.redraw()

	case *tcell.EventKey:
		switch e.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			if t.onQuit != nil {
				t.onQuit()
			}
		case tcell.KeyLeft:
			t.turn(-1)
		case tcell.KeyRight:
			t.turn(1)
		case tcell.KeyRune:
			t.handleRune(e.Rune())
		}
	}
}

func (t *Board) handleRune(r rune) {
	switch r {
	case '[':
		t.turn(-1)
		return
	case ']':
		t.turn(1)
		return
	}

	if i := strings.IndexRune(tapKeys, r); i >= 0 {
		t.send(platform.KeyEvent{Index: i, Pressed: true})
		t.send(platform.KeyEvent{Index: i})
		return
	}
	if i := strings.IndexRune(holdKeys, r); i >= 0 {
		t.mu.Lock()
		t.held[i] = !t.held[i]
		pressed := t.held[i]
		t.mu.Unlock()
		t.send(platform.KeyEvent{Index: i, Pressed: pressed})
		t.redraw()
	}
}

func (t *Board) turn(delta int) {
	t.mu.Lock()
	t.encoder += delta
	t.mu.Unlock()
	t.redraw()
}

// send queues ev. Events are dropped when the tick loop falls behind.
func (t *Board) send(ev platform.KeyEvent) {
	select {
	case t.events <- ev:
	default:
	}
}

// KeyLabel returns the terminal key for a macropad key.
func KeyLabel(index int) string {
	if index < 0 || index >= len(tapKeys) {
		return "?"
	}
	return string(unicode.ToUpper(rune(tapKeys[index])))
}

// input is the Input view of a Board.
type input Board

func (in *input) NextKeyEvent() (platform.KeyEvent, bool) {
	select {
	case ev := <-in.events:
		return ev, true
	default:
		return platform.KeyEvent{}, false
	}
}

func (in *input) EncoderPosition() int {
	t := (*Board)(in)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.encoder
}

// screenDisplay is the Display view of a Board.
type screenDisplay Board

func (d *screenDisplay) Show(root *display.Root) {
	t := (*Board)(d)
	t.mu.Lock()
	t.root = root
	t.mu.Unlock()
}

func (d *screenDisplay) Refresh() {
	t := (*Board)(d)
	t.mu.Lock()
	if t.root != nil {
		t.frame = t.root.Lines(DisplayWidth)
	}
	if t.icons != nil {
		t.keyIcons = t.icons()
	}
	t.mu.Unlock()
	t.redraw()
}

func (d *screenDisplay) Sleep() {
	d.setAsleep(true)
}

func (d *screenDisplay) Wake() {
	d.setAsleep(false)
}

func (d *screenDisplay) setAsleep(asleep bool) {
	t := (*Board)(d)
	t.mu.Lock()
	t.asleep = asleep
	t.mu.Unlock()
	t.redraw()
}

func (d *screenDisplay) Width() int {
	return DisplayWidth
}

// pixels is the Pixels view of a Board.
type pixels Board

func (p *pixels) Len() int {
	return len(p.pending)
}

func (p *pixels) Set(i int, c platform.Color) {
	t := (*Board)(p)
	t.mu.Lock()
	defer t.mu.Unlock()
	if i >= 0 && i < len(t.pending) {
		t.pending[i] = c
	}
}

func (p *pixels) Get(i int) platform.Color {
	t := (*Board)(p)
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.pending) {
		return platform.Black
	}
	return t.pending[i]
}

func (p *pixels) Show() {
	t := (*Board)(p)
	t.mu.Lock()
	copy(t.shown, t.pending)
	t.mu.Unlock()
	t.redraw()
}

// Ensure the views implement the interfaces.
var (
	_ platform.Input   = (*input)(nil)
	_ platform.Display = (*screenDisplay)(nil)
	_ platform.Pixels  = (*pixels)(nil)
)

package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/onionpad/internal/display"
	"github.com/dshills/onionpad/internal/hid"
	"github.com/dshills/onionpad/internal/mode"
	"github.com/dshills/onionpad/internal/platform"
)

// Screen layout.
const (
	panelWidth  = DisplayWidth + 2
	panelHeight = DisplayLines + 2
	keypadTop   = panelHeight + 1
	keyHeight   = 3
	hostLeft    = mode.Columns*(keyWidth+1) + 2
)

var (
	styleDefault = tcell.StyleDefault
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle   = tcell.StyleDefault.Bold(true)
)

// recordHost keeps the text of the latest host output.
func (t *Board) recordHost(c hid.Call) {
	t.mu.Lock()
	t.hostLines = append(t.hostLines, c.String())
	if len(t.hostLines) > hostHistory {
		t.hostLines = t.hostLines[len(t.hostLines)-hostHistory:]
	}
	t.mu.Unlock()
	t.redraw()
}

// redraw draws the whole board from the copied state.
func (t *Board) redraw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}
	t.screen.Clear()
	t.drawPanel()
	t.drawKeypad()
	t.drawHost()
	t.screen.Show()
}

func (t *Board) drawPanel() {
	drawBox(t.screen, 0, 0, panelWidth, panelHeight, styleBorder)
	if t.asleep {
		drawText(t.screen, 2, panelHeight-1, " asleep ", styleDim)
		return
	}
	for i, line := range t.frame {
		if i >= DisplayLines {
			break
		}
		style := styleDefault
		if i == 0 {
			style = styleTitle
		}
		drawText(t.screen, 1, 1+i, display.Truncate(line, DisplayWidth), style)
	}
}

func (t *Board) drawKeypad() {
	for row := 0; row < mode.Rows; row++ {
		for col := 0; col < mode.Columns; col++ {
			index := row*mode.Columns + col
			x := col * (keyWidth + 1)
			y := keypadTop + row*keyHeight

			style := keyStyle(t.shown[index], t.brightness)
			fill(t.screen, x, y, keyWidth, keyHeight-1, style)

			label := KeyLabel(index)
			if t.held[index] {
				label += " held"
			}
			drawText(t.screen, x+1, y, label, style)
			if icon := t.keyIcons[row][col]; !icon.IsZero() {
				drawText(t.screen, x+1, y+1, display.Truncate(icon.Short(), keyWidth-2), style)
			}
		}
	}

	y := keypadTop + mode.Rows*keyHeight
	drawText(t.screen, 0, y, fmt.Sprintf("encoder %d", t.encoder), styleDefault)
	drawText(t.screen, 0, y+1, "1234/qwer/asdf tap, shifted hold, [ ] turn, Esc quit", styleDim)
}

func (t *Board) drawHost() {
	drawText(t.screen, hostLeft, 0, "host", styleTitle)
	for i, line := range t.hostLines {
		drawText(t.screen, hostLeft, 1+i, line, styleDefault)
	}
}

// keyStyle colors a key with its LED. Text is dark on bright LEDs.
func keyStyle(c platform.Color, brightness float64) tcell.Style {
	r, g, b := c.RGB()
	led := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	led = led.BlendRgb(colorful.Color{}, 1-brightness)

	fg := tcell.ColorWhite
	if _, _, l := led.Hsl(); l > 0.5 {
		fg = tcell.ColorBlack
	}
	lr, lg, lb := led.Clamped().RGB255()
	bg := tcell.NewRGBColor(int32(lr), int32(lg), int32(lb))
	return tcell.StyleDefault.Foreground(fg).Background(bg)
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func fill(s tcell.Screen, x, y, w, h int, style tcell.Style) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			s.SetContent(x+dx, y+dy, ' ', nil, style)
		}
	}
}

func drawBox(s tcell.Screen, x, y, w, h int, style tcell.Style) {
	for dx := 1; dx < w-1; dx++ {
		s.SetContent(x+dx, y, tcell.RuneHLine, nil, style)
		s.SetContent(x+dx, y+h-1, tcell.RuneHLine, nil, style)
	}
	for dy := 1; dy < h-1; dy++ {
		s.SetContent(x, y+dy, tcell.RuneVLine, nil, style)
		s.SetContent(x+w-1, y+dy, tcell.RuneVLine, nil, style)
	}
	s.SetContent(x, y, tcell.RuneULCorner, nil, style)
	s.SetContent(x+w-1, y, tcell.RuneURCorner, nil, style)
	s.SetContent(x, y+h-1, tcell.RuneLLCorner, nil, style)
	s.SetContent(x+w-1, y+h-1, tcell.RuneLRCorner, nil, style)
}

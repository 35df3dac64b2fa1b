package display

import (
	"math"
	"strings"
)

// Loading animation geometry: 16 frames spread over 4 tiles.
const (
	ProgressSteps = 16
	stepsPerTile  = 4
	progressTiles = ProgressSteps / stepsPerTile
)

// Progress is the circular loading animation shown while a key is held.
type Progress struct {
	step int
}

// NewProgress creates an animation at its initial state.
func NewProgress() *Progress {
	return &Progress{}
}

// Reset reverts the animation to its initial state.
func (p *Progress) Reset() {
	p.step = 0
}

// SetProgress moves the animation to a fraction between 0 and 1 and returns
// the resulting frame. Fractions are rounded up to the next frame.
func (p *Progress) SetProgress(fraction float64) int {
	fraction = math.Max(0, math.Min(1, fraction))
	p.step = int(math.Ceil(ProgressSteps * fraction))
	return p.step
}

// Step returns the current frame, 0 through ProgressSteps.
func (p *Progress) Step() int {
	return p.step
}

// Tiles returns the frame shown on every tile. A tile that is not yet
// visible reports -1.
func (p *Progress) Tiles() [progressTiles]int {
	var tiles [progressTiles]int
	full := p.step / stepsPerTile
	partial := p.step % stepsPerTile
	for i := range tiles {
		switch {
		case i < full:
			tiles[i] = stepsPerTile - 1
		case i == full:
			tiles[i] = partial
		default:
			tiles[i] = -1
		}
	}
	return tiles
}

// Lines renders the animation as a bar.
func (p *Progress) Lines(width int) []string {
	inner := width - 2
	if inner < 1 {
		inner = 1
	}
	filled := inner * p.step / ProgressSteps
	bar := "[" + strings.Repeat("#", filled) + strings.Repeat(".", inner-filled) + "]"
	return []string{"", Center(bar, width)}
}

// Package tui draws the clip boundary in a terminal with tcell and binds the
// parameter setters to the keyboard.
package tui

import (
	"math"
	"sync"

	"github.com/esimov/clipper"
)

// Block runes used to draw two mask pixels per terminal cell.
const (
	Full  = '█'
	Upper = '▀'
	Lower = '▄'
	Empty = ' '
)

// Target is a clipper.RenderTarget keeping the last boundary so that it can be
// drawn as a block mask. Terminal cells are about twice as tall as wide, so every
// cell covers two vertically stacked mask pixels.
type Target struct {
	mu         sync.RWMutex
	boundary   clipper.Boundary
	rotation   float64
	transition string
}

var _ clipper.RenderTarget = (*Target)(nil)

// NewTarget returns a target without any boundary applied.
func NewTarget() *Target {
	return &Target{boundary: clipper.None}
}

// ApplyBoundary implements clipper.RenderTarget.
func (t *Target) ApplyBoundary(b clipper.Boundary, rotation float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if clipper.IsNone(b) {
		rotation = 0
	}
	t.boundary, t.rotation = b, rotation
}

// ApplyTransition implements clipper.RenderTarget.
func (t *Target) ApplyTransition(spec string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.transition = spec
}

// ClearBoundary implements clipper.RenderTarget.
func (t *Target) ClearBoundary() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.boundary, t.rotation = clipper.None, 0
}

// Boundary returns the last applied boundary and rotation.
func (t *Target) Boundary() (clipper.Boundary, float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.boundary, t.rotation
}

// Transition returns the stored transition spec.
func (t *Target) Transition() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.transition
}

// Cells renders the boundary into a cols×rows grid of block runes.
func (t *Target) Cells(cols, rows int) [][]rune {
	b, rotation := t.Boundary()

	w, h := cols, rows*2
	mask, _ := clipper.Rasterize(b, w, h)

	sin, cos := math.Sincos(rotation * math.Pi / 180)
	cx, cy := float64(w)/2, float64(h)/2

	// inside samples the mask under the inverse of the clockwise rotation.
	inside := func(px, py int) bool {
		dx, dy := float64(px)+0.5-cx, float64(py)+0.5-cy
		sx := int(math.Floor(cx + dx*cos + dy*sin))
		sy := int(math.Floor(cy - dx*sin + dy*cos))
		if sx < 0 || sy < 0 || sx >= w || sy >= h {
			return false
		}
		return mask.AlphaAt(sx, sy).A >= 0x80
	}

	grid := make([][]rune, rows)
	for y := range grid {
		grid[y] = make([]rune, cols)
		for x := range grid[y] {
			top, bottom := inside(x, 2*y), inside(x, 2*y+1)
			switch {
			case top && bottom:
				grid[y][x] = Full
			case top:
				grid[y][x] = Upper
			case bottom:
				grid[y][x] = Lower
			default:
				grid[y][x] = Empty
			}
		}
	}
	return grid
}

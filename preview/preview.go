// Package preview shows the clipped image in a Gio window, which also acts as the
// frame scheduler of the animations: the queued callbacks run on every window frame.
package preview

import (
	"image"
	"image/color"
	"math"
	"time"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"

	"github.com/esimov/clipper"
)

const (
	MaxScreenX = 1366
	MaxScreenY = 768
)

// backdrop is painted behind the transparent, clipped out area.
var backdrop = color.NRGBA{R: 0x2b, G: 0x2b, B: 0x2b, A: 0xff}

// Window is a Gio window displaying the output of a mask target.
type Window struct {
	clipper.FrameQueue

	win    *app.Window
	target *clipper.MaskTarget

	// OnKey is called with the name of every key press not handled by the window itself.
	OnKey func(name string)
}

var _ clipper.FrameScheduler = (*Window)(nil)

// New creates a window sized after the image bounds. Images larger than
// the predefined screen size are shrunk with their aspect ratio preserved.
func New(title string, bounds image.Rectangle) *Window {
	width, height := float64(bounds.Dx()), float64(bounds.Dy())

	// Resize the image but retain the aspect ratio in case the
	// image width and height is greater than the predefined window.
	if width > MaxScreenX || height > MaxScreenY {
		ratio := math.Min(MaxScreenX/width, MaxScreenY/height)
		width *= ratio
		height *= ratio
	}

	return &Window{
		win: app.NewWindow(
			app.Title(title),
			app.Size(unit.Dp(width), unit.Dp(height)),
		),
	}
}

// SetTarget sets the mask target whose output is displayed.
func (w *Window) SetTarget(t *clipper.MaskTarget) {
	w.target = t
	w.win.Invalidate()
}

// RequestTick implements clipper.FrameScheduler. The callback runs on the next window frame.
func (w *Window) RequestTick(fn func(now time.Time)) {
	w.Push(fn)
	w.win.Invalidate()
}

// Invalidate requests a redraw, e.g. after a parameter change.
func (w *Window) Invalidate() {
	w.win.Invalidate()
}

// Run processes the window events until a DestroyEvent or an ESC key event is captured.
// Like every Gio window, it needs app.Main running on the main goroutine.
func (w *Window) Run() error {
	var ops op.Ops

	for e := range w.win.Events() {
		switch e := e.(type) {
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			// Advance the animations before painting the frame they produced.
			if w.Flush(e.Now) > 0 || w.Len() > 0 {
				op.InvalidateOp{}.Add(gtx.Ops)
			}
			if w.target != nil {
				w.layout(gtx, w.target.Image())
			}
			e.Frame(gtx.Ops)
		case key.Event:
			if e.State != key.Press {
				continue
			}
			if e.Name == key.NameEscape {
				w.win.Perform(system.ActionClose)
				continue
			}
			if w.OnKey != nil {
				w.OnKey(string(e.Name))
				w.win.Invalidate()
			}
		case system.DestroyEvent:
			return e.Err
		}
	}
	return nil
}

func (w *Window) layout(gtx layout.Context, img image.Image) layout.Dimensions {
	paint.Fill(gtx.Ops, backdrop)

	src := paint.NewImageOp(img)
	imgWidget := widget.Image{
		Src:   src,
		Scale: 1 / gtx.Metric.PxPerDp,
		Fit:   widget.Contain,
	}
	return imgWidget.Layout(gtx)
}

package clipper

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/esimov/clipper/imop"
	"golang.org/x/image/vector"
)

// kappa is the control point distance approximating a quarter circle with a cubic Bézier.
const kappa = 0.5522847498

// Rasterize renders the boundary into an alpha mask of w×h pixels, following the
// CSS basic-shape reference boxes: horizontal percentages resolve against the width,
// vertical ones against the height and circle radii against sqrt(w²+h²)/sqrt(2).
// A "none" boundary yields a fully opaque mask. The second return value is false
// for opaque descriptors that cannot be rasterized, in which case the mask is opaque too.
func Rasterize(b Boundary, w, h int) (*image.Alpha, bool) {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return mask, true
	}
	var (
		fw = float32(w)
		fh = float32(h)
		z  = vector.NewRasterizer(w, h)
	)

	switch b := b.(type) {
	case CircleDesc:
		ref := float32(math.Hypot(float64(w), float64(h)) / math.Sqrt2)
		r := float32(b.Radius) / 100 * ref
		if r <= 0 {
			return mask, true
		}
		ellipsePath(z, float32(b.CX)/100*fw, float32(b.CY)/100*fh, r, r)
	case EllipseDesc:
		rx, ry := float32(b.RX)/100*fw, float32(b.RY)/100*fh
		if rx <= 0 || ry <= 0 {
			return mask, true
		}
		ellipsePath(z, float32(b.CX)/100*fw, float32(b.CY)/100*fh, rx, ry)
	case InsetDesc:
		x0, y0 := float32(b.Left)/100*fw, float32(b.Top)/100*fh
		x1, y1 := fw-float32(b.Right)/100*fw, fh-float32(b.Bottom)/100*fh
		if x1 <= x0 || y1 <= y0 {
			return mask, true
		}
		z.MoveTo(x0, y0)
		z.LineTo(x1, y0)
		z.LineTo(x1, y1)
		z.LineTo(x0, y1)
		z.ClosePath()
	case PolygonDesc:
		if len(b.Points) < 3 {
			return mask, true
		}
		for i, p := range b.Points {
			x, y := float32(p.X)/100*fw, float32(p.Y)/100*fh
			if i == 0 {
				z.MoveTo(x, y)
				continue
			}
			z.LineTo(x, y)
		}
		z.ClosePath()
	default:
		draw.Draw(mask, mask.Bounds(), image.Opaque, image.Point{}, draw.Src)
		return mask, IsNone(b)
	}

	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask, true
}

// ellipsePath appends a closed ellipse made of four cubic Bézier arcs.
func ellipsePath(z *vector.Rasterizer, cx, cy, rx, ry float32) {
	kx, ky := rx*kappa, ry*kappa

	z.MoveTo(cx+rx, cy)
	z.CubeTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	z.CubeTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	z.CubeTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	z.CubeTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	z.ClosePath()
}

// MaskTarget is a RenderTarget cutting a source image with the published boundary.
// The pixels outside the boundary become transparent (or the inside ones, when inverted),
// then the result is rotated clockwise around its center like a CSS rotate transform.
type MaskTarget struct {
	mu sync.RWMutex

	Name string
	// Invert keeps the area outside of the boundary instead of the inside.
	Invert bool
	// Feather softens the mask edge with a gaussian blur of the given sigma, in pixels.
	Feather float64
	// Diagnostics receives a warning when a boundary cannot be rasterized.
	Diagnostics Diagnostics

	src        *image.NRGBA
	out        *image.NRGBA
	boundary   Boundary
	rotation   float64
	transition string
}

var _ RenderTarget = (*MaskTarget)(nil)

// NewMaskTarget creates a mask target over a copy of src.
func NewMaskTarget(name string, src image.Image) *MaskTarget {
	img := cloneNRGBA(imgToNRGBA(src))
	return &MaskTarget{
		Name:     name,
		src:      img,
		out:      img,
		boundary: None,
	}
}

// ApplyBoundary implements RenderTarget.
func (m *MaskTarget) ApplyBoundary(b Boundary, rotation float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.boundary, m.rotation = b, rotation
	if IsNone(b) {
		m.out = m.src
		return
	}
	m.out = m.render(b, rotation)
}

// ApplyTransition implements RenderTarget. Raster output has no notion of
// transitions, the spec is only stored.
func (m *MaskTarget) ApplyTransition(spec string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transition = spec
}

// ClearBoundary implements RenderTarget.
func (m *MaskTarget) ClearBoundary() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.boundary, m.rotation = None, 0
	m.out = m.src
}

// Image returns the last rendered image. It must not be modified.
func (m *MaskTarget) Image() *image.NRGBA {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.out
}

// Source returns the untouched source image.
func (m *MaskTarget) Source() *image.NRGBA {
	return m.src
}

// Boundary returns the last applied boundary and rotation.
func (m *MaskTarget) Boundary() (Boundary, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.boundary, m.rotation
}

// Transition returns the stored transition spec.
func (m *MaskTarget) Transition() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.transition
}

// render cuts the source with the boundary. Caller must hold m.mu.
func (m *MaskTarget) render(b Boundary, rotation float64) *image.NRGBA {
	bounds := m.src.Bounds()
	alpha, ok := Rasterize(b, bounds.Dx(), bounds.Dy())
	if !ok {
		if m.Diagnostics != nil {
			m.Diagnostics.Warn("custom clip paths are not rasterized: " + b.String())
		} else {
			Logger().Warn("custom clip paths are not rasterized", "path", b.String())
		}
	}

	mask := image.NewNRGBA(alpha.Bounds())
	for i, a := range alpha.Pix {
		mask.Pix[4*i], mask.Pix[4*i+1], mask.Pix[4*i+2], mask.Pix[4*i+3] = 0xff, 0xff, 0xff, a
	}
	if m.Feather > 0 {
		mask = imaging.Blur(mask, m.Feather)
	}

	op := imop.InitOp()
	if m.Invert {
		_ = op.Set(imop.DstOut)
	} else {
		_ = op.Set(imop.DstIn)
	}
	out := op.Draw(nil, mask, m.src).Img

	if rotation != 0 {
		// imaging rotates counter-clockwise, CSS clockwise.
		out = imaging.Rotate(out, -rotation, color.Transparent)
	}
	return out
}

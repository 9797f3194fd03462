// Package imop implements the Porter-Duff composition operations.
// The image/draw core package implements only the source-over-destination and source
// operators, which are not enough to cut an image with a mask: keeping the pixels
// inside a clip boundary is a destination-in operation, keeping the ones outside of it
// is a destination-out operation.
package imop

import (
	"fmt"
	"image"

	"github.com/esimov/clipper/utils"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// factors returns the Porter-Duff (Fa, Fb) fractions of an operator
// for the source alpha as and the destination alpha ad.
type factors func(as, ad float64) (fa, fb float64)

var operators = map[string]factors{
	Clear:   func(as, ad float64) (float64, float64) { return 0, 0 },
	Copy:    func(as, ad float64) (float64, float64) { return 1, 0 },
	Dst:     func(as, ad float64) (float64, float64) { return 0, 1 },
	SrcOver: func(as, ad float64) (float64, float64) { return 1, 1 - as },
	DstOver: func(as, ad float64) (float64, float64) { return 1 - ad, 1 },
	SrcIn:   func(as, ad float64) (float64, float64) { return ad, 0 },
	DstIn:   func(as, ad float64) (float64, float64) { return 0, as },
	SrcOut:  func(as, ad float64) (float64, float64) { return 1 - ad, 0 },
	DstOut:  func(as, ad float64) (float64, float64) { return 0, 1 - as },
	SrcAtop: func(as, ad float64) (float64, float64) { return ad, 1 - as },
	DstAtop: func(as, ad float64) (float64, float64) { return 1 - ad, as },
	Xor:     func(as, ad float64) (float64, float64) { return 1 - ad, 1 - as },
}

// Bitmap holds the result of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// NewBitmap allocates a transparent bitmap.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// Composite holds the currently active composition operator.
type Composite struct {
	current string
}

// InitOp initializes a composite with the SrcOver operator, the one image/draw uses by default.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates one of the supported operators.
func (op *Composite) Set(cop string) error {
	if _, ok := operators[cop]; !ok {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the currently active operator.
func (op *Composite) Get() string {
	return op.current
}

// Draw composes src over dst with the active operator and writes the result into bitmap.
// Only the area shared by src and dst is composed; a nil bitmap is allocated on the fly
// and returned.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA) *Bitmap {
	rect := src.Bounds().Intersect(dst.Bounds())
	if bitmap == nil {
		bitmap = NewBitmap(rect)
	}
	fn := operators[op.current]

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			si := src.PixOffset(x, y)
			di := dst.PixOffset(x, y)
			sp := src.Pix[si : si+4 : si+4]
			dp := dst.Pix[di : di+4 : di+4]

			as := float64(sp[3]) / 255
			ad := float64(dp[3]) / 255
			fa, fb := fn(as, ad)

			ao := fa*as + fb*ad
			if !image.Pt(x, y).In(bitmap.Img.Rect) {
				continue
			}
			bi := bitmap.Img.PixOffset(x, y)
			out := bitmap.Img.Pix[bi : bi+4 : bi+4]
			if ao <= 0 {
				out[0], out[1], out[2], out[3] = 0, 0, 0, 0
				continue
			}
			// Compose the premultiplied channels, then store them unpremultiplied.
			for c := 0; c < 3; c++ {
				cs := float64(sp[c]) / 255 * as
				cd := float64(dp[c]) / 255 * ad
				out[c] = toUint8((fa*cs + fb*cd) / ao)
			}
			out[3] = toUint8(ao)
		}
	}
	return bitmap
}

func toUint8(v float64) uint8 {
	return uint8(utils.Clamp(v*255+0.5, 0, 255))
}

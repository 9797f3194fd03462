package clipper

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/esimov/clipper/utils"
)

// Processor options
type Processor struct {
	// Params holds the explicitly requested parameters. They win over the
	// preset and over the face anchor.
	Params Patch
	// Preset is applied first, when not empty.
	Preset string
	// Invert keeps the area outside of the boundary.
	Invert bool
	// Feather is the gaussian blur sigma, in pixels, softening the mask edge.
	Feather float64
	// Background is the color the clipped area gets when encoding to a format without alpha.
	Background color.Color
	// Face, when set, anchors the boundary on the most prominent detected face.
	Face *FaceDetector

	Diagnostics Diagnostics
	Spinner     *utils.Spinner
}

// NewClipper binds a new Clipper to a MaskTarget over img. The preset, the face
// anchor and the explicit parameters are merged in this order before the clipper
// is created, so the mask is rendered once.
func (p *Processor) NewClipper(name string, img *image.NRGBA, opts ...Option) (*Clipper, *MaskTarget, error) {
	target := NewMaskTarget(name, img)
	target.Invert = p.Invert
	target.Feather = p.Feather
	target.Diagnostics = p.Diagnostics

	var diag Diagnostics = logDiagnostics{}
	if p.Diagnostics != nil {
		diag = p.Diagnostics
		opts = append([]Option{WithDiagnostics(p.Diagnostics)}, opts...)
	}

	params := DefaultParams()
	if p.Preset != "" {
		if patch, ok := LookupPreset(p.Preset); ok {
			params = params.Merge(patch)
		} else {
			diag.Warn(fmt.Sprintf("preset %q not found", p.Preset))
		}
	}
	if p.Face != nil {
		if anchor, ok := p.Face.Anchor(img); ok {
			params = params.Merge(anchor)
		} else {
			diag.Warn(fmt.Sprintf("%s: no face detected, keeping the requested anchor", name))
		}
	}
	params = params.Merge(p.Params)

	c, err := New(target, params.Patch(), opts...)
	if err != nil {
		return nil, nil, err
	}
	return c, target, nil
}

// Process decodes the image from r, clips it and encodes the result into w.
// The output format is taken from ext, see EncodeImage.
func (p *Processor) Process(r io.Reader, w io.Writer, ext string) error {
	img, err := DecodeImage(r)
	if err != nil {
		return err
	}
	_, target, err := p.NewClipper("", img)
	if err != nil {
		return err
	}
	return EncodeImage(w, target.Image(), ext, p.Background)
}

// ProcessFile clips the image found at in and writes it to out.
func (p *Processor) ProcessFile(in, out string) (err error) {
	src, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("unable to open the source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	defer func() {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(out)
		}
	}()

	return p.Process(src, dst, filepath.Ext(out))
}

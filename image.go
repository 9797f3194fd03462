package clipper

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/esimov/clipper/imop"
	"github.com/esimov/clipper/utils"
)

// SupportedExtensions lists the image file extensions the clipper reads and writes.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff"}

// ErrUnsupportedFormat is returned when encoding to an unknown file extension.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// IsSupported reports whether the file extension of path is supported.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// DecodeImage decodes an image, honoring the EXIF orientation, into an *image.NRGBA.
func DecodeImage(r io.Reader) (*image.NRGBA, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("could not decode the source image: %w", err)
	}
	return imgToNRGBA(src), nil
}

// OpenImage opens and decodes an image file.
func OpenImage(path string) (*image.NRGBA, error) {
	ctype, err := utils.DetectContentType(path)
	if err != nil {
		return nil, fmt.Errorf("could not open the source image: %w", err)
	}
	if !strings.Contains(ctype, "image") {
		return nil, fmt.Errorf("%s is not an image file (%s)", path, ctype)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open the source image: %w", err)
	}
	defer f.Close()

	return DecodeImage(f)
}

// EncodeImage encodes img into w using the format matching ext.
// An empty extension encodes to PNG, the only lossless format keeping the transparent
// area of the clipped image. Formats without an alpha channel are flattened over bg.
func EncodeImage(w io.Writer, img image.Image, ext string, bg color.Color) error {
	if ext == "" {
		ext = ".png"
	}
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if format == imaging.JPEG || format == imaging.BMP {
		img = Flatten(imgToNRGBA(img), bg)
	}
	opts := []imaging.EncodeOption{imaging.JPEGQuality(100)}
	if err := imaging.Encode(w, img, format, opts...); err != nil {
		return fmt.Errorf("could not encode the image: %w", err)
	}
	return nil
}

// Flatten composes img over an opaque background color.
func Flatten(img *image.NRGBA, bg color.Color) *image.NRGBA {
	if bg == nil {
		bg = color.White
	}
	backdrop := image.NewNRGBA(img.Bounds())
	draw.Draw(backdrop, backdrop.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)

	op := imop.InitOp()
	_ = op.Set(imop.SrcOver)
	return op.Draw(nil, img, backdrop).Img
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	if src, ok := img.(*image.NRGBA); ok && bounds.Min == (image.Point{}) {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)

	return dst
}

// cloneNRGBA returns a deep copy of img.
func cloneNRGBA(img *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(img.Bounds())
	copy(dst.Pix, img.Pix)
	return dst
}

// rgbToGrayscale converts an image to grayscale mode and
// returns the pixel values as an one dimensional array.
func rgbToGrayscale(src *image.NRGBA) []uint8 {
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	gray := make([]uint8, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := src.PixOffset(x, y)
			r, g, b := src.Pix[i], src.Pix[i+1], src.Pix[i+2]
			gray[y*width+x] = uint8(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
		}
	}

	return gray
}

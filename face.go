package clipper

import (
	"fmt"
	"image"
	"os"

	"github.com/esimov/clipper/utils"
	pigo "github.com/esimov/pigo/core"
)

// FaceDetector finds faces with a pigo cascade classifier so that the clip
// boundary can be anchored on them.
type FaceDetector struct {
	classifier *pigo.Pigo

	// Angle is the in-plane rotation of the faces, in the [0, 1] range (1 is 2π).
	Angle float64
	// MinQuality discards detections scoring below it.
	MinQuality float32
	// MinSize is the smallest face size, in pixels, the cascade looks for.
	MinSize int
}

// NewFaceDetector unpacks a pigo cascade file.
func NewFaceDetector(cascade []byte) (*FaceDetector, error) {
	// Unpack the binary file. This will return the number of cascade trees,
	// the tree depth, the threshold and the prediction from tree's leaf nodes.
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the cascade file: %w", err)
	}
	return &FaceDetector{
		classifier: classifier,
		MinQuality: 5,
		MinSize:    20,
	}, nil
}

// LoadFaceDetector reads and unpacks a cascade file from disk.
func LoadFaceDetector(path string) (*FaceDetector, error) {
	cascade, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read the cascade file: %w", err)
	}
	return NewFaceDetector(cascade)
}

// Detect runs the classifier over img and returns the clustered detections.
func (fd *FaceDetector) Detect(img *image.NRGBA) []pigo.Detection {
	dx, dy := img.Bounds().Dx(), img.Bounds().Dy()

	cParams := pigo.CascadeParams{
		MinSize:     fd.MinSize,
		MaxSize:     utils.Max(dx, dy),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,

		ImageParams: pigo.ImageParams{
			Pixels: rgbToGrayscale(img),
			Rows:   dy,
			Cols:   dx,
			Dim:    dx,
		},
	}

	// The result contains quadruplets representing the row, column, scale and detection score.
	faces := fd.classifier.RunCascade(cParams, fd.Angle)

	// Calculate the intersection over union (IoU) of two clusters.
	return fd.classifier.ClusterDetections(faces, 0.2)
}

// Anchor detects the faces of img and returns the patch centering the boundary on the best one.
func (fd *FaceDetector) Anchor(img *image.NRGBA) (Patch, bool) {
	return FaceAnchor(fd.Detect(img), fd.MinQuality, img.Bounds().Dx(), img.Bounds().Dy())
}

// FaceAnchor picks the highest scoring detection above minQuality and converts it
// to percentages of a w×h container: the anchor moves to the face center and the
// size to the face span relative to the shorter image side.
func FaceAnchor(dets []pigo.Detection, minQuality float32, w, h int) (Patch, bool) {
	if w <= 0 || h <= 0 {
		return Patch{}, false
	}
	best := -1
	for i, d := range dets {
		if d.Q < minQuality {
			continue
		}
		if best < 0 || d.Q > dets[best].Q {
			best = i
		}
	}
	if best < 0 {
		return Patch{}, false
	}
	face := dets[best]
	side := float64(utils.Min(w, h))

	return Patch{}.
		WithPosition(float64(face.Col)/float64(w)*100, float64(face.Row)/float64(h)*100).
		WithSize(utils.Clamp(float64(face.Scale)/side*100, 0, 100)), true
}

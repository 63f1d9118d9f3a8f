package detect

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"

	"github.com/fotogo/gallery-core/internal/pix"
)

const (
	// pigoQualityThreshold rejects low-confidence detections.
	pigoQualityThreshold = 5.0
	// pigoClusterIoU merges overlapping detections of the same face.
	pigoClusterIoU = 0.18
)

// PigoFinder detects faces with the pigo cascade classifier. It is pure
// Go, so the face tier works without any native dependency.
type PigoFinder struct {
	classifier *pigo.Pigo
}

// NewPigoFinder unpacks a binary cascade model.
func NewPigoFinder(cascade []byte) (*PigoFinder, error) {
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpacking face cascade: %w", err)
	}
	return &PigoFinder{classifier: classifier}, nil
}

// NewPigoFinderFromFile loads a cascade model from disk. An empty path
// returns (nil, nil) so an unconfigured detector disables the tier
// instead of failing startup.
func NewPigoFinderFromFile(path string) (*PigoFinder, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading face cascade: %w", err)
	}
	return NewPigoFinder(data)
}

// LargestFace runs the cascade over the grayscale image and returns the
// bounding box of the largest clustered detection above the quality
// threshold.
func (f *PigoFinder) LargestFace(img *pix.Buffer) (image.Rectangle, bool) {
	params := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     max(img.W, img.H),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: img.GrayBytes(),
			Rows:   img.H,
			Cols:   img.W,
			Dim:    img.W,
		},
	}

	faces := f.classifier.RunCascade(params, 0)
	faces = f.classifier.ClusterDetections(faces, pigoClusterIoU)

	best := image.Rectangle{}
	found := false
	for _, face := range faces {
		if face.Q < pigoQualityThreshold {
			continue
		}
		rect := image.Rect(
			face.Col-face.Scale/2,
			face.Row-face.Scale/2,
			face.Col+face.Scale/2,
			face.Row+face.Scale/2,
		).Intersect(image.Rect(0, 0, img.W, img.H))
		if rect.Empty() {
			continue
		}
		if !found || rect.Dx()*rect.Dy() > best.Dx()*best.Dy() {
			best = rect
			found = true
		}
	}
	return best, found
}

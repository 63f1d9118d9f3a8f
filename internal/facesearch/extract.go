package facesearch

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/fotogo/gallery-core/internal/constants"
	"github.com/fotogo/gallery-core/internal/detect"
	"github.com/fotogo/gallery-core/internal/pix"
)

// Extractor turns photos into face feature vectors.
type Extractor struct {
	faces detect.FaceFinder
}

func NewExtractor(faces detect.FaceFinder) *Extractor {
	return &Extractor{faces: faces}
}

// Extract returns the feature vector of the largest face in the image.
// The second return is false when no face is found; absence is a state,
// never a zero vector.
func (e *Extractor) Extract(img *pix.Buffer) (Vector, bool) {
	if e.faces == nil {
		return nil, false
	}
	box, ok := e.faces.LargestFace(img)
	if !ok {
		return nil, false
	}

	chip := img.Crop(box.Min.X, box.Min.Y, box.Dx(), box.Dy())
	return vectorize(chip), true
}

// vectorize resizes a face chip to the canonical square, flattens its
// grayscale values and normalizes: zero mean, unit variance, then unit
// length. Normalizing twice makes cosine similarity insensitive to
// both exposure and contrast of the source photo.
func vectorize(chip *pix.Buffer) Vector {
	size := constants.FaceChipSize
	src := chip.ToImage()
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	gray := pix.FromImage(dst).Gray()

	var mean float64
	for _, v := range gray {
		mean += float64(v)
	}
	mean /= float64(len(gray))

	var variance float64
	for _, v := range gray {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(gray))
	std := math.Sqrt(variance)
	if std < 1e-6 {
		std = 1e-6
	}

	vec := make(Vector, len(gray))
	var norm float64
	for i, v := range gray {
		z := (float64(v) - mean) / std
		vec[i] = float32(z)
		norm += z * z
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		inv := float32(1 / norm)
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

// Package quality computes the subject-aware sharpness score used to
// flag out-of-focus images at ingestion and after every render.
package quality

import (
	"context"

	"github.com/fotogo/gallery-core/internal/detect"
	"github.com/fotogo/gallery-core/internal/pix"
)

// minROISize is the floor for the subject region of interest. Tiny ROIs
// make the Laplacian variance too noisy to compare against a threshold.
const minROISize = 80

// Scorer computes subject sharpness scores. The locator narrows the
// metric to a region around the subject so background bokeh does not
// penalize an in-focus portrait.
type Scorer struct {
	locator *detect.Locator
}

// NewScorer creates a scorer over the given locator. A nil locator
// always uses the centered fallback ROI.
func NewScorer(locator *detect.Locator) *Scorer {
	return &Scorer{locator: locator}
}

// SubjectSharpness returns the variance of the Laplacian of the
// grayscale subject ROI. Larger means sharper; a uniform ROI scores
// exactly 0. The function is total: every image yields a score.
//
// ROI priority: torso below the shoulder midpoint when pose landmarks
// are available, an enlarged face box otherwise, and finally the
// centered 40% x 60% of the frame.
func (s *Scorer) SubjectSharpness(ctx context.Context, img *pix.Buffer) float64 {
	roi := s.subjectROI(ctx, img)
	return LaplacianVariance(roi.Gray(), roi.W, roi.H)
}

func (s *Scorer) subjectROI(ctx context.Context, img *pix.Buffer) *pix.Buffer {
	if s.locator != nil {
		if left, right, dist, ok := s.locator.Shoulders(ctx, img); ok {
			cx := (left.X + right.X) / 2
			cy := (left.Y + right.Y) / 2
			roiW := clampInt(int(dist*1.2), minROISize, img.W)
			roiH := clampInt(int(dist*1.6), minROISize, img.H)
			// Shift the ROI down to cover the chest rather than the neck.
			cyOffset := int(0.4 * dist)
			x := clampInt(cx-roiW/2, 0, img.W-roiW)
			y := clampInt(cy+cyOffset-roiH/2, 0, img.H-roiH)
			return img.Crop(x, y, roiW, roiH)
		}

		if box, ok := s.locator.FaceBox(img); ok {
			cx := box.Min.X + box.Dx()/2
			cy := box.Min.Y + box.Dy()/2
			roiW := clampInt(int(float64(box.Dx())*1.6), minROISize, img.W)
			roiH := clampInt(int(float64(box.Dy())*2.0), minROISize, img.H)
			x := clampInt(cx-roiW/2, 0, img.W-roiW)
			y := clampInt(cy-roiH/2, 0, img.H-roiH)
			return img.Crop(x, y, roiW, roiH)
		}
	}

	roiW := img.W * 4 / 10
	roiH := img.H * 6 / 10
	if roiW < 1 {
		roiW = 1
	}
	if roiH < 1 {
		roiH = 1
	}
	return img.Crop((img.W-roiW)/2, (img.H-roiH)/2, roiW, roiH)
}

// LaplacianVariance convolves the grayscale plane with the 4-neighbor
// Laplacian kernel and returns the variance of the responses. Border
// pixels are excluded; images too small for the kernel score 0.
func LaplacianVariance(gray []float32, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}

	n := 0
	var sum, sumSq float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			lap := float64(gray[i-w] + gray[i+w] + gray[i-1] + gray[i+1] - 4*gray[i])
			sum += lap
			sumSq += lap * lap
			n++
		}
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		// Numerical noise on uniform input.
		return 0
	}
	return variance
}

// Discarded reports whether a sharpness score fails the minimum bar.
// A score exactly at the threshold is kept.
func Discarded(score, threshold float64) bool {
	return score < threshold
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

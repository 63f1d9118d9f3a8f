package quality

import (
	"context"
	"image"
	"testing"

	"github.com/fotogo/gallery-core/internal/detect"
	"github.com/fotogo/gallery-core/internal/pix"
)

func uniform(w, h int, v float32) *pix.Buffer {
	b := pix.New(w, h)
	for i := range b.Pix {
		b.Pix[i] = v
	}
	return b
}

func checkerboard(w, h int) *pix.Buffer {
	b := pix.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				b.Set(x, y, 1, 1, 1)
			}
		}
	}
	return b
}

func TestLaplacianVarianceUniform(t *testing.T) {
	img := uniform(50, 50, 0.7)
	if got := LaplacianVariance(img.Gray(), 50, 50); got != 0 {
		t.Errorf("uniform image variance = %f; want 0", got)
	}
}

func TestLaplacianVarianceNonNegative(t *testing.T) {
	imgs := map[string]*pix.Buffer{
		"uniform":      uniform(30, 30, 0.3),
		"checkerboard": checkerboard(30, 30),
		"tiny":         uniform(2, 2, 0.5),
	}
	for name, img := range imgs {
		if got := LaplacianVariance(img.Gray(), img.W, img.H); got < 0 {
			t.Errorf("%s variance = %f; want >= 0", name, got)
		}
	}
}

func TestLaplacianVarianceTooSmall(t *testing.T) {
	img := uniform(2, 2, 0.5)
	if got := LaplacianVariance(img.Gray(), 2, 2); got != 0 {
		t.Errorf("2x2 image variance = %f; want 0", got)
	}
}

func TestSharpBeatsBlurry(t *testing.T) {
	s := NewScorer(nil)
	sharp := s.SubjectSharpness(context.Background(), checkerboard(100, 100))
	blurry := s.SubjectSharpness(context.Background(), uniform(100, 100, 0.5))
	if sharp <= blurry {
		t.Errorf("checkerboard score %f not above uniform score %f", sharp, blurry)
	}
}

func TestDiscarded(t *testing.T) {
	tests := []struct {
		name      string
		score     float64
		threshold float64
		want      bool
	}{
		{"well below", 10, 39, true},
		{"just below", 38.999, 39, true},
		{"exactly at threshold is kept", 39, 39, false},
		{"above", 120, 39, false},
		{"zero threshold keeps everything", 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Discarded(tc.score, tc.threshold); got != tc.want {
				t.Errorf("Discarded(%f, %f) = %v; want %v", tc.score, tc.threshold, got, tc.want)
			}
		})
	}
}

type stubPose struct {
	lms []detect.Landmark
}

func (s stubPose) Landmarks(ctx context.Context, img *pix.Buffer) ([]detect.Landmark, error) {
	return s.lms, nil
}

type stubFace struct {
	box image.Rectangle
	ok  bool
}

func (s stubFace) LargestFace(img *pix.Buffer) (image.Rectangle, bool) {
	return s.box, s.ok
}

func TestSubjectROIPrefersTorso(t *testing.T) {
	// Sharp texture on the torso, uniform everywhere else; the
	// shoulders tier should find the texture, the fallback would not.
	img := uniform(400, 400, 0.5)
	for y := 180; y < 300; y++ {
		for x := 140; x < 260; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, 1, 1, 1)
			}
		}
	}

	pose := stubPose{lms: []detect.Landmark{
		{Name: "left_shoulder", X: 0.35, Y: 0.4, Visibility: 1},
		{Name: "right_shoulder", X: 0.65, Y: 0.4, Visibility: 1},
	}}

	withPose := NewScorer(detect.NewLocator(pose, nil)).SubjectSharpness(context.Background(), img)
	centered := NewScorer(nil).SubjectSharpness(context.Background(), img)
	if withPose <= centered {
		t.Errorf("torso ROI score %f not above centered fallback %f", withPose, centered)
	}
}

func TestSubjectROIFaceFallback(t *testing.T) {
	img := uniform(400, 400, 0.5)
	for y := 40; y < 160; y++ {
		for x := 40; x < 160; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, 1, 1, 1)
			}
		}
	}

	face := stubFace{box: image.Rect(60, 60, 140, 140), ok: true}
	withFace := NewScorer(detect.NewLocator(nil, face)).SubjectSharpness(context.Background(), img)
	centered := NewScorer(nil).SubjectSharpness(context.Background(), img)
	if withFace <= centered {
		t.Errorf("face ROI score %f not above centered fallback %f", withFace, centered)
	}
}

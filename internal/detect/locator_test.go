package detect

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/fotogo/gallery-core/internal/pix"
)

type stubPose struct {
	lms []Landmark
	err error
}

func (s *stubPose) Landmarks(ctx context.Context, img *pix.Buffer) ([]Landmark, error) {
	return s.lms, s.err
}

type stubFace struct {
	box image.Rectangle
	ok  bool
}

func (s *stubFace) LargestFace(img *pix.Buffer) (image.Rectangle, bool) {
	return s.box, s.ok
}

func TestLocateDirectLandmark(t *testing.T) {
	img := pix.New(200, 100)
	pose := &stubPose{lms: []Landmark{{Name: "nose", X: 0.25, Y: 0.5}}}
	l := NewLocator(pose, nil)

	a := l.Locate(context.Background(), img, "nose")
	if a.Name != "nose" || a.X != 50 || a.Y != 50 {
		t.Fatalf("got %+v, want nose at (50, 50)", a)
	}
}

func TestLocateCompositeAnchors(t *testing.T) {
	img := pix.New(200, 100)
	pose := &stubPose{lms: []Landmark{
		{Name: "left_shoulder", X: 0.2, Y: 0.4},
		{Name: "right_shoulder", X: 0.6, Y: 0.4},
		{Name: "left_hip", X: 0.3, Y: 0.8},
		{Name: "right_hip", X: 0.5, Y: 0.6},
	}}
	l := NewLocator(pose, nil)

	tests := []struct {
		anchor string
		x, y   int
	}{
		{"shoulders_center", 80, 40},
		{"hips_center", 80, 70},
	}
	for _, tt := range tests {
		a := l.Locate(context.Background(), img, tt.anchor)
		if a.Name != tt.anchor || a.X != tt.x || a.Y != tt.y {
			t.Errorf("%s: got %+v, want (%d, %d)", tt.anchor, a, tt.x, tt.y)
		}
	}
}

func TestLocateCompositeNeedsBothLandmarks(t *testing.T) {
	img := pix.New(100, 100)
	pose := &stubPose{lms: []Landmark{{Name: "left_shoulder", X: 0.2, Y: 0.4}}}
	l := NewLocator(pose, nil)

	a := l.Locate(context.Background(), img, "shoulders_center")
	if a.Name != "center" {
		t.Fatalf("expected center fallback with half a pair, got %+v", a)
	}
}

func TestLocateFaceTier(t *testing.T) {
	img := pix.New(200, 120)
	face := &stubFace{box: image.Rect(40, 20, 120, 100), ok: true}
	l := NewLocator(nil, face)

	tests := []struct {
		anchor string
		x, y   int
	}{
		{"eyes", 80, 48},
		{"nose", 80, 64},
		{"mouth", 80, 80},
		{"torso", 80, 60},
	}
	for _, tt := range tests {
		a := l.Locate(context.Background(), img, tt.anchor)
		if a.X != tt.x || a.Y != tt.y {
			t.Errorf("%s: got (%d, %d), want (%d, %d)", tt.anchor, a.X, a.Y, tt.x, tt.y)
		}
	}
}

func TestLocatePoseErrorFallsThrough(t *testing.T) {
	img := pix.New(100, 100)
	pose := &stubPose{err: errors.New("backend down")}
	face := &stubFace{box: image.Rect(10, 10, 50, 50), ok: true}
	l := NewLocator(pose, face)

	a := l.Locate(context.Background(), img, "nose")
	if a.X != 30 {
		t.Fatalf("expected face-tier anchor, got %+v", a)
	}
}

func TestLocateCenterFallback(t *testing.T) {
	img := pix.New(150, 90)
	l := NewLocator(nil, nil)

	a := l.Locate(context.Background(), img, "eyes")
	if a.Name != "center" || a.X != 75 || a.Y != 45 {
		t.Fatalf("got %+v, want center at (75, 45)", a)
	}
}

func TestShoulders(t *testing.T) {
	img := pix.New(100, 100)
	pose := &stubPose{lms: []Landmark{
		{Name: "left_shoulder", X: 0.2, Y: 0.5},
		{Name: "right_shoulder", X: 0.8, Y: 0.5},
	}}
	l := NewLocator(pose, nil)

	left, right, dist, ok := l.Shoulders(context.Background(), img)
	if !ok {
		t.Fatal("expected shoulders to resolve")
	}
	if left.X != 20 || right.X != 80 || left.Y != 50 {
		t.Fatalf("got left %+v right %+v", left, right)
	}
	if dist != 60 {
		t.Fatalf("got dist %v, want 60", dist)
	}
}

func TestShouldersMissingLandmark(t *testing.T) {
	img := pix.New(100, 100)
	pose := &stubPose{lms: []Landmark{{Name: "left_shoulder", X: 0.2, Y: 0.5}}}
	l := NewLocator(pose, nil)

	if _, _, _, ok := l.Shoulders(context.Background(), img); ok {
		t.Fatal("expected ok=false with one shoulder missing")
	}
}

func TestNewPigoFinderFromFileEmptyPath(t *testing.T) {
	f, err := NewPigoFinderFromFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != nil {
		t.Fatal("expected nil finder for empty path")
	}
}

func TestNewPigoFinderFromFileMissing(t *testing.T) {
	if _, err := NewPigoFinderFromFile("/nonexistent/cascade.bin"); err == nil {
		t.Fatal("expected error for missing cascade file")
	}
}

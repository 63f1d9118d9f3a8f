package detect

import (
	"context"
	"image"
	"math"

	"github.com/fotogo/gallery-core/internal/pix"
)

// Locator resolves anchors through the detector fallback chain. Either
// detector may be nil, which simply disables that tier.
type Locator struct {
	Pose PoseEstimator
	Face FaceFinder
}

// NewLocator builds a locator over the given detectors.
func NewLocator(pose PoseEstimator, face FaceFinder) *Locator {
	return &Locator{Pose: pose, Face: face}
}

// Locate resolves the requested anchor name to pixel coordinates. Tiers
// are tried in order (pose, face, center) and the first success wins.
// The geometric center tier always succeeds, so Locate is total.
func (l *Locator) Locate(ctx context.Context, img *pix.Buffer, anchor string) Anchor {
	if a, ok := l.poseAnchor(ctx, img, anchor); ok {
		return a
	}
	if a, ok := l.faceAnchor(img, anchor); ok {
		return a
	}
	return Anchor{Name: "center", X: img.W / 2, Y: img.H / 2}
}

// Landmarks returns the raw pose landmarks for an image, or nil when the
// pose tier is unavailable or finds no subject.
func (l *Locator) Landmarks(ctx context.Context, img *pix.Buffer) []Landmark {
	if l.Pose == nil {
		return nil
	}
	lms, err := l.Pose.Landmarks(ctx, img)
	if err != nil {
		return nil
	}
	return lms
}

// Shoulders returns the left and right shoulder positions in pixels and
// the distance between them. Used to size the subject-sharpness ROI.
func (l *Locator) Shoulders(ctx context.Context, img *pix.Buffer) (left, right Anchor, dist float64, ok bool) {
	lms := l.Landmarks(ctx, img)
	if lms == nil {
		return Anchor{}, Anchor{}, 0, false
	}
	byName := landmarkMap(lms)
	ls, lok := byName["left_shoulder"]
	rs, rok := byName["right_shoulder"]
	if !lok || !rok {
		return Anchor{}, Anchor{}, 0, false
	}
	left = Anchor{Name: "left_shoulder", X: int(ls.X * float64(img.W)), Y: int(ls.Y * float64(img.H))}
	right = Anchor{Name: "right_shoulder", X: int(rs.X * float64(img.W)), Y: int(rs.Y * float64(img.H))}
	dist = math.Hypot(float64(left.X-right.X), float64(left.Y-right.Y))
	return left, right, dist, true
}

// FaceBox returns the largest detected face bounding box.
func (l *Locator) FaceBox(img *pix.Buffer) (image.Rectangle, bool) {
	if l.Face == nil {
		return image.Rectangle{}, false
	}
	return l.Face.LargestFace(img)
}

// poseAnchor resolves an anchor from pose landmarks: a direct landmark
// name, or the composite midpoints shoulders_center and hips_center.
func (l *Locator) poseAnchor(ctx context.Context, img *pix.Buffer, anchor string) (Anchor, bool) {
	if anchor == "" {
		return Anchor{}, false
	}
	lms := l.Landmarks(ctx, img)
	if lms == nil {
		return Anchor{}, false
	}
	byName := landmarkMap(lms)

	if lm, ok := byName[anchor]; ok {
		return Anchor{Name: anchor, X: int(lm.X * float64(img.W)), Y: int(lm.Y * float64(img.H))}, true
	}

	var pair [2]string
	switch anchor {
	case "shoulders_center":
		pair = [2]string{"left_shoulder", "right_shoulder"}
	case "hips_center":
		pair = [2]string{"left_hip", "right_hip"}
	default:
		return Anchor{}, false
	}
	a, aok := byName[pair[0]]
	b, bok := byName[pair[1]]
	if !aok || !bok {
		return Anchor{}, false
	}
	return Anchor{
		Name: anchor,
		X:    int((a.X + b.X) * 0.5 * float64(img.W)),
		Y:    int((a.Y + b.Y) * 0.5 * float64(img.H)),
	}, true
}

// faceAnchor maps named anchors to fractional offsets inside the largest
// face box: eyes at 0.36 of the box height, nose at 0.55, mouth at 0.75.
// Any other name resolves to the box center.
func (l *Locator) faceAnchor(img *pix.Buffer, anchor string) (Anchor, bool) {
	box, ok := l.FaceBox(img)
	if !ok {
		return Anchor{}, false
	}
	cx := box.Min.X + box.Dx()/2
	cy := box.Min.Y + box.Dy()/2
	switch anchor {
	case "eyes":
		cy = box.Min.Y + int(float64(box.Dy())*0.36)
	case "nose":
		cy = box.Min.Y + int(float64(box.Dy())*0.55)
	case "mouth":
		cy = box.Min.Y + int(float64(box.Dy())*0.75)
	}
	return Anchor{Name: anchor, X: cx, Y: cy}, true
}

func landmarkMap(lms []Landmark) map[string]Landmark {
	m := make(map[string]Landmark, len(lms))
	for _, lm := range lms {
		m[lm.Name] = lm
	}
	return m
}

// Package detect resolves focal anchor points on an image through a
// chain of optional detectors: pose landmarks, face bounding box, and
// finally the geometric center. Detector backends are injected so the
// pipeline works (and tests run) with none of them linked.
package detect

import (
	"context"
	"image"

	"github.com/fotogo/gallery-core/internal/pix"
)

// Anchor is a named point of interest in a source image's pixel space.
// Anchors are recomputed per operation and never persisted; detectors
// are not guaranteed deterministic across backend versions.
type Anchor struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// Landmark is one pose landmark in normalized [0,1] image coordinates.
type Landmark struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
}

// PoseEstimator returns pose landmarks for an image. Implementations may
// call out to an external estimation backend; an error means the tier is
// unavailable for this image and the caller falls through.
type PoseEstimator interface {
	Landmarks(ctx context.Context, img *pix.Buffer) ([]Landmark, error)
}

// FaceFinder locates the largest face bounding box in an image. A false
// return means no face found (or the detector is unavailable), which is
// a fallthrough, not an error.
type FaceFinder interface {
	LargestFace(img *pix.Buffer) (image.Rectangle, bool)
}

// poseLandmarkNames lists the 33 landmarks in backend emission order.
var poseLandmarkNames = []string{
	"nose", "left_eye_inner", "left_eye", "left_eye_outer", "right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear", "mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder", "left_elbow", "right_elbow", "left_wrist", "right_wrist",
	"left_pinky", "right_pinky", "left_index", "right_index", "left_thumb", "right_thumb",
	"left_hip", "right_hip", "left_knee", "right_knee", "left_ankle", "right_ankle",
	"left_heel", "right_heel", "left_foot_index", "right_foot_index",
}

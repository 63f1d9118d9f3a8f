// Package cropper produces cropped buffers from explicit rectangles or
// anchor-driven aspect/zoom specifications.
package cropper

import (
	"context"
	"math"

	"github.com/fotogo/gallery-core/internal/detect"
	"github.com/fotogo/gallery-core/internal/pix"
)

// Crop modes. The legacy names "normal" and "face" are accepted on the
// wire for compatibility with existing gallery clients.
const (
	ModeNone     = "none"
	ModeRect     = "rect"
	ModeAnchored = "anchored"
)

// Rect is an absolute pixel rectangle in the pre-crop coordinate space.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Spec is the tagged crop specification: pass-through, an explicit
// rectangle, or an anchored aspect-ratio crop resolved via the subject
// locator.
type Spec struct {
	Mode   string  `json:"mode"`
	Rect   *Rect   `json:"rect,omitempty"`
	Aspect float64 `json:"aspect,omitempty"`
	Zoom   float64 `json:"zoom,omitempty"`
	Anchor string  `json:"anchor,omitempty"`
}

// None returns the pass-through spec.
func None() Spec {
	return Spec{Mode: ModeNone}
}

// normalizedMode maps wire aliases onto the canonical mode names.
func (s Spec) normalizedMode() string {
	switch s.Mode {
	case ModeRect, "normal":
		return ModeRect
	case ModeAnchored, "face":
		return ModeAnchored
	default:
		return ModeNone
	}
}

// Engine crops buffers, resolving anchored specs through a locator.
type Engine struct {
	locator *detect.Locator
}

// New creates a crop engine. The locator may be nil, in which case
// anchored crops center on the geometric image center.
func New(locator *detect.Locator) *Engine {
	return &Engine{locator: locator}
}

// Crop applies the spec and returns a new buffer. It never fails:
// out-of-bounds rectangles are clamped and a missing anchor falls back
// to the image center.
func (e *Engine) Crop(ctx context.Context, img *pix.Buffer, spec Spec) *pix.Buffer {
	switch spec.normalizedMode() {
	case ModeRect:
		if spec.Rect == nil {
			return img.Clone()
		}
		return img.Crop(spec.Rect.X, spec.Rect.Y, spec.Rect.W, spec.Rect.H)
	case ModeAnchored:
		return e.cropAnchored(ctx, img, spec)
	default:
		return img.Clone()
	}
}

// cropAnchored computes the largest rectangle of the requested aspect
// that fits the image, shrinks it by the zoom factor, centers it on the
// resolved anchor and translates it the minimum amount needed to stay
// inside the image bounds.
func (e *Engine) cropAnchored(ctx context.Context, img *pix.Buffer, spec Spec) *pix.Buffer {
	anchor := detect.Anchor{Name: "center", X: img.W / 2, Y: img.H / 2}
	if e.locator != nil {
		anchor = e.locator.Locate(ctx, img, spec.Anchor)
	}

	maxW, maxH := maxAspectRect(img.W, img.H, spec.Aspect)

	zoom := spec.Zoom
	if zoom < 1 {
		zoom = 1
	}
	w := int(math.Round(float64(maxW) / zoom))
	h := int(math.Round(float64(maxH) / zoom))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	x := int(math.Round(float64(anchor.X) - float64(w)/2))
	y := int(math.Round(float64(anchor.Y) - float64(h)/2))
	x = clampInt(x, 0, img.W-w)
	y = clampInt(y, 0, img.H-h)

	return img.Crop(x, y, w, h)
}

// maxAspectRect returns the largest width/height pair of the given
// aspect ratio (width/height) that fits inside w x h. Non-positive
// aspect values default to square.
func maxAspectRect(w, h int, aspect float64) (int, int) {
	if aspect <= 0 {
		aspect = 1.0
	}
	heightFromWidth := int(math.Round(float64(w) / aspect))
	if heightFromWidth <= h {
		if heightFromWidth < 1 {
			heightFromWidth = 1
		}
		return w, heightFromWidth
	}
	widthFromHeight := int(math.Round(float64(h) * aspect))
	if widthFromHeight < 1 {
		widthFromHeight = 1
	}
	return widthFromHeight, h
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

// Package pix provides the owned RGB pixel buffer that all image
// transforms in this repository operate on. A Buffer stores one float32
// per channel in [0, 1], row-major, which keeps the adjustment math free
// of repeated 8-bit quantization between stages.
package pix

import "math"

// Buffer is a mutable 3-channel RGB pixel grid. Pix holds W*H*3 float32
// values in [0, 1], interleaved RGB, row-major. Transforms never alias:
// each pipeline stage consumes one buffer and allocates a new one.
type Buffer struct {
	W, H int
	Pix  []float32
}

// New allocates a zeroed buffer. Dimensions below 1 are raised to 1.
func New(w, h int) *Buffer {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Buffer{W: w, H: h, Pix: make([]float32, w*h*3)}
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{W: b.W, H: b.H, Pix: make([]float32, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// At returns the RGB triple at (x, y). Coordinates must be in bounds.
func (b *Buffer) At(x, y int) (r, g, bl float32) {
	i := (y*b.W + x) * 3
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// Set writes the RGB triple at (x, y). Coordinates must be in bounds.
func (b *Buffer) Set(x, y int, r, g, bl float32) {
	i := (y*b.W + x) * 3
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = r, g, bl
}

// Crop returns a copy of the sub-rectangle. The rectangle is clamped into
// the buffer first: x, y into [0, W-1]/[0, H-1] and w, h into
// [1, W-x]/[1, H-y], so any input yields a valid, non-empty result.
func (b *Buffer) Crop(x, y, w, h int) *Buffer {
	x = clampInt(x, 0, b.W-1)
	y = clampInt(y, 0, b.H-1)
	w = clampInt(w, 1, b.W-x)
	h = clampInt(h, 1, b.H-y)

	out := New(w, h)
	for row := 0; row < h; row++ {
		src := ((y+row)*b.W + x) * 3
		dst := row * w * 3
		copy(out.Pix[dst:dst+w*3], b.Pix[src:src+w*3])
	}
	return out
}

// Gray returns the luma plane at 0..255 scale using the ITU-R BT.601
// weights, row-major. The 0..255 scale keeps Laplacian-variance scores
// comparable with the values the discard threshold was calibrated on.
func (b *Buffer) Gray() []float32 {
	out := make([]float32, b.W*b.H)
	for i, j := 0, 0; i < len(out); i, j = i+1, j+3 {
		out[i] = (0.299*b.Pix[j] + 0.587*b.Pix[j+1] + 0.114*b.Pix[j+2]) * 255.0
	}
	return out
}

// GrayBytes returns the luma plane quantized to uint8, row-major. Used by
// the pigo face detector which expects 8-bit grayscale input.
func (b *Buffer) GrayBytes() []uint8 {
	gray := b.Gray()
	out := make([]uint8, len(gray))
	for i, v := range gray {
		out[i] = uint8(clamp01(float64(v)/255.0)*255.0 + 0.5)
	}
	return out
}

// Clamp forces every channel value into [0, 1] in place and returns the
// receiver for chaining.
func (b *Buffer) Clamp() *Buffer {
	for i, v := range b.Pix {
		if v < 0 {
			b.Pix[i] = 0
		} else if v > 1 {
			b.Pix[i] = 1
		}
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

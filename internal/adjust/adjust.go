// Package adjust implements the deterministic image adjustment pipeline.
// Apply is a pure function over a pixel buffer: same input and params
// always produce the same output, and no input can make it fail.
package adjust

import (
	"math"

	"github.com/fotogo/gallery-core/internal/pix"
)

// Apply runs the ordered adjustment stages over src and returns a new
// buffer. Stage order is semantically significant; each stage sees the
// previous stage's output clamped to [0, 1]. The source buffer is never
// modified.
func Apply(src *pix.Buffer, p Params) *pix.Buffer {
	p = p.clamped()
	out := src.Clone()
	if p.IsNeutral() {
		return out
	}

	applyExposure(out, p.Exposure)
	applyGamma(out, p.Gamma)
	applyBrightness(out, p.Brightness)
	applyShadowsHighlights(out, p.Shadows, p.Highlights)
	applyCurves(out, p.CurvesStrength)
	applyTemperature(out, p.Temperature)
	applySaturationVibrance(out, p.Saturation, p.Vibrance)
	applyContrast(out, p.Contrast)
	applyVignette(out, p.Vignette)

	return out
}

// applyExposure multiplies every channel by 2^exposure.
func applyExposure(b *pix.Buffer, exposure float64) {
	if exposure == 0 {
		return
	}
	gain := float32(math.Pow(2, exposure))
	for i, v := range b.Pix {
		b.Pix[i] = clamp01f(v * gain)
	}
}

// applyGamma raises every channel to the power 1/gamma.
func applyGamma(b *pix.Buffer, gamma float64) {
	if gamma == 1 {
		return
	}
	inv := 1.0 / gamma
	for i, v := range b.Pix {
		b.Pix[i] = clamp01f(float32(math.Pow(float64(v), inv)))
	}
}

// applyBrightness adds a constant offset of brightness/255.
func applyBrightness(b *pix.Buffer, brightness float64) {
	if brightness == 0 {
		return
	}
	offset := float32(brightness / 255.0)
	for i, v := range b.Pix {
		b.Pix[i] = clamp01f(v + offset)
	}
}

// applyShadowsHighlights compresses shadow and highlight pixels toward
// the 0.5 midpoint. Pixels are split by a luminance threshold of 0.5:
// shadow pixels move by shadows/100 of their distance to 0.5, highlight
// pixels by highlights/100.
func applyShadowsHighlights(b *pix.Buffer, shadows, highlights float64) {
	if shadows == 0 && highlights == 0 {
		return
	}
	sGain := float32(shadows / 100.0)
	hGain := float32(highlights / 100.0)
	for i := 0; i < len(b.Pix); i += 3 {
		r, g, bl := b.Pix[i], b.Pix[i+1], b.Pix[i+2]
		lum := 0.299*r + 0.587*g + 0.114*bl
		for c := 0; c < 3; c++ {
			v := b.Pix[i+c]
			if lum < 0.5 {
				v += sGain * (0.5 - v)
			} else {
				v -= hGain * (v - 0.5)
			}
			b.Pix[i+c] = clamp01f(v)
		}
	}
}

// applyCurves applies a logistic S-curve centered at 0.5 with steepness
// k = 10*strength. Strength 0 is a no-op.
func applyCurves(b *pix.Buffer, strength float64) {
	if strength <= 0 {
		return
	}
	k := 10.0 * strength
	for i, v := range b.Pix {
		b.Pix[i] = clamp01f(float32(1.0 / (1.0 + math.Exp(-k*(float64(v)-0.5)))))
	}
}

// applyTemperature warms or cools the image by shifting the red channel
// by +0.1*(t/100) and the blue channel by the negated amount.
func applyTemperature(b *pix.Buffer, temperature float64) {
	if temperature == 0 {
		return
	}
	shift := float32(0.1 * temperature / 100.0)
	for i := 0; i < len(b.Pix); i += 3 {
		b.Pix[i] = clamp01f(b.Pix[i] + shift)
		b.Pix[i+2] = clamp01f(b.Pix[i+2] - shift)
	}
}

// applySaturationVibrance adjusts the HSV saturation channel. Saturation
// scales S multiplicatively by 1+saturation/100. Vibrance pushes S toward
// full saturation proportionally to (1-S), so muted colors move more than
// colors that are already saturated.
func applySaturationVibrance(b *pix.Buffer, saturation, vibrance float64) {
	if saturation == 0 && vibrance == 0 {
		return
	}
	sGain := float32(1.0 + saturation/100.0)
	vib := float32(vibrance / 100.0)
	for i := 0; i < len(b.Pix); i += 3 {
		h, s, v := rgbToHSV(b.Pix[i], b.Pix[i+1], b.Pix[i+2])
		if saturation != 0 {
			s *= sGain
		}
		if vibrance != 0 {
			s += vib * (1 - s)
		}
		s = clamp01f(s)
		r, g, bl := hsvToRGB(h, s, v)
		b.Pix[i] = clamp01f(r)
		b.Pix[i+1] = clamp01f(g)
		b.Pix[i+2] = clamp01f(bl)
	}
}

// applyContrast scales every channel around the 0.5 midpoint by
// 1+contrast/100.
func applyContrast(b *pix.Buffer, contrast float64) {
	if contrast == 0 {
		return
	}
	k := float32(1.0 + contrast/100.0)
	for i, v := range b.Pix {
		b.Pix[i] = clamp01f((v-0.5)*k + 0.5)
	}
}

// applyVignette darkens pixels by 1 - v*d^2 where d is the normalized
// elliptical distance from the image center (0 at center, 1 on the
// edge-respecting ellipse boundary).
func applyVignette(b *pix.Buffer, vignette float64) {
	if vignette <= 0 {
		return
	}
	cx := float64(b.W) / 2.0
	cy := float64(b.H) / 2.0
	if cx < 1e-6 {
		cx = 1e-6
	}
	if cy < 1e-6 {
		cy = 1e-6
	}
	for y := 0; y < b.H; y++ {
		ry := (float64(y) - cy) / cy
		for x := 0; x < b.W; x++ {
			rx := (float64(x) - cx) / cx
			d := math.Min(math.Hypot(rx, ry), 1.0)
			mask := float32(math.Max(1.0-vignette*d*d, 0.0))
			i := (y*b.W + x) * 3
			b.Pix[i] *= mask
			b.Pix[i+1] *= mask
			b.Pix[i+2] *= mask
		}
	}
}

func clamp01f(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

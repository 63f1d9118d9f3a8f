package adjust

import (
	"encoding/json"
	"testing"

	"github.com/fotogo/gallery-core/internal/pix"
)

func gradient(w, h int) *pix.Buffer {
	b := pix.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float32(x) / float32(w-1)
			b.Set(x, y, v, 1-v, float32(y)/float32(h-1))
		}
	}
	return b
}

func buffersEqual(a, b *pix.Buffer, tol float32) bool {
	if a.W != b.W || a.H != b.H {
		return false
	}
	for i := range a.Pix {
		d := a.Pix[i] - b.Pix[i]
		if d > tol || d < -tol {
			return false
		}
	}
	return true
}

func TestApplyNeutralIsIdentity(t *testing.T) {
	src := gradient(32, 24)
	got := Apply(src, Neutral())
	if !buffersEqual(src, got, 0) {
		t.Error("neutral params changed the image")
	}

	// The neutral short circuit still returns a fresh buffer.
	got.Pix[0] = 0.123
	if src.Pix[0] == 0.123 {
		t.Error("neutral output shares memory with the source")
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	src := gradient(32, 24)
	p := Params{Exposure: 0.7, Contrast: 35, Saturation: -20, Vignette: 0.4}

	first := Apply(src, p)
	second := Apply(src, p)
	if !buffersEqual(first, second, 0) {
		t.Error("same params on same input produced different outputs")
	}
}

func TestApplyDoesNotModifySource(t *testing.T) {
	src := gradient(16, 16)
	before := src.Clone()
	Apply(src, Params{Exposure: 1.5, Contrast: 80})
	if !buffersEqual(src, before, 0) {
		t.Error("Apply modified its input buffer")
	}
}

func TestApplyOutputStaysInRange(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"extreme exposure", Params{Exposure: 1e6}},
		{"extreme negative exposure", Params{Exposure: -1e6}},
		{"extreme contrast", Params{Contrast: 10000}},
		{"extreme brightness", Params{Brightness: 99999}},
		{"tiny gamma", Params{Gamma: 1e-9}},
		{"everything at once", Params{
			Exposure: 2, Gamma: 5, Brightness: 100, Shadows: 100,
			Highlights: -100, CurvesStrength: 1, Temperature: 100,
			Saturation: 100, Vibrance: 100, Contrast: 100, Vignette: 1,
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Apply(gradient(16, 16), tc.params)
			for i, v := range got.Pix {
				if v < 0 || v > 1 {
					t.Fatalf("pixel %d out of range: %f", i, v)
				}
			}
		})
	}
}

func TestParamsSparseJSON(t *testing.T) {
	var p Params
	if err := json.Unmarshal([]byte(`{"contrast": 25}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Contrast != 25 {
		t.Errorf("Contrast = %f; want 25", p.Contrast)
	}
	if p.Gamma != 1 {
		t.Errorf("Gamma = %f; want neutral 1 for unspecified field", p.Gamma)
	}
	if p.IsNeutral() {
		t.Error("params with contrast should not be neutral")
	}
}

func TestIsNeutral(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   bool
	}{
		{"neutral", Neutral(), true},
		{"zero value counts as neutral", Params{}, true},
		{"out of range clamps to neutral", Params{Vignette: -5}, true},
		{"exposure set", Params{Exposure: 0.1}, false},
		{"gamma set", Params{Gamma: 2}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.params.IsNeutral(); got != tc.want {
				t.Errorf("IsNeutral() = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestApplyExposureBrightens(t *testing.T) {
	src := gradient(8, 8)
	got := Apply(src, Params{Exposure: 1})

	r0, _, _ := src.At(4, 4)
	r1, _, _ := got.At(4, 4)
	if r1 <= r0 {
		t.Errorf("positive exposure did not brighten: %f -> %f", r0, r1)
	}
}

func TestApplyVignetteDarkensCorners(t *testing.T) {
	b := pix.New(32, 32)
	for i := range b.Pix {
		b.Pix[i] = 0.8
	}
	got := Apply(b, Params{Vignette: 0.8})

	corner, _, _ := got.At(0, 0)
	center, _, _ := got.At(16, 16)
	if corner >= center {
		t.Errorf("vignette corner %f not darker than center %f", corner, center)
	}
}

package adjust

import "encoding/json"

// Params is the flat numeric parameter set for one adjustment pass.
// Every field has a legal interval and a neutral default; values outside
// the interval are clamped before use, never rejected.
type Params struct {
	Exposure       float64 `json:"exposure"`        // [-2, 2], neutral 0, multiplier 2^x
	Gamma          float64 `json:"gamma"`           // [0.1, 5], neutral 1
	Brightness     float64 `json:"brightness"`      // [-100, 100], neutral 0
	Shadows        float64 `json:"shadows"`         // [-100, 100], neutral 0
	Highlights     float64 `json:"highlights"`      // [-100, 100], neutral 0
	CurvesStrength float64 `json:"curves_strength"` // [0, 1], neutral 0
	Temperature    float64 `json:"temperature"`     // [-100, 100], neutral 0
	Saturation     float64 `json:"saturation"`      // [-100, 100], neutral 0
	Vibrance       float64 `json:"vibrance"`        // [-100, 100], neutral 0
	Contrast       float64 `json:"contrast"`        // [-100, 100], neutral 0
	Vignette       float64 `json:"vignette"`        // [0, 1], neutral 0
}

// Neutral returns the parameter set that leaves an image unchanged.
func Neutral() Params {
	return Params{Gamma: 1}
}

// UnmarshalJSON decodes a possibly sparse parameter object. Missing
// fields keep their neutral default, so a client may send only the
// sliders the user touched.
func (p *Params) UnmarshalJSON(data []byte) error {
	type alias Params
	a := alias(Neutral())
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = Params(a)
	return nil
}

// IsNeutral reports whether applying the params would be an identity
// transform.
func (p Params) IsNeutral() bool {
	return p.clamped() == Neutral()
}

// clamped returns a copy with every field forced into its legal interval.
// A zero Gamma means "unset" and resolves to the neutral 1, so a Params
// struct literal that only names some fields behaves like a sparse input.
func (p Params) clamped() Params {
	if p.Gamma == 0 {
		p.Gamma = 1
	}
	p.Exposure = clampF(p.Exposure, -2, 2)
	p.Gamma = clampF(p.Gamma, 0.1, 5)
	p.Brightness = clampF(p.Brightness, -100, 100)
	p.Shadows = clampF(p.Shadows, -100, 100)
	p.Highlights = clampF(p.Highlights, -100, 100)
	p.CurvesStrength = clampF(p.CurvesStrength, 0, 1)
	p.Temperature = clampF(p.Temperature, -100, 100)
	p.Saturation = clampF(p.Saturation, -100, 100)
	p.Vibrance = clampF(p.Vibrance, -100, 100)
	p.Contrast = clampF(p.Contrast, -100, 100)
	p.Vignette = clampF(p.Vignette, 0, 1)
	return p
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

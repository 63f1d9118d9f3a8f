package adjust

// rgbToHSV converts an RGB triple in [0,1] to hue [0,6), saturation and
// value in [0,1]. Hue stays in sixths of the wheel to skip a needless
// division and multiplication on the round trip.
func rgbToHSV(r, g, b float32) (h, s, v float32) {
	maxC := r
	if g > maxC {
		maxC = g
	}
	if b > maxC {
		maxC = b
	}
	minC := r
	if g < minC {
		minC = g
	}
	if b < minC {
		minC = b
	}

	v = maxC
	delta := maxC - minC
	if maxC > 0 {
		s = delta / maxC
	}
	if delta == 0 {
		return 0, s, v
	}

	switch maxC {
	case r:
		h = (g - b) / delta
		if h < 0 {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}
	return h, s, v
}

// hsvToRGB is the inverse of rgbToHSV; h is in [0,6).
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	if s == 0 {
		return v, v, v
	}
	sector := int(h) % 6
	f := h - float32(int(h))
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch sector {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

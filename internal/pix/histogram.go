package pix

// Histogram holds 256-bin per-channel counts for an RGB buffer.
type Histogram struct {
	R [256]int `json:"r"`
	G [256]int `json:"g"`
	B [256]int `json:"b"`
}

// ComputeHistogram counts 8-bit quantized channel values across the
// whole buffer.
func ComputeHistogram(b *Buffer) *Histogram {
	var h Histogram
	for i := 0; i < len(b.Pix); i += 3 {
		h.R[quantize(b.Pix[i])]++
		h.G[quantize(b.Pix[i+1])]++
		h.B[quantize(b.Pix[i+2])]++
	}
	return &h
}

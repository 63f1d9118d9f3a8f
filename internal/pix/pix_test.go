package pix

import (
	"errors"
	"testing"
)

func testBuffer(w, h int) *Buffer {
	b := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float32(x+y) / float32(w+h)
			b.Set(x, y, v, v/2, 1-v)
		}
	}
	return b
}

func TestCropClamping(t *testing.T) {
	tests := []struct {
		name       string
		x, y, w, h int
		wantW      int
		wantH      int
	}{
		{"inside", 10, 10, 20, 20, 20, 20},
		{"negative origin", -5, -5, 20, 20, 20, 20},
		{"origin past edge", 200, 200, 10, 10, 1, 1},
		{"oversize extent", 90, 90, 50, 50, 10, 10},
		{"zero extent", 10, 10, 0, 0, 1, 1},
		{"full image", 0, 0, 100, 100, 100, 100},
	}

	src := testBuffer(100, 100)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := src.Crop(tc.x, tc.y, tc.w, tc.h)
			if got.W != tc.wantW || got.H != tc.wantH {
				t.Errorf("Crop(%d,%d,%d,%d) = %dx%d; want %dx%d",
					tc.x, tc.y, tc.w, tc.h, got.W, got.H, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestCropDoesNotShareMemory(t *testing.T) {
	src := testBuffer(10, 10)
	crop := src.Crop(2, 2, 4, 4)
	crop.Set(0, 0, 0.123, 0.123, 0.123)

	r, _, _ := src.At(2, 2)
	if r == 0.123 {
		t.Error("writing to crop modified the source buffer")
	}
}

func TestGrayScale(t *testing.T) {
	b := New(2, 1)
	b.Set(0, 0, 1, 1, 1)
	b.Set(1, 0, 0, 0, 0)

	gray := b.Gray()
	if gray[0] < 254.9 || gray[0] > 255.1 {
		t.Errorf("white pixel gray = %f; want 255", gray[0])
	}
	if gray[1] != 0 {
		t.Errorf("black pixel gray = %f; want 0", gray[1])
	}
}

func TestDecodeInvalidData(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("Decode(garbage) error = %v; want ErrDecode", err)
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	src := testBuffer(16, 12)
	data, err := EncodePNG(src)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.W != src.W || got.H != src.H {
		t.Errorf("round trip size = %dx%d; want %dx%d", got.W, got.H, src.W, src.H)
	}

	r0, _, _ := src.At(5, 5)
	r1, _, _ := got.At(5, 5)
	if diff := r0 - r1; diff > 0.01 || diff < -0.01 {
		t.Errorf("round trip pixel drifted: %f vs %f", r0, r1)
	}
}

func TestComputeHistogram(t *testing.T) {
	b := New(4, 1)
	for x := 0; x < 4; x++ {
		b.Set(x, 0, 1, 0, 0.5)
	}

	h := ComputeHistogram(b)
	if h.R[255] != 4 {
		t.Errorf("R[255] = %d; want 4", h.R[255])
	}
	if h.G[0] != 4 {
		t.Errorf("G[0] = %d; want 4", h.G[0])
	}

	total := 0
	for _, c := range h.B {
		total += c
	}
	if total != 4 {
		t.Errorf("B histogram total = %d; want 4", total)
	}
}

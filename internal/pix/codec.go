package pix

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
)

// ErrDecode reports that a byte slice is not a valid image. It is fatal
// for that single image and is never retried automatically.
var ErrDecode = errors.New("not a valid image")

// Decode parses PNG, JPEG, GIF or BMP bytes into a Buffer.
func Decode(data []byte) (*Buffer, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	return FromImage(img), nil
}

// FromImage converts any image.Image into an owned Buffer.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	out := New(bounds.Dx(), bounds.Dy())
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out.Pix[i] = float32(r) / 65535.0
			out.Pix[i+1] = float32(g) / 65535.0
			out.Pix[i+2] = float32(b) / 65535.0
			i += 3
		}
	}
	return out
}

// ToImage converts a Buffer to an 8-bit NRGBA image, clamping channels.
func (b *Buffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			i := (y*b.W + x) * 3
			o := img.PixOffset(x, y)
			img.Pix[o] = quantize(b.Pix[i])
			img.Pix[o+1] = quantize(b.Pix[i+1])
			img.Pix[o+2] = quantize(b.Pix[i+2])
			img.Pix[o+3] = 0xff
		}
	}
	return img
}

// EncodePNG serializes the buffer as PNG. Compression favors speed over
// size, matching how derived previews are written throughout the gallery.
func EncodePNG(b *Buffer) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, b.ToImage()); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG serializes the buffer as JPEG with the given quality.
func EncodeJPEG(b *Buffer, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, b.ToImage(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func quantize(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255.0 + 0.5)
}

package gallery

import (
	"fmt"
	"image"
	"path"

	"github.com/disintegration/imaging"

	"github.com/fotogo/gallery-core/internal/constants"
	"github.com/fotogo/gallery-core/internal/pix"
)

// Watermarker produces reduced, watermarked derivatives of gallery
// photos. Derivatives are cached in the blob store and rebuilt lazily
// when missing, so face-search results never hand out clean
// full-resolution bytes.
type Watermarker struct {
	blobs   BlobStore
	index   Index
	overlay image.Image
	opacity float64
}

// NewWatermarker loads the overlay asset from the blob store. A
// missing or undecodable asset is not fatal; a diagonal stripe pattern
// is drawn instead.
func NewWatermarker(blobs BlobStore, index Index, overlayPath string, opacity float64) *Watermarker {
	w := &Watermarker{blobs: blobs, index: index, opacity: opacity}
	if overlayPath != "" {
		if data, err := blobs.Load(overlayPath); err == nil {
			if img, err := pix.Decode(data); err == nil {
				w.overlay = img.ToImage()
			}
		}
	}
	return w
}

func watermarkedPath(eventID, recordID string) string {
	return path.Join("events", eventID, "gallery", "watermarked", recordID+".png")
}

// Derivative returns the blob path of the watermarked derivative for a
// record, building and caching it on first use. The source is the
// edited render when present, the original otherwise.
func (w *Watermarker) Derivative(eventID, recordID string) (string, error) {
	rel := watermarkedPath(eventID, recordID)
	if _, err := w.blobs.Load(rel); err == nil {
		return rel, nil
	}

	rec, err := w.index.Get(eventID, recordID)
	if err != nil {
		return "", err
	}
	src := rec.EditedPath
	if src == "" {
		src = rec.OriginalPath
	}
	data, err := w.blobs.Load(src)
	if err != nil {
		return "", err
	}
	img, err := pix.Decode(data)
	if err != nil {
		return "", err
	}

	out := w.render(img)
	encoded, err := pix.EncodePNG(out)
	if err != nil {
		return "", fmt.Errorf("encoding watermarked derivative: %w", err)
	}
	if err := w.blobs.Store(rel, encoded); err != nil {
		return "", err
	}
	return rel, nil
}

// LoadDerivative loads the bytes of a previously built derivative.
func (w *Watermarker) LoadDerivative(rel string) ([]byte, error) {
	return w.blobs.Load(rel)
}

func (w *Watermarker) render(img *pix.Buffer) *pix.Buffer {
	nrgba := imaging.Fit(img.ToImage(), constants.WatermarkMaxSize, constants.WatermarkMaxSize, imaging.Lanczos)

	if w.overlay != nil {
		b := nrgba.Bounds()
		ov := imaging.Fit(w.overlay, b.Dx(), b.Dy(), imaging.Lanczos)
		pos := image.Pt(
			(b.Dx()-ov.Bounds().Dx())/2,
			(b.Dy()-ov.Bounds().Dy())/2,
		)
		nrgba = imaging.Overlay(nrgba, ov, pos, w.opacity)
		return pix.FromImage(nrgba)
	}

	// No asset configured: darken diagonal stripes across the frame.
	out := pix.FromImage(nrgba)
	stride := out.W / 8
	if stride < 32 {
		stride = 32
	}
	factor := float32(1 - w.opacity/2)
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			if ((x+y)/stride)%2 == 0 {
				continue
			}
			r, g, b := out.At(x, y)
			out.Set(x, y, r*factor, g*factor, b*factor)
		}
	}
	return out
}

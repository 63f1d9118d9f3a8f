package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fotogo/gallery-core/internal/adjust"
	"github.com/fotogo/gallery-core/internal/constants"
	"github.com/fotogo/gallery-core/internal/cropper"
	"github.com/fotogo/gallery-core/internal/pix"
	"github.com/fotogo/gallery-core/internal/quality"
)

// ImagesHandler handles stateless single-image operations: preview an
// adjustment, preview a crop, score quality. The photo goes in a
// multipart field named "photo", parameters in a JSON field.
type ImagesHandler struct {
	crops            *cropper.Engine
	scorer           *quality.Scorer
	discardThreshold float64
}

// NewImagesHandler creates a new images handler.
func NewImagesHandler(crops *cropper.Engine, scorer *quality.Scorer, discardThreshold float64) *ImagesHandler {
	return &ImagesHandler{
		crops:            crops,
		scorer:           scorer,
		discardThreshold: discardThreshold,
	}
}

// readPhoto extracts and decodes the "photo" multipart field.
func readPhoto(r *http.Request) (*pix.Buffer, error) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		return nil, errors.New("failed to parse multipart form")
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		return nil, errors.New("photo is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read photo")
	}
	return pix.Decode(data)
}

func writePNG(w http.ResponseWriter, img *pix.Buffer) {
	encoded, err := pix.EncodePNG(img)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode result")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(encoded)
}

// Adjust applies adjustment parameters to an uploaded photo and
// returns the rendered PNG. Unspecified parameters stay neutral.
func (h *ImagesHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	img, err := readPhoto(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := adjust.Neutral()
	if raw := r.FormValue("params"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			respondError(w, http.StatusBadRequest, "invalid params")
			return
		}
	}

	writePNG(w, adjust.Apply(img, params))
}

// Crop applies a crop specification to an uploaded photo and returns
// the cropped PNG.
func (h *ImagesHandler) Crop(w http.ResponseWriter, r *http.Request) {
	img, err := readPhoto(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	spec := cropper.None()
	if raw := r.FormValue("crop"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &spec); err != nil {
			respondError(w, http.StatusBadRequest, "invalid crop")
			return
		}
	}

	writePNG(w, h.crops.Crop(r.Context(), img, spec))
}

type qualityResponse struct {
	Sharpness float64        `json:"sharpness"`
	Discarded bool           `json:"discarded"`
	Histogram *pix.Histogram `json:"histogram"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
}

// Quality scores an uploaded photo: subject sharpness, the discard
// verdict against the configured (or per-request) threshold, and the
// RGB histogram.
func (h *ImagesHandler) Quality(w http.ResponseWriter, r *http.Request) {
	img, err := readPhoto(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	threshold := h.discardThreshold
	if raw := r.FormValue("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid threshold")
			return
		}
		threshold = v
	}

	sharpness := h.scorer.SubjectSharpness(r.Context(), img)
	respondJSON(w, http.StatusOK, qualityResponse{
		Sharpness: sharpness,
		Discarded: quality.Discarded(sharpness, threshold),
		Histogram: pix.ComputeHistogram(img),
		Width:     img.W,
		Height:    img.H,
	})
}

package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fotogo/gallery-core/internal/constants"
	"github.com/fotogo/gallery-core/internal/facesearch"
	"github.com/fotogo/gallery-core/internal/gallery"
	"github.com/fotogo/gallery-core/internal/pix"
)

// FaceSearchHandler handles the public visitor-facing face search. No
// authentication: an event id and a selfie are all a visitor has.
// Results expose only watermarked derivatives.
type FaceSearchHandler struct {
	searcher    *facesearch.Searcher
	watermarker *gallery.Watermarker
	threshold   float64
}

// NewFaceSearchHandler creates a new face search handler.
func NewFaceSearchHandler(searcher *facesearch.Searcher, watermarker *gallery.Watermarker, threshold float64) *FaceSearchHandler {
	return &FaceSearchHandler{
		searcher:    searcher,
		watermarker: watermarker,
		threshold:   threshold,
	}
}

type faceSearchMatch struct {
	RecordID   string  `json:"record_id"`
	Similarity float64 `json:"similarity"`
	PreviewURL string  `json:"preview_url"`
}

// Search matches a visitor selfie against the event gallery.
func (h *FaceSearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event")
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "photo is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read photo")
		return
	}

	threshold := h.threshold
	if raw := r.FormValue("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid threshold")
			return
		}
		threshold = v
	}

	matches, err := h.searcher.Search(r.Context(), eventID, data, threshold)
	switch {
	case errors.Is(err, pix.ErrDecode):
		respondError(w, http.StatusUnsupportedMediaType, "unsupported photo format")
		return
	case errors.Is(err, facesearch.ErrNoFace):
		respondError(w, http.StatusUnprocessableEntity, "no face found in photo")
		return
	case err != nil:
		log.Printf("face search: %v", err)
		respondError(w, http.StatusInternalServerError, "face search failed")
		return
	}

	out := make([]faceSearchMatch, 0, len(matches))
	for _, m := range matches {
		// Build the derivative eagerly so the preview link is a cheap
		// cache hit.
		if _, err := h.watermarker.Derivative(eventID, m.RecordID); err != nil {
			log.Printf("face search: watermark for %s: %v", m.RecordID, err)
			continue
		}
		out = append(out, faceSearchMatch{
			RecordID:   m.RecordID,
			Similarity: m.Similarity,
			PreviewURL: fmt.Sprintf("/public/events/%s/gallery/%s/preview", eventID, m.RecordID),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"matches": out})
}

// Preview streams a watermarked derivative. Only paths under the
// watermarked prefix are served; originals and edits stay private.
func (h *FaceSearchHandler) Preview(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event")
	recordID := chi.URLParam(r, "id")

	rel, err := h.watermarker.Derivative(eventID, recordID)
	if err != nil {
		if errors.Is(err, gallery.ErrNotFound) {
			respondError(w, http.StatusNotFound, "record not found")
			return
		}
		log.Printf("watermark preview: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to build preview")
		return
	}

	data, err := h.watermarker.LoadDerivative(rel)
	if err != nil {
		log.Printf("watermark preview: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load preview")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

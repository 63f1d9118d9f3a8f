package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fotogo/gallery-core/internal/constants"
	"github.com/fotogo/gallery-core/internal/gallery"
	"github.com/fotogo/gallery-core/internal/pix"
	"github.com/fotogo/gallery-core/internal/preset"
	"github.com/fotogo/gallery-core/internal/web/middleware"
)

// GalleryHandler handles event gallery endpoints.
type GalleryHandler struct {
	service *gallery.Service
	presets *preset.Store
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(service *gallery.Service, presets *preset.Store) *GalleryHandler {
	return &GalleryHandler{service: service, presets: presets}
}

// Upload ingests one or more photos into the event gallery.
func (h *GalleryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event")
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "photos are required")
		return
	}

	var records []gallery.Record
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to open upload")
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read upload")
			return
		}

		rec, err := h.service.Ingest(r.Context(), eventID, identity.Username, fh.Filename, data)
		if errors.Is(err, pix.ErrDecode) {
			respondError(w, http.StatusUnsupportedMediaType, "unsupported photo format: "+sanitizeForLog(fh.Filename))
			return
		}
		if err != nil {
			log.Printf("gallery upload: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to ingest photo")
			return
		}
		records = append(records, *rec)
	}

	respondJSON(w, http.StatusCreated, map[string]any{"records": records})
}

// List returns the event's gallery records in upload order.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event")
	records, err := h.service.List(eventID)
	if err != nil {
		log.Printf("gallery list: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list gallery")
		return
	}
	if records == nil {
		records = []gallery.Record{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": records})
}

// Delete removes a photo and its derivatives from the gallery.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event")
	recordID := chi.URLParam(r, "id")

	err := h.service.Delete(eventID, recordID)
	if errors.Is(err, gallery.ErrNotFound) {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		log.Printf("gallery delete: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetDiscarded overrides the automatic discard verdict on a record.
func (h *GalleryHandler) SetDiscarded(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event")
	recordID := chi.URLParam(r, "id")

	var req struct {
		Discarded bool `json:"discarded"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	rec, err := h.service.SetDiscarded(eventID, recordID, req.Discarded)
	if errors.Is(err, gallery.ErrNotFound) {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		log.Printf("gallery set discarded: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to update record")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// ApplyPreset renders photos of the event with the given preset. The
// optional body selects record ids; an empty selection means the whole
// event.
func (h *GalleryHandler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "event")
	presetID, err := intParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid preset id")
		return
	}

	var req struct {
		RecordIDs []string `json:"record_ids"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}

	p, err := h.presets.Get(presetID)
	if errors.Is(err, preset.ErrNotFound) {
		respondError(w, http.StatusNotFound, "preset not found")
		return
	}
	if err != nil {
		log.Printf("apply preset: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load preset")
		return
	}

	result, err := h.service.ApplyPreset(r.Context(), eventID, req.RecordIDs, p, nil)
	if err != nil {
		log.Printf("apply preset: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to apply preset")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

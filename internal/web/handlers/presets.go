package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/fotogo/gallery-core/internal/adjust"
	"github.com/fotogo/gallery-core/internal/cropper"
	"github.com/fotogo/gallery-core/internal/gallery"
	"github.com/fotogo/gallery-core/internal/preset"
	"github.com/fotogo/gallery-core/internal/web/middleware"
)

// PresetsHandler handles preset CRD endpoints. Presets are immutable,
// so there is no update route.
type PresetsHandler struct {
	store   *preset.Store
	gallery *gallery.Service
}

// NewPresetsHandler creates a new presets handler.
func NewPresetsHandler(store *preset.Store, g *gallery.Service) *PresetsHandler {
	return &PresetsHandler{store: store, gallery: g}
}

// List returns the authenticated editor's presets, newest first.
func (h *PresetsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	presets, err := h.store.ListByOwner(identity.Username)
	if err != nil {
		log.Printf("preset list: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list presets")
		return
	}
	if presets == nil {
		presets = []preset.Preset{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"presets": presets})
}

type createPresetRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Params      adjust.Params `json:"params"`
	Crop        cropper.Spec  `json:"crop"`
}

// Create stores a new preset owned by the authenticated editor.
func (h *PresetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req := createPresetRequest{Params: adjust.Neutral(), Crop: cropper.None()}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	p, err := h.store.Create(preset.Preset{
		Owner:       identity.Username,
		Name:        req.Name,
		Description: req.Description,
		Params:      req.Params,
		Crop:        req.Crop,
	})
	if err != nil {
		log.Printf("preset create: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create preset")
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// Get returns one preset by id.
func (h *PresetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid preset id")
		return
	}

	p, err := h.store.Get(id)
	if errors.Is(err, preset.ErrNotFound) {
		respondError(w, http.StatusNotFound, "preset not found")
		return
	}
	if err != nil {
		log.Printf("preset get: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load preset")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Delete removes a preset unless a gallery record still references it.
func (h *PresetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFrom(r.Context())
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := intParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid preset id")
		return
	}

	inUse, err := h.presetInUse(id)
	if err != nil {
		log.Printf("preset delete: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to check preset usage")
		return
	}
	if inUse {
		respondError(w, http.StatusConflict, preset.ErrInUse.Error())
		return
	}

	err = h.store.Delete(id, identity.Username)
	if errors.Is(err, preset.ErrNotFound) {
		respondError(w, http.StatusNotFound, "preset not found")
		return
	}
	if err != nil {
		log.Printf("preset delete: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to delete preset")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *PresetsHandler) presetInUse(id int) (bool, error) {
	eventIDs, err := h.gallery.Events()
	if err != nil {
		return false, err
	}
	for _, eventID := range eventIDs {
		used, err := h.gallery.UsesPreset(eventID, id)
		if err != nil {
			return false, err
		}
		if used {
			return true, nil
		}
	}
	return false, nil
}

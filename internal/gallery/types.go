// Package gallery manages per-event photo collections: ingestion of
// uploaded originals, the JSON index of records, batch preset rendering
// and watermarked derivatives for public search results.
package gallery

import (
	"errors"
	"time"
)

// ErrNotFound reports a missing gallery record.
var ErrNotFound = errors.New("gallery record not found")

// Record describes one ingested photo inside an event gallery. The
// edited fields are empty until a preset has been applied; EditedPath
// always points at the most recent render.
type Record struct {
	ID              string    `json:"id"`
	Uploader        string    `json:"uploader"`
	OriginalName    string    `json:"original_name"`
	OriginalPath    string    `json:"original_rel"`
	EditedPath      string    `json:"edited_rel,omitempty"`
	AppliedPresetID int       `json:"applied_preset_id,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at"`
	Sharpness       float64   `json:"sharpness"`
	Discarded       bool      `json:"discarded"`
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	// Price is set by the storefront layer, not by this service; it is
	// carried through the index so re-renders do not lose it.
	Price *float64 `json:"price,omitempty"`
}

// ApplyResult summarizes a batch preset application. Failed holds the
// ids of records whose render did not complete; their previous edited
// output is left untouched.
type ApplyResult struct {
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed,omitempty"`
}

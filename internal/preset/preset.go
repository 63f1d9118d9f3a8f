// Package preset stores named adjustment+crop bundles ("LUTs"). A
// preset is immutable once created: changing an already-rendered photo
// requires re-applying a new preset explicitly, so records referencing a
// preset id never change meaning retroactively.
package preset

import (
	"errors"
	"time"

	"github.com/fotogo/gallery-core/internal/adjust"
	"github.com/fotogo/gallery-core/internal/cropper"
)

// ErrNotFound reports a missing preset id.
var ErrNotFound = errors.New("preset not found")

// ErrInUse reports an attempt to delete a preset still referenced by a
// gallery record.
var ErrInUse = errors.New("preset is applied to gallery images")

// Preset bundles the adjustment parameters and crop specification that
// a batch apply renders with.
type Preset struct {
	ID          int           `json:"id"`
	Owner       string        `json:"owner"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Params      adjust.Params `json:"params"`
	Crop        cropper.Spec  `json:"crop"`
	CreatedAt   time.Time     `json:"created_at"`
}

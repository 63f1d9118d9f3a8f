package gallery

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/fotogo/gallery-core/internal/constants"
	"github.com/fotogo/gallery-core/internal/cropper"
	"github.com/fotogo/gallery-core/internal/pix"
	"github.com/fotogo/gallery-core/internal/quality"
)

// Service ties blob storage, the record index and the processing
// engines together for one media root.
type Service struct {
	blobs            BlobStore
	index            Index
	scorer           *quality.Scorer
	crops            *cropper.Engine
	workers          int
	discardThreshold float64
	jpegQuality      int
}

func NewService(blobs BlobStore, index Index, scorer *quality.Scorer, crops *cropper.Engine, workers int, discardThreshold float64, jpegQuality int) *Service {
	if workers < 1 {
		workers = 1
	}
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = 92
	}
	return &Service{
		blobs:            blobs,
		index:            index,
		scorer:           scorer,
		crops:            crops,
		workers:          workers,
		discardThreshold: discardThreshold,
		jpegQuality:      jpegQuality,
	}
}

// Ingest decodes an upload, bounds it to the working resolution,
// stores the original blob and appends a scored record to the event
// index.
func (s *Service) Ingest(ctx context.Context, eventID, uploader, filename string, data []byte) (*Record, error) {
	img, err := pix.Decode(data)
	if err != nil {
		return nil, err
	}

	// Keep ingested photos within the working resolution; anything
	// larger only slows every later render down.
	if img.W > constants.MaxIngestWidth || img.H > constants.MaxIngestHeight {
		fitted := imaging.Fit(img.ToImage(), constants.MaxIngestWidth, constants.MaxIngestHeight, imaging.Lanczos)
		img = pix.FromImage(fitted)
	}

	id := newRecordID()
	rel := path.Join("events", eventID, "gallery", "raw",
		sanitizeSegment(uploader), id+"_"+sanitizeSegment(filename))

	encoded, err := pix.EncodeJPEG(img, s.jpegQuality)
	if err != nil {
		return nil, fmt.Errorf("encoding ingested photo: %w", err)
	}
	if err := s.blobs.Store(rel, encoded); err != nil {
		return nil, err
	}

	sharpness := s.scorer.SubjectSharpness(ctx, img)
	rec := Record{
		ID:           id,
		Uploader:     uploader,
		OriginalName: filename,
		OriginalPath: rel,
		UploadedAt:   time.Now().UTC(),
		Sharpness:    sharpness,
		Discarded:    quality.Discarded(sharpness, s.discardThreshold),
		Width:        img.W,
		Height:       img.H,
	}
	if err := s.index.Append(eventID, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Events returns the ids of all events with gallery records.
func (s *Service) Events() ([]string, error) {
	return s.index.Events()
}

// List returns the event's records in upload order.
func (s *Service) List(eventID string) ([]Record, error) {
	return s.index.List(eventID)
}

// Get returns a single record.
func (s *Service) Get(eventID, recordID string) (*Record, error) {
	return s.index.Get(eventID, recordID)
}

// Delete removes a record and its blobs. Blob removal failures are
// not fatal once the record is gone; orphaned files are harmless.
func (s *Service) Delete(eventID, recordID string) error {
	rec, err := s.index.Get(eventID, recordID)
	if err != nil {
		return err
	}
	if err := s.index.Delete(eventID, recordID); err != nil {
		return err
	}
	_ = s.blobs.Delete(rec.OriginalPath)
	if rec.EditedPath != "" {
		_ = s.blobs.Delete(rec.EditedPath)
	}
	_ = s.blobs.Delete(watermarkedPath(eventID, recordID))
	return nil
}

// UsesPreset reports whether any record in the event references the
// given preset id.
func (s *Service) UsesPreset(eventID string, presetID int) (bool, error) {
	recs, err := s.index.List(eventID)
	if err != nil {
		return false, err
	}
	for _, r := range recs {
		if r.AppliedPresetID == presetID {
			return true, nil
		}
	}
	return false, nil
}

// SetDiscarded overrides the automatic discard decision on a record.
func (s *Service) SetDiscarded(eventID, recordID string, discarded bool) (*Record, error) {
	rec, err := s.index.Get(eventID, recordID)
	if err != nil {
		return nil, err
	}
	rec.Discarded = discarded
	if err := s.index.Update(eventID, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func newRecordID() string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("evimg_%d_%s", time.Now().UnixMilli(), short)
}

func editedPath(eventID, uploader, recordID string, presetID int, at time.Time) string {
	return path.Join("events", eventID, "gallery", "edited",
		sanitizeSegment(uploader),
		fmt.Sprintf("%s_p%d_%s.png", recordID, presetID, at.Format(constants.RenderTimestampLayout)))
}

package gallery

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fotogo/gallery-core/internal/adjust"
	"github.com/fotogo/gallery-core/internal/pix"
	"github.com/fotogo/gallery-core/internal/preset"
)

// ApplyPreset renders the selected records of the event with the
// preset's crop and adjustments, in parallel. An empty id list selects
// the whole event; an unknown id is reported as failed. Each record is
// independent: a failed render is reported and skipped, and the record
// keeps its previous edited output. The old edited blob is removed only
// after the new one is stored and the index updated.
func (s *Service) ApplyPreset(ctx context.Context, eventID string, ids []string, p *preset.Preset, onProgress func(done, total int)) (*ApplyResult, error) {
	recs, err := s.index.List(eventID)
	if err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		succeeded []string
		failed    []string
		done      int
	)

	if len(ids) > 0 {
		byID := make(map[string]Record, len(recs))
		for _, rec := range recs {
			byID[rec.ID] = rec
		}
		recs = recs[:0]
		for _, id := range ids {
			rec, ok := byID[id]
			if !ok {
				log.Printf("apply preset %d: record %s: not found", p.ID, id)
				failed = append(failed, id)
				continue
			}
			recs = append(recs, rec)
		}
	}
	total := len(recs) + len(failed)
	done = len(failed)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, rec := range recs {
		rec := rec
		g.Go(func() error {
			err := s.renderRecord(gctx, eventID, rec, p)
			mu.Lock()
			if err != nil {
				log.Printf("apply preset %d: record %s: %v", p.ID, rec.ID, err)
				failed = append(failed, rec.ID)
			} else {
				succeeded = append(succeeded, rec.ID)
			}
			done++
			if onProgress != nil {
				onProgress(done, total)
			}
			mu.Unlock()
			// Render failures never abort the batch.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(succeeded)
	sort.Strings(failed)
	return &ApplyResult{Succeeded: succeeded, Failed: failed}, nil
}

// renderRecord produces one edited derivative and swaps it into the
// record.
func (s *Service) renderRecord(ctx context.Context, eventID string, rec Record, p *preset.Preset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.blobs.Load(rec.OriginalPath)
	if err != nil {
		return err
	}
	img, err := pix.Decode(data)
	if err != nil {
		return err
	}

	img = s.crops.Crop(ctx, img, p.Crop)
	img = adjust.Apply(img, p.Params)

	encoded, err := pix.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("encoding render: %w", err)
	}

	rel := editedPath(eventID, rec.Uploader, rec.ID, p.ID, time.Now().UTC())
	if err := s.blobs.Store(rel, encoded); err != nil {
		return err
	}

	prev := rec.EditedPath
	// The discard flag belongs to ingestion and the manual override;
	// a render never changes it.
	rec.EditedPath = rel
	rec.AppliedPresetID = p.ID
	rec.Sharpness = s.scorer.SubjectSharpness(ctx, img)
	if err := s.index.Update(eventID, rec); err != nil {
		// The new blob is orphaned but the record still points at a
		// valid render.
		_ = s.blobs.Delete(rel)
		return err
	}

	if prev != "" && prev != rel {
		_ = s.blobs.Delete(prev)
	}
	// The cached watermarked derivative was built from the old render.
	_ = s.blobs.Delete(watermarkedPath(eventID, rec.ID))
	return nil
}

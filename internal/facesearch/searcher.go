package facesearch

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fotogo/gallery-core/internal/constants"
	"github.com/fotogo/gallery-core/internal/gallery"
	"github.com/fotogo/gallery-core/internal/pix"
)

// ErrNoFace reports that the query photo contains no detectable face.
var ErrNoFace = errors.New("no face found in query photo")

// RecordSource lists the gallery records of an event.
type RecordSource interface {
	List(eventID string) ([]gallery.Record, error)
}

// BlobLoader loads stored photo bytes by relative path.
type BlobLoader interface {
	Load(rel string) ([]byte, error)
}

// Match is one search hit.
type Match struct {
	RecordID   string  `json:"record_id"`
	Similarity float64 `json:"similarity"`
}

// Searcher answers visitor face searches over an event gallery.
type Searcher struct {
	records   RecordSource
	blobs     BlobLoader
	extractor *Extractor
	cache     VectorStore
	workers   int
}

func NewSearcher(records RecordSource, blobs BlobLoader, extractor *Extractor, cache VectorStore, workers int) *Searcher {
	if workers < 1 {
		workers = 1
	}
	if cache == nil {
		cache = NewMemVectorStore()
	}
	return &Searcher{
		records:   records,
		blobs:     blobs,
		extractor: extractor,
		cache:     cache,
		workers:   workers,
	}
}

// Search vectorizes the query photo and returns all gallery records
// whose face scores at or above the threshold, best first. Ties keep
// upload order. Discarded records never match.
func (s *Searcher) Search(ctx context.Context, eventID string, query []byte, threshold float64) ([]Match, error) {
	img, err := pix.Decode(query)
	if err != nil {
		return nil, err
	}
	queryVec, ok := s.extractor.Extract(img)
	if !ok {
		return nil, ErrNoFace
	}

	recs, err := s.records.List(eventID)
	if err != nil {
		return nil, err
	}

	vectors, order, err := s.candidateVectors(ctx, eventID, recs)
	if err != nil {
		return nil, err
	}

	sims := make(map[string]float64, len(vectors))
	if len(vectors) > constants.HNSWMinCandidates {
		idx := NewVectorIndex(vectors)
		ids, scores, err := idx.Search(queryVec, idx.Len())
		if err != nil {
			return nil, err
		}
		for i, id := range ids {
			sims[id] = scores[i]
		}
	} else {
		for id, vec := range vectors {
			sims[id] = Cosine(queryVec, vec)
		}
	}

	var matches []Match
	for _, id := range order {
		if sim, ok := sims[id]; ok && sim >= threshold {
			matches = append(matches, Match{RecordID: id, Similarity: sim})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches, nil
}

// candidateVectors collects face vectors for all searchable records,
// computing and caching any that are missing. Records whose photo
// cannot be processed are skipped, not fatal.
func (s *Searcher) candidateVectors(ctx context.Context, eventID string, recs []gallery.Record) (map[string]Vector, []string, error) {
	var (
		mu      sync.Mutex
		vectors = make(map[string]Vector)
		order   []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, rec := range recs {
		if rec.Discarded {
			continue
		}
		order = append(order, rec.ID)
		rec := rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vec, hasFace, err := s.recordVector(eventID, rec)
			if err != nil {
				log.Printf("face search: record %s: %v", rec.ID, err)
				return nil
			}
			if hasFace {
				mu.Lock()
				vectors[rec.ID] = vec
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	kept := order[:0]
	for _, id := range order {
		if _, ok := vectors[id]; ok {
			kept = append(kept, id)
		}
	}
	return vectors, kept, nil
}

func (s *Searcher) recordVector(eventID string, rec gallery.Record) (Vector, bool, error) {
	if cached, err := s.cache.Get(eventID, rec.ID); err == nil && cached != nil {
		return cached.Vec, cached.HasFace, nil
	}

	// Detection always runs on the original upload; crops and
	// adjustments can remove or distort faces.
	data, err := s.blobs.Load(rec.OriginalPath)
	if err != nil {
		return nil, false, err
	}
	img, err := pix.Decode(data)
	if err != nil {
		return nil, false, err
	}

	vec, hasFace := s.extractor.Extract(img)
	if err := s.cache.Put(eventID, rec.ID, vec, hasFace); err != nil {
		log.Printf("face search: caching vector for %s: %v", rec.ID, err)
	}
	return vec, hasFace, nil
}

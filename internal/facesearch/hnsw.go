package facesearch

import (
	"fmt"
	"sync"

	"github.com/coder/hnsw"

	"github.com/fotogo/gallery-core/internal/constants"
)

// VectorIndex wraps an HNSW graph keyed by record id. It is rebuilt
// per search from the candidate set; building is cheap relative to the
// brute-force scan it replaces on large events.
type VectorIndex struct {
	graph   *hnsw.Graph[string]
	vectors map[string]Vector
	mu      sync.RWMutex
}

// NewVectorIndex builds an index over the given vectors.
func NewVectorIndex(vectors map[string]Vector) *VectorIndex {
	g := hnsw.NewGraph[string]()
	g.M = constants.HNSWMaxNeighbors
	g.Ml = 1.0 / float64(constants.HNSWMaxNeighbors)
	g.Distance = hnsw.CosineDistance

	idx := &VectorIndex{graph: g, vectors: make(map[string]Vector, len(vectors))}
	for id, vec := range vectors {
		if len(vec) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(id, vec))
		idx.vectors[id] = vec
	}
	return idx
}

// Len returns the number of indexed vectors.
func (x *VectorIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Search returns up to k record ids nearest to the query, with exact
// cosine similarities recomputed for the results.
func (x *VectorIndex) Search(query Vector, k int) ([]string, []float64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.vectors) == 0 {
		return nil, nil, fmt.Errorf("index is empty")
	}
	if k > len(x.vectors) {
		k = len(x.vectors)
	}

	neighbors := x.graph.Search(query, k)
	ids := make([]string, len(neighbors))
	sims := make([]float64, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.Key
		sims[i] = Cosine(query, x.vectors[n.Key])
	}
	return ids, sims, nil
}

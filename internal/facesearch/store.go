package facesearch

import "sync"

// VectorStore caches per-record face vectors so batch searches do not
// re-run detection on every request. A cached entry with HasFace false
// records that detection already ran and found nothing.
type VectorStore interface {
	Get(eventID, recordID string) (*CachedVector, error)
	Put(eventID, recordID string, vec Vector, hasFace bool) error
	Delete(eventID, recordID string) error
}

// CachedVector is one cache entry. Vec is nil when HasFace is false.
type CachedVector struct {
	Vec     Vector
	HasFace bool
}

// MemVectorStore is an in-memory VectorStore, used when no database is
// configured and in tests.
type MemVectorStore struct {
	mu      sync.RWMutex
	entries map[string]CachedVector
}

func NewMemVectorStore() *MemVectorStore {
	return &MemVectorStore{entries: make(map[string]CachedVector)}
}

func memKey(eventID, recordID string) string {
	return eventID + "/" + recordID
}

func (s *MemVectorStore) Get(eventID, recordID string) (*CachedVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[memKey(eventID, recordID)]
	if !ok {
		return nil, nil
	}
	cp := e
	return &cp, nil
}

func (s *MemVectorStore) Put(eventID, recordID string, vec Vector, hasFace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[memKey(eventID, recordID)] = CachedVector{Vec: vec, HasFace: hasFace}
	return nil
}

func (s *MemVectorStore) Delete(eventID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, memKey(eventID, recordID))
	return nil
}

package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// BlobStore abstracts the byte storage under the media directory.
// Paths are relative, forward-slash separated.
type BlobStore interface {
	Load(rel string) ([]byte, error)
	Store(rel string, data []byte) error
	Delete(rel string) error
}

// FSStore keeps blobs on the local filesystem rooted at a media
// directory.
type FSStore struct {
	root string
}

func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

func (s *FSStore) abs(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob path %q", rel)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *FSStore) Load(rel string) ([]byte, error) {
	path, err := s.abs(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading blob %s: %w", rel, err)
	}
	return data, nil
}

func (s *FSStore) Store(rel string, data []byte) error {
	path, err := s.abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("storing blob %s: %w", rel, err)
	}
	return nil
}

func (s *FSStore) Delete(rel string) error {
	path, err := s.abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting blob %s: %w", rel, err)
	}
	return nil
}

// MemStore is an in-memory BlobStore for tests.
type MemStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte)}
}

func (s *MemStore) Load(rel string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[rel]
	if !ok {
		return nil, fmt.Errorf("loading blob %s: %w", rel, os.ErrNotExist)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemStore) Store(rel string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[rel] = cp
	return nil
}

func (s *MemStore) Delete(rel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, rel)
	return nil
}

// Paths returns the stored blob paths, sorted. Test helper.
func (s *MemStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.blobs))
	for k := range s.blobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

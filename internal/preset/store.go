package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store persists presets in a single JSON document. Access is
// serialized; preset traffic is low enough that a file plus a mutex
// beats carrying a database dependency for it.
type Store struct {
	path string
	mu   sync.Mutex
}

// document is the on-disk shape.
type document struct {
	Presets []Preset `json:"presets"`
}

// NewStore creates a store backed by the given JSON file. The file is
// created lazily on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading preset store: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing preset store: %w", err)
	}
	return &doc, nil
}

func (s *Store) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preset store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating preset store directory: %w", err)
	}
	// Write-then-rename so a crash never leaves a truncated store.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing preset store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing preset store: %w", err)
	}
	return nil
}

// Create adds a new preset and returns it with its assigned id.
func (s *Store) Create(p Preset) (*Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	p.ID = nextID(doc.Presets)
	p.Name = strings.TrimSpace(p.Name)
	p.CreatedAt = time.Now().UTC()
	doc.Presets = append(doc.Presets, p)

	if err := s.save(doc); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns a preset by id.
func (s *Store) Get(id int) (*Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range doc.Presets {
		if doc.Presets[i].ID == id {
			p := doc.Presets[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// ListByOwner returns the owner's presets, most recent first.
func (s *Store) ListByOwner(owner string) ([]Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []Preset
	for _, p := range doc.Presets {
		if p.Owner == owner {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a preset owned by the given user. The caller is
// responsible for checking references first (see ErrInUse at the
// service layer); the store itself does not know about gallery records.
func (s *Store) Delete(id int, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	kept := doc.Presets[:0]
	found := false
	for _, p := range doc.Presets {
		if p.ID == id && p.Owner == owner {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return ErrNotFound
	}
	doc.Presets = kept
	return s.save(doc)
}

func nextID(presets []Preset) int {
	maxID := 0
	for _, p := range presets {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Index stores gallery records per event. Implementations must keep
// List ordered by upload time (append order).
type Index interface {
	Events() ([]string, error)
	List(eventID string) ([]Record, error)
	Get(eventID, recordID string) (*Record, error)
	Append(eventID string, rec Record) error
	Update(eventID string, rec Record) error
	Delete(eventID, recordID string) error
}

// FileIndex persists each event's records as a JSON file under the
// media directory, next to the blobs they describe.
type FileIndex struct {
	root string
	mu   sync.Mutex
}

func NewFileIndex(root string) *FileIndex {
	return &FileIndex{root: root}
}

func (x *FileIndex) path(eventID string) string {
	return filepath.Join(x.root, "events", eventID, "gallery", "index.json")
}

func (x *FileIndex) load(eventID string) ([]Record, error) {
	data, err := os.ReadFile(x.path(eventID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading gallery index: %w", err)
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parsing gallery index: %w", err)
	}
	return recs, nil
}

func (x *FileIndex) save(eventID string, recs []Record) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding gallery index: %w", err)
	}
	path := x.path(eventID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating gallery directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing gallery index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing gallery index: %w", err)
	}
	return nil
}

// Events returns the ids of all events with a gallery index.
func (x *FileIndex) Events() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(x.root, "events"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(x.path(e.Name())); err == nil {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func (x *FileIndex) List(eventID string) ([]Record, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.load(eventID)
}

func (x *FileIndex) Get(eventID, recordID string) (*Record, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	recs, err := x.load(eventID)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if recs[i].ID == recordID {
			r := recs[i]
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (x *FileIndex) Append(eventID string, rec Record) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	recs, err := x.load(eventID)
	if err != nil {
		return err
	}
	return x.save(eventID, append(recs, rec))
}

func (x *FileIndex) Update(eventID string, rec Record) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	recs, err := x.load(eventID)
	if err != nil {
		return err
	}
	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = rec
			return x.save(eventID, recs)
		}
	}
	return ErrNotFound
}

func (x *FileIndex) Delete(eventID, recordID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	recs, err := x.load(eventID)
	if err != nil {
		return err
	}
	for i := range recs {
		if recs[i].ID == recordID {
			return x.save(eventID, append(recs[:i:i], recs[i+1:]...))
		}
	}
	return ErrNotFound
}

// MemIndex is an in-memory Index for tests.
type MemIndex struct {
	mu   sync.Mutex
	recs map[string][]Record
}

func NewMemIndex() *MemIndex {
	return &MemIndex{recs: make(map[string][]Record)}
}

func (x *MemIndex) Events() ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]string, 0, len(x.recs))
	for id := range x.recs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (x *MemIndex) List(eventID string) ([]Record, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]Record, len(x.recs[eventID]))
	copy(out, x.recs[eventID])
	return out, nil
}

func (x *MemIndex) Get(eventID, recordID string) (*Record, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, r := range x.recs[eventID] {
		if r.ID == recordID {
			rec := r
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (x *MemIndex) Append(eventID string, rec Record) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.recs[eventID] = append(x.recs[eventID], rec)
	return nil
}

func (x *MemIndex) Update(eventID string, rec Record) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for i, r := range x.recs[eventID] {
		if r.ID == rec.ID {
			x.recs[eventID][i] = rec
			return nil
		}
	}
	return ErrNotFound
}

func (x *MemIndex) Delete(eventID, recordID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	recs := x.recs[eventID]
	for i, r := range recs {
		if r.ID == recordID {
			x.recs[eventID] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

package gallery

import (
	"errors"
	"testing"
	"time"
)

func TestFileIndexRoundTrip(t *testing.T) {
	idx := NewFileIndex(t.TempDir())

	rec := Record{ID: "r1", Uploader: "anna", OriginalPath: "events/ev1/gallery/raw/anna/r1_a.jpg", UploadedAt: time.Now().UTC()}
	if err := idx.Append("ev1", rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := idx.Append("ev1", Record{ID: "r2", Uploader: "anna"}); err != nil {
		t.Fatal(err)
	}

	recs, err := idx.List("ev1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "r1" || recs[1].ID != "r2" {
		t.Fatalf("List = %+v; want append order preserved", recs)
	}

	got, err := idx.Get("ev1", "r1")
	if err != nil {
		t.Fatal(err)
	}
	if got.OriginalPath != rec.OriginalPath {
		t.Errorf("Get = %+v", got)
	}

	got.Sharpness = 55
	if err := idx.Update("ev1", *got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, _ := idx.Get("ev1", "r1")
	if updated.Sharpness != 55 {
		t.Error("update not persisted")
	}

	if err := idx.Delete("ev1", "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := idx.Get("ev1", "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: %v; want ErrNotFound", err)
	}
}

func TestFileIndexUnknownEvent(t *testing.T) {
	idx := NewFileIndex(t.TempDir())

	recs, err := idx.List("missing")
	if err != nil {
		t.Fatalf("List on unknown event: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("List = %+v; want empty", recs)
	}

	if err := idx.Update("missing", Record{ID: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update: %v; want ErrNotFound", err)
	}
}

func TestFileIndexEvents(t *testing.T) {
	idx := NewFileIndex(t.TempDir())

	events, err := idx.Events()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("Events = %v; want none", events)
	}

	idx.Append("ev1", Record{ID: "a"})
	idx.Append("ev2", Record{ID: "b"})

	events, err = idx.Events()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Errorf("Events = %v; want 2 events", events)
	}
}

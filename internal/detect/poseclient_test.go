package detect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fotogo/gallery-core/internal/pix"
)

func TestNewPoseClientEmptyURL(t *testing.T) {
	if c := NewPoseClient(""); c != nil {
		t.Fatal("expected nil client for empty base URL")
	}
}

func TestPoseClientLandmarks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pose/landmarks" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"landmarks": [
			{"name": "", "x": 0.5, "y": 0.3, "visibility": 0.9},
			{"name": "left_eye_inner", "x": 0.45, "y": 0.25, "visibility": 0.8}
		]}`))
	}))
	defer srv.Close()

	c := NewPoseClient(srv.URL + "/")
	lms, err := c.Landmarks(context.Background(), pix.New(64, 64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lms) != 2 {
		t.Fatalf("got %d landmarks, want 2", len(lms))
	}
	if lms[0].Name != "nose" {
		t.Errorf("empty name not filled from canonical list, got %q", lms[0].Name)
	}
	if lms[1].Name != "left_eye_inner" || lms[1].X != 0.45 {
		t.Errorf("got %+v", lms[1])
	}
}

func TestPoseClientNoSubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"landmarks": []}`))
	}))
	defer srv.Close()

	lms, err := NewPoseClient(srv.URL).Landmarks(context.Background(), pix.New(64, 64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lms != nil {
		t.Fatalf("expected nil landmarks for empty response, got %v", lms)
	}
}

func TestPoseClientServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewPoseClient(srv.URL).Landmarks(context.Background(), pix.New(64, 64)); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestPoseClientBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := NewPoseClient(srv.URL).Landmarks(context.Background(), pix.New(64, 64)); err == nil {
		t.Fatal("expected error for unparseable response")
	}
}

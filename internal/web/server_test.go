package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/fotogo/gallery-core/internal/config"
	"github.com/fotogo/gallery-core/internal/cropper"
	"github.com/fotogo/gallery-core/internal/detect"
	"github.com/fotogo/gallery-core/internal/facesearch"
	"github.com/fotogo/gallery-core/internal/gallery"
	"github.com/fotogo/gallery-core/internal/pix"
	"github.com/fotogo/gallery-core/internal/preset"
	"github.com/fotogo/gallery-core/internal/quality"
	"github.com/fotogo/gallery-core/internal/web/middleware"
)

const testToken = "test-token"

func testServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Workers: 2,
		Defaults: config.Defaults{
			DiscardThreshold:   39.0,
			FaceMatchThreshold: 0.90,
			WatermarkOpacity:   0.45,
			JPEGQuality:        92,
		},
	}

	locator := detect.NewLocator(nil, nil)
	crops := cropper.New(locator)
	scorer := quality.NewScorer(locator)
	blobs := gallery.NewMemStore()
	index := gallery.NewMemIndex()
	galleryService := gallery.NewService(blobs, index, scorer, crops, 2, 39.0, 92)
	presets := preset.NewStore(filepath.Join(t.TempDir(), "presets.json"))
	extractor := facesearch.NewExtractor(nil)
	searcher := facesearch.NewSearcher(galleryService, blobs, extractor, facesearch.NewMemVectorStore(), 2)

	return NewServer(cfg, 0, "127.0.0.1", Deps{
		Gallery:     galleryService,
		Presets:     presets,
		Crops:       crops,
		Scorer:      scorer,
		Searcher:    searcher,
		Watermarker: gallery.NewWatermarker(blobs, index, "", 0.45),
		Verifier: &middleware.StaticVerifier{
			Tokens: map[string]middleware.Identity{testToken: {Username: "anna", Role: "editor"}},
		},
	})
}

func photoUpload(t *testing.T, field string) (*bytes.Buffer, string) {
	t.Helper()

	img := pix.New(64, 48)
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, float32((x+y)%2), 0.5, 0.5)
		}
	}
	data, err := pix.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile(field, "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()
	return body, mw.FormDataContentType()
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func TestHealthCheck(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := testServer(t)
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/presets"},
		{http.MethodGet, "/api/v1/events/ev1/gallery"},
		{http.MethodPost, "/api/v1/images/quality"},
	}
	for _, p := range paths {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d; want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestQualityEndpoint(t *testing.T) {
	srv := testServer(t)

	body, contentType := photoUpload(t, "photo")
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/images/quality", body))
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Sharpness float64 `json:"sharpness"`
		Discarded bool    `json:"discarded"`
		Width     int     `json:"width"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Width != 64 {
		t.Errorf("width = %d; want 64", resp.Width)
	}
	if resp.Sharpness <= 0 {
		t.Errorf("sharpness = %f; want > 0 for checkerboard", resp.Sharpness)
	}
	if resp.Discarded {
		t.Error("sharp checkerboard flagged for discard")
	}
}

func TestAdjustEndpointReturnsPNG(t *testing.T) {
	srv := testServer(t)

	img := pix.New(16, 16)
	data, _ := pix.EncodePNG(img)
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, _ := mw.CreateFormFile("photo", "p.png")
	fw.Write(data)
	mw.WriteField("params", `{"brightness": 40}`)
	mw.Close()

	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/images/adjust", body))
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q; want image/png", ct)
	}

	out, err := pix.Decode(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("response is not a decodable image: %v", err)
	}
	if r, _, _ := out.At(8, 8); r <= 0 {
		t.Error("brightness was not applied")
	}
}

func TestGalleryUploadAndList(t *testing.T) {
	srv := testServer(t)

	body, contentType := photoUpload(t, "photos")
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/events/ev1/gallery", body))
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d; body: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/v1/events/ev1/gallery", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var resp struct {
		Records []gallery.Record `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Records) != 1 {
		t.Fatalf("got %d records; want 1", len(resp.Records))
	}
	if resp.Records[0].Uploader != "anna" {
		t.Errorf("uploader = %q; want the authenticated user", resp.Records[0].Uploader)
	}
}

func TestPresetLifecycle(t *testing.T) {
	srv := testServer(t)

	create := func(name string) int {
		body := fmt.Sprintf(`{"name": %q, "params": {"contrast": 15}}`, name)
		req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/presets", bytes.NewBufferString(body)))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d; body: %s", rec.Code, rec.Body.String())
		}
		var p preset.Preset
		json.Unmarshal(rec.Body.Bytes(), &p)
		return p.ID
	}

	id := create("warm")
	create("cool")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/v1/presets", nil)))
	var list struct {
		Presets []preset.Preset `json:"presets"`
	}
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list.Presets) != 2 {
		t.Fatalf("listed %d presets; want 2", len(list.Presets))
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, authed(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/presets/%d", id), nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d; body: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/presets/%d", id), nil)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d; want 404", rec.Code)
	}
}

func TestPresetCreateRequiresName(t *testing.T) {
	srv := testServer(t)
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/presets", bytes.NewBufferString(`{"params": {}}`)))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
}

func TestPresetDeleteConflictsWhenApplied(t *testing.T) {
	srv := testServer(t)

	// Upload a photo, create a preset, apply it.
	body, contentType := photoUpload(t, "photos")
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/events/ev1/gallery", body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d", rec.Code)
	}

	req = authed(httptest.NewRequest(http.MethodPost, "/api/v1/presets", bytes.NewBufferString(`{"name": "warm"}`)))
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	var p preset.Preset
	json.Unmarshal(rec.Body.Bytes(), &p)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, authed(httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/events/ev1/presets/%d/apply", p.ID), nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("apply status = %d; body: %s", rec.Code, rec.Body.String())
	}

	var result gallery.ApplyResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if len(result.Succeeded) != 1 {
		t.Fatalf("apply result = %+v; want 1 succeeded", result)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, authed(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/presets/%d", p.ID), nil)))
	if rec.Code != http.StatusConflict {
		t.Errorf("delete of applied preset status = %d; want 409", rec.Code)
	}
}

func TestFaceSearchNoFace(t *testing.T) {
	srv := testServer(t)

	// No face detector is configured, so every query reports no face.
	body, contentType := photoUpload(t, "photo")
	req := httptest.NewRequest(http.MethodPost, "/public/events/ev1/face-search", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d; want 422", rec.Code)
	}
}

func TestFaceSearchIsPublic(t *testing.T) {
	// The visitor surface must not demand editor credentials; a bad
	// upload should fail validation, not authentication.
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/public/events/ev1/face-search", nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code == http.StatusUnauthorized {
		t.Error("public face search demanded authentication")
	}
}

package image

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/endoscribe/backend/internal/service/imagestore"

	imagemodel "github.com/endoscribe/backend/internal/model/image"
)

func newTestServer(t *testing.T) (*httptest.Server, *imagestore.Store) {
	t.Helper()

	store, err := imagestore.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	r := chi.NewRouter()
	New(store).RegisterRoutes(r)
	return httptest.NewServer(r), store
}

func seedRecord(t *testing.T, store *imagestore.Store, label string) int64 {
	t.Helper()
	id, err := store.Create(context.Background(), imagemodel.Record{
		Filename:    "frame.jpg",
		Description: "mucosa visible",
		Thumbnail:   []byte{0x89, 0x50, 0x4e, 0x47},
		Label:       label,
	})
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return id
}

func TestGetImage(t *testing.T) {
	srv, store := newTestServer(t)
	defer srv.Close()

	id := seedRecord(t, store, "Cecum")

	resp, err := http.Get(srv.URL + "/images/1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var record imagemodel.Record
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.ID != id || record.Label != "Cecum" || record.Filename != "frame.jpg" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestGetImageNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/images/999")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/images/abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", resp.StatusCode)
	}
}

func TestListImages(t *testing.T) {
	srv, store := newTestServer(t)
	defer srv.Close()

	seedRecord(t, store, "Cecum")
	seedRecord(t, store, "Rectum")

	resp, err := http.Get(srv.URL + "/images")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Images []imagemodel.Record `json:"images"`
		Count  int                 `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 || len(body.Images) != 2 {
		t.Fatalf("expected 2 records, got %d", body.Count)
	}
}

func TestThumbnail(t *testing.T) {
	srv, store := newTestServer(t)
	defer srv.Close()

	seedRecord(t, store, "Cecum")

	resp, err := http.Get(srv.URL + "/images/1/thumbnail")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(data) != 4 || data[0] != 0x89 {
		t.Fatalf("unexpected thumbnail bytes: %v", data)
	}
}

func TestDeleteImage(t *testing.T) {
	srv, store := newTestServer(t)
	defer srv.Close()

	id := seedRecord(t, store, "Cecum")

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/images/1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if _, err := store.GetByID(context.Background(), id); err == nil {
		t.Fatal("expected record to be gone")
	}

	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete again: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

package imagestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	imagemodel "github.com/endoscribe/backend/internal/model/image"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreCreateAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, imagemodel.Record{
		Filename:    "frame-001.jpg",
		Description: "Cecal pole with appendiceal orifice",
		Thumbnail:   []byte{0x89, 0x50, 0x4e, 0x47},
		Label:       "Cecum",
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero image id")
	}

	record, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID err: %v", err)
	}
	if record.Label != "Cecum" {
		t.Fatalf("unexpected label: %q", record.Label)
	}
	if len(record.Thumbnail) != 4 {
		t.Fatalf("unexpected thumbnail bytes: %d", len(record.Thumbnail))
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetByID(context.Background(), 42)
	if !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, imagemodel.Record{Filename: "a.jpg", Label: "Rectum"})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	second, err := store.Create(ctx, imagemodel.Record{Filename: "b.jpg", Label: "Cecum"})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	records, err := store.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != second || records[1].ID != first {
		t.Fatalf("expected newest first ordering, got %d then %d", records[0].ID, records[1].ID)
	}
}

func TestStoreDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, imagemodel.Record{Filename: "gone.jpg"})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if err := store.Delete(ctx, id); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound on second delete, got %v", err)
	}
}

package imagestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "modernc.org/sqlite"

	imagemodel "github.com/endoscribe/backend/internal/model/image"
)

// ErrImageNotFound is returned when no row exists for an identifier.
var ErrImageNotFound = errors.New("image not found")

const schema = `
CREATE TABLE IF NOT EXISTS images (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	filename    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	thumbnail   BLOB,
	label       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store persists classified image records in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and bootstraps the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open image database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap image schema: %w", err)
	}

	log.Printf("[imagestore] database ready at %s", path)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new image record and returns its identifier.
func (s *Store) Create(ctx context.Context, record imagemodel.Record) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO images (filename, description, thumbnail, label) VALUES (?, ?, ?, ?)`,
		record.Filename, record.Description, record.Thumbnail, record.Label,
	)
	if err != nil {
		return 0, fmt.Errorf("insert image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert image: %w", err)
	}
	return id, nil
}

// GetByID returns one image record.
func (s *Store) GetByID(ctx context.Context, id int64) (imagemodel.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, description, thumbnail, label, created_at FROM images WHERE id = ?`, id)

	var record imagemodel.Record
	err := row.Scan(&record.ID, &record.Filename, &record.Description, &record.Thumbnail, &record.Label, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return imagemodel.Record{}, fmt.Errorf("image %d: %w", id, ErrImageNotFound)
	}
	if err != nil {
		return imagemodel.Record{}, fmt.Errorf("select image: %w", err)
	}
	return record, nil
}

// List returns image records newest first with optional paging.
func (s *Store) List(ctx context.Context, limit, offset int) ([]imagemodel.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, description, thumbnail, label, created_at FROM images ORDER BY id DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var records []imagemodel.Record
	for rows.Next() {
		var record imagemodel.Record
		if err := rows.Scan(&record.ID, &record.Filename, &record.Description, &record.Thumbnail, &record.Label, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return records, nil
}

// Delete removes one image record.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("image %d: %w", id, ErrImageNotFound)
	}
	return nil
}

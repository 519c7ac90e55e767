// Package catalog persists frame and creative records in SQLite.
// Placements are stored as a JSON column: the quad is the authoritative
// geometry and has no relational structure worth normalizing.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/adframe/mockup"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("catalog: not found")

const schema = `
CREATE TABLE IF NOT EXISTS frames (
    id         TEXT PRIMARY KEY,
    image_ref  TEXT NOT NULL,
    width      INTEGER NOT NULL DEFAULT 0,
    height     INTEGER NOT NULL DEFAULT 0,
    placements TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS creatives (
    id         TEXT PRIMARY KEY,
    image_ref  TEXT NOT NULL,
    width      INTEGER NOT NULL DEFAULT 0,
    height     INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// Store is a SQLite-backed catalog of frames and creatives.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database at the given path and
// applies the schema. The ncruces/go-sqlite3 driver must be registered
// by the importing binary.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("catalog: apply schema: %w", err)
	}
	return nil
}

// PutFrame inserts or replaces a frame record. Legacy single-placement
// records are normalized before storage; an empty id is assigned one.
func (s *Store) PutFrame(ctx context.Context, f *mockup.Frame) error {
	mockup.NormalizeFrame(f)
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	placements, err := json.Marshal(f.Placements)
	if err != nil {
		return fmt.Errorf("catalog: marshal placements: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO frames (id, image_ref, width, height, placements)
        VALUES (?, ?, ?, ?, ?)
    `, f.ID, f.ImageRef, f.Width, f.Height, string(placements))
	if err != nil {
		return fmt.Errorf("catalog: put frame %s: %w", f.ID, err)
	}
	return nil
}

// Frame returns the frame record with the given id.
func (s *Store) Frame(ctx context.Context, id string) (*mockup.Frame, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, image_ref, width, height, placements
        FROM frames
        WHERE id = ?
    `, id)

	var f mockup.Frame
	var placements string
	if err := row.Scan(&f.ID, &f.ImageRef, &f.Width, &f.Height, &placements); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: frame %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("catalog: get frame %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(placements), &f.Placements); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal placements for frame %s: %w", id, err)
	}
	return &f, nil
}

// ListFrames returns all frame records, newest first.
func (s *Store) ListFrames(ctx context.Context) ([]*mockup.Frame, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, image_ref, width, height, placements
        FROM frames
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("catalog: list frames: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var frames []*mockup.Frame
	for rows.Next() {
		var f mockup.Frame
		var placements string
		if err := rows.Scan(&f.ID, &f.ImageRef, &f.Width, &f.Height, &placements); err != nil {
			return nil, fmt.Errorf("catalog: scan frame: %w", err)
		}
		if err := json.Unmarshal([]byte(placements), &f.Placements); err != nil {
			return nil, fmt.Errorf("catalog: unmarshal placements for frame %s: %w", f.ID, err)
		}
		frames = append(frames, &f)
	}
	return frames, rows.Err()
}

// DeleteFrame removes a frame record.
func (s *Store) DeleteFrame(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM frames WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete frame %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: frame %s", ErrNotFound, id)
	}
	return nil
}

// PutCreative inserts or replaces a creative record. An empty id is
// assigned one.
func (s *Store) PutCreative(ctx context.Context, c *mockup.Creative) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO creatives (id, image_ref, width, height)
        VALUES (?, ?, ?, ?)
    `, c.ID, c.ImageRef, c.Width, c.Height)
	if err != nil {
		return fmt.Errorf("catalog: put creative %s: %w", c.ID, err)
	}
	return nil
}

// Creative returns the creative record with the given id. Satisfies
// assets.CreativeRecords.
func (s *Store) Creative(ctx context.Context, id string) (*mockup.Creative, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, image_ref, width, height
        FROM creatives
        WHERE id = ?
    `, id)

	var c mockup.Creative
	if err := row.Scan(&c.ID, &c.ImageRef, &c.Width, &c.Height); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: creative %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("catalog: get creative %s: %w", id, err)
	}
	return &c, nil
}

// ListCreatives returns all creative records, newest first.
func (s *Store) ListCreatives(ctx context.Context) ([]*mockup.Creative, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, image_ref, width, height
        FROM creatives
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("catalog: list creatives: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var creatives []*mockup.Creative
	for rows.Next() {
		var c mockup.Creative
		if err := rows.Scan(&c.ID, &c.ImageRef, &c.Width, &c.Height); err != nil {
			return nil, fmt.Errorf("catalog: scan creative: %w", err)
		}
		creatives = append(creatives, &c)
	}
	return creatives, rows.Err()
}

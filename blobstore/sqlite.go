package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/alnah/go-umt/internal/fileutil"
)

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
	filename  TEXT PRIMARY KEY,
	data      BLOB NOT NULL,
	size      INTEGER NOT NULL,
	stored_at TEXT NOT NULL
)`

// SQLiteStore keeps blobs in a single SQLite database file. Locations have
// the form "sqlite:<path>#<filename>".
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and ensures the blobs
// table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening blob database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening blob database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating blobs table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Store upserts data under filename.
func (s *SQLiteStore) Store(ctx context.Context, filename string, data []byte) (string, error) {
	if err := fileutil.ValidateFilename(filename); err != nil {
		return "", fmt.Errorf("storing %q: %w", filename, err)
	}
	if data == nil {
		data = []byte{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (filename, data, size, stored_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			data = excluded.data,
			size = excluded.size,
			stored_at = excluded.stored_at`,
		filename, data, len(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("storing %q: %w", filename, err)
	}
	return s.Location(filename), nil
}

// Load returns the blob stored under filename.
func (s *SQLiteStore) Load(ctx context.Context, filename string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE filename = ?`, filename).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", filename, err)
	}
	return data, nil
}

// Filenames lists stored blobs in name order.
func (s *SQLiteStore) Filenames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT filename FROM blobs ORDER BY filename`)
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("listing blobs: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Location returns the location string for filename.
func (s *SQLiteStore) Location(filename string) string {
	return "sqlite:" + s.path + "#" + filename
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package credstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
// The schema is created automatically on first open.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite store at the given path.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "credstore")

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	// WAL mode so concurrent tool invocations can read while one writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("credential store initialized", "path", path)
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			identity   TEXT PRIMARY KEY,
			blob       BLOB NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save upserts the credential blob for an identity. The previous blob, if
// any, is replaced entirely; concurrent saves for the same identity
// resolve last-write-wins.
func (s *SQLiteStore) Save(ctx context.Context, identity string, blob []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (identity, blob, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET
			blob = excluded.blob,
			updated_at = excluded.updated_at
	`, identity, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: saving %s: %v", ErrUnavailable, identity, err)
	}
	return nil
}

// Load returns the stored blob for an identity, or (nil, nil) when no
// record exists.
func (s *SQLiteStore) Load(ctx context.Context, identity string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM users WHERE identity = ?`, identity,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %v", ErrUnavailable, identity, err)
	}
	return blob, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

// Package store provides SQLite-backed persistence for listening events,
// track metadata, similarity data, and weekly reports. It implements the
// collaborator interfaces consumed by the analysis engine.
package store

import (
	"database/sql"
	"fmt"

	"github.com/mbenders/weekly-listens/internal/migration"
	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db *sql.DB
}

// New opens (and if needed creates) the database at dbPath. The store is
// constructed once per process and passed explicitly to whatever needs
// it; there is no package-level handle.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(migration.Create); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

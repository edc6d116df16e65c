// Package store persists completed trials to sqlite for longitudinal
// review. The schema is managed entirely through numbered migrations;
// Open applies any pending ones before returning.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps the sqlite handle holding trial results.
type Store struct {
	*sql.DB
}

// Open opens (creating if needed) the trial database at path and brings
// its schema up to date from migrationsDir.
func Open(path, migrationsDir string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	s := &Store{db}
	if err := s.MigrateUp(migrationsDir); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Backup writes a compacted copy of the database to destPath. The
// destination must not already exist.
func (s *Store) Backup(destPath string) error {
	if _, err := s.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("failed to back up database to %s: %w", destPath, err)
	}
	return nil
}

// Package store keeps a local SQLite archive of fetched listens, so history
// survives beyond the day's CSV artifacts.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ademuri/stream-etl/internal/lastfm"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS Listen (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  artist TEXT NOT NULL,
  album TEXT,
  track TEXT NOT NULL,
  played_at TEXT NOT NULL,
  UNIQUE (artist, track, played_at)
);
`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("creating Listen table: %w", err)
	}
	return nil
}

// AddListens inserts a batch of listens transactionally, skipping duplicates
// and currently-playing entries (which have no stable timestamp yet). Returns
// the number of newly archived listens.
func (s *Store) AddListens(events []lastfm.ListenEvent) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, event := range events {
		if event.PlayedAt == lastfm.NowPlaying {
			continue
		}
		result, err := tx.Exec(
			"INSERT OR IGNORE INTO Listen (artist, album, track, played_at) VALUES (?, ?, ?, ?)",
			event.Artist, event.Album, event.Track, event.PlayedAt)
		if err != nil {
			return 0, fmt.Errorf("inserting listen %q by %q: %w", event.Track, event.Artist, err)
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("checking insert: %w", err)
		}
		added += int(inserted)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return added, nil
}

// ListenCount returns the total number of archived listens.
func (s *Store) ListenCount() (int64, error) {
	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM Listen").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting listens: %w", err)
	}
	return count, nil
}

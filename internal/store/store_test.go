package store

import (
	"path/filepath"
	"testing"

	"github.com/ademuri/stream-etl/internal/lastfm"
)

func createTestDb(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "streams.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}

	return store
}

func TestAddListens(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	events := []lastfm.ListenEvent{
		{Track: "Come Together", Artist: "The Beatles", Album: "Abbey Road", PlayedAt: "01 Jan 2024, 10:00"},
		{Track: "Something", Artist: "The Beatles", Album: "Abbey Road", PlayedAt: "01 Jan 2024, 10:04"},
	}

	added, err := s.AddListens(events)
	if err != nil {
		t.Fatalf("AddListens: %v", err)
	}
	if added != 2 {
		t.Errorf("Expected 2 added, got %d", added)
	}

	// Idempotency
	added, err = s.AddListens(events)
	if err != nil {
		t.Fatalf("AddListens (repeat): %v", err)
	}
	if added != 0 {
		t.Errorf("Expected 0 added on repeat, got %d", added)
	}

	count, err := s.ListenCount()
	if err != nil {
		t.Fatalf("ListenCount: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 listens, got %d", count)
	}
}

func TestAddListensSkipsNowPlaying(t *testing.T) {
	s := createTestDb(t)
	defer s.Close()

	events := []lastfm.ListenEvent{
		{Track: "Live One", Artist: "Artist", PlayedAt: lastfm.NowPlaying},
		{Track: "Done One", Artist: "Artist", PlayedAt: "01 Jan 2024, 10:00"},
	}

	added, err := s.AddListens(events)
	if err != nil {
		t.Fatalf("AddListens: %v", err)
	}
	if added != 1 {
		t.Errorf("Expected only the timestamped listen archived, got %d", added)
	}
}

// Package lastfm extracts a user's listening history from the Last.fm
// recent-tracks feed, one page at a time.
package lastfm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// NowPlaying is the timestamp stand-in for the currently-playing entry, which
// the feed reports without a date. Downstream stages filter on it by value.
const NowPlaying = "now playing"

const pageSize = 200

// pageDelay is how long to wait between page fetches, to be respectful to the
// API's rate limit.
const pageDelay = 400 * time.Millisecond

// ListenEvent is one scrobble as reported by the history feed. PlayedAt keeps
// the feed's native text format ("02 Jan 2006, 15:04"), or NowPlaying.
type ListenEvent struct {
	Track    string
	Artist   string
	Album    string
	PlayedAt string
}

type historyPage struct {
	totalPages int
	events     []ListenEvent
}

type pager interface {
	recentTracks(page int) (historyPage, error)
}

// Source fetches listening history in the feed's native order (newest first).
type Source struct {
	pager   pager
	limiter *rate.Limiter
}

// NewSource creates a Source for the given user, authenticated with the given
// API key. The secret may be empty for public listening data.
func NewSource(apiKey string, secret string, user string) *Source {
	return &Source{
		pager:   newRecentTracksPager(apiKey, secret, user),
		limiter: rate.NewLimiter(rate.Every(pageDelay), 1),
	}
}

// Fetch returns up to limit events, or all available events when limit is 0.
// Events are deduplicated and kept in the feed's order. A page fetch failure
// ends extraction early: everything accumulated so far is returned alongside
// the error, and the caller decides whether that is fatal.
func (s *Source) Fetch(ctx context.Context, limit int) ([]ListenEvent, error) {
	var events []ListenEvent
	seen := make(map[string]bool)

	page := 1
	pages := 1 // Updated from the first response
	for page <= pages {
		result, err := s.pager.recentTracks(page)
		if err != nil {
			return events, fmt.Errorf("fetching recent tracks (page %d): %w", page, err)
		}

		if page == 1 {
			pages = result.totalPages
			fmt.Printf("Total pages to fetch: %d\n", pages)
		}

		for _, event := range result.events {
			key := event.Artist + "\x00" + event.Track + "\x00" + event.PlayedAt
			if seen[key] {
				continue
			}
			seen[key] = true
			events = append(events, event)
		}

		fmt.Printf("Fetched page %d/%d, %d tracks\r", page, pages, len(events))

		if limit > 0 && len(events) >= limit {
			events = events[:limit]
			break
		}

		page++
		if page <= pages {
			if err := s.limiter.Wait(ctx); err != nil {
				return events, err
			}
		}
	}

	return events, nil
}

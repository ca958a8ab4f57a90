package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/ademuri/stream-etl/internal/lastfm"
)

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func quarterStart(t time.Time) time.Time {
	quarterMonth := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), quarterMonth, 1, 0, 0, 0, 0, t.Location())
}

func cleanStreams(rows []RawStreamRow) ([]CleanedStreamRow, error) {
	var cleaned []CleanedStreamRow
	for _, row := range rows {
		if row.StreamDate == lastfm.NowPlaying {
			continue
		}
		streamDate, err := time.Parse(streamDateLayout, row.StreamDate)
		if err != nil {
			return nil, fmt.Errorf("parsing stream_date %q for %q by %q: %w", row.StreamDate, row.Track, row.Artist, err)
		}
		cleaned = append(cleaned, CleanedStreamRow{
			StreamDate:    streamDate,
			Track:         row.Track,
			Artist:        row.Artist,
			Album:         row.Album,
			StreamMonth:   monthStart(streamDate),
			StreamQuarter: quarterStart(streamDate),
			StreamYear:    streamDate.Year(),
		})
	}

	top := topArtists(cleaned, topArtistCount)
	for i := range cleaned {
		if top[cleaned[i].Artist] {
			cleaned[i].ArtistClean = cleaned[i].Artist
		} else {
			cleaned[i].ArtistClean = OtherArtist
		}
	}
	return cleaned, nil
}

// topArtists returns the n most-frequent artists in the cleaned rows.
// The ranking is deterministic: descending play count, and ties keep the
// order artists were first encountered.
func topArtists(rows []CleanedStreamRow, n int) map[string]bool {
	counts := make(map[string]int)
	var order []string
	for _, row := range rows {
		if counts[row.Artist] == 0 {
			order = append(order, row.Artist)
		}
		counts[row.Artist]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}

	top := make(map[string]bool, len(order))
	for _, artist := range order {
		top[artist] = true
	}
	return top
}

package pipeline

import (
	"fmt"
	"testing"
	"time"
)

func cleanedRow(artist string, day, hour int) CleanedStreamRow {
	ts := time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
	return CleanedStreamRow{
		StreamDate:    ts,
		Track:         "Track",
		Artist:        artist,
		Album:         "Album",
		StreamMonth:   monthStart(ts),
		StreamQuarter: quarterStart(ts),
		StreamYear:    ts.Year(),
		ArtistClean:   artist,
	}
}

func TestAggregateGroupsByDayAndArtist(t *testing.T) {
	rows := []CleanedStreamRow{
		cleanedRow("X", 1, 10),
		cleanedRow("X", 1, 22), // same day, second play
		cleanedRow("Y", 1, 11),
		cleanedRow("X", 3, 9),
	}

	aggregated := aggregateData(rows)
	if len(aggregated) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(aggregated))
	}

	// Sorted by date, then artist.
	wantOrder := []struct {
		artist string
		day    int
		count  int
	}{
		{"X", 1, 2},
		{"Y", 1, 1},
		{"X", 3, 1},
	}
	for i, want := range wantOrder {
		row := aggregated[i]
		if row.ArtistClean != want.artist || row.StreamDate.Day() != want.day || row.PlayCount != want.count {
			t.Errorf("Row %d: got (%s, day %d, count %d), want %+v",
				i, row.ArtistClean, row.StreamDate.Day(), row.PlayCount, want)
		}
		if row.StreamDate.Hour() != 0 {
			t.Errorf("Row %d: stream_date not truncated to the day: %v", i, row.StreamDate)
		}
		if !row.StreamMonth.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Row %d: stream_month = %v", i, row.StreamMonth)
		}
	}
}

func TestAggregateCumulativeCounts(t *testing.T) {
	var rows []CleanedStreamRow
	// Artist X: 2 plays on day 1, 1 on day 2, 3 on day 5.
	rows = append(rows, cleanedRow("X", 1, 10), cleanedRow("X", 1, 11))
	rows = append(rows, cleanedRow("X", 2, 10))
	rows = append(rows, cleanedRow("X", 5, 10), cleanedRow("X", 5, 11), cleanedRow("X", 5, 12))
	// Interleave another artist.
	rows = append(rows, cleanedRow("Y", 2, 10), cleanedRow("Y", 4, 10))

	aggregated := aggregateData(rows)

	totals := make(map[string]int)
	finals := make(map[string]int)
	previous := make(map[string]int)
	for _, row := range aggregated {
		if row.CumulativePlayCount < previous[row.ArtistClean] {
			t.Errorf("Cumulative count decreased for %q: %d after %d",
				row.ArtistClean, row.CumulativePlayCount, previous[row.ArtistClean])
		}
		previous[row.ArtistClean] = row.CumulativePlayCount
		totals[row.ArtistClean] += row.PlayCount
		finals[row.ArtistClean] = row.CumulativePlayCount
		if row.CumulativePlayCount != totals[row.ArtistClean] {
			t.Errorf("Cumulative count for %q on %v: got %d, want running total %d",
				row.ArtistClean, row.StreamDate, row.CumulativePlayCount, totals[row.ArtistClean])
		}
	}
	for artist, total := range totals {
		if finals[artist] != total {
			t.Errorf("Final cumulative for %q = %d, want %d", artist, finals[artist], total)
		}
	}
}

func TestAggregateTenure(t *testing.T) {
	rows := []CleanedStreamRow{
		cleanedRow("X", 5, 10),
		cleanedRow("X", 1, 10),
		cleanedRow("X", 12, 10),
	}

	aggregated := aggregateData(rows)
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	wantDays := []int{0, 4, 11}
	for i, row := range aggregated {
		if !row.FirstStreamDate.Equal(first) {
			t.Errorf("Row %d: first_stream_date = %v, want %v", i, row.FirstStreamDate, first)
		}
		if row.DaysSinceFirstStream != wantDays[i] {
			t.Errorf("Row %d: days_since_first_stream = %d, want %d", i, row.DaysSinceFirstStream, wantDays[i])
		}
		if row.DaysSinceFirstStream < 0 {
			t.Errorf("Row %d: negative tenure", i)
		}
	}
	if aggregated[0].DaysSinceFirstStream != 0 {
		t.Error("The first row of a bucket must have zero tenure")
	}
}

func TestAggregateDeterministicOrder(t *testing.T) {
	var rows []CleanedStreamRow
	for i := 0; i < 40; i++ {
		rows = append(rows, cleanedRow(fmt.Sprintf("Artist %d", i%7), i%28+1, i%24))
	}

	first := aggregateData(rows)
	for run := 0; run < 5; run++ {
		again := aggregateData(rows)
		if len(again) != len(first) {
			t.Fatalf("Run %d: %d rows vs %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("Run %d row %d: %+v vs %+v", run, i, again[i], first[i])
			}
		}
	}
}

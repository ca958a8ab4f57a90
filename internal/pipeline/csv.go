package pipeline

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ademuri/stream-etl/internal/artifact"
)

const (
	cleanedDateLayout = "2006-01-02 15:04:05"
	dayLayout         = "2006-01-02"
)

var rawHeader = []string{"stream_date", "track", "artist", "album"}

var featureHeader = []string{
	"danceability", "energy", "key", "loudness", "mode", "speechiness",
	"acousticness", "instrumentalness", "liveness", "valence", "tempo",
	"type", "id", "uri", "track_href", "analysis_url", "duration_ms",
	"time_signature",
}

var cleanedHeader = []string{
	"stream_date", "track", "artist", "album",
	"stream_month", "stream_quarter", "stream_year", "artist_clean",
}

var aggregateHeader = []string{
	"stream_date", "artist_clean", "play_count", "stream_month",
	"cumulative_play_count", "first_stream_date", "days_since_first_stream",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func encodeRawRow(row RawStreamRow) []string {
	return []string{row.StreamDate, row.Track, row.Artist, row.Album}
}

func encodeEnrichedRow(row EnrichedStreamRow) []string {
	record := encodeRawRow(row.RawStreamRow)
	if row.Features == nil {
		// A lookup miss keeps its row, with every feature column empty.
		return append(record, make([]string, len(featureHeader))...)
	}
	f := row.Features
	return append(record,
		formatFloat(f.Danceability),
		formatFloat(f.Energy),
		strconv.Itoa(f.Key),
		formatFloat(f.Loudness),
		strconv.Itoa(f.Mode),
		formatFloat(f.Speechiness),
		formatFloat(f.Acousticness),
		formatFloat(f.Instrumentalness),
		formatFloat(f.Liveness),
		formatFloat(f.Valence),
		formatFloat(f.Tempo),
		f.Type,
		f.ID,
		f.URI,
		f.TrackHref,
		f.AnalysisURL,
		strconv.Itoa(f.DurationMs),
		strconv.Itoa(f.TimeSignature),
	)
}

func encodeCleanedRow(row CleanedStreamRow) []string {
	return []string{
		row.StreamDate.Format(cleanedDateLayout),
		row.Track,
		row.Artist,
		row.Album,
		row.StreamMonth.Format(dayLayout),
		row.StreamQuarter.Format(dayLayout),
		strconv.Itoa(row.StreamYear),
		row.ArtistClean,
	}
}

func encodeAggregateRow(row AggregateRow) []string {
	return []string{
		row.StreamDate.Format(dayLayout),
		row.ArtistClean,
		strconv.Itoa(row.PlayCount),
		row.StreamMonth.Format(dayLayout),
		strconv.Itoa(row.CumulativePlayCount),
		row.FirstStreamDate.Format(dayLayout),
		strconv.Itoa(row.DaysSinceFirstStream),
	}
}

// columnIndex maps required column names to their positions in a header row,
// so readers tolerate extra columns (the enriched file is a valid raw input).
func columnIndex(header []string, names []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, name := range header {
		index[name] = i
	}
	for _, name := range names {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return index, nil
}

// ReadRawStreams loads a raw (or enriched) streams artifact.
func ReadRawStreams(path string) ([]RawStreamRow, error) {
	header, records, err := artifact.Read(path)
	if err != nil {
		return nil, err
	}
	index, err := columnIndex(header, rawHeader)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	rows := make([]RawStreamRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, RawStreamRow{
			StreamDate: record[index["stream_date"]],
			Track:      record[index["track"]],
			Artist:     record[index["artist"]],
			Album:      record[index["album"]],
		})
	}
	return rows, nil
}

// ReadCleanedStreams loads a cleaned streams artifact.
func ReadCleanedStreams(path string) ([]CleanedStreamRow, error) {
	header, records, err := artifact.Read(path)
	if err != nil {
		return nil, err
	}
	index, err := columnIndex(header, cleanedHeader)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	rows := make([]CleanedStreamRow, 0, len(records))
	for _, record := range records {
		streamDate, err := time.Parse(cleanedDateLayout, record[index["stream_date"]])
		if err != nil {
			return nil, fmt.Errorf("parsing stream_date in %q: %w", path, err)
		}
		month, err := time.Parse(dayLayout, record[index["stream_month"]])
		if err != nil {
			return nil, fmt.Errorf("parsing stream_month in %q: %w", path, err)
		}
		quarter, err := time.Parse(dayLayout, record[index["stream_quarter"]])
		if err != nil {
			return nil, fmt.Errorf("parsing stream_quarter in %q: %w", path, err)
		}
		year, err := strconv.Atoi(record[index["stream_year"]])
		if err != nil {
			return nil, fmt.Errorf("parsing stream_year in %q: %w", path, err)
		}
		rows = append(rows, CleanedStreamRow{
			StreamDate:    streamDate,
			Track:         record[index["track"]],
			Artist:        record[index["artist"]],
			Album:         record[index["album"]],
			StreamMonth:   month,
			StreamQuarter: quarter,
			StreamYear:    year,
			ArtistClean:   record[index["artist_clean"]],
		})
	}
	return rows, nil
}

// ReadAggregates loads an aggregate streams artifact.
func ReadAggregates(path string) ([]AggregateRow, error) {
	header, records, err := artifact.Read(path)
	if err != nil {
		return nil, err
	}
	index, err := columnIndex(header, aggregateHeader)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}

	rows := make([]AggregateRow, 0, len(records))
	for _, record := range records {
		streamDate, err := time.Parse(dayLayout, record[index["stream_date"]])
		if err != nil {
			return nil, fmt.Errorf("parsing stream_date in %q: %w", path, err)
		}
		month, err := time.Parse(dayLayout, record[index["stream_month"]])
		if err != nil {
			return nil, fmt.Errorf("parsing stream_month in %q: %w", path, err)
		}
		first, err := time.Parse(dayLayout, record[index["first_stream_date"]])
		if err != nil {
			return nil, fmt.Errorf("parsing first_stream_date in %q: %w", path, err)
		}
		playCount, err := strconv.Atoi(record[index["play_count"]])
		if err != nil {
			return nil, fmt.Errorf("parsing play_count in %q: %w", path, err)
		}
		cumulative, err := strconv.Atoi(record[index["cumulative_play_count"]])
		if err != nil {
			return nil, fmt.Errorf("parsing cumulative_play_count in %q: %w", path, err)
		}
		days, err := strconv.Atoi(record[index["days_since_first_stream"]])
		if err != nil {
			return nil, fmt.Errorf("parsing days_since_first_stream in %q: %w", path, err)
		}
		rows = append(rows, AggregateRow{
			StreamDate:           streamDate,
			ArtistClean:          record[index["artist_clean"]],
			PlayCount:            playCount,
			StreamMonth:          month,
			CumulativePlayCount:  cumulative,
			FirstStreamDate:      first,
			DaysSinceFirstStream: days,
		})
	}
	return rows, nil
}

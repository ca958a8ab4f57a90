// Package pipeline transforms listening history through four stages:
// raw extraction, audio-feature enrichment, cleaning, and aggregation.
// Each stage persists a dated artifact before the next stage begins, so any
// stage can be re-run from the previous stage's file.
package pipeline

import (
	"time"

	"github.com/ademuri/stream-etl/internal/spotify"
)

// streamDateLayout is the history feed's timestamp format.
const streamDateLayout = "02 Jan 2006, 15:04"

// OtherArtist is the bucket label for artists outside the top-500.
const OtherArtist = "Other"

// topArtistCount is the artist-bucket cutoff used by CleanStreams.
const topArtistCount = 500

// enrichDelay paces catalog lookups, to be respectful to the API's rate limit.
const enrichDelay = 200 * time.Millisecond

const (
	rawSuffix       = "lastfm_streams"
	featuresSuffix  = "spotify_audio_features"
	cleanedSuffix   = "lastfm_streams"
	aggregateSuffix = "aggregate_streams"
)

// RawStreamRow is one scrobble flattened for tabular storage. StreamDate keeps
// the feed's text format, or the "now playing" sentinel.
type RawStreamRow struct {
	StreamDate string
	Track      string
	Artist     string
	Album      string
}

// EnrichedStreamRow is a RawStreamRow plus its catalog audio features.
// Features is nil when the catalog had no match; the row itself is never
// dropped.
type EnrichedStreamRow struct {
	RawStreamRow
	Features *spotify.FeatureSet
}

// CleanedStreamRow is a timestamped scrobble with derived time buckets and the
// artist bucket assignment.
type CleanedStreamRow struct {
	StreamDate    time.Time
	Track         string
	Artist        string
	Album         string
	StreamMonth   time.Time
	StreamQuarter time.Time
	StreamYear    int
	ArtistClean   string
}

// AggregateRow is one (calendar date, artist bucket) group with play counts
// and tenure metrics.
type AggregateRow struct {
	StreamDate           time.Time
	ArtistClean          string
	PlayCount            int
	StreamMonth          time.Time
	CumulativePlayCount  int
	FirstStreamDate      time.Time
	DaysSinceFirstStream int
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/ademuri/stream-etl/internal/artifact"
	"github.com/ademuri/stream-etl/internal/lastfm"
	"github.com/ademuri/stream-etl/internal/spotify"
)

// Source produces the raw listen events for the extraction stage.
type Source interface {
	Fetch(ctx context.Context, limit int) ([]lastfm.ListenEvent, error)
}

// Enricher looks up catalog audio features for one track. A nil FeatureSet
// with a nil error is a miss, not a failure.
type Enricher interface {
	Lookup(ctx context.Context, artist, album, track string) (*spotify.FeatureSet, error)
}

// Archive records fetched listens in a local database, deduplicating repeats.
type Archive interface {
	AddListens(events []lastfm.ListenEvent) (int, error)
}

// Pipeline runs the transform stages. RunDate is computed once per run and
// stamps every artifact that run writes.
type Pipeline struct {
	Source   Source
	Enricher Enricher
	Archive  Archive // Optional
	DataDir  string
	RunDate  time.Time

	limiter *rate.Limiter
}

func New(dataDir string, runDate time.Time) *Pipeline {
	return &Pipeline{
		DataDir: dataDir,
		RunDate: runDate,
		limiter: rate.NewLimiter(rate.Every(enrichDelay), 1),
	}
}

// RawStreamsPath returns where GetStreams writes (and later stages read) the
// raw streams artifact for this run.
func (p *Pipeline) RawStreamsPath() string {
	return artifact.Path(p.DataDir, artifact.Bronze, p.RunDate, rawSuffix)
}

func (p *Pipeline) AudioFeaturesPath() string {
	return artifact.Path(p.DataDir, artifact.Bronze, p.RunDate, featuresSuffix)
}

func (p *Pipeline) CleanedStreamsPath() string {
	return artifact.Path(p.DataDir, artifact.Silver, p.RunDate, cleanedSuffix)
}

func (p *Pipeline) AggregatePath() string {
	return artifact.Path(p.DataDir, artifact.Gold, p.RunDate, aggregateSuffix)
}

// GetStreams fetches listening history, maps it to raw rows, and writes the
// bronze artifact. An upstream failure partway through is reported on the
// console and the rows collected before it still flow through.
func (p *Pipeline) GetStreams(ctx context.Context, limit int) ([]RawStreamRow, error) {
	events, err := p.Source.Fetch(ctx, limit)
	if err != nil {
		fmt.Printf("Error: extraction ended early: %v\n", err)
	}
	fmt.Printf("Successfully extracted %d tracks from Last.fm.\n", len(events))

	if p.Archive != nil {
		added, err := p.Archive.AddListens(events)
		if err != nil {
			return nil, fmt.Errorf("archiving listens: %w", err)
		}
		fmt.Printf("Archived %d new listens\n", added)
	}

	rows := make([]RawStreamRow, 0, len(events))
	for _, event := range events {
		rows = append(rows, RawStreamRow{
			StreamDate: event.PlayedAt,
			Track:      event.Track,
			Artist:     event.Artist,
			Album:      event.Album,
		})
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, encodeRawRow(row))
	}
	path := p.RawStreamsPath()
	if err := artifact.Write(path, rawHeader, records); err != nil {
		return nil, err
	}
	fmt.Printf("Saved %d tracks to %s\n", len(rows), path)
	return rows, nil
}

// GetAudioFeatures looks up catalog features for every raw row in order,
// pacing the lookups, and writes the enriched bronze artifact. The output has
// exactly one row per input row regardless of lookup misses.
func (p *Pipeline) GetAudioFeatures(ctx context.Context, rows []RawStreamRow) ([]EnrichedStreamRow, error) {
	enriched := make([]EnrichedStreamRow, 0, len(rows))
	for i, row := range rows {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		fmt.Printf("[%d/%d] Fetching audio features for track: %s by %s...\r", i+1, len(rows), row.Track, row.Artist)

		features, err := p.Enricher.Lookup(ctx, row.Artist, row.Album, row.Track)
		if err != nil {
			return nil, fmt.Errorf("looking up %q by %q: %w", row.Track, row.Artist, err)
		}
		enriched = append(enriched, EnrichedStreamRow{RawStreamRow: row, Features: features})
	}

	records := make([][]string, 0, len(enriched))
	for _, row := range enriched {
		records = append(records, encodeEnrichedRow(row))
	}
	path := p.AudioFeaturesPath()
	header := append(append([]string{}, rawHeader...), featureHeader...)
	if err := artifact.Write(path, header, records); err != nil {
		return nil, err
	}
	fmt.Printf("Saved %d tracks with audio features to %s\n", len(enriched), path)
	return enriched, nil
}

// CleanStreams drops sentinel rows, derives the time buckets and artist
// buckets, and writes the silver artifact. A malformed stream_date is a
// data-integrity error and fails the run.
func (p *Pipeline) CleanStreams(rows []RawStreamRow) ([]CleanedStreamRow, error) {
	cleaned, err := cleanStreams(rows)
	if err != nil {
		return nil, err
	}

	records := make([][]string, 0, len(cleaned))
	for _, row := range cleaned {
		records = append(records, encodeCleanedRow(row))
	}
	path := p.CleanedStreamsPath()
	if err := artifact.Write(path, cleanedHeader, records); err != nil {
		return nil, err
	}
	fmt.Printf("Saved %d tracks to %s\n", len(cleaned), path)
	return cleaned, nil
}

// AggregateData groups cleaned rows by calendar day and artist bucket and
// writes the gold artifact.
func (p *Pipeline) AggregateData(rows []CleanedStreamRow) ([]AggregateRow, error) {
	aggregated := aggregateData(rows)

	records := make([][]string, 0, len(aggregated))
	for _, row := range aggregated {
		records = append(records, encodeAggregateRow(row))
	}
	path := p.AggregatePath()
	if err := artifact.Write(path, aggregateHeader, records); err != nil {
		return nil, err
	}
	fmt.Printf("Saved %d rows to %s\n", len(aggregated), path)
	return aggregated, nil
}

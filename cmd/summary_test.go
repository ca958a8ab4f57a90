/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/ademuri/stream-etl/internal/pipeline"
)

func aggregateRow(day int, artist string, plays int) pipeline.AggregateRow {
	return pipeline.AggregateRow{
		StreamDate:  time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		ArtistClean: artist,
		PlayCount:   plays,
	}
}

func TestTopArtistsSummaryRanksByTotalPlays(t *testing.T) {
	rows := []pipeline.AggregateRow{
		aggregateRow(1, "B", 2),
		aggregateRow(1, "A", 5),
		aggregateRow(2, "B", 4),
		aggregateRow(2, "C", 1),
	}

	summary := topArtistsSummary(rows, 0)
	if len(summary.results) != 4 {
		t.Fatalf("Expected header plus 3 rows, got %d", len(summary.results))
	}
	if summary.results[1][0] != "B" || summary.results[1][1] != "6" {
		t.Errorf("Expected B with 6 plays first, got %v", summary.results[1])
	}
	if summary.results[2][0] != "A" || summary.results[3][0] != "C" {
		t.Errorf("Unexpected order: %v", summary.results)
	}
	if !strings.Contains(summary.summary, "12 plays across 3 artists") {
		t.Errorf("Unexpected summary line: %q", summary.summary)
	}
}

func TestTopArtistsSummaryTruncates(t *testing.T) {
	rows := []pipeline.AggregateRow{
		aggregateRow(1, "A", 3),
		aggregateRow(1, "B", 2),
		aggregateRow(1, "C", 1),
	}

	summary := topArtistsSummary(rows, 2)
	if len(summary.results) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(summary.results))
	}
	if summary.results[1][0] != "A" || summary.results[2][0] != "B" {
		t.Errorf("Unexpected rows: %v", summary.results)
	}
}

func TestTopArtistsSummaryStringRendersTable(t *testing.T) {
	summary := topArtistsSummary([]pipeline.AggregateRow{aggregateRow(1, "A", 3)}, 0)
	out := summary.String()
	if !strings.Contains(out, "A") || !strings.Contains(out, "3") {
		t.Errorf("Rendered table missing data: %q", out)
	}
}

func TestTopArtistsSummaryHTMLRendersRows(t *testing.T) {
	summary := topArtistsSummary([]pipeline.AggregateRow{aggregateRow(1, "A", 3)}, 0)
	html := summary.HTML()
	if !strings.Contains(html, "<td>A</td>") {
		t.Errorf("Expected a table cell for the artist, got %q", html)
	}
}

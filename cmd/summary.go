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
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/stream-etl/internal/pipeline"
)

// Summary is a rendered view over the aggregate streams table. results
// holds a header row followed by data rows.
type Summary struct {
	results [][]string
	summary string
}

func (s Summary) String() string {
	out := new(bytes.Buffer)
	table := tablewriter.NewWriter(out)
	table.Header(s.results[0])
	for _, row := range s.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	fmt.Fprintf(out, "%s\n", s.summary)
	return out.String()
}

// HTML renders the summary as an HTML table for email bodies.
func (s Summary) HTML() string {
	out := `<table>
	<thead>
		<tr>
`
	for _, header := range s.results[0] {
		out += fmt.Sprintf("<th>%s</th>", header)
	}
	out += `		</tr>
	</thead>
	<tbody>
`
	for _, row := range s.results[1:] {
		out += "<tr>\n"
		for _, column := range row {
			out += fmt.Sprintf("<td>%s</td>\n", column)
		}
		out += "</tr>\n"
	}
	out += `	</tbody>
</table>
`
	out += fmt.Sprintf("<div>%s</div>\n", s.summary)
	return out
}

// topArtistsSummary ranks artists by total play count across the
// aggregate rows, keeping at most n entries.
func topArtistsSummary(rows []pipeline.AggregateRow, n int) Summary {
	totals := make(map[string]int)
	order := make([]string, 0)
	for _, row := range rows {
		if _, seen := totals[row.ArtistClean]; !seen {
			order = append(order, row.ArtistClean)
		}
		totals[row.ArtistClean] += row.PlayCount
	}
	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]] > totals[order[j]]
	})
	if n > 0 && len(order) > n {
		order = order[:n]
	}

	results := [][]string{{"Artist", "Plays"}}
	total := 0
	for _, artist := range order {
		results = append(results, []string{artist, strconv.Itoa(totals[artist])})
		total += totals[artist]
	}

	return Summary{
		results: results,
		summary: fmt.Sprintf("%d plays across %d artists", total, len(order)),
	}
}

package pipeline

import (
	"sort"
	"time"
)

func aggregateData(rows []CleanedStreamRow) []AggregateRow {
	type group struct {
		day    string
		artist string
	}

	counts := make(map[group]int)
	days := make(map[group]time.Time)
	for _, row := range rows {
		day := time.Date(row.StreamDate.Year(), row.StreamDate.Month(), row.StreamDate.Day(), 0, 0, 0, 0, row.StreamDate.Location())
		key := group{day.Format(dayLayout), row.ArtistClean}
		counts[key]++
		days[key] = day
	}

	aggregated := make([]AggregateRow, 0, len(counts))
	for key, count := range counts {
		day := days[key]
		aggregated = append(aggregated, AggregateRow{
			StreamDate:  day,
			ArtistClean: key.artist,
			PlayCount:   count,
			StreamMonth: monthStart(day),
		})
	}

	sort.Slice(aggregated, func(i, j int) bool {
		if !aggregated[i].StreamDate.Equal(aggregated[j].StreamDate) {
			return aggregated[i].StreamDate.Before(aggregated[j].StreamDate)
		}
		return aggregated[i].ArtistClean < aggregated[j].ArtistClean
	})

	// Running sums and tenure, in date order per artist bucket.
	cumulative := make(map[string]int)
	first := make(map[string]time.Time)
	for i := range aggregated {
		artist := aggregated[i].ArtistClean
		cumulative[artist] += aggregated[i].PlayCount
		aggregated[i].CumulativePlayCount = cumulative[artist]

		if _, ok := first[artist]; !ok {
			first[artist] = aggregated[i].StreamDate
		}
		aggregated[i].FirstStreamDate = first[artist]
		aggregated[i].DaysSinceFirstStream = int(aggregated[i].StreamDate.Sub(first[artist]).Hours() / 24)
	}

	return aggregated
}

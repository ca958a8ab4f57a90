package lastfm

import (
	"fmt"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/avast/retry-go"
)

// recentTracksPager adapts the Last.fm API client to the pager interface.
type recentTracksPager struct {
	client *lastfm.Api
	user   string
}

func newRecentTracksPager(apiKey string, secret string, user string) *recentTracksPager {
	client := lastfm.New(apiKey, secret)
	client.SetUserAgent("stream-etl/1.0")
	return &recentTracksPager{
		client: client,
		user:   user,
	}
}

func (p *recentTracksPager) recentTracks(page int) (historyPage, error) {
	var recentTracks lastfm.UserGetRecentTracks
	err := retry.Do(
		func() error {
			var err error
			recentTracks, err = p.client.User.GetRecentTracks(lastfm.P{
				"limit": pageSize,
				"page":  page,
				"user":  p.user,
			})
			return err
		},
		retry.RetryIf(func(err error) bool {
			if lerr, ok := err.(*lastfm.LastfmError); ok {
				if lerr.Code/100 == 5 {
					fmt.Printf("last.fm errored, retrying: %v\n", lerr)
					return true
				}
			}
			return false
		}),
	)
	if err != nil {
		return historyPage{}, err
	}

	result := historyPage{totalPages: recentTracks.TotalPages}
	for _, t := range recentTracks.Tracks {
		playedAt := NowPlaying
		if t.Date.Date != "" {
			playedAt = t.Date.Date
		}
		result.events = append(result.events, ListenEvent{
			Track:    t.Name,
			Artist:   t.Artist.Name,
			Album:    t.Album.Name,
			PlayedAt: playedAt,
		})
	}
	return result, nil
}

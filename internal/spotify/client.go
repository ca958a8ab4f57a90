// Package spotify looks up audio features for tracks in the Spotify catalog.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultBaseURL is the Spotify Web API endpoint.
	DefaultBaseURL = "https://api.spotify.com/v1"
	// DefaultTokenURL is the client-credentials token endpoint.
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
)

// Config holds client configuration.
type Config struct {
	ClientID     string       // Required
	ClientSecret string       // Required
	BaseURL      string       // Optional: overridden in tests
	TokenURL     string       // Optional: overridden in tests
	HTTPClient   *http.Client // Optional: bypasses the token flow when set
}

// Client performs catalog lookups. A lookup is a pure per-item operation; all
// pacing between lookups is the caller's responsibility.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a catalog client. Unless Config.HTTPClient is set,
// requests are authenticated with the client-credentials flow.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("spotify: ClientID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("spotify: ClientSecret is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		credentials := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
		}
		httpClient = credentials.Client(context.Background())
		httpClient.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}, nil
}

// Lookup searches the catalog for the best match to the given track and
// returns its audio features. A nil FeatureSet with a nil error means the
// catalog has no match; identical inputs always repeat the full two-step
// lookup, there is no caching.
func (c *Client) Lookup(ctx context.Context, artist, album, track string) (*FeatureSet, error) {
	id, err := c.search(ctx, artist, album, track)
	if err != nil {
		return nil, fmt.Errorf("searching for %q by %q: %w", track, artist, err)
	}
	if id == "" {
		return nil, nil
	}

	features, err := c.audioFeatures(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching audio features for %q: %w", id, err)
	}
	return features, nil
}

// search returns the id of the top candidate, or "" when there is none.
func (c *Client) search(ctx context.Context, artist, album, track string) (string, error) {
	query := fmt.Sprintf("artist:%s track:%s", artist, track)
	if album != "" {
		query += fmt.Sprintf(" album:%s", album)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", "1")

	var result searchResult
	if err := c.getJSON(ctx, fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode()), &result); err != nil {
		return "", err
	}
	if len(result.Tracks.Items) == 0 {
		return "", nil
	}
	return result.Tracks.Items[0].ID, nil
}

// audioFeatures fetches the feature record for a track id. A 404 or an empty
// record is reported as no match, not as an error.
func (c *Client) audioFeatures(ctx context.Context, id string) (*FeatureSet, error) {
	var features FeatureSet
	err := c.getJSON(ctx, fmt.Sprintf("%s/audio-features/%s", c.baseURL, url.PathEscape(id)), &features)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if features.ID == "" {
		return nil, nil
	}
	return &features, nil
}

var errNotFound = errors.New("not found")

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return errNotFound
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing JSON response: %w", err)
	}
	return nil
}

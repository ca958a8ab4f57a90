package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const featuresJSON = `{
	"danceability": 0.735,
	"energy": 0.578,
	"key": 5,
	"loudness": -11.84,
	"mode": 0,
	"speechiness": 0.0461,
	"acousticness": 0.514,
	"instrumentalness": 0.0902,
	"liveness": 0.159,
	"valence": 0.624,
	"tempo": 98.002,
	"type": "audio_features",
	"id": "track-id-1",
	"uri": "spotify:track:track-id-1",
	"track_href": "https://api.spotify.com/v1/tracks/track-id-1",
	"analysis_url": "https://api.spotify.com/v1/audio-analysis/track-id-1",
	"duration_ms": 255349,
	"time_signature": 4
}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      server.URL,
		HTTPClient:   server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(Config{ClientSecret: "secret"}); err == nil {
		t.Error("Expected error for missing ClientID")
	}
	if _, err := NewClient(Config{ClientID: "id"}); err == nil {
		t.Error("Expected error for missing ClientSecret")
	}
}

func TestLookupHit(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search":
			query := r.URL.Query()
			if query.Get("type") != "track" || query.Get("limit") != "1" {
				t.Errorf("Unexpected search params: %v", query)
			}
			q := query.Get("q")
			for _, want := range []string{"artist:LTJ Bukem", "track:Music", "album:Logical Progression"} {
				if !strings.Contains(q, want) {
					t.Errorf("Query %q missing %q", q, want)
				}
			}
			fmt.Fprint(w, `{"tracks": {"items": [{"id": "track-id-1"}]}}`)
		case r.URL.Path == "/audio-features/track-id-1":
			fmt.Fprint(w, featuresJSON)
		default:
			t.Errorf("Unexpected request: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	features, err := client.Lookup(context.Background(), "LTJ Bukem", "Logical Progression", "Music")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if features == nil {
		t.Fatal("Expected a feature set, got nil")
	}
	if features.ID != "track-id-1" {
		t.Errorf("Expected id 'track-id-1', got %q", features.ID)
	}
	if features.Danceability != 0.735 {
		t.Errorf("Expected danceability 0.735, got %v", features.Danceability)
	}
	if features.DurationMs != 255349 {
		t.Errorf("Expected duration 255349, got %d", features.DurationMs)
	}
}

func TestLookupOmitsEmptyAlbum(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			if q := r.URL.Query().Get("q"); strings.Contains(q, "album:") {
				t.Errorf("Query %q should not contain an album clause", q)
			}
			fmt.Fprint(w, `{"tracks": {"items": []}}`)
			return
		}
		t.Errorf("Unexpected request: %s", r.URL.Path)
	}))

	if _, err := client.Lookup(context.Background(), "Artist", "", "Track"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
}

func TestLookupNoCandidate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tracks": {"items": []}}`)
	}))

	features, err := client.Lookup(context.Background(), "Nobody", "Nothing", "Nowhere")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if features != nil {
		t.Errorf("Expected no match, got %+v", features)
	}
}

func TestLookupFeaturesMissing(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			fmt.Fprint(w, `{"tracks": {"items": [{"id": "gone"}]}}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	features, err := client.Lookup(context.Background(), "Artist", "Album", "Track")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if features != nil {
		t.Errorf("Expected a miss when the feature fetch yields nothing, got %+v", features)
	}
}

func TestLookupServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if _, err := client.Lookup(context.Background(), "Artist", "Album", "Track"); err == nil {
		t.Error("Expected an error for a 500 response")
	}
}

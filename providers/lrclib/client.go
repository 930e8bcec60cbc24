package lrclib

import (
	"context"
	"encoding/json"
	"fmt"
	"lyricsync-go/providers"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// Request defaults. lrclib is the last stop in the chain, so it gets a
	// longer budget than the other providers.
	defaultTimeout = 15 * time.Second
	userAgent      = "lyricsync-go (https://github.com/lyricsync/lyricsync-go)"
)

// searchURL is a var so tests can point the client at a local server.
var searchURL = "https://lrclib.net/api/search"

var httpClient = &http.Client{
	Timeout: defaultTimeout,
}

// Search queries the lrclib catalog for tracks matching the given artist
// and title. The endpoint is unauthenticated.
func Search(ctx context.Context, artist, title string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("track_name", title)
	if artist != "" {
		params.Set("artist_name", artist)
	}

	requestURL := searchURL + "?" + params.Encode()

	header := http.Header{}
	header.Set("User-Agent", userAgent)

	body, err := providers.GetBody(ctx, httpClient, requestURL, header)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	var results []SearchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return results, nil
}

// SelectBest picks the most promising record from lrclib search results.
// Synced lyrics beat plain, exact name matches beat partial ones, and
// instrumental records lose unless nothing else is left.
func SelectBest(results []SearchResult, artist, title string) *SearchResult {
	if len(results) == 0 {
		return nil
	}

	var best *SearchResult
	bestScore := -1

	titleLower := strings.ToLower(title)
	artistLower := strings.ToLower(artist)

	for i := range results {
		r := &results[i]
		score := 0

		if r.SyncedLyrics != "" {
			score += 40
		} else if r.PlainLyrics != "" {
			score += 10
		}

		trackLower := strings.ToLower(r.TrackName)
		if trackLower == titleLower {
			score += 20
		} else if strings.Contains(trackLower, titleLower) || strings.Contains(titleLower, trackLower) {
			score += 10
		}

		if artistLower != "" {
			recordArtistLower := strings.ToLower(r.ArtistName)
			if recordArtistLower == artistLower {
				score += 20
			} else if strings.Contains(recordArtistLower, artistLower) {
				score += 10
			}
		}

		// Must outweigh the synced-lyrics bonus so an instrumental record
		// never beats one with actual words.
		if r.Instrumental {
			score -= 50
		}

		if score > bestScore {
			bestScore = score
			best = r
		}
	}

	return best
}

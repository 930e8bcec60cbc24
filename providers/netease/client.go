package netease

import (
	"context"
	"encoding/json"
	"fmt"
	"lyricsync-go/config"
	"lyricsync-go/providers"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	referer        = "https://music.163.com"
)

// Endpoint vars so tests can point the client at a local server.
var (
	searchURL = "https://music.163.com/api/search/get/web"
	lyricURL  = "https://music.163.com/api/song/lyric"
)

var httpClient = &http.Client{
	Timeout: defaultTimeout,
}

// SearchSongs searches the catalog for tracks matching the keyword.
func SearchSongs(ctx context.Context, artist, title string) ([]Song, error) {
	keyword := title
	if artist != "" {
		keyword = title + " " + artist
	}

	params := url.Values{}
	params.Set("s", keyword)
	params.Set("type", "1")
	params.Set("limit", "10")
	params.Set("offset", "0")

	requestURL := searchURL + "?" + params.Encode()

	header := http.Header{}
	header.Set("User-Agent", userAgent)
	header.Set("Referer", referer)

	relayBase := config.Get().Configuration.RelayBaseURL
	body, err := providers.GetWithRelay(ctx, httpClient, requestURL, relayBase, header)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if searchResp.Code != 200 {
		return nil, fmt.Errorf("API error: code %d", searchResp.Code)
	}

	return searchResp.Result.Songs, nil
}

// GetLyric fetches the lyric bodies for a song ID. Requesting kv=1 asks
// for the karaoke body alongside the plain line-timed one.
func GetLyric(ctx context.Context, songID int) (*LyricResponse, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(songID))
	params.Set("lv", "1")
	params.Set("kv", "1")
	params.Set("tv", "-1")

	requestURL := lyricURL + "?" + params.Encode()

	header := http.Header{}
	header.Set("User-Agent", userAgent)
	header.Set("Referer", referer)

	relayBase := config.Get().Configuration.RelayBaseURL
	body, err := providers.GetWithRelay(ctx, httpClient, requestURL, relayBase, header)
	if err != nil {
		return nil, fmt.Errorf("lyric request failed: %w", err)
	}

	var lyricResp LyricResponse
	if err := json.Unmarshal(body, &lyricResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if lyricResp.Code != 200 {
		return nil, fmt.Errorf("API error: code %d", lyricResp.Code)
	}

	return &lyricResp, nil
}

package musixmatch

import (
	"context"
	"encoding/json"
	"fmt"
	"lyricsync-go/config"
	"lyricsync-go/providers"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Endpoint vars so tests can point the client at a local server.
var (
	richsyncURL = "https://apic-desktop.musixmatch.com/ws/1.1/matcher.track.richsync.get"
	subtitleURL = "https://apic-desktop.musixmatch.com/ws/1.1/matcher.subtitle.get"
	lyricsURL   = "https://apic-desktop.musixmatch.com/ws/1.1/matcher.lyrics.get"
)

var httpClient = &http.Client{
	Timeout: defaultTimeout,
}

func matcherParams(artist, title, usertoken string) url.Values {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("namespace", "lyrics_richsynched")
	params.Set("subtitle_format", "lrc")
	params.Set("app_id", "web-desktop-app-v1.0")
	params.Set("q_track", title)
	params.Set("q_artist", artist)
	params.Set("usertoken", usertoken)
	return params
}

func fetchEnvelope(ctx context.Context, rawURL string, out interface{}) error {
	header := http.Header{}
	header.Set("User-Agent", userAgent)

	relayBase := config.Get().Configuration.RelayBaseURL
	body, err := providers.GetWithRelay(ctx, httpClient, rawURL, relayBase, header)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// GetRichsync fetches the word-timed richsync body for the given track.
// The returned string is the raw richsync JSON document.
func GetRichsync(ctx context.Context, artist, title, usertoken string) (string, error) {
	requestURL := richsyncURL + "?" + matcherParams(artist, title, usertoken).Encode()

	var resp richsyncResponse
	if err := fetchEnvelope(ctx, requestURL, &resp); err != nil {
		return "", err
	}

	if resp.Message.Header.StatusCode != 200 {
		return "", fmt.Errorf("API error: status %d", resp.Message.Header.StatusCode)
	}
	if resp.Message.Body.Richsync.Restricted != 0 {
		return "", fmt.Errorf("richsync is restricted")
	}

	return resp.Message.Body.Richsync.RichsyncBody, nil
}

// GetSubtitle fetches the synced subtitle body for the given track.
func GetSubtitle(ctx context.Context, artist, title, usertoken string) (string, error) {
	requestURL := subtitleURL + "?" + matcherParams(artist, title, usertoken).Encode()

	var resp subtitleResponse
	if err := fetchEnvelope(ctx, requestURL, &resp); err != nil {
		return "", err
	}

	if resp.Message.Header.StatusCode != 200 {
		return "", fmt.Errorf("API error: status %d", resp.Message.Header.StatusCode)
	}
	if resp.Message.Body.Subtitle.Restricted != 0 {
		return "", fmt.Errorf("subtitle is restricted")
	}

	return resp.Message.Body.Subtitle.SubtitleBody, nil
}

// GetLyrics fetches the plain lyrics body for the given track.
func GetLyrics(ctx context.Context, artist, title, usertoken string) (string, error) {
	requestURL := lyricsURL + "?" + matcherParams(artist, title, usertoken).Encode()

	var resp lyricsResponse
	if err := fetchEnvelope(ctx, requestURL, &resp); err != nil {
		return "", err
	}

	if resp.Message.Header.StatusCode != 200 {
		return "", fmt.Errorf("API error: status %d", resp.Message.Header.StatusCode)
	}
	if resp.Message.Body.Lyrics.Restricted != 0 {
		return "", fmt.Errorf("lyrics are restricted")
	}

	return resp.Message.Body.Lyrics.LyricsBody, nil
}

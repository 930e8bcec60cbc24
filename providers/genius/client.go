package genius

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"lyricsync-go/providers"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// searchURL is a var so tests can point the client at a local server.
var searchURL = "https://api.genius.com/search"

var httpClient = &http.Client{
	Timeout: defaultTimeout,
}

var (
	lyricsContainerRegex = regexp.MustCompile(`(?s)<div[^>]+data-lyrics-container="true"[^>]*>(.*?)</div>`)
	lineBreakRegex       = regexp.MustCompile(`<br\s*/?>`)
	htmlTagRegex         = regexp.MustCompile(`<[^>]+>`)
)

// Search queries the Genius API for tracks matching the keyword.
// Requires a Bearer access token.
func Search(ctx context.Context, artist, title, accessToken string) ([]Hit, error) {
	keyword := title
	if artist != "" {
		keyword = title + " " + artist
	}

	params := url.Values{}
	params.Set("q", keyword)

	requestURL := searchURL + "?" + params.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)
	header.Set("User-Agent", userAgent)

	body, err := providers.GetBody(ctx, httpClient, requestURL, header)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if searchResp.Meta.Status != 200 {
		return nil, fmt.Errorf("API error: status %d", searchResp.Meta.Status)
	}

	return searchResp.Response.Hits, nil
}

// FetchPage downloads the song page at the given URL.
func FetchPage(ctx context.Context, pageURL string) (string, error) {
	header := http.Header{}
	header.Set("User-Agent", userAgent)

	body, err := providers.GetBody(ctx, httpClient, pageURL, header)
	if err != nil {
		return "", fmt.Errorf("page request failed: %w", err)
	}
	return string(body), nil
}

// ExtractLyrics pulls the lyrics text out of a song page. The page marks
// lyrics blocks with data-lyrics-container; everything else is markup.
func ExtractLyrics(page string) string {
	containers := lyricsContainerRegex.FindAllStringSubmatch(page, -1)
	if len(containers) == 0 {
		return ""
	}

	var b strings.Builder
	for _, c := range containers {
		block := lineBreakRegex.ReplaceAllString(c[1], "\n")
		block = htmlTagRegex.ReplaceAllString(block, "")
		b.WriteString(html.UnescapeString(block))
		b.WriteString("\n")
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// SelectBestHit picks the first song hit whose title or artist matches
// the query, falling back to the first song hit.
func SelectBestHit(hits []Hit, artist, title string) *Hit {
	titleLower := strings.ToLower(title)
	artistLower := strings.ToLower(artist)

	var firstSong *Hit
	for i := range hits {
		h := &hits[i]
		if h.Type != "" && h.Type != "song" {
			continue
		}
		if firstSong == nil {
			firstSong = h
		}

		hitTitleLower := strings.ToLower(h.Result.Title)
		hitArtistLower := strings.ToLower(h.Result.PrimaryArtist.Name)

		titleMatches := hitTitleLower == titleLower ||
			strings.Contains(hitTitleLower, titleLower)
		artistMatches := artistLower == "" ||
			hitArtistLower == artistLower ||
			strings.Contains(hitArtistLower, artistLower)

		if titleMatches && artistMatches {
			return h
		}
	}

	return firstSong
}

package genius

import (
	"context"
	"fmt"
	"lyricsync-go/config"
	"lyricsync-go/logcolors"
	"lyricsync-go/providers"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the Genius provider
	ProviderName = "genius"
)

// GeniusProvider implements the providers.Provider interface for Genius.
// Genius never carries timing, so every result is plain text. Without a
// configured access token the adapter short-circuits before any network
// traffic.
type GeniusProvider struct{}

// NewProvider creates a new Genius provider instance
func NewProvider() *GeniusProvider {
	return &GeniusProvider{}
}

// Name returns the provider identifier
func (p *GeniusProvider) Name() string {
	return ProviderName
}

// Granularity returns the finest timing unit Genius supplies; there is
// none, so this reports line for chain bookkeeping only.
func (p *GeniusProvider) Granularity() providers.Granularity {
	return providers.GranularityLine
}

// Fetch fetches plain lyrics from Genius via search plus page scrape.
func (p *GeniusProvider) Fetch(ctx context.Context, artist, title string) (*providers.Result, error) {
	conf := config.Get()

	accessToken := conf.Configuration.GeniusAccessToken
	if accessToken == "" {
		return nil, providers.NewProviderError(ProviderName, "access token not configured", providers.ErrNotConfigured)
	}

	if title == "" {
		return nil, providers.NewProviderError(ProviderName, "track title cannot be empty", nil)
	}

	timeout := time.Duration(conf.Configuration.ProviderTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Infof("%s [Genius] Searching: %s - %s", logcolors.LogSearch, artist, title)

	hits, err := Search(ctx, artist, title, accessToken)
	if err != nil {
		return nil, providers.NewProviderError(ProviderName, "search failed", err)
	}

	if len(hits) == 0 {
		return nil, providers.NewProviderError(ProviderName, fmt.Sprintf("no hits for: %s - %s", artist, title), nil)
	}

	best := SelectBestHit(hits, artist, title)
	if best == nil || best.Result.URL == "" {
		return nil, providers.NewProviderError(ProviderName, "no suitable hit found", nil)
	}

	log.Infof("%s [Genius] Best hit: %s - %s", logcolors.LogMatch,
		best.Result.Title, best.Result.PrimaryArtist.Name)

	page, err := FetchPage(ctx, best.Result.URL)
	if err != nil {
		return nil, providers.NewProviderError(ProviderName, "page fetch failed", err)
	}

	lyrics := ExtractLyrics(page)
	if lyrics == "" {
		return nil, providers.NewProviderError(ProviderName, fmt.Sprintf("no lyrics on page for: %s - %s", artist, title), nil)
	}

	log.Infof("%s [Genius] Extracted plain lyrics for: %s - %s (%d bytes)",
		logcolors.LogSuccess, artist, title, len(lyrics))

	return &providers.Result{
		RawPayload: lyrics,
		SourceName: ProviderName,
		Synced:     false,
	}, nil
}

// init registers the Genius provider with the global registry
func init() {
	providers.Register(NewProvider())
}

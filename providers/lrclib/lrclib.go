package lrclib

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
	// ProviderName is the identifier for the lrclib provider
	ProviderName = "lrclib"
)

// LrclibProvider implements the providers.Provider interface for lrclib.net.
// It needs no credentials and serves as the baseline source in the chain.
type LrclibProvider struct{}

// NewProvider creates a new lrclib provider instance
func NewProvider() *LrclibProvider {
	return &LrclibProvider{}
}

// Name returns the provider identifier
func (p *LrclibProvider) Name() string {
	return ProviderName
}

// Granularity returns the finest timing unit lrclib supplies
func (p *LrclibProvider) Granularity() providers.Granularity {
	return providers.GranularityLine
}

// Fetch fetches lyrics from the lrclib API
func (p *LrclibProvider) Fetch(ctx context.Context, artist, title string) (*providers.Result, error) {
	conf := config.Get()

	if title == "" {
		return nil, providers.NewProviderError(ProviderName, "track title cannot be empty", nil)
	}

	timeout := time.Duration(conf.Configuration.LrclibTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Infof("%s [Lrclib] Searching: %s - %s", logcolors.LogSearch, artist, title)

	results, err := Search(ctx, artist, title)
	if err != nil {
		return nil, providers.NewProviderError(ProviderName, "search failed", err)
	}

	if len(results) == 0 {
		return nil, providers.NewProviderError(ProviderName, fmt.Sprintf("no results for: %s - %s", artist, title), nil)
	}

	best := SelectBest(results, artist, title)
	if best == nil {
		return nil, providers.NewProviderError(ProviderName, "no suitable record found", nil)
	}

	log.Infof("%s [Lrclib] Best match: %s - %s (id: %d)",
		logcolors.LogMatch, best.TrackName, best.ArtistName, best.ID)

	if best.SyncedLyrics != "" {
		log.Infof("%s [Lrclib] Fetched synced lyrics for: %s - %s (%d bytes)",
			logcolors.LogSuccess, artist, title, len(best.SyncedLyrics))
		return &providers.Result{
			RawPayload:  best.SyncedLyrics,
			SourceName:  ProviderName,
			Synced:      true,
			Granularity: providers.GranularityLine,
		}, nil
	}

	if best.PlainLyrics != "" {
		log.Infof("%s [Lrclib] Only plain lyrics available for: %s - %s",
			logcolors.LogLyrics, artist, title)
		return &providers.Result{
			RawPayload: best.PlainLyrics,
			SourceName: ProviderName,
			Synced:     false,
		}, nil
	}

	return nil, providers.NewProviderError(ProviderName, fmt.Sprintf("record has no lyrics body for: %s - %s", artist, title), nil)
}

// init registers the lrclib provider with the global registry
func init() {
	providers.Register(NewProvider())
}

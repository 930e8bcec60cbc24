package musixmatch

import (
	"context"
	"fmt"
	"lyricsync-go/config"
	"lyricsync-go/logcolors"
	"lyricsync-go/providers"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// ProviderName is the identifier for the Musixmatch provider
	ProviderName = "musixmatch"
)

// MusixmatchProvider implements the providers.Provider interface for the
// Musixmatch matcher endpoints. Without a configured usertoken the
// adapter short-circuits before any network traffic.
type MusixmatchProvider struct{}

// NewProvider creates a new Musixmatch provider instance
func NewProvider() *MusixmatchProvider {
	return &MusixmatchProvider{}
}

// Name returns the provider identifier
func (p *MusixmatchProvider) Name() string {
	return ProviderName
}

// Granularity returns the finest timing unit Musixmatch supplies
func (p *MusixmatchProvider) Granularity() providers.Granularity {
	return providers.GranularityWord
}

// Fetch fetches lyrics from Musixmatch: word-timed richsync first, then
// the synced subtitle body, then plain lyrics.
func (p *MusixmatchProvider) Fetch(ctx context.Context, artist, title string) (*providers.Result, error) {
	conf := config.Get()

	usertoken := conf.Configuration.MusixmatchUserToken
	if usertoken == "" {
		return nil, providers.NewProviderError(ProviderName, "usertoken not configured", providers.ErrNotConfigured)
	}

	if title == "" {
		return nil, providers.NewProviderError(ProviderName, "track title cannot be empty", nil)
	}

	timeout := time.Duration(conf.Configuration.ProviderTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Infof("%s [Musixmatch] Searching: %s - %s", logcolors.LogSearch, artist, title)

	richsync, err := GetRichsync(ctx, artist, title, usertoken)
	if err == nil {
		if converted := ConvertRichsync(richsync); converted != "" {
			log.Infof("%s [Musixmatch] Fetched word-timed lyrics for: %s - %s (%d bytes)",
				logcolors.LogSuccess, artist, title, len(converted))
			return &providers.Result{
				RawPayload:  converted,
				SourceName:  ProviderName,
				Synced:      true,
				Granularity: providers.GranularityWord,
			}, nil
		}
	} else {
		log.Debugf("%s [Musixmatch] Richsync lookup failed: %v", logcolors.LogLyrics, err)
	}
	if ctx.Err() != nil {
		return nil, providers.NewProviderError(ProviderName, "richsync lookup timed out", ctx.Err())
	}

	subtitle, err := GetSubtitle(ctx, artist, title, usertoken)
	if err == nil && strings.TrimSpace(subtitle) != "" {
		log.Infof("%s [Musixmatch] Fetched synced lyrics for: %s - %s (%d bytes)",
			logcolors.LogSuccess, artist, title, len(subtitle))
		return &providers.Result{
			RawPayload:  subtitle,
			SourceName:  ProviderName,
			Synced:      true,
			Granularity: providers.GranularityLine,
		}, nil
	}
	if err != nil {
		log.Debugf("%s [Musixmatch] Subtitle lookup failed: %v", logcolors.LogLyrics, err)
	}
	if ctx.Err() != nil {
		return nil, providers.NewProviderError(ProviderName, "subtitle lookup timed out", ctx.Err())
	}

	lyrics, err := GetLyrics(ctx, artist, title, usertoken)
	if err != nil {
		return nil, providers.NewProviderError(ProviderName, "lyrics lookup failed", err)
	}

	if strings.TrimSpace(lyrics) == "" {
		return nil, providers.NewProviderError(ProviderName, fmt.Sprintf("no lyrics found for: %s - %s", artist, title), nil)
	}

	log.Infof("%s [Musixmatch] Only plain lyrics available for: %s - %s",
		logcolors.LogLyrics, artist, title)
	return &providers.Result{
		RawPayload: lyrics,
		SourceName: ProviderName,
		Synced:     false,
	}, nil
}

// init registers the Musixmatch provider with the global registry
func init() {
	providers.Register(NewProvider())
}

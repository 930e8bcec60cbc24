package netease

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
	// ProviderName is the identifier for the NetEase provider
	ProviderName = "netease"
)

// NeteaseProvider implements the providers.Provider interface for the
// NetEase Cloud Music catalog. It is the only provider in the chain that
// can return word-level timing.
type NeteaseProvider struct{}

// NewProvider creates a new NetEase provider instance
func NewProvider() *NeteaseProvider {
	return &NeteaseProvider{}
}

// Name returns the provider identifier
func (p *NeteaseProvider) Name() string {
	return ProviderName
}

// Granularity returns the finest timing unit NetEase supplies
func (p *NeteaseProvider) Granularity() providers.Granularity {
	return providers.GranularityWord
}

// Fetch fetches lyrics from the NetEase API, preferring the karaoke body
// and falling back to the plain line-timed one.
func (p *NeteaseProvider) Fetch(ctx context.Context, artist, title string) (*providers.Result, error) {
	conf := config.Get()

	if title == "" {
		return nil, providers.NewProviderError(ProviderName, "track title cannot be empty", nil)
	}

	timeout := time.Duration(conf.Configuration.ProviderTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Infof("%s [NetEase] Searching: %s - %s", logcolors.LogSearch, artist, title)

	songs, err := SearchSongs(ctx, artist, title)
	if err != nil {
		return nil, providers.NewProviderError(ProviderName, "song search failed", err)
	}

	if len(songs) == 0 {
		return nil, providers.NewProviderError(ProviderName, fmt.Sprintf("no songs found for: %s - %s", artist, title), nil)
	}

	best := SelectBestSong(songs, artist, title)
	if best == nil {
		return nil, providers.NewProviderError(ProviderName, "no suitable song match found", nil)
	}

	log.Infof("%s [NetEase] Found song: %s (id: %d)", logcolors.LogMatch, best.Name, best.ID)

	lyricResp, err := GetLyric(ctx, best.ID)
	if err != nil {
		return nil, providers.NewProviderError(ProviderName, "lyric fetch failed", err)
	}

	if klyric := strings.TrimSpace(lyricResp.Klyric.Lyric); klyric != "" {
		converted := ConvertKlyric(klyric)
		if converted != "" {
			log.Infof("%s [NetEase] Fetched word-timed lyrics for: %s - %s (%d bytes)",
				logcolors.LogSuccess, artist, title, len(converted))
			return &providers.Result{
				RawPayload:  converted,
				SourceName:  ProviderName,
				Synced:      true,
				Granularity: providers.GranularityWord,
			}, nil
		}
		log.Warnf("%s [NetEase] Karaoke body present but yielded no timed lines", logcolors.LogWarning)
	}

	if lrc := strings.TrimSpace(lyricResp.Lrc.Lyric); lrc != "" {
		log.Infof("%s [NetEase] Fetched line-timed lyrics for: %s - %s (%d bytes)",
			logcolors.LogSuccess, artist, title, len(lrc))
		return &providers.Result{
			RawPayload:  lrc,
			SourceName:  ProviderName,
			Synced:      true,
			Granularity: providers.GranularityLine,
		}, nil
	}

	return nil, providers.NewProviderError(ProviderName, fmt.Sprintf("no lyrics body for: %s - %s", artist, title), nil)
}

// init registers the NetEase provider with the global registry
func init() {
	providers.Register(NewProvider())
}

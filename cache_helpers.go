package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lyricsync-go/logcolors"
	"lyricsync-go/providers"
	"lyricsync-go/resolver"

	log "github.com/sirupsen/logrus"
)

// Cache key builders

// buildCacheKey creates a consistent, normalized cache key. Artist and
// title are lowercased and whitespace-collapsed so cache hits survive
// casing and spacing variations in the query.
func buildCacheKey(artist, title string) string {
	return fmt.Sprintf("lyrics:%s|%s", providers.NormalizeQuery(artist), providers.NormalizeQuery(title))
}

// negativeCacheKey derives the "no lyrics" key for a lyrics cache key.
func negativeCacheKey(cacheKey string) string {
	return "no_lyrics:" + cacheKey
}

// Resolution cache operations

// getCachedResolution retrieves and parses a cached resolution.
func getCachedResolution(key string) (*resolver.Resolution, bool) {
	cached, ok := persistentCache.Get(key)
	if !ok {
		return nil, false
	}

	var res resolver.Resolution
	if err := json.Unmarshal([]byte(cached), &res); err != nil {
		log.Warnf("%s Dropping unreadable cache entry %s: %v", logcolors.LogCacheLyrics, key, err)
		persistentCache.Delete(key)
		return nil, false
	}
	if res.Timeline == nil {
		return nil, false
	}
	return &res, true
}

// setCachedResolution stores a resolution. Per-request attempt metadata
// is stripped before caching so replays stay small.
func setCachedResolution(key string, res *resolver.Resolution) {
	stored := *res
	stored.Attempts = nil

	data, err := json.Marshal(&stored)
	if err != nil {
		log.Errorf("%s Error marshaling resolution: %v", logcolors.LogCacheLyrics, err)
		return
	}
	ttl := time.Duration(conf.Configuration.LyricsCacheTTLInSeconds) * time.Second
	if err := persistentCache.Set(key, string(data), ttl); err != nil {
		log.Errorf("%s Error setting cache value: %v", logcolors.LogCacheLyrics, err)
	}
}

// Negative cache operations

// getNegativeCache checks if a query is in the negative cache (no lyrics
// available). Returns the reason and true if found and not expired.
func getNegativeCache(key string) (string, bool) {
	cached, ok := persistentCache.Get(negativeCacheKey(key))
	if !ok {
		return "", false
	}

	var entry NegativeCacheEntry
	if err := json.Unmarshal([]byte(cached), &entry); err != nil {
		return "", false
	}

	// Entries carry their own timestamp so a TTL config change applies
	// to existing entries too.
	ttlDays := conf.Configuration.NegativeCacheTTLInDays
	expirationTime := entry.Timestamp + int64(ttlDays*24*60*60)
	if time.Now().Unix() > expirationTime {
		persistentCache.Delete(negativeCacheKey(key))
		return "", false
	}

	return entry.Reason, true
}

// setNegativeCache stores a failed lookup in the negative cache
func setNegativeCache(key, reason string) {
	entry := NegativeCacheEntry{
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("%s Error marshaling negative cache entry: %v", logcolors.LogCacheNegative, err)
		return
	}
	ttl := time.Duration(conf.Configuration.NegativeCacheTTLInDays) * 24 * time.Hour
	if err := persistentCache.Set(negativeCacheKey(key), string(data), ttl); err != nil {
		log.Errorf("%s Error setting negative cache: %v", logcolors.LogCacheNegative, err)
	}
	log.Infof("%s Cached 'no lyrics' for key: %s (reason: %s)", logcolors.LogCacheNegative, key, reason)
}

// shouldNegativeCache determines if an error should be stored in the
// negative cache. Only a clean chain exhaustion is permanent; transient
// failures (timeouts, provider errors) must stay retryable.
func shouldNegativeCache(err error) bool {
	return errors.Is(err, resolver.ErrNoLyrics)
}

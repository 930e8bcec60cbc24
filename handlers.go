package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"lyricsync-go/cache"
	"lyricsync-go/logcolors"
	"lyricsync-go/resolver"
	"lyricsync-go/stats"
	"lyricsync-go/syncer"

	log "github.com/sirupsen/logrus"
)

func getLyrics(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("a") + r.URL.Query().Get("artist")
	title := r.URL.Query().Get("t") + r.URL.Query().Get("title")

	if artist == "" || title == "" {
		http.Error(w, "Artist and title not provided", http.StatusUnprocessableEntity)
		return
	}

	cacheKey := buildCacheKey(artist, title)

	// Check if we're in cache-only mode (rate limit tier 2)
	cacheOnlyMode, _ := r.Context().Value(cacheOnlyModeKey).(bool)

	// Check cache first
	if res, ok := getCachedResolution(cacheKey); ok {
		stats.Get().RecordCacheHit()
		log.Infof("%s Found cached timeline for: %s", logcolors.LogCacheLyrics, cacheKey)
		Respond(w, r).SetCacheStatus("HIT").SetSource(res.Source).JSON(res)
		return
	}

	// Check negative cache (known "no lyrics" responses)
	if reason, found := getNegativeCache(cacheKey); found {
		stats.Get().RecordNegativeCacheHit()
		log.Infof("%s Returning cached 'no lyrics' response for: %s", logcolors.LogCacheNegative, cacheKey)
		Respond(w, r).SetCacheStatus("NEGATIVE_HIT").Error(http.StatusNotFound, map[string]interface{}{
			"error": reason,
		})
		return
	}

	// If in cache-only mode and no cache found, return 429
	if cacheOnlyMode {
		stats.Get().RecordCacheMiss()
		stats.Get().RecordRateLimit("exceeded")
		log.Warnf("%s Cache-only mode but no cache found for: %s", logcolors.LogCacheLyrics, cacheKey)
		w.Header().Set("Retry-After", "60")
		Respond(w, r).SetCacheStatus("MISS").Error(http.StatusTooManyRequests, map[string]interface{}{
			"error":   "Rate limit exceeded. This request requires cached data, but no cache is available for this query.",
			"message": "Please try again later or reduce your request rate.",
		})
		return
	}

	// The WaitGroup must be armed before the entry is published, or a
	// waiter landing in between sees a zero WaitGroup and reads the
	// result fields before they are set.
	fresh := &InFlightRequest{}
	fresh.wg.Add(1)

	inFlight, loaded := inFlightReqs.LoadOrStore(cacheKey, fresh)
	req := inFlight.(*InFlightRequest)

	if loaded {
		log.Infof("%s Waiting for in-flight request to complete", logcolors.LogCacheLyrics)
		req.wg.Wait()
		writeResolution(w, r, "HIT", req.resolution, req.err)
		return
	}

	defer func() {
		req.wg.Done()
		time.AfterFunc(1*time.Second, func() {
			inFlightReqs.Delete(cacheKey)
		})
	}()

	res, err := lyricsResolver.Resolve(r.Context(), artist, title)
	req.resolution = res
	req.err = err

	if err == nil {
		stats.Get().RecordCacheMiss()
		stats.Get().RecordProviderWin(res.Source)
		if !res.Timeline.Synced {
			stats.Get().RecordUnsyncedFallback()
		}
		log.Infof("%s Caching timeline for: %s (source: %s, %d segments)",
			logcolors.LogCacheLyrics, cacheKey, res.Source, len(res.Timeline.Segments))
		setCachedResolution(cacheKey, res)
	} else {
		stats.Get().RecordCacheMiss()
		if shouldNegativeCache(err) {
			setNegativeCache(cacheKey, "Lyrics not available for this track")
		} else {
			stats.Get().RecordResolveFailure()
			log.Errorf("%s Error resolving lyrics: %v", logcolors.LogLyrics, err)
		}
	}

	writeResolution(w, r, "MISS", res, err)
}

// writeResolution maps a resolver outcome onto the HTTP response.
func writeResolution(w http.ResponseWriter, r *http.Request, cacheStatus string, res *resolver.Resolution, err error) {
	if err == nil {
		if res == nil {
			// The leader abandoned the entry without a result.
			w.Header().Set("Retry-After", "1")
			Respond(w, r).SetCacheStatus(cacheStatus).Error(http.StatusServiceUnavailable, map[string]interface{}{
				"error": "Lyrics resolution did not complete, retry shortly",
			})
			return
		}
		Respond(w, r).SetCacheStatus(cacheStatus).SetSource(res.Source).JSON(res)
		return
	}
	if errors.Is(err, resolver.ErrNoLyrics) {
		Respond(w, r).SetCacheStatus(cacheStatus).Error(http.StatusNotFound, map[string]interface{}{
			"error": "Lyrics not available for this track",
		})
		return
	}
	Respond(w, r).SetCacheStatus(cacheStatus).Error(http.StatusBadGateway, map[string]interface{}{
		"error": err.Error(),
	})
}

func nowPlayingHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		setNowPlaying(w, r)
	case http.MethodGet:
		getNowPlaying(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func setNowPlaying(w http.ResponseWriter, r *http.Request) {
	var track syncer.Track
	if err := json.NewDecoder(r.Body).Decode(&track); err != nil {
		Respond(w, r).Error(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid JSON body, expected {\"artist\": ..., \"title\": ...}",
		})
		return
	}
	if track.Artist == "" || track.Title == "" {
		Respond(w, r).Error(http.StatusUnprocessableEntity, map[string]interface{}{
			"error": "Artist and title not provided",
		})
		return
	}

	// The fetch must outlive this request, so it is not tied to r.Context().
	generation := playbackSession.SetTrack(context.Background(), track.Artist, track.Title)
	log.Infof("%s Track change: %s - %s (generation %d)", logcolors.LogSession, track.Artist, track.Title, generation)

	Respond(w, r).Error(http.StatusAccepted, map[string]interface{}{
		"track":      track,
		"generation": generation,
	})
}

func getNowPlaying(w http.ResponseWriter, r *http.Request) {
	track, ok := playbackSession.Track()
	if !ok {
		Respond(w, r).Error(http.StatusNotFound, map[string]interface{}{
			"error": "No track set",
		})
		return
	}

	response := map[string]interface{}{
		"track":      track,
		"generation": playbackSession.Generation(),
	}

	res, err := playbackSession.Resolution()
	switch {
	case errors.Is(err, syncer.ErrPending):
		response["status"] = "pending"
	case err != nil:
		response["status"] = "failed"
		response["error"] = err.Error()
	default:
		response["status"] = "ready"
		response["source"] = res.Source
		response["synced"] = res.Timeline.Synced
		response["segments"] = len(res.Timeline.Segments)
	}

	Respond(w, r).JSON(response)
}

func getSyncWindow(w http.ResponseWriter, r *http.Request) {
	posStr := r.URL.Query().Get("position")
	if posStr == "" {
		posStr = r.URL.Query().Get("pos")
	}
	if posStr == "" {
		Respond(w, r).Error(http.StatusBadRequest, map[string]interface{}{
			"error": "Missing 'position' query parameter (playback position in seconds)",
		})
		return
	}

	pos, err := strconv.ParseFloat(posStr, 64)
	if err != nil {
		Respond(w, r).Error(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid 'position' value: " + posStr,
		})
		return
	}

	window, err := playbackSession.Window(pos)
	switch {
	case errors.Is(err, syncer.ErrNoTrack):
		Respond(w, r).Error(http.StatusNotFound, map[string]interface{}{
			"error": "No track set. POST to /nowplaying first.",
		})
	case errors.Is(err, syncer.ErrPending):
		w.Header().Set("Retry-After", "1")
		Respond(w, r).Error(http.StatusAccepted, map[string]interface{}{
			"status": "pending",
		})
	case errors.Is(err, resolver.ErrNoLyrics):
		Respond(w, r).Error(http.StatusNotFound, map[string]interface{}{
			"error": "Lyrics not available for this track",
		})
	case err != nil:
		Respond(w, r).Error(http.StatusBadGateway, map[string]interface{}{
			"error": err.Error(),
		})
	default:
		Respond(w, r).JSON(window)
	}
}

func getStats(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != conf.Configuration.CacheAccessToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	s := stats.Get()
	snapshot := s.Snapshot()

	// Add cache storage info
	numKeys, sizeInKB := persistentCache.Stats()
	snapshot["cache_storage"] = map[string]interface{}{
		"keys":    numKeys,
		"size_kb": sizeInKB,
		"size_mb": float64(sizeInKB) / 1024,
	}

	snapshot["circuit_breakers"] = breakerSnapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

func getCacheDump(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != conf.Configuration.CacheAccessToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cacheDump := CacheDump{}
	persistentCache.Range(func(key string, entry cache.Entry) bool {
		cacheDump[key] = entry
		return true
	})

	numKeys, sizeInKB := persistentCache.Stats()
	s := stats.Get()

	cacheDumpResponse := CacheDumpResponse{
		NumberOfKeys: numKeys,
		SizeInKB:     sizeInKB,
		SizeInMB:     float64(sizeInKB) / 1024,
		Performance: CachePerformance{
			Hits:         s.CacheHits.Load(),
			Misses:       s.CacheMisses.Load(),
			NegativeHits: s.NegativeCacheHits.Load(),
			HitRate:      s.CacheHitRate(),
		},
		Cache: cacheDump,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cacheDumpResponse)
}

func clearCache(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != conf.Configuration.CacheAccessToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	numKeys, _ := persistentCache.Stats()
	if err := persistentCache.Clear(); err != nil {
		log.Errorf("%s Failed to clear cache: %v", logcolors.LogCache, err)
		Respond(w, r).Error(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to clear cache: " + err.Error(),
		})
		return
	}

	log.Infof("%s Cache cleared (%d keys dropped)", logcolors.LogCache, numKeys)
	Respond(w, r).JSON(map[string]interface{}{
		"message":      "Cache cleared successfully",
		"keys_dropped": numKeys,
	})
}

func getHealthStatus(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "ok",
		"providers": lyricsResolver.Chain(),
	}

	breakers := breakerSnapshot()
	health["circuit_breakers"] = breakers

	// An open breaker means a provider is down; the chain still works
	// around it, so the service is degraded rather than unhealthy.
	for _, name := range lyricsResolver.Chain() {
		if cb := lyricsResolver.Breaker(name); cb != nil && cb.IsOpen() {
			health["status"] = "degraded"
			break
		}
	}

	Respond(w, r).JSON(health)
}

// breakerSnapshot collects per-provider circuit breaker state.
func breakerSnapshot() map[string]interface{} {
	snapshot := make(map[string]interface{})
	for _, name := range lyricsResolver.Chain() {
		cb := lyricsResolver.Breaker(name)
		if cb == nil {
			continue
		}
		state, failures, _ := cb.Stats()
		entry := map[string]interface{}{
			"state":    state.String(),
			"failures": failures,
		}
		if cb.IsOpen() {
			entry["time_until_retry"] = cb.TimeUntilRetry().String()
		}
		snapshot[name] = entry
	}
	return snapshot
}

func getCircuitBreakerStatus(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != conf.Configuration.CacheAccessToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	Respond(w, r).JSON(map[string]interface{}{
		"breakers": breakerSnapshot(),
		"config": map[string]interface{}{
			"threshold":    conf.Configuration.CircuitBreakerThreshold,
			"cooldown_sec": conf.Configuration.CircuitBreakerCooldownSecs,
		},
	})
}

func resetCircuitBreaker(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != conf.Configuration.CacheAccessToken {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// ?provider= resets one breaker, otherwise all of them.
	target := r.URL.Query().Get("provider")
	var reset []string
	for _, name := range lyricsResolver.Chain() {
		if target != "" && name != target {
			continue
		}
		if cb := lyricsResolver.Breaker(name); cb != nil {
			cb.Reset()
			reset = append(reset, name)
		}
	}

	if len(reset) == 0 {
		Respond(w, r).Error(http.StatusNotFound, map[string]interface{}{
			"error": "Unknown provider: " + target,
		})
		return
	}

	log.Infof("%s Reset circuit breakers: %v", logcolors.LogServer, reset)
	Respond(w, r).JSON(map[string]interface{}{
		"message": "Circuit breakers reset to CLOSED state",
		"reset":   reset,
	})
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(map[string]interface{}{
		"endpoints": map[string]string{
			"/getLyrics":             "Resolve a timed lyrics timeline. Query: artist (or a), title (or t).",
			"/nowplaying":            "POST {artist, title} to announce a track change; GET for the current track.",
			"/sync":                  "Active-window projection for a playback position. Query: position (seconds).",
			"/health":                "Service health and circuit breaker states.",
			"/stats":                 "Usage counters (requires Authorization header).",
			"/cache":                 "Cache dump (requires Authorization header).",
			"/cache/clear":           "Drop all cached timelines (requires Authorization header).",
			"/circuit-breaker":       "Circuit breaker status (requires Authorization header).",
			"/circuit-breaker/reset": "Reset breakers, optionally ?provider=name (requires Authorization header).",
		},
	})
}

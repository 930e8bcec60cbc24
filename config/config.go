package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

var conf = mustLoad()

type Config struct {
	Configuration struct {
		RateLimitPerSecond        int    `envconfig:"RATE_LIMIT_PER_SECOND" default:"2"`
		RateLimitBurstLimit       int    `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"5"`
		CachedRateLimitPerSecond  int    `envconfig:"CACHED_RATE_LIMIT_PER_SECOND" default:"10"`
		CachedRateLimitBurstLimit int    `envconfig:"CACHED_RATE_LIMIT_BURST_LIMIT" default:"20"`
		APIKey                    string `envconfig:"API_KEY" default:""`
		CacheAccessToken          string `envconfig:"CACHE_ACCESS_TOKEN" default:""`

		// Cache configuration
		CacheDBPath                        string `envconfig:"CACHE_DB_PATH" default:"./data/lyrics-cache.db"`
		LyricsCacheTTLInSeconds            int    `envconfig:"LYRICS_CACHE_TTL_IN_SECONDS" default:"86400"`
		NegativeCacheTTLInDays             int    `envconfig:"NEGATIVE_CACHE_TTL_DAYS" default:"7"` // TTL for caching "no lyrics found" outcomes
		CacheInvalidationIntervalInSeconds int    `envconfig:"CACHE_INVALIDATION_INTERVAL_IN_SECONDS" default:"3600"`

		// Stats persistence
		StatsDBPath                string `envconfig:"STATS_DB_PATH" default:"./data/stats.db"`
		StatsSaveIntervalInSeconds int    `envconfig:"STATS_SAVE_INTERVAL_IN_SECONDS" default:"300"`

		// Provider credentials: absence silently disables the adapter
		MusixmatchUserToken string `envconfig:"MUSIXMATCH_USER_TOKEN" default:""`
		GeniusAccessToken   string `envconfig:"GENIUS_ACCESS_TOKEN" default:""`

		// Relay mirror used as the one-shot alternate transport path.
		// The relay wraps the upstream body in a "contents" JSON field.
		RelayBaseURL string `envconfig:"RELAY_BASE_URL" default:"https://api.allorigins.win/get?url="`

		// Per-provider request timeouts (seconds)
		ProviderTimeoutSeconds int `envconfig:"PROVIDER_TIMEOUT_SECONDS" default:"5"`
		LrclibTimeoutSeconds   int `envconfig:"LRCLIB_TIMEOUT_SECONDS" default:"10"` // most tolerant provider

		// Sync cursor look-ahead window size (active segment + N upcoming)
		SyncLookahead int `envconfig:"SYNC_LOOKAHEAD" default:"6"`

		CircuitBreakerThreshold    int `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"5"`       // Consecutive failures before circuit opens
		CircuitBreakerCooldownSecs int `envconfig:"CIRCUIT_BREAKER_COOLDOWN_SECS" default:"300"` // Seconds to wait before retrying (default: 5 minutes)
	}

	FeatureFlags struct {
		CacheCompression bool `envconfig:"FF_CACHE_COMPRESSION" default:"true"`
	}
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warnf("Error loading env config: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return c
}

func Get() Config {
	return conf
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"lyricsync-go/cache"
	"lyricsync-go/config"
	"lyricsync-go/logcolors"
	"lyricsync-go/middleware"
	"lyricsync-go/resolver"
	"lyricsync-go/stats"
	"lyricsync-go/syncer"

	// Lyrics providers register themselves with the chain on import.
	_ "lyricsync-go/providers/genius"
	_ "lyricsync-go/providers/lrclib"
	_ "lyricsync-go/providers/musixmatch"
	_ "lyricsync-go/providers/netease"

	"golang.org/x/time/rate"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

var conf = config.Get()

var (
	persistentCache *cache.PersistentCache
	statsStore      *stats.Store
	lyricsResolver  *resolver.Resolver
	playbackSession *syncer.Session
	inFlightReqs    sync.Map
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel) // Set to InfoLevel (change to DebugLevel for detailed logs)

	err := godotenv.Load()
	if err != nil {
		log.Warn("Error loading .env file, using environment variables")
	}
}

func main() {
	var err error
	persistentCache, err = cache.NewPersistentCache(conf.Configuration.CacheDBPath, conf.FeatureFlags.CacheCompression)
	if err != nil {
		log.Fatalf("%s Failed to open cache: %v", logcolors.LogCacheInit, err)
	}
	persistentCache.StartSweeper(time.Duration(conf.Configuration.CacheInvalidationIntervalInSeconds) * time.Second)

	statsStore, err = stats.NewStore(conf.Configuration.StatsDBPath)
	if err != nil {
		log.Warnf("%s Stats persistence disabled: %v", logcolors.LogStats, err)
	} else {
		if err := statsStore.Load(); err != nil {
			log.Warnf("%s Failed to load persisted stats: %v", logcolors.LogStats, err)
		}
		statsStore.StartAutoSave(time.Duration(conf.Configuration.StatsSaveIntervalInSeconds) * time.Second)
	}

	lyricsResolver = resolver.New()
	playbackSession = syncer.NewSession(lyricsResolver.Resolve, conf.Configuration.SyncLookahead)
	log.Infof("%s Provider chain: %v", logcolors.LogServer, lyricsResolver.Chain())

	router := mux.NewRouter()
	setupRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"https://music.youtube.com", "http://localhost:3000"},
		AllowCredentials: true,
	})

	limiter := middleware.NewIPRateLimiter(
		rate.Limit(conf.Configuration.RateLimitPerSecond), conf.Configuration.RateLimitBurstLimit,
		rate.Limit(conf.Configuration.CachedRateLimitPerSecond), conf.Configuration.CachedRateLimitBurstLimit,
	)

	// Admin endpoints sit behind the API key; the lyrics surface is public.
	apiKeyGate := middleware.APIKeyMiddleware(conf.Configuration.APIKey, conf.Configuration.APIKey != "", []string{
		"/", "/getLyrics", "/nowplaying", "/sync", "/health",
	})

	// Middleware chain, outermost first: rate limit -> cors -> logging ->
	// stats -> api key -> router.
	handler := apiKeyGate(router)
	handler = statsMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = c.Handler(handler)
	handler = limitMiddleware(handler, limiter)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	go func() {
		log.Infof("%s Listening on port %s", logcolors.LogServer, port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("%s Server error: %v", logcolors.LogServer, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Infof("%s Shutting down", logcolors.LogServer)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("%s Shutdown error: %v", logcolors.LogServer, err)
	}

	if statsStore != nil {
		if err := statsStore.Close(); err != nil {
			log.Errorf("%s Failed to persist stats: %v", logcolors.LogStats, err)
		}
	}
	if err := persistentCache.Close(); err != nil {
		log.Errorf("%s Failed to close cache: %v", logcolors.LogCacheInit, err)
	}
}

package main

import (
	"github.com/gorilla/mux"
)

// setupRoutes configures all HTTP routes for the service
func setupRoutes(router *mux.Router) {
	// Lyrics resolution
	router.HandleFunc("/getLyrics", getLyrics)

	// Playback session
	router.HandleFunc("/nowplaying", nowPlayingHandler)
	router.HandleFunc("/sync", getSyncWindow)

	// Cache management endpoints
	router.HandleFunc("/cache", getCacheDump)
	router.HandleFunc("/cache/clear", clearCache)

	// Health and stats endpoints
	router.HandleFunc("/health", getHealthStatus)
	router.HandleFunc("/stats", getStats)

	// Circuit breaker endpoints
	router.HandleFunc("/circuit-breaker", getCircuitBreakerStatus)
	router.HandleFunc("/circuit-breaker/reset", resetCircuitBreaker)

	// Help endpoint
	router.HandleFunc("/", helpHandler)
}

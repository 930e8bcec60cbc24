package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Red    = "\033[31m"
)

// Cache-related log prefixes
const (
	LogCacheInit     = Blue + "[Cache:Init]" + Reset
	LogCache         = Blue + "[Cache]" + Reset
	LogCacheLyrics   = Green + "[Cache:Lyrics]" + Reset
	LogCacheNegative = Cyan + "[Cache:Negative]" + Reset
	LogCacheSweep    = Blue + "[Cache:Sweep]" + Reset
)

// Rate limiting log prefixes
const (
	LogRateLimit = Purple + "[RateLimit]" + Reset
	LogAPIKey    = Purple + "[APIKey]" + Reset
)

// CircuitBreakerPrefix returns a colored circuit breaker prefix with the given name
func CircuitBreakerPrefix(name string) string {
	return Purple + "[CircuitBreaker:" + name + "]" + Reset
}

// Server/Init log prefixes
const (
	LogServer = Green + "[Server]" + Reset
	LogConfig = Cyan + "[Config]" + Reset
	LogStats  = Blue + "[Stats]" + Reset
)

// Resolver and provider log prefixes
const (
	LogRequest  = Purple + "[Request]" + Reset
	LogHTTP     = Purple + "[HTTP]" + Reset
	LogSearch   = Blue + "[Search]" + Reset
	LogLyrics   = Blue + "[Lyrics]" + Reset
	LogMatch    = Green + "[Match]" + Reset
	LogFallback = Cyan + "[Fallback]" + Reset
	LogRelay    = Cyan + "[Relay]" + Reset
	LogSuccess  = Green + "[Success]" + Reset
	LogParser   = Cyan + "[Parser]" + Reset
	LogWarning  = Red + "[Warning]" + Reset
)

// Sync engine log prefixes
const (
	LogSync    = Green + "[Sync]" + Reset
	LogSession = Cyan + "[Session]" + Reset
)

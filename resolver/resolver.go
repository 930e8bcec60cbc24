package resolver

import (
	"context"
	"errors"
	"lyricsync-go/circuitbreaker"
	"lyricsync-go/config"
	"lyricsync-go/logcolors"
	"lyricsync-go/providers"
	"lyricsync-go/timedtext"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrNoLyrics means every provider in the chain came up empty.
var ErrNoLyrics = errors.New("no lyrics found from any provider")

// DefaultChain is the fixed priority order. Word-timed sources come
// first, the unauthenticated baseline last.
var DefaultChain = []string{"netease", "musixmatch", "genius", "lrclib"}

// Attempt records one provider visit during resolution, for logging and
// the stats endpoint.
type Attempt struct {
	Provider string        `json:"provider"`
	Elapsed  time.Duration `json:"elapsedNs"`
	Skipped  bool          `json:"skipped"`
	Error    string        `json:"error,omitempty"`
	Segments int           `json:"segments"`
}

// Resolution is the outcome of a full chain walk.
type Resolution struct {
	Timeline    *timedtext.Timeline   `json:"timeline"`
	Source      string                `json:"source"`
	Granularity providers.Granularity `json:"granularity,omitempty"`
	Attempts    []Attempt             `json:"attempts,omitempty"`
}

// Resolver walks the provider chain in priority order until one yields
// a non-empty parsed timeline. Each provider sits behind its own
// circuit breaker.
type Resolver struct {
	chain    []string
	registry *providers.Registry
	breakers map[string]*circuitbreaker.CircuitBreaker
}

// New creates a resolver over the global provider registry with the
// default chain.
func New() *Resolver {
	return NewWithRegistry(providers.GetRegistry(), DefaultChain)
}

// NewWithRegistry creates a resolver over an explicit registry and chain.
func NewWithRegistry(registry *providers.Registry, chain []string) *Resolver {
	conf := config.Get()

	breakers := make(map[string]*circuitbreaker.CircuitBreaker, len(chain))
	for _, name := range chain {
		breakers[name] = circuitbreaker.New(circuitbreaker.Config{
			Name:      name,
			Threshold: conf.Configuration.CircuitBreakerThreshold,
			Cooldown:  time.Duration(conf.Configuration.CircuitBreakerCooldownSecs) * time.Second,
		})
	}

	return &Resolver{
		chain:    chain,
		registry: registry,
		breakers: breakers,
	}
}

// Breaker returns the circuit breaker guarding the named provider, or
// nil if the provider is not in the chain.
func (r *Resolver) Breaker(name string) *circuitbreaker.CircuitBreaker {
	return r.breakers[name]
}

// Chain returns the provider names in priority order.
func (r *Resolver) Chain() []string {
	out := make([]string, len(r.chain))
	copy(out, r.chain)
	return out
}

// Resolve walks the chain for the given track. The first provider whose
// payload parses into a non-empty synced timeline wins and the rest of
// the chain is never visited. Plain payloads are remembered and only
// used once every provider has been exhausted.
func (r *Resolver) Resolve(ctx context.Context, artist, title string) (*Resolution, error) {
	artist = providers.NormalizeQuery(artist)
	title = providers.NormalizeQuery(title)

	var attempts []Attempt
	var plainFallback *providers.Result

	for _, name := range r.chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := r.registry.Get(name)
		if err != nil {
			log.Warnf("%s Provider %s not registered, skipping", logcolors.LogFallback, name)
			continue
		}

		cb := r.breakers[name]
		if cb != nil && !cb.Allow() {
			log.Infof("%s Skipping %s: circuit open (retry in %v)",
				logcolors.LogFallback, name, cb.TimeUntilRetry().Round(time.Second))
			attempts = append(attempts, Attempt{Provider: name, Skipped: true, Error: circuitbreaker.ErrCircuitOpen.Error()})
			continue
		}

		start := time.Now()
		result, err := p.Fetch(ctx, artist, title)
		elapsed := time.Since(start)

		if err != nil {
			if errors.Is(err, providers.ErrNotConfigured) {
				// Never left the process, so the breaker stays untouched.
				attempts = append(attempts, Attempt{Provider: name, Skipped: true, Error: err.Error()})
				continue
			}
			if cb != nil {
				cb.RecordFailure()
			}
			log.Infof("%s %s failed in %v: %v", logcolors.LogFallback, name, elapsed.Round(time.Millisecond), err)
			attempts = append(attempts, Attempt{Provider: name, Elapsed: elapsed, Error: err.Error()})
			continue
		}

		if cb != nil {
			cb.RecordSuccess()
		}

		if !result.Synced {
			if plainFallback == nil {
				plainFallback = result
			}
			log.Infof("%s %s returned plain lyrics, holding as fallback", logcolors.LogFallback, name)
			attempts = append(attempts, Attempt{Provider: name, Elapsed: elapsed})
			continue
		}

		timeline := timedtext.Parse(result.RawPayload)
		if timeline.Empty() {
			log.Warnf("%s %s payload parsed to an empty timeline", logcolors.LogWarning, name)
			attempts = append(attempts, Attempt{Provider: name, Elapsed: elapsed})
			continue
		}

		attempts = append(attempts, Attempt{Provider: name, Elapsed: elapsed, Segments: len(timeline.Segments)})
		log.Infof("%s Resolved %s - %s via %s (%d segments, %s)",
			logcolors.LogSuccess, artist, title, name, len(timeline.Segments), result.Granularity)

		return &Resolution{
			Timeline:    timeline,
			Source:      result.SourceName,
			Granularity: result.Granularity,
			Attempts:    attempts,
		}, nil
	}

	if plainFallback != nil {
		log.Infof("%s Chain exhausted, serving unsynced lyrics from %s",
			logcolors.LogFallback, plainFallback.SourceName)
		return &Resolution{
			Timeline: timedtext.Unsynced(plainFallback.RawPayload),
			Source:   plainFallback.SourceName,
			Attempts: attempts,
		}, nil
	}

	return nil, ErrNoLyrics
}

package syncer

import (
	"context"
	"errors"
	"lyricsync-go/logcolors"
	"lyricsync-go/resolver"
	"lyricsync-go/stats"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrNoTrack means no track has been announced yet.
	ErrNoTrack = errors.New("no track set")

	// ErrPending means the current track's lyrics are still being fetched.
	ErrPending = errors.New("lyrics fetch in progress")
)

// ResolveFunc fetches lyrics for a track. Sessions call it once per
// track change, on their own goroutine.
type ResolveFunc func(ctx context.Context, artist, title string) (*resolver.Resolution, error)

// Track identifies what is currently playing.
type Track struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Session ties the currently playing track to its resolved timeline.
// Track changes bump a generation counter and cancel the previous
// fetch; a fetch that finishes after its generation has been superseded
// is discarded, so a slow provider can never overwrite a newer track's
// lyrics.
type Session struct {
	resolve   ResolveFunc
	lookahead int

	generation atomic.Uint64

	mu         sync.RWMutex
	cancel     context.CancelFunc
	track      Track
	resolution *resolver.Resolution
	cursor     *Cursor
	err        error
	pending    bool
}

// NewSession creates a session that resolves lyrics with the given func.
func NewSession(resolve ResolveFunc, lookahead int) *Session {
	return &Session{
		resolve:   resolve,
		lookahead: lookahead,
	}
}

// SetTrack announces a track change and starts fetching its lyrics in
// the background. Any in-flight fetch for the previous track is
// canceled. Returns the new generation.
func (s *Session) SetTrack(ctx context.Context, artist, title string) uint64 {
	s.mu.Lock()
	// Bumped under the lock so the call holding the newest generation is
	// also the one whose track fields land last.
	gen := s.generation.Add(1)
	if s.cancel != nil {
		s.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.track = Track{Artist: artist, Title: title}
	s.resolution = nil
	s.cursor = nil
	s.err = nil
	s.pending = true
	s.mu.Unlock()

	log.Infof("%s Track change (gen %d): %s - %s", logcolors.LogSession, gen, artist, title)

	go func() {
		res, err := s.resolve(fetchCtx, artist, title)
		s.complete(gen, res, err)
	}()

	return gen
}

// complete installs a fetch outcome, unless the session has moved on to
// a newer generation in the meantime.
func (s *Session) complete(gen uint64, res *resolver.Resolution, err error) {
	if s.generation.Load() != gen {
		log.Infof("%s Discarding stale fetch result (gen %d, current %d)",
			logcolors.LogSession, gen, s.generation.Load())
		stats.Get().RecordStaleFetchDrop()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the lock: a concurrent SetTrack may have bumped the
	// generation between the load above and acquiring the lock.
	if s.generation.Load() != gen {
		stats.Get().RecordStaleFetchDrop()
		return
	}

	s.pending = false
	s.err = err
	if err != nil {
		log.Warnf("%s Fetch failed (gen %d): %v", logcolors.LogSession, gen, err)
		return
	}

	s.resolution = res
	s.cursor = NewCursor(res.Timeline, s.lookahead)
	log.Infof("%s Lyrics ready (gen %d) via %s", logcolors.LogSession, gen, res.Source)
}

// Track returns the currently announced track.
func (s *Session) Track() (Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.track, s.generation.Load() > 0
}

// Resolution returns the resolved lyrics for the current track.
func (s *Session) Resolution() (*resolver.Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.generation.Load() == 0 {
		return nil, ErrNoTrack
	}
	if s.pending {
		return nil, ErrPending
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.resolution, nil
}

// Window projects the current track's timeline at the given playback
// position.
func (s *Session) Window(pos float64) (Window, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.generation.Load() == 0 {
		return Window{}, ErrNoTrack
	}
	if s.pending {
		return Window{}, ErrPending
	}
	if s.err != nil {
		return Window{}, s.err
	}
	return s.cursor.WindowAt(pos), nil
}

// Generation returns the current track generation.
func (s *Session) Generation() uint64 {
	return s.generation.Load()
}

package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lyricsync-go/resolver"
	"lyricsync-go/timedtext"
)

func resolutionFor(source, line string) *resolver.Resolution {
	return &resolver.Resolution{
		Timeline: timedtext.Parse("[00:01.00] " + line),
		Source:   source,
	}
}

// waitReady polls until the session leaves the pending state.
func waitReady(t *testing.T, s *Session) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if _, err := s.Resolution(); !errors.Is(err, ErrPending) {
			return
		}
		select {
		case <-deadline:
			t.Fatal("Session never left pending state")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSession_NoTrack(t *testing.T) {
	s := NewSession(func(ctx context.Context, artist, title string) (*resolver.Resolution, error) {
		return nil, errors.New("must not be called")
	}, 3)

	if _, err := s.Resolution(); !errors.Is(err, ErrNoTrack) {
		t.Errorf("Expected ErrNoTrack, got %v", err)
	}
	if _, err := s.Window(1.0); !errors.Is(err, ErrNoTrack) {
		t.Errorf("Expected ErrNoTrack from Window, got %v", err)
	}
}

func TestSession_SetTrackResolves(t *testing.T) {
	s := NewSession(func(ctx context.Context, artist, title string) (*resolver.Resolution, error) {
		return resolutionFor("stub", "Hello "+title), nil
	}, 3)

	s.SetTrack(context.Background(), "Artist", "Song X")
	waitReady(t, s)

	res, err := s.Resolution()
	if err != nil {
		t.Fatalf("Resolution failed: %v", err)
	}
	if res.Source != "stub" {
		t.Errorf("Expected source 'stub', got %q", res.Source)
	}

	w, err := s.Window(1.5)
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	if w.ActiveIndex < 0 {
		t.Errorf("Expected an active segment, got index %d", w.ActiveIndex)
	}
}

func TestSession_StaleFetchDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	resolve := func(ctx context.Context, artist, title string) (*resolver.Resolution, error) {
		if title == "Track X" {
			close(firstStarted)
			<-releaseFirst // hold the first fetch until the second track is in
			return resolutionFor("slow", "stale lyrics"), nil
		}
		return resolutionFor("fast", "fresh lyrics"), nil
	}

	s := NewSession(resolve, 3)

	s.SetTrack(context.Background(), "Artist", "Track X")
	<-firstStarted

	s.SetTrack(context.Background(), "Artist", "Track Y")
	waitReady(t, s)

	// Let the stale fetch finish now that Track Y's result is installed.
	close(releaseFirst)
	time.Sleep(20 * time.Millisecond)

	res, err := s.Resolution()
	if err != nil {
		t.Fatalf("Resolution failed: %v", err)
	}
	if res.Source != "fast" {
		t.Errorf("Stale fetch overwrote current track: source %q", res.Source)
	}

	track, ok := s.Track()
	if !ok || track.Title != "Track Y" {
		t.Errorf("Expected current track 'Track Y', got %+v", track)
	}
}

func TestSession_TrackChangeCancelsPreviousFetch(t *testing.T) {
	firstCtxErr := make(chan error, 1)
	firstStarted := make(chan struct{})

	resolve := func(ctx context.Context, artist, title string) (*resolver.Resolution, error) {
		if title == "Track X" {
			close(firstStarted)
			<-ctx.Done()
			firstCtxErr <- ctx.Err()
			return nil, ctx.Err()
		}
		return resolutionFor("fast", "fresh"), nil
	}

	s := NewSession(resolve, 3)

	s.SetTrack(context.Background(), "Artist", "Track X")
	<-firstStarted
	s.SetTrack(context.Background(), "Artist", "Track Y")

	select {
	case err := <-firstCtxErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Previous fetch was never canceled")
	}
}

func TestSession_FetchErrorSurfaces(t *testing.T) {
	wantErr := errors.New("all providers down")
	s := NewSession(func(ctx context.Context, artist, title string) (*resolver.Resolution, error) {
		return nil, wantErr
	}, 3)

	s.SetTrack(context.Background(), "Artist", "Title")
	waitReady(t, s)

	if _, err := s.Resolution(); !errors.Is(err, wantErr) {
		t.Errorf("Expected fetch error to surface, got %v", err)
	}
}

func TestSession_ConcurrentSetTrackStaysConsistent(t *testing.T) {
	s := NewSession(func(ctx context.Context, artist, title string) (*resolver.Resolution, error) {
		return resolutionFor(title, "line for "+title), nil
	}, 3)

	for i := 0; i < 50; i++ {
		gens := make(chan struct {
			gen   uint64
			title string
		}, 2)

		var wg sync.WaitGroup
		for _, title := range []string{"Alpha", "Beta"} {
			wg.Add(1)
			go func(title string) {
				defer wg.Done()
				g := s.SetTrack(context.Background(), "Artist", title)
				gens <- struct {
					gen   uint64
					title string
				}{g, title}
			}(title)
		}
		wg.Wait()
		close(gens)

		// The call that got the higher generation owns the session.
		var winner string
		var high uint64
		for g := range gens {
			if g.gen > high {
				high = g.gen
				winner = g.title
			}
		}

		waitReady(t, s)

		track, ok := s.Track()
		if !ok || track.Title != winner {
			t.Fatalf("Iteration %d: current track %q, but generation %d belongs to %q",
				i, track.Title, high, winner)
		}
		res, err := s.Resolution()
		if err != nil {
			t.Fatalf("Iteration %d: resolution failed: %v", i, err)
		}
		if res.Source != winner {
			t.Fatalf("Iteration %d: resolution for %q installed while track is %q",
				i, res.Source, track.Title)
		}
	}
}

func TestSession_GenerationIncrements(t *testing.T) {
	s := NewSession(func(ctx context.Context, artist, title string) (*resolver.Resolution, error) {
		return resolutionFor("stub", "x"), nil
	}, 3)

	if s.Generation() != 0 {
		t.Errorf("Expected generation 0 before any track, got %d", s.Generation())
	}

	g1 := s.SetTrack(context.Background(), "A", "One")
	g2 := s.SetTrack(context.Background(), "A", "Two")

	if g2 != g1+1 {
		t.Errorf("Expected consecutive generations, got %d then %d", g1, g2)
	}
	if s.Generation() != g2 {
		t.Errorf("Expected current generation %d, got %d", g2, s.Generation())
	}
}

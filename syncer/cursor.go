package syncer

import (
	"lyricsync-go/timedtext"
	"sync"
)

const (
	// Look-ahead bounds: the window always carries the active segment
	// plus between minLookahead and maxLookahead upcoming ones.
	minLookahead = 3
	maxLookahead = 9
)

// Window is the client-facing projection of the cursor at one playback
// position.
type Window struct {
	ActiveIndex int                 `json:"activeIndex"`
	Position    float64             `json:"position"`
	Segments    []timedtext.Segment `json:"segments"`
	WordsPassed int                 `json:"wordsPassed"`
	Synced      bool                `json:"synced"`
}

// Cursor maps playback positions onto a timeline. Lookups scan forward
// from the previously found segment, so steady playback costs a step or
// two per call; a position jumping backwards resets the scan.
type Cursor struct {
	timeline  *timedtext.Timeline
	lookahead int

	mu      sync.Mutex
	lastIdx int
	lastPos float64
}

// NewCursor creates a cursor over a timeline. The lookahead is clamped
// into the supported range.
func NewCursor(timeline *timedtext.Timeline, lookahead int) *Cursor {
	if lookahead < minLookahead {
		lookahead = minLookahead
	}
	if lookahead > maxLookahead {
		lookahead = maxLookahead
	}
	return &Cursor{
		timeline:  timeline,
		lookahead: lookahead,
	}
}

// ActiveIndex returns the index of the segment covering pos. Positions
// before the first segment clamp to 0, positions at or past the end of
// the last segment clamp to the last index.
func (c *Cursor) ActiveIndex(pos float64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeIndexLocked(pos)
}

func (c *Cursor) activeIndexLocked(pos float64) int {
	segs := c.timeline.Segments
	if len(segs) == 0 {
		return -1
	}

	if pos < segs[0].StartTime {
		c.lastIdx, c.lastPos = 0, pos
		return 0
	}
	last := len(segs) - 1
	if pos >= segs[last].EndTime {
		c.lastIdx, c.lastPos = last, pos
		return last
	}

	start := c.lastIdx
	if pos < c.lastPos {
		start = 0
	}

	idx := start
	for i := start; i < len(segs); i++ {
		if segs[i].StartTime > pos {
			break
		}
		idx = i
	}

	c.lastIdx, c.lastPos = idx, pos
	return idx
}

// WindowAt returns the active segment plus the configured number of
// upcoming segments, truncated at the end of the timeline. On an
// unsynced timeline the window carries every segment and no active
// index.
func (c *Cursor) WindowAt(pos float64) Window {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.timeline.Synced {
		return Window{
			ActiveIndex: -1,
			Position:    pos,
			Segments:    c.timeline.Segments,
		}
	}

	idx := c.activeIndexLocked(pos)
	if idx < 0 {
		return Window{ActiveIndex: -1, Position: pos, Synced: true}
	}

	end := idx + c.lookahead + 1
	if end > len(c.timeline.Segments) {
		end = len(c.timeline.Segments)
	}

	return Window{
		ActiveIndex: idx,
		Position:    pos,
		Segments:    c.timeline.Segments[idx:end],
		WordsPassed: wordsPassed(&c.timeline.Segments[idx], pos),
		Synced:      true,
	}
}

// wordsPassed counts the words of the active segment whose start time
// is at or before pos. Drives word highlighting on word-timed sources.
func wordsPassed(seg *timedtext.Segment, pos float64) int {
	n := 0
	for _, w := range seg.Words {
		if w.Time <= pos {
			n++
		}
	}
	return n
}

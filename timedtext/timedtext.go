// Package timedtext converts raw timed-lyrics text into a canonical timeline
// of segments with start/end/duration, including synthetic gap segments that
// cover silence.
package timedtext

// Word represents a sub-line unit with its own activation time.
type Word struct {
	Text string  `json:"text"`
	Time float64 `json:"time"`
}

// Segment is one unit of the canonical timeline. All times are in seconds.
type Segment struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Duration  float64 `json:"duration"`
	// Words is present only when the source exposes sub-line timing.
	Words []Word `json:"words,omitempty"`
	// IsGap marks synthetic silence segments.
	IsGap bool `json:"isGap,omitempty"`
}

// Timeline is the parsed lyrics timeline for one track. Segments are sorted
// ascending by StartTime and do not overlap. A timeline is built once per
// track and never mutated; a track change produces a full replacement.
type Timeline struct {
	Segments []Segment `json:"segments"`
	// Synced is false for plain-text lyrics where every segment starts at 0.
	Synced bool `json:"synced"`
}

// Empty reports whether the timeline has no segments.
func (t *Timeline) Empty() bool {
	return t == nil || len(t.Segments) == 0
}

// HasWordTiming reports whether any segment carries sub-line word timing.
func (t *Timeline) HasWordTiming() bool {
	if t == nil {
		return false
	}
	for i := range t.Segments {
		if len(t.Segments[i].Words) > 0 {
			return true
		}
	}
	return false
}

// Unsynced builds a timeline from plain lyrics text with no timing. Each
// non-empty line becomes a segment starting at 0; callers should check
// Timeline.Synced before driving a cursor with it.
func Unsynced(plain string) *Timeline {
	tl := &Timeline{Synced: false}
	for _, line := range splitLines(plain) {
		tl.Segments = append(tl.Segments, Segment{Text: line})
	}
	return tl
}

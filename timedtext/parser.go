package timedtext

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// Line timestamp tag: [mm:ss.xx] or [mm:ss.xxx] ([mm:ss:xx] also seen)
	lineTagRegex = regexp.MustCompile(`\[(\d{1,2}):(\d{2})[.:](\d{2,3})\]`)

	// Embedded word tag: <mm:ss.xx> inside a line body
	wordTagRegex = regexp.MustCompile(`<(\d{1,2}):(\d{2})[.:](\d{2,3})>`)

	// Metadata tags like [ar:Artist] or [offset:500]
	metadataRegex = regexp.MustCompile(`^\[([a-zA-Z]+):([^\]]*)\]$`)
)

const (
	// GapText is the placeholder text used for synthetic silence segments.
	GapText = "♪"

	// lastSegmentDuration is the fallback duration for the final segment,
	// which has no successor to chain its end time from.
	lastSegmentDuration = 3.0

	// gapThreshold is the minimum unexplained silence, in seconds, that
	// gets covered by a synthetic gap segment.
	gapThreshold = 0.5
)

// Parse converts raw timed-text (LRC-family) content into a canonical
// timeline. Lines without a recognizable leading timestamp are discarded;
// an empty or fully untimed input yields an empty timeline. Parse is pure
// and deterministic, it performs no I/O.
func Parse(raw string) *Timeline {
	tl := &Timeline{Synced: true}

	for _, rawLine := range strings.Split(raw, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		if metadataRegex.MatchString(line) {
			continue
		}

		starts, body := leadingTimestamps(line)
		if len(starts) == 0 {
			continue
		}

		words, text := splitWordTags(body)
		for _, start := range starts {
			seg := Segment{
				Text:      text,
				StartTime: start,
				Words:     words,
			}
			if text == "" {
				// Timestamped line with an empty body marks silence.
				seg.Text = GapText
				seg.IsGap = true
				seg.Words = nil
			}
			tl.Segments = append(tl.Segments, seg)
		}
	}

	if len(tl.Segments) == 0 {
		return tl
	}

	sort.SliceStable(tl.Segments, func(i, j int) bool {
		return tl.Segments[i].StartTime < tl.Segments[j].StartTime
	})

	chainEndTimes(tl.Segments)
	tl.Segments = fillGaps(tl.Segments)
	return tl
}

// leadingTimestamps consumes every timestamp tag at the start of the line
// (karaoke-style lines repeat one body under several tags) and returns the
// parsed times plus the remaining body.
func leadingTimestamps(line string) ([]float64, string) {
	var starts []float64
	rest := line
	for {
		loc := lineTagRegex.FindStringIndex(rest)
		if loc == nil || loc[0] != 0 {
			break
		}
		m := lineTagRegex.FindStringSubmatch(rest)
		starts = append(starts, tagSeconds(m[1], m[2], m[3]))
		rest = rest[loc[1]:]
	}
	return starts, strings.TrimSpace(rest)
}

// splitWordTags splits a line body on embedded <mm:ss.xx> tags. Each tag
// starts a word whose time is the tag's timestamp; the returned text is the
// tag-free body. A body with no tags returns nil words.
func splitWordTags(body string) ([]Word, string) {
	matches := wordTagRegex.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return nil, body
	}

	var words []Word
	for i, m := range matches {
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		text := strings.TrimSpace(body[m[1]:end])
		if text == "" {
			continue
		}
		words = append(words, Word{
			Text: text,
			Time: tagSeconds(body[m[2]:m[3]], body[m[4]:m[5]], body[m[6]:m[7]]),
		})
	}

	clean := strings.TrimSpace(wordTagRegex.ReplaceAllString(body, " "))
	clean = strings.Join(strings.Fields(clean), " ")
	return words, clean
}

// tagSeconds converts a tag's components to seconds. The fraction is
// interpreted by its literal width: two digits are hundredths, three digits
// are thousandths.
func tagSeconds(minStr, secStr, fracStr string) float64 {
	minutes, _ := strconv.Atoi(minStr)
	seconds, _ := strconv.Atoi(secStr)
	frac, _ := strconv.Atoi(fracStr)

	divisor := 100.0
	if len(fracStr) == 3 {
		divisor = 1000.0
	}
	return float64(minutes)*60 + float64(seconds) + float64(frac)/divisor
}

// chainEndTimes sets each segment's end time to the next segment's start
// time; the final segment gets the fixed fallback duration.
func chainEndTimes(segments []Segment) {
	for i := range segments {
		if i+1 < len(segments) {
			segments[i].EndTime = segments[i+1].StartTime
		} else {
			segments[i].EndTime = segments[i].StartTime + lastSegmentDuration
		}
		segments[i].Duration = segments[i].EndTime - segments[i].StartTime
		if segments[i].Duration < 0 {
			segments[i].Duration = 0
			segments[i].EndTime = segments[i].StartTime
		}
	}
}

// fillGaps inserts a synthetic gap segment wherever the distance from t=0 to
// the first segment, or between consecutive segments, exceeds the silence
// threshold, so the timeline has no unexplained dead time.
func fillGaps(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments)+2)
	prevEnd := 0.0
	for _, seg := range segments {
		if seg.StartTime-prevEnd > gapThreshold {
			out = append(out, Segment{
				Text:      GapText,
				StartTime: prevEnd,
				EndTime:   seg.StartTime,
				Duration:  seg.StartTime - prevEnd,
				IsGap:     true,
			})
		}
		out = append(out, seg)
		prevEnd = seg.EndTime
	}
	return out
}

// splitLines returns the trimmed non-empty lines of plain text.
func splitLines(plain string) []string {
	var out []string
	for _, line := range strings.Split(plain, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

package netease

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Karaoke lines look like [13000,3870](13000,510,0)Hel(13510,540,0)lo
	// with all times in milliseconds.
	klyricLineRegex = regexp.MustCompile(`^\[(\d+),(\d+)\]`)
	klyricWordRegex = regexp.MustCompile(`\((\d+),(\d+),\d+\)([^(]*)`)
)

// ConvertKlyric rewrites the karaoke body into enhanced LRC, with one
// line tag per line and a word tag in front of every syllable. Lines
// that do not carry karaoke timing (credits, embedded metadata) are
// dropped.
func ConvertKlyric(klyric string) string {
	var b strings.Builder

	for _, line := range strings.Split(klyric, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lineMatch := klyricLineRegex.FindStringSubmatch(line)
		if lineMatch == nil {
			continue
		}

		startMs, err := strconv.Atoi(lineMatch[1])
		if err != nil {
			continue
		}

		words := klyricWordRegex.FindAllStringSubmatch(line, -1)
		if len(words) == 0 {
			continue
		}

		b.WriteString("[" + formatTag(startMs) + "]")
		for _, w := range words {
			wordStartMs, err := strconv.Atoi(w[1])
			if err != nil {
				continue
			}
			b.WriteString("<" + formatTag(wordStartMs) + ">")
			b.WriteString(w[3])
		}
		b.WriteString("\n")
	}

	return b.String()
}

// formatTag renders a millisecond offset as mm:ss.xx with hundredths.
func formatTag(ms int) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := float64(ms%60000) / 1000.0
	return fmt.Sprintf("%02d:%05.2f", minutes, seconds)
}

// SelectBestSong selects the best song from search results based on
// name and artist matching.
func SelectBestSong(songs []Song, artist, title string) *Song {
	if len(songs) == 0 {
		return nil
	}

	var best *Song
	bestScore := -1

	titleLower := strings.ToLower(title)
	artistLower := strings.ToLower(artist)

	for i := range songs {
		s := &songs[i]
		score := 0

		nameLower := strings.ToLower(s.Name)
		if nameLower == titleLower {
			score += 30
		} else if strings.Contains(nameLower, titleLower) || strings.Contains(titleLower, nameLower) {
			score += 15
		}

		if artistLower != "" {
			for _, a := range s.Artists {
				singerLower := strings.ToLower(a.Name)
				if singerLower == artistLower {
					score += 25
					break
				} else if strings.Contains(singerLower, artistLower) || strings.Contains(artistLower, singerLower) {
					score += 10
					break
				}
			}
		}

		if score > bestScore {
			bestScore = score
			best = s
		}
	}

	return best
}

package musixmatch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ConvertRichsync rewrites the richsync JSON body into enhanced LRC,
// with one line tag per entry and a word tag in front of every chunk.
// Entries with no word list are emitted line-timed only; entries with
// neither words nor text are dropped.
func ConvertRichsync(body string) string {
	var lines []richsyncLine
	if err := json.Unmarshal([]byte(body), &lines); err != nil {
		return ""
	}

	var b strings.Builder
	for _, line := range lines {
		if len(line.Words) == 0 && strings.TrimSpace(line.Text) == "" {
			continue
		}

		b.WriteString("[" + formatTag(line.Start) + "]")
		if len(line.Words) == 0 {
			b.WriteString(line.Text)
		} else {
			for _, w := range line.Words {
				if w.Chars == "" {
					continue
				}
				b.WriteString("<" + formatTag(line.Start+w.Offset) + ">")
				b.WriteString(w.Chars)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// formatTag renders a seconds offset as mm:ss.xx with hundredths.
func formatTag(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := int(seconds) / 60
	return fmt.Sprintf("%02d:%05.2f", minutes, seconds-float64(minutes*60))
}

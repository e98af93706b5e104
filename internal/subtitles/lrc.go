package subtitles

import (
	"regexp"
	"strings"

	"lyricsync/internal/lyrics"
)

// FormatLRC renders lines as "[mm:ss.xx]text" joined by newlines.
func FormatLRC(lines []lyrics.AlignedLine) string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, "["+FormatLRCTimestamp(line.Start)+"]"+line.Text)
	}
	return strings.Join(out, "\n")
}

// LRCLine is a parsed LRC entry.
type LRCLine struct {
	Start float64
	Text  string
}

var (
	lrcTimeRe = regexp.MustCompile(`^\[(\d+:\d{2}(?:\.\d{2,3})?)\](.*)$`)
	lrcMetaRe = regexp.MustCompile(`^\[[a-zA-Z]+:[^\]]*\]$`)
)

// ParseLRC reads timed LRC lines. ID tags such as [ar:...] and blank lines are
// skipped; anything else that lacks a timestamp is reported as an error line
// number via the second return.
func ParseLRC(content string) ([]LRCLine, []int) {
	var parsed []LRCLine
	var invalid []int
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || lrcMetaRe.MatchString(line) {
			continue
		}
		match := lrcTimeRe.FindStringSubmatch(line)
		if match == nil {
			invalid = append(invalid, i+1)
			continue
		}
		start, err := ParseLRCTimestamp(match[1])
		if err != nil {
			invalid = append(invalid, i+1)
			continue
		}
		parsed = append(parsed, LRCLine{Start: start, Text: match[2]})
	}
	return parsed, invalid
}

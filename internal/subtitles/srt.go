package subtitles

import (
	"fmt"
	"strconv"
	"strings"

	"lyricsync/internal/lyrics"
)

// FormatSRT renders lines as numbered SRT blocks separated by a blank line.
// Numbering follows slice position starting at 1.
func FormatSRT(lines []lyrics.AlignedLine) string {
	blocks := make([]string, 0, len(lines))
	for i, line := range lines {
		var sb strings.Builder
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteByte('\n')
		sb.WriteString(FormatSRTTimestamp(line.Start))
		sb.WriteString(" --> ")
		sb.WriteString(FormatSRTTimestamp(line.End))
		sb.WriteByte('\n')
		sb.WriteString(line.Text)
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}

// Cue is a single parsed SRT block.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// ParseSRT reads SRT content into cues. Blocks that do not carry an index and
// a timing line are skipped and counted in the second return.
func ParseSRT(content string) ([]Cue, int) {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" {
		return nil, 0
	}

	var cues []Cue
	skipped := 0
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 2 {
			skipped++
			continue
		}
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			skipped++
			continue
		}
		start, end, err := parseTimingLine(lines[1])
		if err != nil {
			skipped++
			continue
		}
		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return cues, skipped
}

func parseTimingLine(line string) (float64, float64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing line %q", line)
	}
	start, err := ParseSRTTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseSRTTimestamp(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

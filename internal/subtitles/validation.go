package subtitles

import "fmt"

// ValidateSRT checks SRT content for structural issues. An empty slice means
// the content passed.
func ValidateSRT(content string) []string {
	var issues []string
	cues, skipped := ParseSRT(content)
	if skipped > 0 {
		issues = append(issues, fmt.Sprintf("malformed_blocks: %d", skipped))
	}
	if len(cues) == 0 {
		return append(issues, "empty_subtitle_file")
	}
	prevStart := -1.0
	for i, cue := range cues {
		if cue.Index != i+1 {
			issues = append(issues, fmt.Sprintf("index_gap: block %d numbered %d", i+1, cue.Index))
		}
		if cue.Start > cue.End {
			issues = append(issues, fmt.Sprintf("inverted_timing: block %d", i+1))
		}
		if cue.Start < prevStart {
			issues = append(issues, fmt.Sprintf("non_monotonic_start: block %d", i+1))
		}
		prevStart = cue.Start
	}
	return issues
}

// ValidateLRC checks LRC content for structural issues. An empty slice means
// the content passed.
func ValidateLRC(content string) []string {
	var issues []string
	lines, invalid := ParseLRC(content)
	for _, n := range invalid {
		issues = append(issues, fmt.Sprintf("untimed_line: line %d", n))
	}
	if len(lines) == 0 {
		return append(issues, "empty_lyrics_file")
	}
	for i := 1; i < len(lines); i++ {
		if lines[i].Start < lines[i-1].Start {
			issues = append(issues, fmt.Sprintf("non_monotonic_start: entry %d", i+1))
		}
	}
	return issues
}

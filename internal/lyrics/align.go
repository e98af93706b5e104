package lyrics

// TrailingBuffer is the duration given to the final line when the word stream
// cannot supply a usable end time.
const TrailingBuffer = 5.0

const notFound = -1

// Align maps each lyric line to a start time in the word stream. It never
// fails; unmatched input yields an empty slice.
func Align(text string, words []TimedWord) []AlignedLine {
	lines, _ := AlignReport(text, words)
	return lines
}

// AlignReport aligns like Align and also reports how each line was anchored
// and which lines were dropped.
func AlignReport(text string, words []TimedWord) ([]AlignedLine, Report) {
	keys := make([]string, len(words))
	for i, word := range words {
		keys[i] = Normalize(word.Text)
	}

	var report Report
	lines := make([]AlignedLine, 0)
	cursor := 0
	for _, line := range SourceLines(text) {
		report.SourceLines++
		if IsSectionMarker(line) {
			report.Markers++
			continue
		}
		tokens := tokenize(line)
		if len(tokens) == 0 {
			continue
		}

		anchor, kind := findAnchor(keys, tokens, cursor)
		if anchor == notFound {
			report.Dropped = append(report.Dropped, line)
			continue
		}
		switch kind {
		case AnchorConfirmed:
			report.Confirmed++
		case AnchorFirstToken:
			report.FirstToken++
		case AnchorFallback:
			report.Fallback++
		}
		report.Anchors = append(report.Anchors, kind)

		lines = append(lines, AlignedLine{
			Text:  line,
			Start: words[anchor].Start,
			Words: []TimedWord{},
		})
		cursor = anchor + 1
	}

	resolveEndTimes(lines, words)
	return lines, report
}

// findAnchor locates the word index that starts a line. The first word at or
// after cursor matching the first token always wins; the following word only
// decides whether the match counts as confirmed. When the first token is
// absent, the second token is searched from the same cursor.
func findAnchor(keys, tokens []string, cursor int) (int, AnchorKind) {
	for w := cursor; w < len(keys); w++ {
		if keys[w] != tokens[0] {
			continue
		}
		if len(tokens) > 1 && w+1 < len(keys) && keys[w+1] == tokens[1] {
			return w, AnchorConfirmed
		}
		return w, AnchorFirstToken
	}

	if len(tokens) < 2 {
		return notFound, ""
	}
	for w := cursor; w < len(keys); w++ {
		if keys[w] == tokens[1] {
			return w, AnchorFallback
		}
	}
	return notFound, ""
}

// resolveEndTimes makes lines contiguous: each line ends where the next one
// starts, and the last line ends at the final word or after TrailingBuffer.
func resolveEndTimes(lines []AlignedLine, words []TimedWord) {
	if len(lines) == 0 {
		return
	}
	for i := 0; i < len(lines)-1; i++ {
		lines[i].End = lines[i+1].Start
	}
	last := &lines[len(lines)-1]
	if len(words) > 0 && words[len(words)-1].End > last.Start {
		last.End = words[len(words)-1].End
		return
	}
	last.End = last.Start + TrailingBuffer
}

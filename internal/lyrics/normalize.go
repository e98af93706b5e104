package lyrics

import (
	"strings"
	"unicode"
)

// Normalize returns the comparison key for a token: lowercased, with every rune
// that is not a Unicode letter or digit removed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// tokenize splits a line on whitespace and returns the non-empty normalized
// tokens.
func tokenize(line string) []string {
	fields := strings.Fields(line)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if key := Normalize(field); key != "" {
			tokens = append(tokens, key)
		}
	}
	return tokens
}

// IsSectionMarker reports whether a trimmed lyric line is a structural marker
// such as "[Chorus]".
func IsSectionMarker(line string) bool {
	return strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]")
}

// SourceLines splits raw lyric text into trimmed, non-blank lines.
func SourceLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

package export

import (
	"fmt"
	"strings"

	"lyricsync/internal/config"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/subtitles"
)

// Format names a rendered output type.
type Format string

const (
	FormatLRC Format = config.FormatLRC
	FormatSRT Format = config.FormatSRT
)

// ParseFormat converts a user supplied name such as "LRC" or ".srt".
func ParseFormat(value string) (Format, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), ".")
	switch Format(name) {
	case FormatLRC, FormatSRT:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q (want lrc or srt)", ErrInvalidRequest, value)
	}
}

// ParseFormats converts names, dropping duplicates while keeping order.
func ParseFormats(values []string) ([]Format, error) {
	formats := make([]Format, 0, len(values))
	seen := make(map[Format]struct{}, len(values))
	for _, value := range values {
		format, err := ParseFormat(value)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[format]; ok {
			continue
		}
		seen[format] = struct{}{}
		formats = append(formats, format)
	}
	return formats, nil
}

// Extension returns the file extension for format, with the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Render serializes aligned lines in the given format.
func Render(lines []lyrics.AlignedLine, format Format) (string, error) {
	switch format {
	case FormatLRC:
		return subtitles.FormatLRC(lines), nil
	case FormatSRT:
		return subtitles.FormatSRT(lines), nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", ErrInvalidRequest, string(format))
	}
}

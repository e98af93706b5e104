package export

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoLyrics indicates the lyric text has no non-blank lines.
	ErrNoLyrics = errors.New("lyrics contain no lines")
	// ErrNoAlignedLines indicates no lyric line could be anchored to the words.
	ErrNoAlignedLines = errors.New("no lyric lines could be aligned")
	// ErrInvalidRequest marks problems with the job parameters themselves.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInput marks failures reading or decoding the job inputs.
	ErrInput = errors.New("input error")
	// ErrOutput marks failures writing generated files.
	ErrOutput = errors.New("output error")
)

// wrap tags err with marker and an operation description so callers can
// classify failures with errors.Is.
func wrap(marker error, operation, message string, err error) error {
	detail := strings.TrimSpace(operation)
	if message = strings.TrimSpace(message); message != "" {
		if detail != "" {
			detail += ": "
		}
		detail += message
	}
	if detail == "" {
		detail = "export failure"
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

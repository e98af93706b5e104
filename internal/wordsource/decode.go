package wordsource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"lyricsync/internal/lyrics"
)

// ErrNoWords reports a payload that decoded cleanly but held no word entries.
var ErrNoWords = errors.New("payload contains no words")

var (
	textKeys       = []string{"text", "word"}
	startKeys      = []string{"start", "start_s"}
	endKeys        = []string{"end", "end_s"}
	confidenceKeys = []string{"confidence", "score", "p_align"}
)

type segmentPayload struct {
	Words []json.RawMessage `json:"words"`
}

type objectPayload struct {
	Words     []json.RawMessage `json:"words"`
	Segments  []segmentPayload  `json:"segments"`
	Alignment *struct {
		Words []json.RawMessage `json:"words"`
	} `json:"alignment"`
}

// Payload is a decoded word stream. Skipped counts entries that carried no
// start or end time; those are left out of Words.
type Payload struct {
	Words   []lyrics.TimedWord
	Skipped int
}

// Load reads and decodes a word payload file.
func Load(path string) (Payload, error) {
	if strings.TrimSpace(path) == "" {
		return Payload{}, os.ErrNotExist
	}
	file, err := os.Open(path)
	if err != nil {
		return Payload{}, err
	}
	defer file.Close()
	payload, err := Decode(file)
	if err != nil {
		return Payload{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return payload, nil
}

// Decode parses a word payload. Word order is preserved as given.
func Decode(r io.Reader) (Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Payload{}, fmt.Errorf("read payload: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Payload{}, ErrNoWords
	}

	raw, err := collectEntries(data)
	if err != nil {
		return Payload{}, err
	}
	if len(raw) == 0 {
		return Payload{}, ErrNoWords
	}

	payload := Payload{Words: make([]lyrics.TimedWord, 0, len(raw))}
	for i, entry := range raw {
		word, timed, err := decodeWord(entry)
		if err != nil {
			return Payload{}, fmt.Errorf("word %d: %w", i, err)
		}
		if !timed {
			payload.Skipped++
			continue
		}
		payload.Words = append(payload.Words, word)
	}
	if len(payload.Words) == 0 {
		return Payload{}, fmt.Errorf("%w: all %d entries lack timing", ErrNoWords, payload.Skipped)
	}
	return payload, nil
}

func collectEntries(data []byte) ([]json.RawMessage, error) {
	switch data[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse word array: %w", err)
		}
		return entries, nil
	case '{':
		var payload objectPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parse word payload: %w", err)
		}
		switch {
		case len(payload.Words) > 0:
			return payload.Words, nil
		case len(payload.Segments) > 0:
			var entries []json.RawMessage
			for _, segment := range payload.Segments {
				entries = append(entries, segment.Words...)
			}
			return entries, nil
		case payload.Alignment != nil:
			return payload.Alignment.Words, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported payload: expected JSON array or object")
	}
}

// decodeWord reports timed=false for entries whose start or end is absent or
// null. WhisperX emits those for tokens it could not align.
func decodeWord(entry json.RawMessage) (lyrics.TimedWord, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil {
		return lyrics.TimedWord{}, false, fmt.Errorf("expected object: %w", err)
	}

	var word lyrics.TimedWord
	if raw, _, ok := firstField(fields, textKeys); ok {
		if err := json.Unmarshal(raw, &word.Text); err != nil {
			return lyrics.TimedWord{}, false, fmt.Errorf("text: expected string")
		}
	}

	start, hasStart, err := optionalNumber(fields, startKeys)
	if err != nil {
		return lyrics.TimedWord{}, false, err
	}
	end, hasEnd, err := optionalNumber(fields, endKeys)
	if err != nil {
		return lyrics.TimedWord{}, false, err
	}
	word.Start = start
	word.End = end

	if raw, key, ok := firstField(fields, confidenceKeys); ok && !isNull(raw) {
		var confidence float64
		if err := json.Unmarshal(raw, &confidence); err != nil {
			return lyrics.TimedWord{}, false, fmt.Errorf("%s: expected number", key)
		}
		word.Confidence = &confidence
	}
	return word, hasStart && hasEnd, nil
}

func optionalNumber(fields map[string]json.RawMessage, keys []string) (float64, bool, error) {
	raw, key, ok := firstField(fields, keys)
	if !ok || isNull(raw) {
		return 0, false, nil
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, false, fmt.Errorf("%s: expected number", key)
	}
	return value, true, nil
}

func firstField(fields map[string]json.RawMessage, keys []string) (json.RawMessage, string, bool) {
	for _, key := range keys {
		if raw, ok := fields[key]; ok {
			return raw, key, true
		}
	}
	return nil, "", false
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

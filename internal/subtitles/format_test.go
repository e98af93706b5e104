package subtitles

import (
	"fmt"
	"strings"
	"testing"

	"lyricsync/internal/lyrics"
)

func sampleLines() []lyrics.AlignedLine {
	return []lyrics.AlignedLine{
		{Text: "Hello", Start: 0, End: 1},
		{Text: "world", Start: 1, End: 1.5},
		{Text: "[not a marker] here", Start: 65.256, End: 3661.0005},
	}
}

func TestFormatLRC(t *testing.T) {
	got := FormatLRC(sampleLines())
	want := "[00:00.00]Hello\n[00:01.00]world\n[01:05.25][not a marker] here"
	if got != want {
		t.Fatalf("FormatLRC mismatch:\n got %q\nwant %q", got, want)
	}
	if FormatLRC(nil) != "" {
		t.Fatal("expected empty output for no lines")
	}
}

func TestFormatSRT(t *testing.T) {
	got := FormatSRT(sampleLines())
	want := strings.Join([]string{
		"1\n00:00:00,000 --> 00:00:01,000\nHello",
		"2\n00:00:01,000 --> 00:00:01,500\nworld",
		"3\n00:01:05,256 --> 01:01:01,000\n[not a marker] here",
	}, "\n\n")
	if got != want {
		t.Fatalf("FormatSRT mismatch:\n got %q\nwant %q", got, want)
	}
	if FormatSRT(nil) != "" {
		t.Fatal("expected empty output for no lines")
	}
}

func TestFormatSRTNumbersByPosition(t *testing.T) {
	lines := make([]lyrics.AlignedLine, 0, 12)
	for i := 12; i > 0; i-- {
		// Deliberately out of order and overlapping; numbering must not care.
		lines = append(lines, lyrics.AlignedLine{Text: fmt.Sprintf("line %d", i), Start: float64(i), End: 0})
	}
	cues, skipped := ParseSRT(FormatSRT(lines))
	if skipped != 0 {
		t.Fatalf("unexpected skipped blocks: %d", skipped)
	}
	if len(cues) != len(lines) {
		t.Fatalf("expected %d cues, got %d", len(lines), len(cues))
	}
	for i, cue := range cues {
		if cue.Index != i+1 {
			t.Fatalf("cue %d numbered %d", i, cue.Index)
		}
		if cue.Text != lines[i].Text {
			t.Fatalf("cue %d text %q, want %q", i, cue.Text, lines[i].Text)
		}
	}
}

func TestFormattersOnAlignerOutput(t *testing.T) {
	words := []lyrics.TimedWord{
		{Text: "Hello", Start: 0.0, End: 0.5},
		{Text: "world", Start: 1.0, End: 1.5},
	}
	lines := lyrics.Align("[Verse]\nHello\nworld", words)
	if got := FormatLRC(lines); got != "[00:00.00]Hello\n[00:01.00]world" {
		t.Fatalf("unexpected lrc: %q", got)
	}
	srt := FormatSRT(lines)
	if issues := ValidateSRT(srt); len(issues) != 0 {
		t.Fatalf("expected generated srt to validate, got %v", issues)
	}
	if issues := ValidateLRC(FormatLRC(lines)); len(issues) != 0 {
		t.Fatalf("expected generated lrc to validate, got %v", issues)
	}
}

package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"lyricsync/internal/fileutil"
	"lyricsync/internal/history"
	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/testsupport"
)

const testLyrics = `[Verse 1]
Hello darkness my old friend

I've come to talk
`

const testWords = `[
  {"text": "Hello", "start": 1.0, "end": 1.4},
  {"text": "darkness", "start": 1.5, "end": 2.0},
  {"text": "my", "start": 2.1, "end": 2.2},
  {"text": "old", "start": 2.3, "end": 2.5},
  {"text": "friend", "start": 2.6, "end": 3.0},
  {"text": "I've", "start": 4.0, "end": 4.2},
  {"text": "come", "start": 4.3, "end": 4.6},
  {"text": "to", "start": 4.7, "end": 4.8},
  {"text": "talk", "start": 4.9, "end": 5.623}
]`

type fakeRecorder struct {
	mu      sync.Mutex
	entries []history.Entry
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, entry history.Entry) (history.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return history.Entry{}, f.err
	}
	f.entries = append(f.entries, entry)
	return entry, nil
}

func writeInputs(t *testing.T, lyricsText, wordsJSON string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	lyricsPath := testsupport.WriteFile(t, filepath.Join(dir, "sound_of_silence.txt"), lyricsText)
	wordsPath := testsupport.WriteFile(t, filepath.Join(dir, "sound_of_silence.json"), wordsJSON)
	return lyricsPath, wordsPath
}

func wordsFromTexts(texts ...string) []lyrics.TimedWord {
	words := make([]lyrics.TimedWord, 0, len(texts))
	for i, text := range texts {
		words = append(words, lyrics.TimedWord{Text: text, Start: float64(i), End: float64(i) + 0.5})
	}
	return words
}

func TestRunWritesBothFormatsAndRecordsHistory(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, testLyrics, testWords)
	recorder := &fakeRecorder{}
	cfg := testsupport.NewConfig(t)
	svc := NewService(cfg, logging.NewNop(), recorder)

	result, err := svc.Run(context.Background(), Request{LyricsPath: lyricsPath, WordsPath: wordsPath})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(result.Lines))
	}
	if result.Title != "Sound Of Silence" {
		t.Fatalf("unexpected title %q", result.Title)
	}
	if len(result.Outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(result.Outputs))
	}

	data := testsupport.ReadFile(t, filepath.Join(cfg.Paths.OutputDir, "sound_of_silence.lrc"))
	wantLRC := "[00:01.00]Hello darkness my old friend\n[00:04.00]I've come to talk"
	if data != wantLRC {
		t.Fatalf("unexpected lrc:\n%s", data)
	}

	srtData := testsupport.ReadFile(t, filepath.Join(cfg.Paths.OutputDir, "sound_of_silence.srt"))
	wantSRT := "1\n00:00:01,000 --> 00:00:04,000\nHello darkness my old friend\n\n" +
		"2\n00:00:04,000 --> 00:00:05,623\nI've come to talk"
	if srtData != wantSRT {
		t.Fatalf("unexpected srt:\n%s", srtData)
	}

	if len(recorder.entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.ID != result.RunID || result.HistoryID != result.RunID {
		t.Fatalf("history id mismatch: entry=%s run=%s history=%s", entry.ID, result.RunID, result.HistoryID)
	}
	if entry.LineCount != 2 || entry.WordCount != 9 || len(entry.Outputs) != 2 {
		t.Fatalf("unexpected history entry: %+v", entry)
	}
	if result.Coverage != 1 {
		t.Fatalf("expected full coverage, got %v", result.Coverage)
	}
}

func TestRunRefusesToOverwrite(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, testLyrics, testWords)
	svc := NewService(testsupport.NewConfig(t), logging.NewNop(), nil)
	req := Request{LyricsPath: lyricsPath, WordsPath: wordsPath, Formats: []Format{FormatLRC}}

	if _, err := svc.Run(context.Background(), req); err != nil {
		t.Fatalf("first run: %v", err)
	}
	_, err := svc.Run(context.Background(), req)
	if !errors.Is(err, ErrOutput) || !errors.Is(err, fileutil.ErrExists) {
		t.Fatalf("expected ErrOutput wrapping ErrExists, got %v", err)
	}

	req.Overwrite = true
	if _, err := svc.Run(context.Background(), req); err != nil {
		t.Fatalf("overwrite run: %v", err)
	}
}

func TestRunLeavesNoPartialOutputWhenLaterTargetExists(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, testLyrics, testWords)
	cfg := testsupport.NewConfig(t)
	svc := NewService(cfg, logging.NewNop(), nil)
	lrcPath := filepath.Join(cfg.Paths.OutputDir, "sound_of_silence.lrc")
	srtPath := testsupport.WriteFile(t, filepath.Join(cfg.Paths.OutputDir, "sound_of_silence.srt"), "keep me")

	req := Request{LyricsPath: lyricsPath, WordsPath: wordsPath, Formats: []Format{FormatLRC, FormatSRT}}
	_, err := svc.Run(context.Background(), req)
	if !errors.Is(err, ErrOutput) || !errors.Is(err, fileutil.ErrExists) {
		t.Fatalf("expected ErrOutput wrapping ErrExists, got %v", err)
	}
	if _, statErr := os.Stat(lrcPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("lrc should not be written when srt exists, stat err=%v", statErr)
	}
	if got := testsupport.ReadFile(t, srtPath); got != "keep me" {
		t.Fatalf("existing srt changed: %q", got)
	}
}

func TestRunKeepsLockFilesOutOfOutputDir(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, testLyrics, testWords)
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	svc := NewService(cfg, logging.NewNop(), nil)

	if _, err := svc.Run(context.Background(), Request{LyricsPath: lyricsPath, WordsPath: wordsPath}); err != nil {
		t.Fatalf("run: %v", err)
	}
	entries, err := os.ReadDir(cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".lock") {
			t.Fatalf("lock file %s left in output dir", entry.Name())
		}
	}
}

func TestRunHonorsOutputDirNameAndFormat(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, testLyrics, testWords)
	outDir := filepath.Join(t.TempDir(), "out")
	svc := NewService(testsupport.NewConfig(t), logging.NewNop(), nil)

	result, err := svc.Run(context.Background(), Request{
		LyricsPath: lyricsPath,
		WordsPath:  wordsPath,
		OutputDir:  outDir,
		BaseName:   "Simon: Garfunkel",
		Formats:    []Format{FormatSRT},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := filepath.Join(outDir, "Simon- Garfunkel.srt")
	if len(result.Outputs) != 1 || result.Outputs[0].Path != want {
		t.Fatalf("unexpected outputs: %+v", result.Outputs)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "Simon- Garfunkel.lrc")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("lrc should not be written, stat err=%v", err)
	}
}

func TestRunDefaultsToLyricsDirectory(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, testLyrics, testWords)
	cfg := testsupport.NewConfig(t, testsupport.WithFormats("lrc"), testsupport.WithoutHistory())
	cfg.Paths.OutputDir = ""
	recorder := &fakeRecorder{}
	svc := NewService(cfg, logging.NewNop(), recorder)

	result, err := svc.Run(context.Background(), Request{LyricsPath: lyricsPath, WordsPath: wordsPath})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := filepath.Join(filepath.Dir(lyricsPath), "sound_of_silence.lrc")
	if len(result.Outputs) != 1 || result.Outputs[0].Path != want {
		t.Fatalf("unexpected outputs: %+v", result.Outputs)
	}
	if len(recorder.entries) != 0 || result.HistoryID != "" {
		t.Fatal("history disabled but run was recorded")
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, testLyrics, testWords)
	recorder := &fakeRecorder{}
	svc := NewService(testsupport.NewConfig(t), logging.NewNop(), recorder)

	result, err := svc.Run(context.Background(), Request{LyricsPath: lyricsPath, WordsPath: wordsPath, DryRun: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, out := range result.Outputs {
		if out.Written {
			t.Fatalf("dry run marked %s written", out.Path)
		}
		if out.Content == "" {
			t.Fatalf("dry run should still render %s", out.Format)
		}
		if _, err := os.Stat(out.Path); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("dry run wrote %s", out.Path)
		}
	}
	if len(recorder.entries) != 0 {
		t.Fatalf("dry run recorded history")
	}
}

func TestRunNoLyrics(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, "\n   \n\t\n", testWords)
	svc := NewService(testsupport.NewConfig(t), logging.NewNop(), nil)
	if _, err := svc.Run(context.Background(), Request{LyricsPath: lyricsPath, WordsPath: wordsPath}); !errors.Is(err, ErrNoLyrics) {
		t.Fatalf("expected ErrNoLyrics, got %v", err)
	}
}

func TestRunNoAlignedLines(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, "completely different words\n", testWords)
	svc := NewService(testsupport.NewConfig(t), logging.NewNop(), nil)
	result, err := svc.Run(context.Background(), Request{LyricsPath: lyricsPath, WordsPath: wordsPath})
	if !errors.Is(err, ErrNoAlignedLines) {
		t.Fatalf("expected ErrNoAlignedLines, got %v", err)
	}
	if len(result.Report.Dropped) != 1 {
		t.Fatalf("expected dropped line in report, got %+v", result.Report)
	}
}

func TestRunBadWordsFile(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, testLyrics, `[{"text": "hi", "start": "one", "end": 2}]`)
	svc := NewService(testsupport.NewConfig(t), logging.NewNop(), nil)
	_, err := svc.Run(context.Background(), Request{LyricsPath: lyricsPath, WordsPath: wordsPath})
	if !errors.Is(err, ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func TestRunSkipsUntimedWords(t *testing.T) {
	words := strings.Replace(testWords, `{"text": "my", "start": 2.1, "end": 2.2},`, `{"text": "my"},`, 1)
	lyricsPath, wordsPath := writeInputs(t, testLyrics, words)
	var logs bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &logs})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	svc := NewService(testsupport.NewConfig(t, testsupport.WithoutHistory()), logger, nil)

	result, err := svc.Run(context.Background(), Request{LyricsPath: lyricsPath, WordsPath: wordsPath, DryRun: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Skipped != 1 || result.WordCount != 8 {
		t.Fatalf("expected 1 skipped and 8 words, got skipped=%d words=%d", result.Skipped, result.WordCount)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(result.Lines))
	}
	if !strings.Contains(logs.String(), `"decision_type":"word_filter"`) {
		t.Fatalf("expected word_filter decision log, got %s", logs.String())
	}
}

func TestRunRequiresPaths(t *testing.T) {
	svc := NewService(nil, nil, nil)
	if _, err := svc.Run(context.Background(), Request{WordsPath: "w.json"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest without lyrics path, got %v", err)
	}
	if _, err := svc.Run(context.Background(), Request{LyricsPath: "l.txt"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest without words path, got %v", err)
	}
}

func TestRunHistoryFailureDoesNotFailRun(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, testLyrics, testWords)
	recorder := &fakeRecorder{err: errors.New("disk full")}
	svc := NewService(testsupport.NewConfig(t), logging.NewNop(), recorder)
	result, err := svc.Run(context.Background(), Request{LyricsPath: lyricsPath, WordsPath: wordsPath})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.HistoryID != "" {
		t.Fatalf("expected empty history id, got %q", result.HistoryID)
	}
}

func TestRunWithHistoryStore(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, testLyrics, testWords)
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	svc := NewService(cfg, logging.NewNop(), store)
	result, err := svc.Run(context.Background(), Request{LyricsPath: lyricsPath, WordsPath: wordsPath, Title: "The Sound of Silence"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	entry, err := store.Get(context.Background(), result.HistoryID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if entry.Title != "The Sound of Silence" || entry.LineCount != 2 {
		t.Fatalf("unexpected history entry: %+v", entry)
	}
}

func TestMeasureOverlap(t *testing.T) {
	text := "[Chorus]\nHello, there\nworld"
	got := measureOverlap(text, wordsFromTexts("hello", "world"))
	// unique tokens: hello, there, world; two of three present.
	if got.coverage < 0.66 || got.coverage > 0.67 {
		t.Fatalf("expected ~0.667 coverage, got %v", got.coverage)
	}
	if got.lyricTokens != 3 {
		t.Fatalf("expected 3 lyric tokens, got %d", got.lyricTokens)
	}
	if got.similarity <= 0 || got.similarity >= 1 {
		t.Fatalf("expected partial similarity, got %v", got.similarity)
	}
	empty := measureOverlap("", nil)
	if empty.coverage != 0 || empty.similarity != 0 {
		t.Fatalf("expected zero overlap for empty inputs, got %+v", empty)
	}
}

func TestRunWarnsOnLowCoverage(t *testing.T) {
	lyricsPath, wordsPath := writeInputs(t, "Hello stranger nobody knows\n", testWords)
	var logs bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "warn", Writer: &logs})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	cfg := testsupport.NewConfig(t, testsupport.WithMinCoverage(0.9), testsupport.WithOverwrite(true))
	svc := NewService(cfg, logger, nil)

	result, err := svc.Run(context.Background(), Request{LyricsPath: lyricsPath, WordsPath: wordsPath})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Coverage != 0.25 {
		t.Fatalf("expected 0.25 coverage, got %v", result.Coverage)
	}
	if !strings.Contains(logs.String(), `"event_type":"low_coverage"`) {
		t.Fatalf("expected low_coverage warning, got %s", logs.String())
	}
}

func TestParseFormats(t *testing.T) {
	formats, err := ParseFormats([]string{"LRC", ".srt", "lrc"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(formats) != 2 || formats[0] != FormatLRC || formats[1] != FormatSRT {
		t.Fatalf("unexpected formats: %v", formats)
	}
	if _, err := ParseFormat("vtt"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := Render(nil, Format("ass")); err == nil {
		t.Fatal("expected error rendering unknown format")
	}
	out, err := Render(nil, FormatSRT)
	if err != nil || out != "" {
		t.Fatalf("expected empty srt for no lines, got %q, %v", out, err)
	}
	if !strings.HasPrefix(FormatLRC.Extension(), ".") {
		t.Fatal("extension should include dot")
	}
}

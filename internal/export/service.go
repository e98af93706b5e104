package export

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lyricsync/internal/config"
	"lyricsync/internal/fileutil"
	"lyricsync/internal/history"
	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/textutil"
	"lyricsync/internal/wordsource"
)

const (
	outputFileMode  = 0o644
	defaultBaseName = "lyrics"
)

// Recorder persists finished runs. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (history.Entry, error)
}

var _ Recorder = (*history.Store)(nil)

// Request describes one alignment job.
type Request struct {
	LyricsPath string
	WordsPath  string
	// OutputDir overrides paths.output_dir. When both are empty files are
	// written beside the lyrics file.
	OutputDir string
	// BaseName is the output file name without extension. Defaults to the
	// lyrics file name.
	BaseName string
	// Formats defaults to output.formats.
	Formats []Format
	// Title is the display title stored in history. Defaults to a title
	// derived from the lyrics file name.
	Title string
	// Overwrite replaces existing outputs even when output.overwrite is off.
	Overwrite bool
	// DryRun renders outputs without writing files or recording history.
	DryRun bool
}

// Output is one rendered file.
type Output struct {
	Format  Format `json:"format"`
	Path    string `json:"path"`
	Content string `json:"-"`
	Written bool   `json:"written"`
}

// Result summarizes a finished job.
type Result struct {
	RunID     string               `json:"run_id"`
	Title     string               `json:"title"`
	Lines     []lyrics.AlignedLine `json:"lines"`
	Report    lyrics.Report        `json:"report"`
	WordCount int                  `json:"word_count"`
	Skipped   int                  `json:"skipped_words,omitempty"`
	Coverage  float64              `json:"coverage"`
	Outputs   []Output             `json:"outputs"`
	HistoryID string               `json:"history_id,omitempty"`
	Duration  time.Duration        `json:"duration"`
}

// Service runs alignment jobs. It is safe for concurrent use.
type Service struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder Recorder
}

// NewService constructs a job service. recorder may be nil to skip history.
func NewService(cfg *config.Config, logger *slog.Logger, recorder Recorder) *Service {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return &Service{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "export"),
		recorder: recorder,
	}
}

// Run executes req.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	runID := uuid.NewString()
	logger := logging.WithRunID(s.logger, runID)

	req, err := s.resolveRequest(req)
	if err != nil {
		return Result{}, err
	}
	logger.Info(
		"alignment run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("lyrics_path", req.LyricsPath),
		logging.String("words_path", req.WordsPath),
		logging.String("output_dir", req.OutputDir),
		logging.Bool("dry_run", req.DryRun),
	)

	text, err := os.ReadFile(req.LyricsPath)
	if err != nil {
		return Result{}, wrap(ErrInput, "read lyrics", req.LyricsPath, err)
	}
	if len(lyrics.SourceLines(string(text))) == 0 {
		return Result{}, wrap(ErrNoLyrics, "read lyrics", req.LyricsPath, nil)
	}

	payload, err := wordsource.Load(req.WordsPath)
	if err != nil {
		return Result{}, wrap(ErrInput, "load words", "", err)
	}
	words := payload.Words
	if payload.Skipped > 0 {
		attrs := logging.DecisionAttrs("word_filter", "skipped", "entry has no start or end time")
		attrs = append(attrs, logging.Int("skipped_words", payload.Skipped))
		logger.Debug("untimed words skipped", logging.Args(attrs...)...)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	lines, report := lyrics.AlignReport(string(text), words)
	measured := measureOverlap(string(text), words)
	s.logAlignment(logger, report, measured)

	result := Result{
		RunID:     runID,
		Title:     req.Title,
		Lines:     lines,
		Report:    report,
		WordCount: len(words),
		Skipped:   payload.Skipped,
		Coverage:  measured.coverage,
	}
	if len(lines) == 0 {
		logging.ErrorWithContext(logger, "no lyric lines aligned", "alignment_empty",
			logging.String(logging.FieldErrorHint, "check that the word timestamps belong to this song"),
			logging.Int("source_lines", report.SourceLines),
			logging.Int("word_count", len(words)),
		)
		return result, wrap(ErrNoAlignedLines, "align", req.LyricsPath, nil)
	}

	for _, format := range req.Formats {
		content, err := Render(lines, format)
		if err != nil {
			return result, err
		}
		result.Outputs = append(result.Outputs, Output{
			Format:  format,
			Path:    filepath.Join(req.OutputDir, req.BaseName+format.Extension()),
			Content: content,
		})
	}
	if !req.DryRun {
		if err := s.writeOutputs(ctx, logger, result.Outputs, req.Overwrite || s.cfg.Output.Overwrite); err != nil {
			return result, err
		}
		result.HistoryID = s.record(ctx, logger, req, result)
	}
	result.Duration = time.Since(started)
	logger.Info(
		"alignment run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("title", result.Title),
		logging.Int("aligned_lines", len(lines)),
		logging.Int("dropped_lines", len(report.Dropped)),
		logging.Int("outputs", len(result.Outputs)),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

// writeOutputs refuses the whole batch when any target exists and overwrite
// is off, so a failed run never leaves some formats written.
func (s *Service) writeOutputs(ctx context.Context, logger *slog.Logger, outputs []Output, overwrite bool) error {
	if !overwrite {
		paths := make([]string, 0, len(outputs))
		for _, out := range outputs {
			paths = append(paths, out.Path)
		}
		if err := fileutil.CheckAbsent(paths...); err != nil {
			return outputError("check outputs", err)
		}
	}
	opts := fileutil.WriteOptions{
		Mode:      outputFileMode,
		Overwrite: overwrite,
		LockDir:   s.lockDir(),
	}
	for i := range outputs {
		out := &outputs[i]
		if err := fileutil.WriteFileAtomic(ctx, out.Path, []byte(out.Content), opts); err != nil {
			return outputError("write "+string(out.Format), err)
		}
		out.Written = true
		logger.Info(
			"output written",
			logging.String(logging.FieldEventType, "output_written"),
			logging.String("format", string(out.Format)),
			logging.String("path", out.Path),
			logging.Int("bytes", len(out.Content)),
		)
	}
	return nil
}

func (s *Service) lockDir() string {
	if s.cfg.Paths.LogDir == "" {
		return ""
	}
	return filepath.Join(s.cfg.Paths.LogDir, "locks")
}

func outputError(operation string, err error) error {
	if errors.Is(err, fileutil.ErrExists) {
		return wrap(ErrOutput, operation, "use --overwrite to replace it", err)
	}
	return wrap(ErrOutput, operation, "", err)
}

func (s *Service) resolveRequest(req Request) (Request, error) {
	req.LyricsPath = strings.TrimSpace(req.LyricsPath)
	req.WordsPath = strings.TrimSpace(req.WordsPath)
	if req.LyricsPath == "" {
		return req, wrap(ErrInvalidRequest, "resolve request", "lyrics path is required", nil)
	}
	if req.WordsPath == "" {
		return req, wrap(ErrInvalidRequest, "resolve request", "words path is required", nil)
	}

	if len(req.Formats) == 0 {
		formats, err := ParseFormats(s.cfg.Output.Formats)
		if err != nil {
			return req, err
		}
		req.Formats = formats
	}
	if len(req.Formats) == 0 {
		return req, wrap(ErrInvalidRequest, "resolve request", "no output formats selected", nil)
	}

	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = s.cfg.Paths.OutputDir
	}
	if outputDir == "" {
		outputDir = filepath.Dir(req.LyricsPath)
	}
	expanded, err := config.ExpandPath(outputDir)
	if err != nil {
		return req, wrap(ErrInvalidRequest, "resolve output dir", outputDir, err)
	}
	req.OutputDir = expanded

	base := strings.TrimSpace(req.BaseName)
	if base == "" {
		base = filepath.Base(req.LyricsPath)
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	base = textutil.SanitizeFileName(base)
	if base == "" {
		base = defaultBaseName
	}
	req.BaseName = base

	if strings.TrimSpace(req.Title) == "" {
		req.Title = textutil.DeriveTitle(req.LyricsPath)
	}
	req.Title = strings.TrimSpace(req.Title)
	return req, nil
}

func (s *Service) logAlignment(logger *slog.Logger, report lyrics.Report, measured overlap) {
	logger.Debug(
		"lyric vocabulary overlap",
		logging.Int("lyric_tokens", measured.lyricTokens),
		logging.Float64("coverage", measured.coverage),
		logging.Float64("similarity", measured.similarity),
	)
	for _, line := range report.Dropped {
		attrs := logging.DecisionAttrs("line_anchor", "dropped", "no lyric token found in remaining words")
		attrs = append(attrs, logging.String("line", line))
		logger.Debug("lyric line dropped", logging.Args(attrs...)...)
	}
	if report.Fallback > 0 {
		attrs := logging.DecisionAttrs("line_anchor", "fallback", "first token missing, anchored on second token")
		attrs = append(attrs, logging.Int("fallback_lines", report.Fallback))
		logger.Info("lines anchored on second token", logging.Args(attrs...)...)
	}
	if len(report.Dropped) > 0 {
		logging.WarnWithContext(logger, "some lyric lines were not aligned", "lines_dropped",
			logging.Int("dropped_lines", len(report.Dropped)),
			logging.Int("aligned_lines", report.Aligned()),
			logging.String(logging.FieldErrorHint, "run with --log-level debug to list dropped lines"),
			logging.String(logging.FieldImpact, "dropped lines are missing from the outputs"),
		)
	}
	if minimum := s.cfg.Alignment.MinCoverage; minimum > 0 && measured.coverage < minimum {
		logging.WarnWithContext(logger, "lyrics barely overlap the word timestamps", "low_coverage",
			logging.Float64("coverage", measured.coverage),
			logging.Float64("similarity", measured.similarity),
			logging.Float64("min_coverage", minimum),
			logging.String(logging.FieldErrorHint, "confirm the words file was produced from this song"),
			logging.String(logging.FieldImpact, "line timings are likely wrong"),
			logging.Alert("low_coverage"),
		)
	}
}

func (s *Service) record(ctx context.Context, logger *slog.Logger, req Request, result Result) string {
	if s.recorder == nil || !s.cfg.History.Enabled {
		return ""
	}
	paths := make([]string, 0, len(result.Outputs))
	for _, out := range result.Outputs {
		paths = append(paths, out.Path)
	}
	entry, err := s.recorder.Record(ctx, history.Entry{
		ID:            result.RunID,
		Title:         result.Title,
		LyricsPath:    req.LyricsPath,
		WordsPath:     req.WordsPath,
		Outputs:       paths,
		LineCount:     len(result.Lines),
		WordCount:     result.WordCount,
		DroppedCount:  len(result.Report.Dropped),
		FallbackCount: result.Report.Fallback,
		Coverage:      result.Coverage,
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to record run history", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will not appear in lyricsync history"),
		)
		return ""
	}
	return entry.ID
}

type overlap struct {
	coverage    float64
	similarity  float64
	lyricTokens int
}

// measureOverlap compares the lyric vocabulary, section markers excluded, with
// the word stream. coverage is the share of unique lyric tokens present in
// words; similarity is the cosine of the two token-frequency vectors.
func measureOverlap(text string, words []lyrics.TimedWord) overlap {
	var lyricTokens []string
	for _, line := range lyrics.SourceLines(text) {
		if lyrics.IsSectionMarker(line) {
			continue
		}
		for _, field := range strings.Fields(line) {
			lyricTokens = append(lyricTokens, lyrics.Normalize(field))
		}
	}
	wordTokens := make([]string, 0, len(words))
	for _, word := range words {
		wordTokens = append(wordTokens, lyrics.Normalize(word.Text))
	}
	lyricPrint := textutil.NewFingerprint(lyricTokens)
	wordPrint := textutil.NewFingerprint(wordTokens)
	return overlap{
		coverage:    lyricPrint.Coverage(wordPrint),
		similarity:  lyricPrint.Similarity(wordPrint),
		lyricTokens: lyricPrint.TokenCount(),
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/export"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var baseName string
	var formatNames []string
	var title string
	var toStdout bool
	var jsonOutput bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "align <lyrics.txt> <words.json>",
		Short: "Align lyric lines to word timestamps and write LRC/SRT files",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("provide the lyrics text file and the word timestamps file. Example: lyricsync align song.txt song.json\nRun lyricsync align --help for more details")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			lyricsPath, err := requireFile(args[0], "lyrics")
			if err != nil {
				return err
			}
			wordsPath, err := requireFile(args[1], "words")
			if err != nil {
				return err
			}
			if toStdout && jsonOutput {
				return fmt.Errorf("--stdout and --json cannot be combined")
			}

			formats, err := export.ParseFormats(formatNames)
			if err != nil {
				return err
			}
			if toStdout {
				switch len(formats) {
				case 0:
					formats = []export.Format{export.FormatLRC}
				case 1:
				default:
					return fmt.Errorf("--stdout accepts a single --format")
				}
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.newLogger(cmd)
			if err != nil {
				return err
			}

			var recorder export.Recorder
			if !toStdout {
				store, err := ctx.openHistory()
				if err != nil {
					return err
				}
				if store != nil {
					defer store.Close()
					recorder = store
				}
			}

			service := export.NewService(cfg, logger, recorder)
			result, err := service.Run(cmd.Context(), export.Request{
				LyricsPath: lyricsPath,
				WordsPath:  wordsPath,
				OutputDir:  outputDir,
				BaseName:   baseName,
				Formats:    formats,
				Title:      title,
				Overwrite:  overwrite,
				DryRun:     toStdout,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case toStdout:
				_, err := io.WriteString(out, result.Outputs[0].Content+"\n")
				return err
			case jsonOutput:
				return writeJSON(cmd, result)
			default:
				printAlignSummary(out, result, cfg.Alignment.MinCoverage, shouldColorize(out))
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for generated files (default: paths.output_dir or the lyrics directory)")
	cmd.Flags().StringVarP(&baseName, "name", "n", "", "Output file name without extension (default: lyrics file name)")
	cmd.Flags().StringSliceVarP(&formatNames, "format", "f", nil, "Output format, lrc or srt (repeatable; default: output.formats)")
	cmd.Flags().StringVar(&title, "title", "", "Display title recorded in history (default: derived from the lyrics file name)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the rendered file to stdout instead of writing it")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run result as JSON")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing output files")
	return cmd
}

func requireFile(value, label string) (string, error) {
	path := strings.TrimSpace(value)
	if path == "" {
		return "", fmt.Errorf("%s file path is required", label)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s file %q not found", label, path)
		}
		return "", fmt.Errorf("stat %s file: %w", label, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s path %q is a directory", label, path)
	}
	return path, nil
}

func printAlignSummary(out io.Writer, result export.Result, minCoverage float64, colorize bool) {
	for _, line := range renderSectionHeader(result.Title, colorize) {
		fmt.Fprintln(out, line)
	}

	report := result.Report
	alignedKind := statusOK
	if len(report.Dropped) > 0 {
		alignedKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Aligned lines", alignedKind,
		fmt.Sprintf("%d of %d", report.Aligned(), report.Aligned()+len(report.Dropped)), colorize))
	fmt.Fprintln(out, renderStatusLine("Second-token anchors", statusInfo, fmt.Sprintf("%d", report.Fallback), colorize))
	coverageKind := statusOK
	if result.Coverage < minCoverage {
		coverageKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Word coverage", coverageKind, formatPercent(result.Coverage), colorize))
	if result.HistoryID != "" {
		fmt.Fprintln(out, renderStatusLine("Run", statusInfo, shortID(result.HistoryID), colorize))
	}

	if len(result.Outputs) > 0 {
		rows := make([][]string, 0, len(result.Outputs))
		for _, output := range result.Outputs {
			rows = append(rows, []string{strings.ToUpper(string(output.Format)), output.Path, yesNo(output.Written)})
		}
		fmt.Fprintln(out, renderTable([]string{"Format", "Path", "Written"}, rows, nil))
	}
	if len(report.Dropped) > 0 {
		fmt.Fprintln(out, "Dropped lines:")
		for _, line := range report.Dropped {
			fmt.Fprintf(out, "%s- %s\n", statusIndent, line)
		}
	}
}

func formatPercent(value float64) string {
	return fmt.Sprintf("%.0f%%", value*100)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/export"
	"lyricsync/internal/subtitles"
)

type checkReport struct {
	Path    string   `json:"path"`
	Format  string   `json:"format"`
	Entries int      `json:"entries"`
	Issues  []string `json:"issues"`
}

func newCheckCommand() *cobra.Command {
	var formatName string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "check <file.lrc|file.srt>",
		Short:       "Validate the structure of an LRC or SRT file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := requireFile(args[0], "subtitle")
			if err != nil {
				return err
			}
			name := formatName
			if strings.TrimSpace(name) == "" {
				name = filepath.Ext(path)
			}
			format, err := export.ParseFormat(name)
			if err != nil {
				return fmt.Errorf("cannot infer format for %s; pass --format lrc|srt", path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			report := checkContent(path, format, string(data))
			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader(filepath.Base(path), colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Entries", statusInfo, fmt.Sprintf("%d", report.Entries), colorize))
				if len(report.Issues) == 0 {
					fmt.Fprintln(out, renderStatusLine("Structure", statusOK, "valid "+strings.ToUpper(report.Format), colorize))
				}
				for _, issue := range report.Issues {
					fmt.Fprintln(out, renderStatusLine("Issue", statusError, issue, colorize))
				}
			}
			if len(report.Issues) > 0 {
				return fmt.Errorf("%s: %d issue(s) found", path, len(report.Issues))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "", "File format, lrc or srt (default: from extension)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the check result as JSON")
	return cmd
}

func checkContent(path string, format export.Format, content string) checkReport {
	report := checkReport{Path: path, Format: string(format), Issues: []string{}}
	switch format {
	case export.FormatSRT:
		cues, _ := subtitles.ParseSRT(content)
		report.Entries = len(cues)
		report.Issues = append(report.Issues, subtitles.ValidateSRT(content)...)
	case export.FormatLRC:
		lines, _ := subtitles.ParseLRC(content)
		report.Entries = len(lines)
		report.Issues = append(report.Issues, subtitles.ValidateLRC(content)...)
	}
	return report
}

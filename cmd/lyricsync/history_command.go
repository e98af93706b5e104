package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past alignment runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent alignment runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(cfg *config.Config, store *history.Store) error {
				n := limit
				if !cmd.Flags().Changed("limit") {
					n = cfg.History.ListLimit
				}
				entries, err := store.List(cmd.Context(), n)
				if err != nil {
					return err
				}
				if jsonOutput {
					if entries == nil {
						entries = []history.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderHistoryTable(entries))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum runs to show, 0 for all (default: history.list_limit)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show details for one run (ID prefixes are accepted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(_ *config.Config, store *history.Store) error {
				entry, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return historyLookupError(args[0], err)
				}
				if jsonOutput {
					return writeJSON(cmd, entry)
				}
				printHistoryEntry(cmd.OutOrStdout(), entry)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <run-id>",
		Aliases: []string{"remove"},
		Short:   "Delete a run from history (generated files are kept)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(_ *config.Config, store *history.Store) error {
				entry, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return historyLookupError(args[0], err)
				}
				if err := store.Delete(cmd.Context(), entry.ID); err != nil {
					return fmt.Errorf("delete run %s: %w", entry.ID, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed run %s (%s)\n", shortID(entry.ID), entry.Title)
				return nil
			})
		},
	}
}

func historyLookupError(id string, err error) error {
	switch {
	case errors.Is(err, history.ErrNotFound):
		return fmt.Errorf("no run matches %q", id)
	case errors.Is(err, history.ErrAmbiguousID):
		return fmt.Errorf("run id %q matches more than one run; use more characters", id)
	default:
		return err
	}
}

func renderHistoryTable(entries []history.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			shortID(entry.ID),
			formatCreated(entry.CreatedAt),
			entry.Title,
			strconv.Itoa(entry.LineCount),
			strconv.Itoa(entry.DroppedCount),
			formatPercent(entry.Coverage),
		})
	}
	return renderTable(
		[]string{"ID", "Created", "Title", "Lines", "Dropped", "Coverage"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

func printHistoryEntry(out io.Writer, entry history.Entry) {
	outputs := "-"
	if len(entry.Outputs) > 0 {
		outputs = strings.Join(entry.Outputs, "\n")
	}
	fmt.Fprintln(out, renderKeyValueTable([][2]string{
		{"ID", entry.ID},
		{"Title", entry.Title},
		{"Created", formatCreated(entry.CreatedAt)},
		{"Lyrics", entry.LyricsPath},
		{"Words", entry.WordsPath},
		{"Outputs", outputs},
		{"Lines", strconv.Itoa(entry.LineCount)},
		{"Word count", strconv.Itoa(entry.WordCount)},
		{"Dropped lines", strconv.Itoa(entry.DroppedCount)},
		{"Second-token anchors", strconv.Itoa(entry.FallbackCount)},
		{"Coverage", formatPercent(entry.Coverage)},
	}))
}

func formatCreated(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

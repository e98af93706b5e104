package main

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestHistoryShowAndRemove(t *testing.T) {
	env := setupCLITestEnv(t)
	lyricsPath, wordsPath := env.writeSong(t, "song", songLyrics, songWords)
	out, _, err := runCLI(t, []string{"align", lyricsPath, wordsPath, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	var result struct {
		HistoryID string `json:"history_id"`
	}
	decodeJSON(t, out, &result)
	prefix := result.HistoryID[:8]

	showOut, _, err := runCLI(t, []string{"history", "show", prefix}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, showOut, result.HistoryID)
	requireContains(t, showOut, lyricsPath)

	var entry struct {
		ID           string   `json:"id"`
		Outputs      []string `json:"outputs"`
		DroppedCount int      `json:"dropped_count"`
	}
	jsonOut, _, err := runCLI(t, []string{"history", "show", prefix, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history show --json: %v", err)
	}
	decodeJSON(t, jsonOut, &entry)
	if entry.ID != result.HistoryID || len(entry.Outputs) != 2 || entry.DroppedCount != 1 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	rmOut, _, err := runCLI(t, []string{"history", "rm", prefix}, env.configPath)
	if err != nil {
		t.Fatalf("history rm: %v", err)
	}
	requireContains(t, rmOut, "Removed run "+prefix)

	_, _, err = runCLI(t, []string{"history", "show", prefix}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no run matches") {
		t.Fatalf("expected not found after rm, got %v", err)
	}
}

func TestHistoryListEmptyAndJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	jsonOut, _, err := runCLI(t, []string{"history", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history list --json: %v", err)
	}
	if strings.TrimSpace(jsonOut) != "[]" {
		t.Fatalf("expected empty json array, got %q", jsonOut)
	}
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t)
	content := fmt.Sprintf("[paths]\nhistory_db = %q\n\n[history]\nenabled = false\n", env.historyDB)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

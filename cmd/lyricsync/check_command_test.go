package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckValidFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NO_COLOR", "1")
	srtPath := filepath.Join(dir, "song.srt")
	srt := "1\n00:00:01,000 --> 00:00:02,500\nHello\n\n2\n00:00:02,500 --> 00:00:04,000\nWorld"
	if err := os.WriteFile(srtPath, []byte(srt), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}
	out, _, err := runCLI(t, []string{"check", srtPath}, "")
	if err != nil {
		t.Fatalf("check srt: %v", err)
	}
	requireContains(t, out, "valid SRT")
	requireContains(t, out, "[INFO] 2")

	lrcPath := filepath.Join(dir, "song.lrc")
	if err := os.WriteFile(lrcPath, []byte("[ar:Someone]\n[00:01.00]Hello\n[00:02.50]World\n"), 0o644); err != nil {
		t.Fatalf("write lrc: %v", err)
	}
	if _, _, err := runCLI(t, []string{"check", lrcPath}, ""); err != nil {
		t.Fatalf("check lrc: %v", err)
	}
}

func TestCheckReportsIssues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.lrc")
	if err := os.WriteFile(path, []byte("[00:05.00]Later\n[00:01.00]Earlier\nno timestamp\n"), 0o644); err != nil {
		t.Fatalf("write lrc: %v", err)
	}
	out, _, err := runCLI(t, []string{"check", path, "--json"}, "")
	if err == nil {
		t.Fatal("expected error for invalid lrc")
	}
	var report checkReport
	decodeJSON(t, out, &report)
	if report.Format != "lrc" || report.Entries != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", report.Issues)
	}
}

func TestCheckNeedsKnownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.txt")
	if err := os.WriteFile(path, []byte("[00:01.00]Hello"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, _, err := runCLI(t, []string{"check", path}, ""); err == nil {
		t.Fatal("expected error for unknown extension")
	}
	if _, _, err := runCLI(t, []string{"check", path, "--format", "lrc"}, ""); err != nil {
		t.Fatalf("check with --format: %v", err)
	}
}

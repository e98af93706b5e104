package testsupport

import (
	"testing"

	"lyricsync/internal/config"
	"lyricsync/internal/history"
)

// MustOpenHistory opens the history store at cfg.Paths.HistoryDB and
// registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

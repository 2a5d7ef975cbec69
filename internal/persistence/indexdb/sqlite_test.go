package indexdb

import (
	"path/filepath"
	"testing"
	"time"

	"merchants.ai/internal/game"
)

func sampleGame(id, winner string) game.GameState {
	return game.GameState{
		ID:     id,
		Round:  3,
		Cap:    10,
		Winner: winner,
		Players: []*game.Player{
			{ID: "a", Balance: 150, Active: true},
			{ID: "b", Balance: 0, Active: false},
		},
		TotalResources: 200,
		CreatedAt:      time.Now().UTC(),
	}
}

// Close drains the write queue before releasing the database, so reopening
// the same file observes everything enqueued earlier.
func TestIndexPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	g1 := sampleGame("g1", "a")
	g2 := sampleGame("g2", "a")
	g3 := sampleGame("g3", "b")
	s.RecordGame(g1)
	s.RecordRound(g1)
	s.RecordResult(g1, 153, 50)
	s.RecordResult(g2, 120, 30)
	s.RecordResult(g3, 99, 10)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	counts, err := s2.WinnerCounts()
	if err != nil {
		t.Fatalf("winner counts: %v", err)
	}
	if counts["a"] != 2 || counts["b"] != 1 {
		t.Fatalf("counts %v", counts)
	}
}

func TestOpenSQLiteRejectsEmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("empty path accepted")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

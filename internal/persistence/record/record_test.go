package record

import (
	"strings"
	"testing"
	"time"

	"merchants.ai/internal/game"
)

func sampleState() game.GameState {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return game.GameState{
		ID:    "g1",
		Phase: game.PhaseEnded,
		Round: 4,
		Cap:   10,
		Ended: true,
		Winner: "a",
		Players: []*game.Player{
			{ID: "a", Name: "Alice", Balance: 171, Active: true},
			{ID: "b", Name: "Bob", Balance: 0, Active: false},
		},
		Actions: []game.GameAction{
			{Player: "a", Type: game.ActionPersuade, Target: "b", Amount: 12, Result: "accepted", Timestamp: now},
			{Player: "b", Type: game.ActionPlayerBankrupt, Timestamp: now},
			{Player: "a", Type: game.ActionGameEnd, Amount: 171, Timestamp: now},
		},
		CreatedAt: now.Add(-time.Hour),
		UpdatedAt: now,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	rec := FromState(sampleState())
	if rec.Winner != "a" || rec.Rounds != 4 || len(rec.Players) != 2 {
		t.Fatalf("record %+v", rec)
	}

	path, err := store.Save(rec)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(path, ".json") {
		t.Fatalf("path %s", path)
	}

	names, err := store.List()
	if err != nil || len(names) != 1 {
		t.Fatalf("list %v err %v", names, err)
	}

	loaded, err := store.Load(names[0])
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.GameID != "g1" || loaded.Winner != "a" || len(loaded.Actions) != 3 {
		t.Fatalf("loaded %+v", loaded)
	}
	if loaded.Players[1].FinalBalance != 0 || loaded.Players[1].Active {
		t.Fatalf("loser summary %+v", loaded.Players[1])
	}
}

func TestTranscriptRendering(t *testing.T) {
	out := Transcript(FromState(sampleState()))

	for _, want := range []string{
		"game g1, 4 rounds, winner a",
		"Alice",
		"balance 0 (out)",
		"persuade -> b (12) accepted",
		"game_end (171)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("transcript missing %q:\n%s", want, out)
		}
	}
}

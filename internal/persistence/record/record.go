// Package record saves one JSON document per finished game and can render a
// plain-text transcript from it.
package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"merchants.ai/internal/game"
)

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Record is the persisted shape of one finished game.
type Record struct {
	GameID    string            `json:"game_id"`
	CreatedAt time.Time         `json:"created_at"`
	EndedAt   time.Time         `json:"ended_at"`
	Rounds    int               `json:"rounds"`
	Winner    string            `json:"winner,omitempty"`
	Players   []PlayerSummary   `json:"players"`
	Actions   []game.GameAction `json:"actions"`
}

type PlayerSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FinalBalance int    `json:"final_balance"`
	Active       bool   `json:"active"`
}

func FromState(g game.GameState) Record {
	rec := Record{
		GameID:    g.ID,
		CreatedAt: g.CreatedAt,
		EndedAt:   g.UpdatedAt,
		Rounds:    g.Round,
		Winner:    g.Winner,
		Actions:   g.Actions,
	}
	for _, p := range g.Players {
		rec.Players = append(rec.Players, PlayerSummary{
			ID:           p.ID,
			Name:         p.Name,
			FinalBalance: p.Balance,
			Active:       p.Active,
		})
	}
	return rec
}

func (s *Store) Save(rec Record) (string, error) {
	name := fmt.Sprintf("%s_%s.json", rec.GameID, time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(s.dir, name)
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Store) Load(name string) (Record, error) {
	var rec Record
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal(b, &rec)
	return rec, err
}

func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Transcript renders a human-readable account of the game.
func Transcript(rec Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "game %s, %d rounds", rec.GameID, rec.Rounds)
	if rec.Winner != "" {
		fmt.Fprintf(&b, ", winner %s", rec.Winner)
	}
	b.WriteString("\n\nplayers:\n")
	for _, p := range rec.Players {
		status := "active"
		if !p.Active {
			status = "out"
		}
		fmt.Fprintf(&b, "  %-12s %-16s balance %d (%s)\n", p.ID, p.Name, p.FinalBalance, status)
	}
	b.WriteString("\nactions:\n")
	for _, a := range rec.Actions {
		fmt.Fprintf(&b, "  %s %s", a.Player, a.Type)
		if a.Target != "" {
			fmt.Fprintf(&b, " -> %s", a.Target)
		}
		if a.Amount != 0 {
			fmt.Fprintf(&b, " (%d)", a.Amount)
		}
		if a.ItemType != "" {
			fmt.Fprintf(&b, " [%s]", a.ItemType)
		}
		if a.Result != "" {
			fmt.Fprintf(&b, " %s", a.Result)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

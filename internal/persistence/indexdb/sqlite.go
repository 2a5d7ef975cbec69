// Package indexdb maintains a SQLite read-model of finished and in-flight
// games: who played, per-round balances, winners. It is a secondary index
// fed from the action-log side; losing it never affects a running game.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"merchants.ai/internal/game"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqGame reqKind = iota + 1
	reqRound
	reqResult
)

type req struct {
	kind reqKind

	game   gameRow
	rounds []roundRow
	result resultRow
}

type gameRow struct {
	ID             string
	Players        int
	RoundCap       int
	TotalResources int
	CreatedAt      string
}

type roundRow struct {
	GameID   string
	Round    int
	PlayerID string
	Balance  int
	Active   bool
}

type resultRow struct {
	GameID    string
	WinnerID  string
	Payout    int
	Rounds    int
	PrizePool int
	EndedAt   string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads; NORMAL is a decent
	// durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			players INTEGER NOT NULL,
			round_cap INTEGER NOT NULL,
			total_resources INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			game_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			balance INTEGER NOT NULL,
			active INTEGER NOT NULL,
			PRIMARY KEY (game_id, round, player_id)
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			game_id TEXT PRIMARY KEY,
			winner_id TEXT NOT NULL,
			payout INTEGER NOT NULL,
			rounds INTEGER NOT NULL,
			prize_pool INTEGER NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_winner ON results(winner_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		var err error
		switch r.kind {
		case reqGame:
			_, err = s.db.Exec(
				`INSERT OR REPLACE INTO games (id, players, round_cap, total_resources, created_at) VALUES (?, ?, ?, ?, ?)`,
				r.game.ID, r.game.Players, r.game.RoundCap, r.game.TotalResources, r.game.CreatedAt)
		case reqRound:
			for _, row := range r.rounds {
				if _, err = s.db.Exec(
					`INSERT OR REPLACE INTO rounds (game_id, round, player_id, balance, active) VALUES (?, ?, ?, ?, ?)`,
					row.GameID, row.Round, row.PlayerID, row.Balance, boolInt(row.Active)); err != nil {
					break
				}
			}
		case reqResult:
			_, err = s.db.Exec(
				`INSERT OR REPLACE INTO results (game_id, winner_id, payout, rounds, prize_pool, ended_at) VALUES (?, ?, ?, ?, ?, ?)`,
				r.result.GameID, r.result.WinnerID, r.result.Payout, r.result.Rounds, r.result.PrizePool, r.result.EndedAt)
		}
		_ = err // indexing is best-effort; the action log is the source of truth
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteIndex) enqueue(r req) {
	if s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Index saturated: drop rather than stall game processing.
	}
}

func (s *SQLiteIndex) RecordGame(g game.GameState) {
	s.enqueue(req{kind: reqGame, game: gameRow{
		ID:             g.ID,
		Players:        len(g.Players),
		RoundCap:       g.Cap,
		TotalResources: g.TotalResources,
		CreatedAt:      g.CreatedAt.UTC().Format(time.RFC3339),
	}})
}

func (s *SQLiteIndex) RecordRound(g game.GameState) {
	rows := make([]roundRow, 0, len(g.Players))
	for _, p := range g.Players {
		rows = append(rows, roundRow{
			GameID:   g.ID,
			Round:    g.Round,
			PlayerID: p.ID,
			Balance:  p.Balance,
			Active:   p.Active,
		})
	}
	s.enqueue(req{kind: reqRound, rounds: rows})
}

func (s *SQLiteIndex) RecordResult(g game.GameState, payout, prizePool int) {
	s.enqueue(req{kind: reqResult, result: resultRow{
		GameID:    g.ID,
		WinnerID:  g.Winner,
		Payout:    payout,
		Rounds:    g.Round,
		PrizePool: prizePool,
		EndedAt:   time.Now().UTC().Format(time.RFC3339),
	}})
}

// WinnerCounts reads win tallies per player id. Used for tournament
// summaries; reads see whatever the writer has flushed so far.
func (s *SQLiteIndex) WinnerCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT winner_id, COUNT(*) FROM results GROUP BY winner_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

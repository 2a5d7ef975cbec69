package main

import (
	"context"
	"log"
	"sync/atomic"

	"merchants.ai/internal/game"
	"merchants.ai/internal/persistence/indexdb"
	persistlog "merchants.ai/internal/persistence/log"
	"merchants.ai/internal/persistence/record"
)

// recordingEngine wraps the engine with persistence fan-out: every round's
// actions go to the compressed action log, round balances to the sqlite
// index, and finished games to the record store. Persistence failures are
// logged and never fail the request.
type recordingEngine struct {
	inner   *game.Engine
	idx     *indexdb.SQLiteIndex
	actions *persistlog.ActionLogger
	store   *record.Store
	log     *log.Logger

	gamesCreated    atomic.Int64
	gamesEnded      atomic.Int64
	roundsProcessed atomic.Int64
	actionsLogged   atomic.Int64
}

type serverMetrics struct {
	GamesCreated    int64
	GamesEnded      int64
	RoundsProcessed int64
	ActionsLogged   int64
}

func (r *recordingEngine) Metrics() serverMetrics {
	return serverMetrics{
		GamesCreated:    r.gamesCreated.Load(),
		GamesEnded:      r.gamesEnded.Load(),
		RoundsProcessed: r.roundsProcessed.Load(),
		ActionsLogged:   r.actionsLogged.Load(),
	}
}

func (r *recordingEngine) CreateGame(specs []game.PlayerSpec) (game.GameState, error) {
	state, err := r.inner.CreateGame(specs)
	if err != nil {
		return state, err
	}
	r.gamesCreated.Add(1)
	if r.idx != nil {
		r.idx.RecordGame(state)
	}
	return state, nil
}

func (r *recordingEngine) ProcessRound(ctx context.Context, gameID string) ([]game.GameAction, error) {
	actions, err := r.inner.ProcessRound(ctx, gameID)
	if err != nil {
		return actions, err
	}
	r.roundsProcessed.Add(1)

	state, serr := r.inner.GetGameState(gameID)
	if serr != nil {
		return actions, nil
	}

	for _, a := range actions {
		if werr := r.actions.WriteAction(persistlog.ActionEntry{
			GameID: state.ID,
			Round:  state.Round,
			Action: a,
		}); werr != nil {
			r.log.Printf("action log: %v", werr)
			break
		}
		r.actionsLogged.Add(1)
	}

	if r.idx != nil {
		r.idx.RecordRound(state)
	}

	if state.Ended {
		r.gamesEnded.Add(1)
		payout := 0
		for _, a := range actions {
			if a.Type == game.ActionGameEnd {
				payout = a.Amount
			}
		}
		if r.idx != nil {
			r.idx.RecordResult(state, payout, state.PrizePool)
		}
		if path, werr := r.store.Save(record.FromState(state)); werr != nil {
			r.log.Printf("save record: %v", werr)
		} else {
			r.log.Printf("game %s ended, record %s", state.ID, path)
		}
	}
	return actions, nil
}

func (r *recordingEngine) CheckGameEnd(gameID string) (bool, error) {
	return r.inner.CheckGameEnd(gameID)
}

func (r *recordingEngine) GetGameState(gameID string) (game.GameState, error) {
	return r.inner.GetGameState(gameID)
}

package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"merchants.ai/internal/game/tuning"
)

// PlayerSpec describes one participant at game creation.
type PlayerSpec struct {
	ID     string
	Name   string
	Prompt string
	Agent  bool
}

// Engine is the round orchestrator. Each game is an independently owned unit
// of mutable state behind its own lock; two games never share state and may
// be processed concurrently, but ProcessRound for one game is mutually
// exclusive with itself.
type Engine struct {
	tune     tuning.Tuning
	cat      *Catalogue
	provider DecisionProvider
	log      *log.Logger

	mu    sync.RWMutex
	games map[string]*entry

	seq atomic.Int64
}

type entry struct {
	mu     sync.Mutex
	state  *GameState
	rc     *roundContext
	rng    *rand.Rand
	ledger *Ledger

	// Diagnostics raised by ledger ops inside the current phase; drained
	// into the action log after the phase that produced them.
	diags []GameAction
}

func New(tune tuning.Tuning, provider DecisionProvider, logger *log.Logger) *Engine {
	return &Engine{
		tune:     tune,
		cat:      NewCatalogue(tune.Items),
		provider: provider,
		log:      logger,
		games:    map[string]*entry{},
	}
}

// CreateGame validates the roster, charges the entry fee into the prize pool
// and snapshots total resources. The returned state is a copy.
func (e *Engine) CreateGame(specs []PlayerSpec) (GameState, error) {
	if len(specs) < 2 {
		return GameState{}, fmt.Errorf("%w: game requires at least 2 players, got %d", ErrValidation, len(specs))
	}
	seen := map[string]bool{}
	players := make([]*Player, 0, len(specs))
	for i, s := range specs {
		id := s.ID
		if id == "" {
			id = fmt.Sprintf("player_%d", i+1)
		}
		if seen[id] {
			return GameState{}, fmt.Errorf("%w: duplicate player id %q", ErrValidation, id)
		}
		seen[id] = true
		players = append(players, &Player{
			ID:         id,
			Name:       s.Name,
			Prompt:     s.Prompt,
			Balance:    e.tune.InitialBalance,
			Active:     true,
			IsAgent:    s.Agent,
			OwnedTypes: map[ItemType]bool{},
		})
	}

	now := time.Now().UTC()
	g := &GameState{
		ID:        uuid.NewString(),
		Phase:     PhaseItem,
		Cap:       e.tune.RoundCap,
		Players:   players,
		CreatedAt: now,
		UpdatedAt: now,
	}

	en := &entry{
		state: g,
		rc:    newRoundContext(),
		rng:   rand.New(rand.NewSource(e.seedFor())),
	}
	en.ledger = NewLedger(e.log)
	en.ledger.OnViolation = func(gs *GameState, got, want int) {
		en.diags = append(en.diags, GameAction{
			Type:      ActionInvariantBreach,
			Amount:    got - want,
			Message:   fmt.Sprintf("resources %d, expected %d", got, want),
			Timestamp: time.Now().UTC(),
		})
	}

	for _, p := range players {
		if err := en.ledger.ChargeEntryFee(g, p, e.tune.EntryFee); err != nil {
			return GameState{}, fmt.Errorf("entry fee for %s: %w", p.ID, err)
		}
	}
	total := g.PrizePool
	for _, p := range players {
		total += p.Balance
	}
	g.TotalResources = total

	e.mu.Lock()
	e.games[g.ID] = en
	e.mu.Unlock()

	return g.Snapshot(), nil
}

func (e *Engine) seedFor() int64 {
	n := e.seq.Add(1)
	if e.tune.Seed != 0 {
		return e.tune.Seed + n
	}
	return time.Now().UnixNano() + n
}

func (e *Engine) entryFor(gameID string) (*entry, error) {
	e.mu.RLock()
	en := e.games[gameID]
	e.mu.RUnlock()
	if en == nil {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	return en, nil
}

// ProcessRound runs one full round: deferred equalizer effects, then the
// four phase processors in strict sequence. The round counter increments
// only after statistics completes. On an ended game it is a no-op returning
// an empty action list.
func (e *Engine) ProcessRound(ctx context.Context, gameID string) ([]GameAction, error) {
	en, err := e.entryFor(gameID)
	if err != nil {
		return nil, err
	}
	en.mu.Lock()
	defer en.mu.Unlock()

	g := en.state
	if g.Ended {
		return []GameAction{}, nil
	}

	en.rc.resetRound()
	var round []GameAction
	collect := func(acts []GameAction) {
		acts = append(acts, en.diags...)
		en.diags = nil
		g.Actions = append(g.Actions, acts...)
		round = append(round, acts...)
	}

	collect(e.applyDeferredEqualizers(en))
	collect(e.runItemPhase(ctx, en))
	collect(e.runPersuasionPhase(ctx, en))
	collect(e.runSettlementPhase(en))
	collect(e.runStatisticsPhase(en))

	g.Round++
	g.UpdatedAt = time.Now().UTC()
	// Requests never survive the round that created them.
	g.Requests = nil

	if e.endConditionHolds(g) {
		collect(e.endGame(en))
	}
	return round, nil
}

// CheckGameEnd reports whether the game is over or its end condition holds.
// Stable on ended games.
func (e *Engine) CheckGameEnd(gameID string) (bool, error) {
	en, err := e.entryFor(gameID)
	if err != nil {
		return false, err
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	g := en.state
	return g.Ended || e.endConditionHolds(g), nil
}

// GetGameState returns a read-only deep copy.
func (e *Engine) GetGameState(gameID string) (GameState, error) {
	en, err := e.entryFor(gameID)
	if err != nil {
		return GameState{}, err
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	return en.state.Snapshot(), nil
}

// ActionsSince returns a copy of the action log starting at index from,
// plus the next read offset. The log is append-only, so repeated calls
// stream it incrementally.
func (e *Engine) ActionsSince(gameID string, from int) ([]GameAction, int, error) {
	en, err := e.entryFor(gameID)
	if err != nil {
		return nil, 0, err
	}
	en.mu.Lock()
	defer en.mu.Unlock()
	acts := en.state.Actions
	if from < 0 {
		from = 0
	}
	if from > len(acts) {
		from = len(acts)
	}
	out := append([]GameAction(nil), acts[from:]...)
	return out, len(acts), nil
}

func (e *Engine) endConditionHolds(g *GameState) bool {
	return len(g.activePlayers()) < 2 || g.Round >= g.Cap
}

func (e *Engine) endGame(en *entry) []GameAction {
	g := en.state
	g.Ended = true
	g.Phase = PhaseEnded

	actives := g.activePlayers()
	var winner *Player
	switch {
	case len(actives) == 1:
		winner = actives[0]
	case len(actives) > 1:
		// Round cap with several survivors: richest wins, seat order
		// breaks ties.
		winner = actives[0]
		for _, p := range actives[1:] {
			if p.Balance > winner.Balance {
				winner = p
			}
		}
	}
	if winner == nil {
		return []GameAction{{
			Type:      ActionGameEnd,
			Message:   "all players bankrupt, no winner",
			Timestamp: time.Now().UTC(),
		}}
	}

	pool := g.PrizePool
	final := en.ledger.PayoutWinner(g, winner, e.tune.PayoutTaxPermille)
	g.Winner = winner.ID
	return []GameAction{{
		Player:    winner.ID,
		Type:      ActionGameEnd,
		Amount:    final,
		Message:   fmt.Sprintf("%s wins after %d rounds, pool %d, payout %d", winner.Name, g.Round, pool, final),
		Timestamp: time.Now().UTC(),
	}}
}

// decide calls the provider with a bounded timeout and a deep snapshot.
// Any provider failure degrades to a wait decision so the round always
// terminates.
func (e *Engine) decide(ctx context.Context, en *entry, p *Player, phase string, available []string) Decision {
	cctx, cancel := context.WithTimeout(ctx, e.tune.DecisionTimeout())
	defer cancel()
	snap := en.state.Snapshot()
	var pc Player
	if sp := snap.player(p.ID); sp != nil {
		pc = *sp
	}
	d, err := e.provider.Decide(cctx, pc, snap, phase, available)
	if err != nil {
		if e.log != nil {
			e.log.Printf("WARN game %s: decision for %s failed, defaulting to wait: %v", en.state.ID, p.ID, err)
		}
		return Decision{ActionType: DecideWait}
	}
	if d.ActionType == "" {
		d.ActionType = DecideWait
	}
	return d
}

// evaluate asks the target to judge a persuasion request. Failures default
// to rejection; rejection is a legitimate outcome, not an error.
func (e *Engine) evaluate(ctx context.Context, en *entry, target *Player, req *PersuasionRequest) Evaluation {
	cctx, cancel := context.WithTimeout(ctx, e.tune.DecisionTimeout())
	defer cancel()
	snap := en.state.Snapshot()
	var tc Player
	if sp := snap.player(target.ID); sp != nil {
		tc = *sp
	}
	ev, err := e.provider.EvaluatePersuasion(cctx, tc, *req, snap)
	if err != nil {
		if e.log != nil {
			e.log.Printf("WARN game %s: evaluation by %s failed, defaulting to reject: %v", en.state.ID, target.ID, err)
		}
		return Evaluation{Accepted: false, ResponseMessage: "no decision in time, rejecting"}
	}
	return ev
}

func sortByBalanceDesc(players []*Player) []*Player {
	out := append([]*Player(nil), players...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Balance > out[j].Balance })
	return out
}

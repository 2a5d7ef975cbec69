package decision

import (
	"context"
	"math/rand"
	"sync"

	"merchants.ai/internal/game"
)

// Heuristic is a self-contained local policy for offline runs and demos:
// no network, no model. It buys one random item, persuades when asked, and
// accepts small requests from poorer players.
type Heuristic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewHeuristic(seed int64) *Heuristic {
	return &Heuristic{rng: rand.New(rand.NewSource(seed))}
}

func (h *Heuristic) Decide(ctx context.Context, player game.Player, state game.GameState, phase string, available []string) (game.Decision, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch phase {
	case "preparation":
		// One item per game is plenty for a baseline bot.
		if len(player.OwnedTypes) > 0 {
			return game.Decision{ActionType: game.DecideWait}, nil
		}
		return game.Decision{ActionType: game.DecideBuyItem}, nil
	case "item_usage":
		if h.rng.Intn(2) == 0 {
			return game.Decision{ActionType: game.DecideUseItem}, nil
		}
		return game.Decision{ActionType: game.DecideWait}, nil
	case "persuasion":
		return game.Decision{
			ActionType:    game.DecidePersuade,
			PublicMessage: "a small transfer now buys goodwill later",
		}, nil
	}
	return game.Decision{ActionType: game.DecideWait}, nil
}

func (h *Heuristic) EvaluatePersuasion(ctx context.Context, target game.Player, req game.PersuasionRequest, state game.GameState) (game.Evaluation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	requester := 0
	for _, p := range state.Players {
		if p.ID == req.From {
			requester = p.Balance
			break
		}
	}
	// Be generous toward poorer players, stingy otherwise.
	if req.Amount <= 10 && requester < target.Balance {
		return game.Evaluation{Accepted: true, ResponseMessage: "fine, but remember this"}, nil
	}
	return game.Evaluation{Accepted: false, ResponseMessage: "not worth it for me"}, nil
}

package decision

import (
	"context"
	"sync"

	"merchants.ai/internal/game"
)

// Scripted replays a fixed queue of decisions and evaluations. Used by
// engine tests and the offline runner when no API key is configured. When a
// queue runs dry it keeps returning the zero policy: wait and reject.
type Scripted struct {
	mu          sync.Mutex
	decisions   []game.Decision
	evaluations []game.Evaluation

	// AcceptAll flips the dry-queue evaluation default to acceptance.
	AcceptAll bool
}

func NewScripted(decisions []game.Decision, evaluations []game.Evaluation) *Scripted {
	return &Scripted{decisions: decisions, evaluations: evaluations}
}

func (s *Scripted) Decide(ctx context.Context, player game.Player, state game.GameState, phase string, available []string) (game.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.decisions) == 0 {
		return game.Decision{ActionType: game.DecideWait}, nil
	}
	d := s.decisions[0]
	s.decisions = s.decisions[1:]
	return d, nil
}

func (s *Scripted) EvaluatePersuasion(ctx context.Context, target game.Player, req game.PersuasionRequest, state game.GameState) (game.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.evaluations) == 0 {
		return game.Evaluation{Accepted: s.AcceptAll}, nil
	}
	ev := s.evaluations[0]
	s.evaluations = s.evaluations[1:]
	return ev, nil
}

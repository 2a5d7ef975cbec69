package game

import "context"

// Decision is a typed action chosen by a provider for one player. Providers
// that cannot or will not act return ActionType "wait".
type Decision struct {
	ActionType    string
	TargetPlayer  string
	Amount        int
	ItemType      ItemType
	PublicMessage string
	Rationale     string
}

type Evaluation struct {
	Accepted        bool
	Rationale       string
	ResponseMessage string
}

// Available action names handed to providers per phase.
const (
	DecideBuyItem  = "buy_item"
	DecideUseItem  = "use_item"
	DecidePersuade = "persuade"
	DecideWait     = "wait"
)

// DecisionProvider is the external decision-making collaborator. Calls are
// I/O-bound and may be slow or fail; the engine bounds every call with a
// timeout and substitutes a deterministic default (wait / reject) so a round
// always terminates. Providers receive state snapshots and must not attempt
// to mutate game state. Retry policy belongs to the provider, not the engine.
type DecisionProvider interface {
	Decide(ctx context.Context, player Player, state GameState, phase string, available []string) (Decision, error)
	EvaluatePersuasion(ctx context.Context, target Player, req PersuasionRequest, state GameState) (Evaluation, error)
}

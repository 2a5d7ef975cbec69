package game

import (
	"context"
	"fmt"
	"time"
)

const ActionPersuadeResponse = "persuade_response"

// runPersuasionPhase gives every active player one chance to initiate a
// persuasion attempt. Iteration is balance-descending (seat order on ties)
// so the round is deterministic for a fixed RNG and provider. The phase only
// produces requests and decisions; settlement moves the tokens.
func (e *Engine) runPersuasionPhase(ctx context.Context, en *entry) []GameAction {
	g := en.state
	g.Phase = PhasePersuasion

	actives := g.activePlayers()
	if len(actives) < 2 {
		g.Phase = PhaseSettlement
		return nil
	}

	var actions []GameAction
	for _, p := range sortByBalanceDesc(actives) {
		if !p.Active {
			continue
		}
		if en.rng.Intn(1000) >= e.tune.Persuasion.InitiatePermille {
			continue
		}

		var others []*Player
		for _, o := range g.activePlayers() {
			if o.ID != p.ID {
				others = append(others, o)
			}
		}
		if len(others) == 0 {
			continue
		}

		d := e.decide(ctx, en, p, "persuasion", []string{DecidePersuade, DecideWait})
		if d.ActionType != DecidePersuade {
			continue
		}

		target := others[en.rng.Intn(len(others))]
		if d.TargetPlayer != "" {
			for _, o := range others {
				if o.ID == d.TargetPlayer {
					target = o
					break
				}
			}
		}

		amount := e.candidateAmount(en, target)
		if d.Amount >= 1 && d.Amount <= target.Balance {
			amount = d.Amount
		}
		if amount < 1 {
			continue
		}

		msg := d.PublicMessage
		if msg == "" {
			msg = fmt.Sprintf("transfer %d tokens to me, it works out for both of us", amount)
		}

		req := &PersuasionRequest{
			From:      p.ID,
			To:        target.ID,
			Amount:    amount,
			Message:   msg,
			CreatedAt: time.Now().UTC(),
		}
		ev := e.evaluate(ctx, en, target, req)
		req.Accepted = ev.Accepted
		g.Requests = append(g.Requests, req)

		result := "rejected"
		if ev.Accepted {
			result = "accepted"
		}
		actions = append(actions,
			GameAction{
				Player:    p.ID,
				Type:      ActionPersuade,
				Target:    target.ID,
				Amount:    amount,
				Message:   msg,
				Rationale: d.Rationale,
				Result:    result,
				Timestamp: time.Now().UTC(),
			},
			GameAction{
				Player:    target.ID,
				Type:      ActionPersuadeResponse,
				Target:    p.ID,
				Message:   ev.ResponseMessage,
				Rationale: ev.Rationale,
				Result:    result,
				Timestamp: time.Now().UTC(),
			},
		)
	}

	g.Phase = PhaseSettlement
	return actions
}

// candidateAmount picks a proposal bounded by tuning and by what the target
// actually holds.
func (e *Engine) candidateAmount(en *entry, target *Player) int {
	hi := e.tune.Persuasion.MaxAmount
	if target.Balance < hi {
		hi = target.Balance
	}
	if hi < 1 {
		return 0
	}
	lo := e.tune.Persuasion.MinAmount
	if hi <= lo {
		return hi
	}
	return lo + en.rng.Intn(hi-lo+1)
}

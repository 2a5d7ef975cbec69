package game

import (
	"fmt"
	"time"
)

// runSettlementPhase pays out accepted persuasion requests, applies the
// deferred aggressive penalty and clears shield marks. All token movement
// goes through the ledger.
func (e *Engine) runSettlementPhase(en *entry) []GameAction {
	g := en.state
	g.Phase = PhaseSettlement

	var actions []GameAction
	for _, p := range g.Players {
		if !p.Active {
			continue
		}
		for _, req := range g.Requests {
			if req.To != p.ID || !req.Accepted || req.Processed {
				continue
			}
			requester := g.player(req.From)
			if requester == nil || !requester.Active {
				continue
			}
			shielded := en.rc.shielded[p.ID]
			paid, err := en.ledger.SettlePersuasion(g, p, requester, req.Amount, shielded)
			if err != nil {
				// Not enough balance left this round; the request
				// simply goes unsettled.
				continue
			}
			req.Processed = true
			msg := ""
			if paid != req.Amount {
				msg = fmt.Sprintf("shield halved payment from %d", req.Amount)
			}
			actions = append(actions, GameAction{
				Player:    p.ID,
				Type:      ActionTransfer,
				Target:    requester.ID,
				Amount:    paid,
				Message:   msg,
				Timestamp: time.Now().UTC(),
			})
		}
	}

	actions = append(actions, e.applyAggressivePenalties(en)...)

	// Shield marks last exactly one round, triggered or not.
	en.rc.shielded = map[string]bool{}

	g.Phase = PhaseStatistics
	return actions
}

// applyAggressivePenalties charges aggressive users who ended the round
// without a single accepted and settled outgoing persuasion.
func (e *Engine) applyAggressivePenalties(en *entry) []GameAction {
	g := en.state
	var actions []GameAction
	for _, p := range g.Players {
		if !en.rc.aggressive[p.ID] {
			continue
		}
		delete(en.rc.aggressive, p.ID)
		if !p.Active {
			continue
		}

		succeeded := false
		for _, req := range g.Requests {
			if req.From == p.ID && req.Accepted && req.Processed {
				succeeded = true
				break
			}
		}
		if succeeded {
			continue
		}

		penalty := e.tune.Items.AggressiveDefaultPenalty
		for _, it := range p.Items {
			if it.Type == ItemAggressive && it.Used {
				penalty = it.Price
				break
			}
		}
		if err := en.ledger.ApplyAggressivePenalty(g, p, penalty); err != nil {
			continue
		}
		actions = append(actions, GameAction{
			Player:    p.ID,
			Type:      ActionAggressivePenalty,
			Amount:    penalty,
			Message:   "aggressive play with no settled persuasion",
			Timestamp: time.Now().UTC(),
		})
	}
	return actions
}

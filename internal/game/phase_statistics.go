package game

import "time"

// runStatisticsPhase deactivates bankrupt players and sweeps any residual
// balance into the pool. End-of-game detection reads its input (the active
// player count) from the state this phase leaves behind.
func (e *Engine) runStatisticsPhase(en *entry) []GameAction {
	g := en.state
	g.Phase = PhaseStatistics

	var actions []GameAction
	for _, p := range g.Players {
		if !p.Active || p.Balance > 0 {
			continue
		}
		p.Active = false
		en.ledger.ForfeitOnBankruptcy(g, p)
		actions = append(actions, GameAction{
			Player:    p.ID,
			Type:      ActionPlayerBankrupt,
			Timestamp: time.Now().UTC(),
		})
	}

	g.Phase = PhaseItem
	return actions
}

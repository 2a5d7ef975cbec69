package game

import (
	"context"
	"fmt"
	"time"
)

// applyDeferredEqualizers settles equalizer marks left by the previous
// round. If either party went inactive in between, the mark is discarded
// with no mutation.
func (e *Engine) applyDeferredEqualizers(en *entry) []GameAction {
	g := en.state
	if len(en.rc.equalizer) == 0 {
		return nil
	}
	var actions []GameAction
	// Resolve in seat order for determinism; the marks are keyed by id.
	for _, p := range g.Players {
		targetID, ok := en.rc.equalizer[p.ID]
		if !ok {
			continue
		}
		delete(en.rc.equalizer, p.ID)
		target := g.player(targetID)
		if !p.Active || target == nil || !target.Active {
			continue
		}
		before := fmt.Sprintf("%d/%d", p.Balance, target.Balance)
		each, remainder := en.ledger.EqualizeBalances(g, p, target)
		msg := fmt.Sprintf("balances %s equalized to %d/%d", before, each, each)
		if remainder > 0 {
			msg += fmt.Sprintf(", %d to pool", remainder)
		}
		actions = append(actions, GameAction{
			Player:    p.ID,
			Type:      ActionEqualizerEffect,
			Target:    target.ID,
			Amount:    each,
			Message:   msg,
			Timestamp: time.Now().UTC(),
		})
	}
	return actions
}

// runItemPhase handles purchases while the preparation window is open, and
// item usage afterwards. One item use per player per round.
func (e *Engine) runItemPhase(ctx context.Context, en *entry) []GameAction {
	g := en.state
	g.Phase = PhaseItem

	var actions []GameAction
	if en.rc.preparation {
		for _, p := range g.activePlayers() {
			actions = append(actions, e.runPurchases(ctx, en, p)...)
		}
		en.rc.preparation = false
	} else {
		for _, p := range g.activePlayers() {
			actions = append(actions, e.runItemUse(ctx, en, p)...)
		}
	}

	g.Phase = PhasePersuasion
	return actions
}

func (e *Engine) runPurchases(ctx context.Context, en *entry, p *Player) []GameAction {
	g := en.state
	var actions []GameAction
	for len(p.OwnedTypes) < e.tune.Items.MaxDistinct {
		d := e.decide(ctx, en, p, "preparation", []string{DecideBuyItem, DecideWait})
		if d.ActionType != DecideBuyItem {
			break
		}
		t := d.ItemType
		if err := e.cat.CanPurchase(p, t); err != nil {
			// Fall back to a random type the player can still buy.
			var ok bool
			t, ok = e.cat.RandomUnowned(en.rng, p)
			if !ok || e.cat.CanPurchase(p, t) != nil {
				break
			}
		}
		price, _ := e.cat.Price(t)
		if err := en.ledger.ChargeItemPurchase(g, p, price); err != nil {
			break
		}
		e.cat.Grant(p, t)
		actions = append(actions, GameAction{
			Player:    p.ID,
			Type:      ActionBuyItem,
			Amount:    price,
			ItemType:  t,
			Message:   d.PublicMessage,
			Rationale: d.Rationale,
			Timestamp: time.Now().UTC(),
		})
	}
	return actions
}

func (e *Engine) runItemUse(ctx context.Context, en *entry, p *Player) []GameAction {
	g := en.state
	if en.rc.usedItem[p.ID] {
		return nil
	}
	unused := p.unusedItems()
	if len(unused) == 0 {
		return nil
	}

	d := e.decide(ctx, en, p, "item_usage", []string{DecideUseItem, DecideWait})
	wants := d.ActionType == DecideUseItem
	if !wants && en.rng.Intn(1000) >= e.tune.Items.UsePermille {
		return nil
	}

	chosen := unused[en.rng.Intn(len(unused))].Type
	if wants && d.ItemType != "" {
		for _, it := range unused {
			if it.Type == d.ItemType {
				chosen = d.ItemType
				break
			}
		}
	}

	var others []*Player
	for _, o := range g.activePlayers() {
		if o.ID != p.ID {
			others = append(others, o)
		}
	}
	if len(others) == 0 {
		return nil
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

	item := p.markUsed(chosen)
	if item == nil {
		return nil
	}
	en.rc.usedItem[p.ID] = true
	return e.applyItemEffect(en, p, item, target, d)
}

func (e *Engine) applyItemEffect(en *entry, user *Player, item *Item, target *Player, d Decision) []GameAction {
	g := en.state
	now := time.Now().UTC()
	use := GameAction{
		Player:    user.ID,
		Type:      ActionUseItem,
		ItemType:  item.Type,
		Target:    target.ID,
		Message:   d.PublicMessage,
		Rationale: d.Rationale,
		Timestamp: now,
	}
	actions := []GameAction{use}

	switch item.Type {
	case ItemAggressive:
		en.rc.aggressive[user.ID] = true
		if en.rc.shielded[target.ID] {
			actions[0].Result = "blocked_by_shield"
			break
		}
		if amount := en.ledger.ApplyAggressiveTax(g, target, user, e.tune.Items.AggressiveTaxPercent); amount > 0 {
			actions = append(actions, GameAction{
				Player:    user.ID,
				Type:      ActionAggressiveTax,
				Target:    target.ID,
				Amount:    amount,
				Timestamp: now,
			})
		}

	case ItemShield:
		en.rc.shielded[user.ID] = true
		actions[0].Target = ""

	case ItemIntel:
		actions = append(actions, GameAction{
			Player:    user.ID,
			Type:      ActionIntelReveal,
			Target:    target.ID,
			Message:   intelFragment(target.Prompt),
			Timestamp: now,
		})

	case ItemEqualizer:
		// The equalizer ignores the decision target: it always pairs the
		// user with the richest active opponent, settled next round.
		// Seat order breaks balance ties.
		var richest *Player
		for _, o := range g.activePlayers() {
			if o.ID == user.ID {
				continue
			}
			if richest == nil || o.Balance > richest.Balance {
				richest = o
			}
		}
		en.rc.equalizer[user.ID] = richest.ID
		actions[0].Target = richest.ID
	}
	return actions
}

package game

import (
	"math/rand"

	"merchants.ai/internal/game/tuning"
)

// Catalogue holds the purchasable item types and their fixed prices.
type Catalogue struct {
	prices map[ItemType]int
	order  []ItemType

	maxDistinct int
}

func NewCatalogue(t tuning.ItemTuning) *Catalogue {
	return &Catalogue{
		prices: map[ItemType]int{
			ItemAggressive: t.AggressivePrice,
			ItemShield:     t.ShieldPrice,
			ItemIntel:      t.IntelPrice,
			ItemEqualizer:  t.EqualizerPrice,
		},
		order:       []ItemType{ItemAggressive, ItemShield, ItemIntel, ItemEqualizer},
		maxDistinct: t.MaxDistinct,
	}
}

func (c *Catalogue) Price(t ItemType) (int, bool) {
	p, ok := c.prices[t]
	return p, ok
}

func (c *Catalogue) Types() []ItemType {
	return append([]ItemType(nil), c.order...)
}

// RandomUnowned picks a random type the player does not hold yet. Returns
// false when every type is already owned.
func (c *Catalogue) RandomUnowned(rng *rand.Rand, p *Player) (ItemType, bool) {
	var candidates []ItemType
	for _, t := range c.order {
		if !p.OwnedTypes[t] {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// CanPurchase enforces the purchase rules shared by every entry point:
// a known type, not already owned, under the distinct-type cap, affordable.
func (c *Catalogue) CanPurchase(p *Player, t ItemType) error {
	price, ok := c.prices[t]
	if !ok {
		return ErrValidation
	}
	if p.OwnedTypes[t] {
		return ErrValidation
	}
	if len(p.OwnedTypes) >= c.maxDistinct {
		return ErrValidation
	}
	if p.Balance < price {
		return ErrInsufficientBalance
	}
	return nil
}

// Grant records the purchase on the player. Money movement is the ledger's
// job and must have happened already.
func (c *Catalogue) Grant(p *Player, t ItemType) Item {
	it := Item{Type: t, Price: c.prices[t]}
	p.Items = append(p.Items, it)
	if p.OwnedTypes == nil {
		p.OwnedTypes = map[ItemType]bool{}
	}
	p.OwnedTypes[t] = true
	return it
}

// intelFragment exposes the leading third of a strategy prompt. Purely
// informational: the intel item mutates no game state.
func intelFragment(prompt string) string {
	if prompt == "" {
		return ""
	}
	r := []rune(prompt)
	return string(r[:len(r)/3])
}

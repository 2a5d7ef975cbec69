package game

import "log"

// Ledger owns every legal money movement inside one game. Each operation is
// atomic with respect to that game (the engine holds the per-game lock) and
// re-verifies the conservation invariant afterwards. PayoutWinner is the one
// operation allowed to break it.
type Ledger struct {
	log *log.Logger

	// OnViolation, when set, receives conservation breaches so the engine
	// can append a diagnostic action. The breach is reported, not healed.
	OnViolation func(g *GameState, got, want int)
}

func NewLedger(logger *log.Logger) *Ledger {
	return &Ledger{log: logger}
}

func (l *Ledger) ChargeEntryFee(g *GameState, p *Player, fee int) error {
	if p.Balance < fee {
		return ErrInsufficientBalance
	}
	p.Balance -= fee
	g.PrizePool += fee
	return nil
}

func (l *Ledger) ChargeItemPurchase(g *GameState, p *Player, price int) error {
	if p.Balance < price {
		return ErrInsufficientBalance
	}
	p.Balance -= price
	g.PrizePool += price
	l.verify(g)
	return nil
}

// ApplyAggressiveTax moves pct percent of the target's current balance to
// the user. Returns the amount moved (possibly zero for small balances).
func (l *Ledger) ApplyAggressiveTax(g *GameState, target, user *Player, pct int) int {
	amount := target.Balance * pct / 100
	if amount <= 0 {
		return 0
	}
	target.Balance -= amount
	user.Balance += amount
	l.verify(g)
	return amount
}

func (l *Ledger) ApplyAggressivePenalty(g *GameState, p *Player, amount int) error {
	if p.Balance < amount {
		return ErrInsufficientBalance
	}
	p.Balance -= amount
	g.PrizePool += amount
	l.verify(g)
	return nil
}

// SettlePersuasion pays an accepted request from target to requester. A
// shield halves the payment (floor), never below 1.
func (l *Ledger) SettlePersuasion(g *GameState, target, requester *Player, amount int, shielded bool) (int, error) {
	paid := amount
	if shielded {
		paid = amount / 2
		if paid < 1 {
			paid = 1
		}
	}
	if target.Balance < paid {
		return 0, ErrInsufficientBalance
	}
	target.Balance -= paid
	requester.Balance += paid
	l.verify(g)
	return paid, nil
}

// EqualizeBalances sets both parties to floor((a+b)/2). An odd total leaves
// one token over; it is swept into the prize pool so the economy stays
// exactly conserved.
func (l *Ledger) EqualizeBalances(g *GameState, a, b *Player) (each int, remainder int) {
	total := a.Balance + b.Balance
	each = total / 2
	remainder = total - each*2
	a.Balance = each
	b.Balance = each
	g.PrizePool += remainder
	l.verify(g)
	return each, remainder
}

// ForfeitOnBankruptcy sweeps whatever the player still holds (expected zero)
// into the pool and zeroes the balance. Call after clearing Active.
func (l *Ledger) ForfeitOnBankruptcy(g *GameState, p *Player) int {
	swept := 0
	if p.Balance > 0 {
		swept = p.Balance
		g.PrizePool += swept
	}
	p.Balance = 0
	l.verify(g)
	return swept
}

// PayoutWinner folds the prize pool into the winner's balance minus the tax
// fraction, which leaves the tracked economy permanently. No conservation
// check afterwards: this is the documented exception.
func (l *Ledger) PayoutWinner(g *GameState, winner *Player, taxPermille int) int {
	total := winner.Balance + g.PrizePool
	final := total * (1000 - taxPermille) / 1000
	winner.Balance = final
	g.PrizePool = 0
	return final
}

// Verify recomputes the invariant and reports a breach without correcting
// anything.
func (l *Ledger) Verify(g *GameState) error {
	got := g.PrizePool
	for _, p := range g.Players {
		if p.Active {
			got += p.Balance
		}
	}
	if got == g.TotalResources {
		return nil
	}
	return &InvariantError{GameID: g.ID, Got: got, Want: g.TotalResources}
}

func (l *Ledger) verify(g *GameState) {
	if err := l.Verify(g); err != nil {
		if l.log != nil {
			l.log.Printf("WARN %v", err)
		}
		if l.OnViolation != nil {
			ie := err.(*InvariantError)
			l.OnViolation(g, ie.Got, ie.Want)
		}
	}
}

package game

// roundContext carries per-game, per-round item bookkeeping. It is owned by
// the engine entry for one game and passed explicitly to the phase
// processors. All cross-player references are opaque ids resolved through
// the game's player index.
type roundContext struct {
	// preparation is the purchase window: open at creation, closed for
	// good once the first item phase completes.
	preparation bool

	// usedItem tracks the one-item-per-round rule; reset when a round starts.
	usedItem map[string]bool

	// shielded marks shield users for the remainder of the round; cleared
	// at the end of settlement whether or not the shield was triggered.
	shielded map[string]bool

	// aggressive marks aggressive users awaiting the settlement penalty
	// check; consumed during settlement.
	aggressive map[string]bool

	// equalizer maps user id to chosen opponent id; consumed at the start
	// of the following round.
	equalizer map[string]string
}

func newRoundContext() *roundContext {
	return &roundContext{
		preparation: true,
		usedItem:    map[string]bool{},
		shielded:    map[string]bool{},
		aggressive:  map[string]bool{},
		equalizer:   map[string]string{},
	}
}

func (rc *roundContext) resetRound() {
	rc.usedItem = map[string]bool{}
}

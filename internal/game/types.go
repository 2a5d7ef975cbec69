package game

import "time"

type Phase string

const (
	PhaseItem       Phase = "item"
	PhasePersuasion Phase = "persuasion"
	PhaseSettlement Phase = "settlement"
	PhaseStatistics Phase = "statistics"
	PhaseEnded      Phase = "ended"
)

type ItemType string

const (
	ItemAggressive ItemType = "aggressive"
	ItemShield     ItemType = "shield"
	ItemIntel      ItemType = "intel"
	ItemEqualizer  ItemType = "equalizer"
)

// Item is created on purchase and immutable afterwards except for Used,
// which flips exactly once.
type Item struct {
	Type  ItemType `json:"type"`
	Price int      `json:"price"`
	Used  bool     `json:"used"`
}

// Player is never deleted from a game; elimination only clears Active.
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Prompt  string `json:"prompt,omitempty"`
	Balance int    `json:"balance"`
	Items   []Item `json:"items"`
	Active  bool   `json:"active"`
	IsAgent bool   `json:"is_agent"`

	// Distinct item types purchased over the whole game. Capped at
	// MaxDistinctItems regardless of how many items were consumed.
	OwnedTypes map[ItemType]bool `json:"owned_types,omitempty"`
}

func (p *Player) unusedItems() []Item {
	var out []Item
	for _, it := range p.Items {
		if !it.Used {
			out = append(out, it)
		}
	}
	return out
}

func (p *Player) markUsed(t ItemType) *Item {
	for i := range p.Items {
		if p.Items[i].Type == t && !p.Items[i].Used {
			p.Items[i].Used = true
			return &p.Items[i]
		}
	}
	return nil
}

// PersuasionRequest lives for exactly one round: created during the
// persuasion phase, settled (or abandoned) during the same round's
// settlement phase.
type PersuasionRequest struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    int       `json:"amount"`
	Message   string    `json:"message,omitempty"`
	Accepted  bool      `json:"accepted"`
	Processed bool      `json:"processed"`
	CreatedAt time.Time `json:"created_at"`
}

// Action types appended to the game log.
const (
	ActionBuyItem           = "buy_item"
	ActionUseItem           = "use_item"
	ActionPersuade          = "persuade"
	ActionTransfer          = "transfer"
	ActionAggressiveTax     = "aggressive_tax"
	ActionAggressivePenalty = "aggressive_penalty"
	ActionEqualizerEffect   = "equalizer_effect"
	ActionIntelReveal       = "intel_reveal"
	ActionPlayerBankrupt    = "player_bankrupt"
	ActionGameEnd           = "game_end"
	ActionInvariantBreach   = "invariant_breach"
)

// GameAction is an immutable event record. It is the only channel through
// which transport, persistence and analytics learn what happened.
type GameAction struct {
	Player    string    `json:"player_id"`
	Type      string    `json:"action_type"`
	Target    string    `json:"target_player,omitempty"`
	Amount    int       `json:"amount,omitempty"`
	ItemType  ItemType  `json:"item_type,omitempty"`
	Message   string    `json:"message,omitempty"`
	Rationale string    `json:"rationale,omitempty"`
	Result    string    `json:"result,omitempty"`
	Timestamp time.Time `json:"ts"`
}

type GameState struct {
	ID    string  `json:"game_id"`
	Phase Phase   `json:"phase"`
	Round int     `json:"round"`
	Cap   int     `json:"round_cap"`
	Ended bool    `json:"ended"`
	Winner string `json:"winner,omitempty"`

	Players []*Player `json:"players"`

	PrizePool int `json:"prize_pool"`
	// TotalResources is snapshotted at creation and must equal
	// sum(active balances) + PrizePool after every phase, until the final
	// payout deliberately breaks it.
	TotalResources int `json:"total_resources"`

	Requests []*PersuasionRequest `json:"requests,omitempty"`
	Actions  []GameAction         `json:"actions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *GameState) player(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *GameState) activePlayers() []*Player {
	var out []*Player
	for _, p := range g.Players {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// Snapshot deep-copies the state so callers (providers, transports) can
// never alias engine-owned memory.
func (g *GameState) Snapshot() GameState {
	out := *g
	out.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		cp := *p
		cp.Items = append([]Item(nil), p.Items...)
		if p.OwnedTypes != nil {
			cp.OwnedTypes = make(map[ItemType]bool, len(p.OwnedTypes))
			for k, v := range p.OwnedTypes {
				cp.OwnedTypes[k] = v
			}
		}
		out.Players[i] = &cp
	}
	out.Requests = make([]*PersuasionRequest, len(g.Requests))
	for i, r := range g.Requests {
		cr := *r
		out.Requests[i] = &cr
	}
	out.Actions = append([]GameAction(nil), g.Actions...)
	return out
}

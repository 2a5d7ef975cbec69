package protocol

import "merchants.ai/internal/game"

// HelloMsg opens an observer stream for one game. FromIndex resumes the
// action log from a previous read offset.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	GameID          string `json:"game_id"`
	FromIndex       int    `json:"from_index,omitempty"`
}

type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	GameID          string         `json:"game_id"`
	State           game.GameState `json:"state"`
}

type StateMsg struct {
	Type   string         `json:"type"`
	GameID string         `json:"game_id"`
	State  game.GameState `json:"state"`
}

// ActionsMsg carries an incremental slice of the append-only action log.
// Next is the offset to resume from.
type ActionsMsg struct {
	Type    string            `json:"type"`
	GameID  string            `json:"game_id"`
	From    int               `json:"from"`
	Next    int               `json:"next"`
	Actions []game.GameAction `json:"actions"`
}

type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

package protocol

import (
	"errors"

	"merchants.ai/internal/game"
)

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Game routing/state.
	ErrGameNotFound = "E_GAME_NOT_FOUND"
	ErrGameEnded    = "E_GAME_ENDED"

	// Rule layer.
	ErrBadRequest   = "E_BAD_REQUEST"
	ErrInvalidPhase = "E_INVALID_PHASE"
	ErrNoBalance    = "E_NO_BALANCE"
	ErrInvariant    = "E_INVARIANT"
	ErrDecision     = "E_DECISION"
	ErrInternal     = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrGameNotFound:    {},
	ErrGameEnded:       {},
	ErrBadRequest:      {},
	ErrInvalidPhase:    {},
	ErrNoBalance:       {},
	ErrInvariant:       {},
	ErrDecision:        {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// CodeFor maps engine errors onto wire codes.
func CodeFor(err error) string {
	var ie *game.InvariantError
	switch {
	case errors.Is(err, game.ErrNotFound):
		return ErrGameNotFound
	case errors.Is(err, game.ErrValidation):
		return ErrBadRequest
	case errors.Is(err, game.ErrInvalidPhase):
		return ErrInvalidPhase
	case errors.Is(err, game.ErrInsufficientBalance):
		return ErrNoBalance
	case errors.As(err, &ie):
		return ErrInvariant
	default:
		return ErrInternal
	}
}

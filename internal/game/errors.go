package game

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInvalidPhase        = errors.New("operation not legal in current phase")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// InvariantError reports a conservation breach. It is surfaced as a
// warning-level diagnostic and never halts a game; the pool is not
// auto-corrected.
type InvariantError struct {
	GameID string
	Got    int
	Want   int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("game %s: resource invariant violated: got %d, want %d", e.GameID, e.Got, e.Want)
}

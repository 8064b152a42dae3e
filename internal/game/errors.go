package game

import (
	"errors"
	"fmt"

	"github.com/park285/cheese-chess/internal/rules"
)

var (
	// ErrIllegalMove covers an empty origin, the wrong colour to move, a
	// destination outside the legal set, or any move once the game is over.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvalidPromotionRequest is returned when no promotion is pending or
	// the requested kind is not a promotion choice.
	ErrInvalidPromotionRequest = errors.New("invalid promotion request")
	// ErrUndoUnavailable is returned for an empty history or mid-promotion.
	ErrUndoUnavailable = errors.New("undo unavailable")
)

// MoveError describes a rejected move. It unwraps to ErrIllegalMove.
type MoveError struct {
	From   rules.Position
	To     rules.Position
	Reason string
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("%s: %s%s: %s", ErrIllegalMove, e.From, e.To, e.Reason)
}

func (e *MoveError) Unwrap() error { return ErrIllegalMove }

func illegal(from, to rules.Position, format string, args ...any) error {
	return &MoveError{From: from, To: to, Reason: fmt.Sprintf(format, args...)}
}

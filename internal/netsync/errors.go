package netsync

import (
	"errors"

	"github.com/park285/cheese-chess/internal/game"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/store"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

// ErrSyncGap means a move frame skipped plies; the peer resyncs.
var ErrSyncGap = errors.New("move frame skipped plies")

type errorKind struct {
	target    error
	code      string
	key       string
	fallback  string
	retryable bool
}

var errorKinds = []errorKind{
	{store.ErrGameNotFound, chessdto.CodeGameNotFound, "game.not_found", "game not found", false},
	{store.ErrGameFull, chessdto.CodeGameFull, "game.full", "game is full", false},
	{store.ErrGameNotStarted, chessdto.CodeGameNotStarted, "game.not_started", "waiting for an opponent", true},
	{store.ErrGameFinished, chessdto.CodeGameFinished, "game.finished", "game is over", false},
	{store.ErrNotInGame, chessdto.CodeNotInGame, "game.not_in_game", "not a player in this game", false},
	{store.ErrNotYourTurn, chessdto.CodeNotYourTurn, "game.not_your_turn", "not your turn", false},
	{store.ErrConcurrentUpdate, chessdto.CodeConcurrentUpdate, "game.concurrent", "game changed concurrently", true},
	{store.ErrTooManyGames, chessdto.CodeTooManyGames, "game.too_many", "too many games", true},
	{store.ErrInvalidArgs, chessdto.CodeBadRequest, "request.bad", "bad request", false},
	{game.ErrInvalidPromotionRequest, chessdto.CodeInvalidPromotion, "move.promotion_invalid", "invalid promotion", false},
	{game.ErrUndoUnavailable, chessdto.CodeUndoUnavailable, "move.undo_unavailable", "nothing to undo", false},
	{game.ErrIllegalMove, chessdto.CodeIllegalMove, "move.illegal_plain", "illegal move", false},
}

// DomainError converts err into its wire form, rendering the message from
// cat. code is the game code used by the templates.
func DomainError(err error, code string, cat *msgcat.Catalog) *chessdto.DomainError {
	if err == nil {
		return nil
	}
	var de *chessdto.DomainError
	if errors.As(err, &de) {
		return de
	}
	var me *game.MoveError
	if errors.As(err, &me) {
		data := map[string]any{"From": me.From.String(), "To": me.To.String(), "Reason": me.Reason}
		return &chessdto.DomainError{
			Code:    chessdto.CodeIllegalMove,
			Message: cat.Text("move.illegal", data, me.Error()),
		}
	}
	data := map[string]any{"Code": code, "Reason": err.Error(), "Kind": ""}
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return &chessdto.DomainError{Code: k.code, Message: cat.Text(k.key, data, k.fallback), Retryable: k.retryable}
		}
	}
	return &chessdto.DomainError{
		Code:    chessdto.CodeInternal,
		Message: cat.Text("request.internal", data, "internal error"),
	}
}

func badRequest(reason string, cat *msgcat.Catalog) *chessdto.DomainError {
	return &chessdto.DomainError{
		Code:    chessdto.CodeBadRequest,
		Message: cat.Text("request.bad", map[string]any{"Reason": reason}, "bad request: "+reason),
	}
}

// Package archive keeps finished online games with their PGN.
package archive

import (
	"context"
	"errors"

	"github.com/park285/cheese-chess/internal/domain"
)

var ErrDuplicateGame = errors.New("chess game already archived")

// Repository stores finished games. Games are keyed by their online code, so
// saving the same code twice yields ErrDuplicateGame.
type Repository interface {
	InsertGame(ctx context.Context, game *domain.ChessGame) (int64, error)
	GetRecentGames(ctx context.Context, playerID string, limit int) ([]*domain.ChessGame, error)
	GetGameByCode(ctx context.Context, code string) (*domain.ChessGame, error)
	Close() error
}

const defaultRecentLimit = 10

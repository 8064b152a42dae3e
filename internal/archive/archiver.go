package archive

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/internal/game"
	"github.com/park285/cheese-chess/internal/obslog"
	"github.com/park285/cheese-chess/internal/store"
)

// Archiver turns finished store games into archive rows.
type Archiver struct {
	repo Repository
	log  *zap.Logger
}

func NewArchiver(repo Repository, log *zap.Logger) *Archiver {
	if log == nil {
		log = obslog.L()
	}
	return &Archiver{repo: repo, log: log}
}

func (a *Archiver) Repository() Repository { return a.repo }

// Archive saves g if it is finished. Archiving the same code again is a no-op
// that returns id 0.
func (a *Archiver) Archive(ctx context.Context, g *store.Game) (int64, error) {
	if a == nil || a.repo == nil || g == nil || g.Status != store.StatusFinished {
		return 0, nil
	}
	rec, err := FromStore(g)
	if err != nil {
		return 0, err
	}
	id, err := a.repo.InsertGame(ctx, rec)
	if errors.Is(err, ErrDuplicateGame) {
		a.log.Debug("chess_archive_duplicate", zap.String("game_id", g.ID))
		return 0, nil
	}
	if err != nil {
		a.log.Warn("chess_archive_failed", zap.String("game_id", g.ID), zap.Error(err))
		return 0, err
	}
	a.log.Info("chess_archive_saved",
		zap.String("game_id", g.ID),
		zap.Int64("archive_id", id),
		zap.String("result", rec.Result),
		zap.Int("plies", len(rec.MovesUCI)),
	)
	return id, nil
}

// FromStore converts a store game, including its PGN.
func FromStore(g *store.Game) (*domain.ChessGame, error) {
	uci := make([]string, 0, len(g.Moves))
	for i, rec := range g.Moves {
		m, err := game.FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("game %s move %d: %w", g.ID, i+1, err)
		}
		uci = append(uci, m.String())
	}
	duration := g.UpdatedAt.Sub(g.CreatedAt)
	if duration < 0 {
		duration = 0
	}
	out := &domain.ChessGame{
		Code:         g.ID,
		WhiteID:      g.WhiteID,
		WhiteName:    g.WhiteName,
		BlackID:      g.BlackID,
		BlackName:    g.BlackName,
		Result:       g.Outcome,
		ResultMethod: g.Method,
		MovesUCI:     uci,
		MovesSAN:     append([]string(nil), g.SAN...),
		StartedAt:    g.CreatedAt,
		EndedAt:      g.UpdatedAt,
		Duration:     duration,
	}
	out.PGN = BuildPGN(out)
	return out, nil
}

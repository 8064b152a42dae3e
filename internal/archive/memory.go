package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/park285/cheese-chess/internal/domain"
)

// memrepo is used when no DATABASE_URL is configured. Contents do not survive
// a restart.
type memrepo struct {
	mu sync.RWMutex

	nextID int64

	gamesByCode   map[string]*domain.ChessGame
	gamesByPlayer map[string][]*domain.ChessGame // playerID -> slice (append, latest last)
}

func NewMemoryRepository() Repository {
	return &memrepo{
		gamesByCode:   make(map[string]*domain.ChessGame),
		gamesByPlayer: make(map[string][]*domain.ChessGame),
	}
}

func (m *memrepo) InsertGame(ctx context.Context, game *domain.ChessGame) (int64, error) {
	if game == nil || game.Code == "" {
		return 0, ErrDuplicateGame
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.gamesByCode[game.Code]; exists {
		return 0, ErrDuplicateGame
	}

	m.nextID++
	stored := clone(game)
	stored.ID = m.nextID

	m.gamesByCode[game.Code] = stored
	for _, p := range []string{game.WhiteID, game.BlackID} {
		if p != "" {
			m.gamesByPlayer[p] = append(m.gamesByPlayer[p], stored)
		}
	}
	return stored.ID, nil
}

func (m *memrepo) GetRecentGames(ctx context.Context, playerID string, limit int) ([]*domain.ChessGame, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.gamesByPlayer[playerID]
	items := make([]*domain.ChessGame, 0, len(list))
	for _, g := range list {
		items = append(items, clone(g))
	}
	// EndedAt desc, then ID desc
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memrepo) GetGameByCode(ctx context.Context, code string) (*domain.ChessGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.gamesByCode[code]; ok {
		return clone(g), nil
	}
	return nil, nil
}

func (m *memrepo) Close() error { return nil }

func clone(g *domain.ChessGame) *domain.ChessGame {
	c := *g
	c.MovesUCI = append([]string(nil), g.MovesUCI...)
	c.MovesSAN = append([]string(nil), g.MovesSAN...)
	return &c
}

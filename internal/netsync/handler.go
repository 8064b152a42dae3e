package netsync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/archive"
	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/internal/store"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

// NewHandler routes:
//
//	/ws                  websocket sync endpoint
//	/games/live?code=    current state of an online game
//	/games?player=&limit= archived games of a player
//	/healthz
func NewHandler(h *Hub, repo archive.Repository) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/games/live", h.serveLive)
	mux.HandleFunc("/games", func(w http.ResponseWriter, r *http.Request) { h.serveArchive(w, r, repo) })
	mux.HandleFunc("/healthz", h.serveHealth)
	return mux
}

// LiveGame is the /games/live payload.
type LiveGame struct {
	Game    string                 `json:"game"`
	Status  string                 `json:"status"`
	Players []chessdto.Player      `json:"players"`
	Winner  string                 `json:"winner,omitempty"`
	State   *chessdto.SessionState `json:"state"`
}

func (h *Hub) serveLive(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		writeJSON(w, http.StatusBadRequest, badRequest("code is required", h.cat))
		return
	}
	g, err := h.store.Load(r.Context(), code)
	if err != nil {
		h.writeError(w, err, code)
		return
	}
	sess, err := g.Session()
	if err != nil {
		h.writeError(w, err, code)
		return
	}
	writeJSON(w, http.StatusOK, LiveGame{
		Game:    g.ID,
		Status:  string(g.Status),
		Players: g.Players(),
		Winner:  g.Winner,
		State:   sess.Snapshot().DTO(),
	})
}

func (h *Hub) serveArchive(w http.ResponseWriter, r *http.Request, repo archive.Repository) {
	player := strings.TrimSpace(r.URL.Query().Get("player"))
	if player == "" {
		writeJSON(w, http.StatusBadRequest, badRequest("player is required", h.cat))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if repo == nil {
		writeJSON(w, http.StatusOK, []chessdto.ChessGame{})
		return
	}
	games, err := repo.GetRecentGames(r.Context(), player, limit)
	if err != nil {
		h.log.Error("chess_archive_query_failed", zap.String("player_id", player), zap.Error(err))
		h.writeError(w, err, "")
		return
	}
	out := make([]chessdto.ChessGame, 0, len(games))
	for _, g := range games {
		out = append(out, archivedDTO(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Hub) serveHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "redis unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Hub) writeError(w http.ResponseWriter, err error, code string) {
	de := DomainError(err, code, h.cat)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrGameNotFound):
		status = http.StatusNotFound
	case de.Code == chessdto.CodeIllegalMove:
		status = http.StatusConflict
	}
	writeJSON(w, status, de)
}

func archivedDTO(g *domain.ChessGame) chessdto.ChessGame {
	return chessdto.ChessGame{
		ID:           g.ID,
		Code:         g.Code,
		WhiteID:      g.WhiteID,
		WhiteName:    g.WhiteName,
		BlackID:      g.BlackID,
		BlackName:    g.BlackName,
		Result:       g.Result,
		ResultMethod: g.ResultMethod,
		MovesUCI:     g.MovesUCI,
		MovesSAN:     g.MovesSAN,
		PGN:          g.PGN,
		StartedAt:    g.StartedAt,
		EndedAt:      g.EndedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

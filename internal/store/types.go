package store

import (
    "time"

    "github.com/park285/cheese-chess/internal/game"
    "github.com/park285/cheese-chess/internal/rules"
    "github.com/park285/cheese-chess/pkg/chessdto"
)

// Status represents an online game lifecycle state.
type Status string

const (
    StatusWaiting  Status = "waiting"
    StatusPlaying  Status = "playing"
    StatusFinished Status = "finished"
)

// Game is stored as JSON in Redis under chess:game:<code>.
type Game struct {
    ID        string                `json:"id"`
    WhiteID   string                `json:"white_id"`
    WhiteName string                `json:"white_name,omitempty"`
    BlackID   string                `json:"black_id,omitempty"`
    BlackName string                `json:"black_name,omitempty"`
    Moves     []chessdto.MoveRecord `json:"moves"`
    SAN       []string              `json:"san"`
    Turn      string                `json:"turn"`
    Status    Status                `json:"status"`
    // Winner is the player id of the mating side.
    Winner    string                `json:"winner,omitempty"`
    // Outcome is white, black or draw once finished.
    Outcome   string                `json:"outcome,omitempty"`
    Method    string                `json:"method,omitempty"`
    CreatedAt time.Time             `json:"created_at"`
    UpdatedAt time.Time             `json:"updated_at"`
}

// ColorOf reports which side playerID holds.
func (g *Game) ColorOf(playerID string) (rules.Color, bool) {
    switch {
    case playerID == "":
        return rules.White, false
    case g.WhiteID == playerID:
        return rules.White, true
    case g.BlackID == playerID:
        return rules.Black, true
    }
    return rules.White, false
}

// Opponent returns the other participant's id, or "".
func (g *Game) Opponent(playerID string) string {
    if g.WhiteID == playerID { return g.BlackID }
    if g.BlackID == playerID { return g.WhiteID }
    return ""
}

// Players lists the seated participants.
func (g *Game) Players() []chessdto.Player {
    out := []chessdto.Player{{ID: g.WhiteID, Name: g.WhiteName, Color: rules.White.String()}}
    if g.BlackID != "" {
        out = append(out, chessdto.Player{ID: g.BlackID, Name: g.BlackName, Color: rules.Black.String()})
    }
    return out
}

// Session rebuilds the engine state by replaying the stored move list.
func (g *Game) Session(opts ...game.Option) (*game.Session, error) {
    return game.ReplayRecords(g.Moves, opts...)
}

// Errors
var (
    ErrInvalidArgs       = errf("invalid arguments")
    ErrGameNotFound      = errf("game not found or expired")
    ErrGameFull          = errf("game already has two players")
    ErrGameNotStarted    = errf("waiting for an opponent")
    ErrGameFinished      = errf("game already finished")
    ErrNotInGame         = errf("player is not in this game")
    ErrNotYourTurn       = errf("not your turn")
    ErrConcurrentUpdate  = errf("game was updated concurrently")
    ErrTooManyGames      = errf("too many active games")
)

type staticErr string
func (e staticErr) Error() string { return string(e) }
func errf(s string) error { return staticErr(s) }

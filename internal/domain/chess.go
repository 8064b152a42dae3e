package domain

import "time"

// ChessGame is a finished online game as kept in the archive.
type ChessGame struct {
	ID           int64
	Code         string
	WhiteID      string
	WhiteName    string
	BlackID      string
	BlackName    string
	// Result is white, black or draw.
	Result       string
	ResultMethod string
	MovesUCI     []string
	MovesSAN     []string
	PGN          string
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
}

// Involves reports whether playerID sat at either side.
func (g *ChessGame) Involves(playerID string) bool {
	return playerID != "" && (g.WhiteID == playerID || g.BlackID == playerID)
}

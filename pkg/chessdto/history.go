package chessdto

import "time"

// ChessGame is the wire form of an archived game.
type ChessGame struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	WhiteID      string    `json:"whiteId"`
	WhiteName    string    `json:"whiteName,omitempty"`
	BlackID      string    `json:"blackId"`
	BlackName    string    `json:"blackName,omitempty"`
	Result       string    `json:"result"`
	ResultMethod string    `json:"resultMethod"`
	MovesUCI     []string  `json:"movesUci"`
	MovesSAN     []string  `json:"movesSan"`
	PGN          string    `json:"pgn"`
	StartedAt    time.Time `json:"startedAt"`
	EndedAt      time.Time `json:"endedAt"`
}

package chessdto

type MaterialScore struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// CapturedPieces lists captured piece kinds by the colour that lost them.
type CapturedPieces struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

type PieceState struct {
	ID       string `json:"id"`
	Square   string `json:"square,omitempty"`
	Kind     string `json:"kind"`
	Color    string `json:"color"`
	HasMoved bool   `json:"hasMoved"`
}

// SessionState is a read-only observation of a game session.
type SessionState struct {
	FEN              string         `json:"fen"`
	Turn             string         `json:"turn"`
	State            string         `json:"state"`
	InCheck          bool           `json:"inCheck"`
	Checkmated       bool           `json:"checkmated"`
	Stalemated       bool           `json:"stalemated"`
	PendingPromotion string         `json:"pendingPromotion,omitempty"`
	Selected         string         `json:"selected,omitempty"`
	Targets          []string       `json:"targets,omitempty"`
	LocalColor       string         `json:"localColor,omitempty"`
	LastMove         *MoveRecord    `json:"lastMove,omitempty"`
	Pieces           []PieceState   `json:"pieces"`
	MovesUCI         []string       `json:"movesUci"`
	MovesSAN         []string       `json:"movesSan"`
	MoveCount        int            `json:"moveCount"`
	Material         MaterialScore  `json:"material"`
	Captured         CapturedPieces `json:"captured"`
}

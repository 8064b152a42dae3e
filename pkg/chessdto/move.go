package chessdto

// MoveRecord is the serializable form of one completed move. Squares are
// algebraic ("e4"); Promotion is a lower-case piece name or empty.
type MoveRecord struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Promotion   string `json:"promotion,omitempty"`
	IsEnPassant bool   `json:"isEnPassant"`
	IsCastling  bool   `json:"isCastling"`
}

// MoveSummary is what a caller learns after a move request.
type MoveSummary struct {
	Move     *MoveRecord   `json:"move,omitempty"`
	SAN      string        `json:"san,omitempty"`
	Captured *PieceState   `json:"captured,omitempty"`
	State    *SessionState `json:"state"`
}

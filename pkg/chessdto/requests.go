package chessdto

// Frame types exchanged over the sync websocket.
const (
	FrameSync  = "sync"
	FrameMove  = "move"
	FrameError = "error"
	FrameJoin  = "join"
)

// ClientFrame is sent by a peer. Only "move" frames are accepted.
type ClientFrame struct {
	Type string      `json:"type"`
	Move *MoveRecord `json:"move,omitempty"`
}

// ServerFrame is sent by the hub.
//
// sync: Color, Players and the full Moves list for catch-up.
// move: Move (engine-resolved), its Ply (1-based), SAN and Status of the
// game record.
// join: Players after the opponent arrived.
// error: Error.
type ServerFrame struct {
	Type    string       `json:"type"`
	Game    string       `json:"game"`
	Color   string       `json:"color,omitempty"`
	Players []Player     `json:"players,omitempty"`
	Moves   []MoveRecord `json:"moves,omitempty"`
	Move    *MoveRecord  `json:"move,omitempty"`
	Ply     int          `json:"ply,omitempty"`
	SAN     string       `json:"san,omitempty"`
	Status  string       `json:"status,omitempty"`
	Winner  string       `json:"winner,omitempty"`
	Error   *DomainError `json:"error,omitempty"`
}

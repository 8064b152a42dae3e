package game

import (
	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

// Snapshot is a read-only copy of the session state. Nothing in it aliases
// the session.
type Snapshot struct {
	Board            *rules.Board
	Turn             rules.Color
	State            State
	Status           rules.Status
	LastMove         *rules.Move
	PendingPromotion *rules.Position
	Selected         *rules.Position
	Targets          []rules.Position
	LocalColor       *rules.Color
	History          []rules.Move
	SAN              []string
	Captured         []rules.Piece
	FEN              string
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Board:    s.board.Clone(),
		Turn:     s.turn,
		State:    s.state,
		Status:   s.status,
		Targets:  append([]rules.Position(nil), s.targets...),
		History:  append([]rules.Move(nil), s.history...),
		SAN:      append([]string(nil), s.san...),
		Captured: append([]rules.Piece(nil), s.captured...),
		FEN:      rules.FEN(s.board, s.turn, s.last, s.halfmove, s.fullmove),
	}
	if s.last != nil && len(s.history) > 0 {
		m := *s.last
		snap.LastMove = &m
	}
	if s.pending != nil {
		to := s.pending.To
		snap.PendingPromotion = &to
	}
	if s.selected != nil {
		sel := *s.selected
		snap.Selected = &sel
	}
	if s.local != nil {
		c := *s.local
		snap.LocalColor = &c
	}
	return snap
}

var materialValue = map[rules.PieceKind]int{
	rules.Pawn: 1, rules.Knight: 3, rules.Bishop: 3, rules.Rook: 5, rules.Queen: 9,
}

// DTO converts the snapshot to its wire form.
func (s Snapshot) DTO() *chessdto.SessionState {
	out := &chessdto.SessionState{
		FEN:        s.FEN,
		Turn:       s.Turn.String(),
		State:      s.State.String(),
		InCheck:    s.Status.InCheck,
		Checkmated: s.Status.Checkmated,
		Stalemated: s.Status.Stalemated,
		MovesSAN:   append([]string{}, s.SAN...),
		MoveCount:  len(s.History),
	}
	if s.PendingPromotion != nil {
		out.PendingPromotion = s.PendingPromotion.String()
	}
	if s.Selected != nil {
		out.Selected = s.Selected.String()
	}
	for _, t := range s.Targets {
		out.Targets = append(out.Targets, t.String())
	}
	if s.LocalColor != nil {
		out.LocalColor = s.LocalColor.String()
	}
	if s.LastMove != nil {
		rec := Record(*s.LastMove)
		out.LastMove = &rec
	}
	out.MovesUCI = make([]string, 0, len(s.History))
	for _, m := range s.History {
		out.MovesUCI = append(out.MovesUCI, m.String())
	}
	out.Pieces = []chessdto.PieceState{}
	if s.Board != nil {
		out.Pieces = make([]chessdto.PieceState, 0, s.Board.Len())
		for _, sq := range s.Board.Occupied() {
			p, _ := s.Board.PieceAt(sq)
			out.Pieces = append(out.Pieces, PieceDTO(p, sq.String()))
			if p.Color == rules.White {
				out.Material.White += materialValue[p.Kind]
			} else {
				out.Material.Black += materialValue[p.Kind]
			}
		}
	}
	out.Captured = chessdto.CapturedPieces{White: []string{}, Black: []string{}}
	for _, p := range s.Captured {
		if p.Color == rules.White {
			out.Captured.White = append(out.Captured.White, p.Kind.String())
		} else {
			out.Captured.Black = append(out.Captured.Black, p.Kind.String())
		}
	}
	return out
}

// PieceDTO converts p, optionally located on square.
func PieceDTO(p rules.Piece, square string) chessdto.PieceState {
	return chessdto.PieceState{
		ID:       p.ID.String(),
		Square:   square,
		Kind:     p.Kind.String(),
		Color:    p.Color.String(),
		HasMoved: p.HasMoved,
	}
}

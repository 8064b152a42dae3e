package rules

import (
	"fmt"
	"strings"
)

// Move is a from/to pair plus an optional promotion choice. EnPassant and
// Castling are derived by Apply from the board; values supplied by callers
// are ignored.
type Move struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Promotion PieceKind `json:"promotion,omitempty"`
	EnPassant bool      `json:"isEnPassant"`
	Castling  bool      `json:"isCastling"`
}

func NewMove(from, to Position) Move {
	return Move{From: from, To: to}
}

// String returns the move in UCI long algebraic form, e.g. "e7e8q".
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		s += strings.ToLower(string(m.Promotion.Letter()))
	}
	return s
}

// ParseUCI parses "e2e4" or "e7e8q". Derived flags are left unset.
func ParseUCI(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("invalid uci move %q", s)
	}
	from, err := ParsePosition(s[0:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParsePosition(s[2:4])
	if err != nil {
		return Move{}, err
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		k, err := ParsePieceKind(s[4:])
		if err != nil || !k.IsPromotionChoice() {
			return Move{}, fmt.Errorf("invalid promotion in uci move %q", s)
		}
		m.Promotion = k
	}
	return m, nil
}

// isDoublePawnPush reports whether m, already applied on b, was a pawn's
// two-square advance.
func isDoublePawnPush(b *Board, m *Move) bool {
	if m == nil || m.From.file != m.To.file {
		return false
	}
	p, ok := b.PieceAt(m.To)
	if !ok || p.Kind != Pawn {
		return false
	}
	dr := int(m.To.rank) - int(m.From.rank)
	return dr == 2*p.Color.forward() && int(m.From.rank) == p.Color.pawnStartRank()
}

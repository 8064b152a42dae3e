package rules

import (
	"sort"
	"testing"
)

func mustSetup(t *testing.T, fen string) Setup {
	t.Helper()
	s, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return s
}

// play applies UCI moves for real, alternating sides, and returns the final
// board plus the last resolved move.
func play(t *testing.T, b *Board, moves ...string) (*Board, *Move) {
	t.Helper()
	var last *Move
	turn := White
	for _, s := range moves {
		m, err := ParseUCI(s)
		if err != nil {
			t.Fatalf("ParseUCI(%q): %v", s, err)
		}
		p, ok := b.PieceAt(m.From)
		if !ok || p.Color != turn {
			t.Fatalf("move %s: no %s piece on %s", s, turn, m.From)
		}
		if !IsLegal(b, m.From, m.To, last) {
			t.Fatalf("move %s is not legal here:\n%s", s, b)
		}
		res, err := Apply(b, m, false)
		if err != nil {
			t.Fatalf("Apply(%s): %v", s, err)
		}
		b = res.Board
		mv := res.Move
		last = &mv
		turn = turn.Opponent()
	}
	return b, last
}

func squares(list []Position) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.String())
	}
	sort.Strings(out)
	return out
}

func contains(list []Position, want Position) bool {
	for _, p := range list {
		if p == want {
			return true
		}
	}
	return false
}

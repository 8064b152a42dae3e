package rules

import "testing"

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name  string
		fen   string
		moves []string
		want  Status
	}{
		{name: "start", fen: StartFEN},
		{name: "back rank mate", fen: "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", moves: []string{"a1a8"},
			want: Status{InCheck: true, Checkmated: true}},
		{name: "stalemate", fen: "k7/8/1Q6/8/8/8/8/7K b - - 0 1", want: Status{Stalemated: true}},
		{name: "fools mate", fen: StartFEN, moves: []string{"f2f3", "e7e5", "g2g4", "d8h4"},
			want: Status{InCheck: true, Checkmated: true}},
		{name: "plain check", fen: StartFEN, moves: []string{"e2e4", "f7f6", "d1h5"},
			want: Status{InCheck: true}},
	}
	for _, tc := range cases {
		s := mustSetup(t, tc.fen)
		b, last := s.Board, s.Last
		turn := s.Turn
		if len(tc.moves) > 0 {
			if turn != White {
				t.Fatalf("%s: scripted moves assume white to move", tc.name)
			}
			b, last = play(t, b, tc.moves...)
			if len(tc.moves)%2 == 1 {
				turn = Black
			}
		}
		got := Evaluate(b, turn, last)
		if got != tc.want {
			t.Fatalf("%s: Evaluate = %+v, want %+v\n%s", tc.name, got, tc.want, b)
		}
		if got.Terminal() != (tc.want.Checkmated || tc.want.Stalemated) {
			t.Fatalf("%s: Terminal() = %v", tc.name, got.Terminal())
		}
	}
}

func TestInCheckWithoutKing(t *testing.T) {
	b := NewBoard()
	b.SetPiece(Sq("d4"), NewPiece(Queen, Black))
	if InCheck(b, White) {
		t.Fatalf("a missing king cannot be in check")
	}
}

func TestIsSquareAttacked(t *testing.T) {
	s := mustSetup(t, "4k3/8/8/3p4/8/8/8/4K3 w - - 0 1")
	for _, sq := range []string{"c4", "e4"} {
		if !IsSquareAttacked(s.Board, Sq(sq), Black) {
			t.Fatalf("black pawn on d5 should attack %s", sq)
		}
	}
	if IsSquareAttacked(s.Board, Sq("d4"), Black) {
		t.Fatalf("pawns do not attack straight ahead")
	}
	if IsSquareAttacked(s.Board, Sq("c6"), Black) {
		t.Fatalf("black pawns attack downward only")
	}
}

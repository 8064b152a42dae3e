package rules

import "testing"

func TestSAN(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		move string
		want string
	}{
		{"pawn push", StartFEN, "e2e4", "e4"},
		{"knight", StartFEN, "g1f3", "Nf3"},
		{"short castle", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"long castle", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8c8", "O-O-O"},
		{"pawn capture", "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2", "e4d5", "exd5"},
		{"en passant", "rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3", "e5d6", "exd6"},
		{"promotion", "8/P6k/8/8/8/8/8/K7 w - - 0 1", "a7a8n", "a8=N"},
		{"promotion default", "8/P6k/8/8/8/8/8/K7 w - - 0 1", "a7a8", "a8=Q"},
		{"file disambiguation", "4k3/8/8/8/8/8/8/R4R1K w - - 0 1", "a1d1", "Rad1"},
		{"rank disambiguation", "4k3/8/8/R7/8/8/8/R3K3 w - - 0 1", "a1a3", "R1a3"},
		{"check", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1a8", "Ra8+"},
		{"mate", "6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1", "a1a8", "Ra8#"},
		{"piece capture", "4k3/8/8/3p4/8/2N5/8/4K3 w - - 0 1", "c3d5", "Nxd5"},
	}
	for _, tc := range cases {
		s := mustSetup(t, tc.fen)
		m, err := ParseUCI(tc.move)
		if err != nil {
			t.Fatalf("%s: ParseUCI: %v", tc.name, err)
		}
		if got := SAN(s.Board, m, s.Last); got != tc.want {
			t.Fatalf("%s: SAN(%s) = %q, want %q", tc.name, tc.move, got, tc.want)
		}
	}
}

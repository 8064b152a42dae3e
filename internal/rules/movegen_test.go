package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestStartingPositionMoveCounts(t *testing.T) {
	b := StandardBoard()
	total := 0
	for _, from := range b.PiecesOf(White) {
		p, _ := b.PieceAt(from)
		got := Legal(b, from, nil)
		total += len(got)
		switch p.Kind {
		case Pawn, Knight:
			if len(got) != 2 {
				t.Fatalf("%s on %s: %d moves %v, want 2", p.Kind, from, len(got), squares(got))
			}
		default:
			if len(got) != 0 {
				t.Fatalf("%s on %s should be blocked, got %v", p.Kind, from, squares(got))
			}
		}
	}
	if total != 20 {
		t.Fatalf("white has %d legal moves at the start, want 20", total)
	}
	if n := len(LegalMoves(b, Black, nil)); n != 20 {
		t.Fatalf("black has %d legal moves at the start, want 20", n)
	}
}

func TestPawnDoubleStepNeedsBothSquaresEmpty(t *testing.T) {
	s := mustSetup(t, "4k3/8/8/8/8/4n3/4P3/4K3 w - - 0 1")
	if got := PseudoLegal(s.Board, Sq("e2"), nil); len(got) != 0 {
		t.Fatalf("blocked pawn moves = %v, want none", squares(got))
	}
	s = mustSetup(t, "4k3/8/8/8/4n3/8/4P3/4K3 w - - 0 1")
	if diff := cmp.Diff([]string{"e3"}, squares(PseudoLegal(s.Board, Sq("e2"), nil))); diff != "" {
		t.Fatalf("pawn moves mismatch (-want +got):\n%s", diff)
	}
}

func TestSlidersStopAtFirstPiece(t *testing.T) {
	s := mustSetup(t, "4k3/8/8/1p6/8/8/8/R3K2N w - - 0 1")
	got := squares(PseudoLegal(s.Board, Sq("a1"), nil))
	want := []string{"a2", "a3", "a4", "a5", "a6", "a7", "a8", "b1", "c1", "d1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rook moves mismatch (-want +got):\n%s", diff)
	}

	s = mustSetup(t, "4k3/8/8/1p6/8/3Q4/8/4K3 w - - 0 1")
	got = squares(PseudoLegal(s.Board, Sq("d3"), nil))
	if !contains(PseudoLegal(s.Board, Sq("d3"), nil), Sq("b5")) {
		t.Fatalf("queen should capture b5, got %v", got)
	}
	if contains(PseudoLegal(s.Board, Sq("d3"), nil), Sq("a6")) {
		t.Fatalf("queen must not pass through b5, got %v", got)
	}
	if len(got) != 24 {
		t.Fatalf("queen has %d pseudo moves %v, want 24", len(got), got)
	}
}

func TestKnightSkipsOwnPieces(t *testing.T) {
	b := StandardBoard()
	if diff := cmp.Diff([]string{"a3", "c3"}, squares(PseudoLegal(b, Sq("b1"), nil))); diff != "" {
		t.Fatalf("knight moves mismatch (-want +got):\n%s", diff)
	}
}

func TestEnPassantScenario(t *testing.T) {
	b, last := play(t, StandardBoard(), "e2e4", "a7a6", "e4e5", "d7d5")
	legal := Legal(b, Sq("e5"), last)
	if !contains(legal, Sq("d6")) {
		t.Fatalf("e5 pawn should capture en passant on d6, got %v", squares(legal))
	}

	res, err := Apply(b, NewMove(Sq("e5"), Sq("d6")), false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.Move.EnPassant {
		t.Fatalf("move not flagged en passant: %+v", res.Move)
	}
	if res.Captured == nil || res.Captured.Kind != Pawn || res.Captured.Color != Black {
		t.Fatalf("captured = %+v, want black pawn", res.Captured)
	}
	if !res.Board.IsEmpty(Sq("d5")) {
		t.Fatalf("captured pawn still on d5:\n%s", res.Board)
	}
	if p, ok := res.Board.PieceAt(Sq("d6")); !ok || p.Kind != Pawn || p.Color != White {
		t.Fatalf("white pawn should stand on d6:\n%s", res.Board)
	}
}

func TestEnPassantOnlyImmediately(t *testing.T) {
	b, last := play(t, StandardBoard(), "e2e4", "a7a6", "e4e5", "d7d5", "g1f3", "h7h6")
	if contains(Legal(b, Sq("e5"), last), Sq("d6")) {
		t.Fatalf("en passant must expire after one move")
	}
}

func TestSingleStepDoesNotEnableEnPassant(t *testing.T) {
	// Black pawn d7-d6 then d6-d5 lands beside e5 but was not a double push.
	b, last := play(t, StandardBoard(), "e2e4", "d7d6", "e4e5", "a7a6", "h2h3", "d6d5")
	if contains(Legal(b, Sq("e5"), last), Sq("d6")) {
		t.Fatalf("en passant allowed after a single step")
	}
}

func TestCastlingScenario(t *testing.T) {
	b, last := play(t, StandardBoard(), "e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6")
	if !contains(Legal(b, Sq("e1"), last), Sq("g1")) {
		t.Fatalf("king should be able to castle, got %v", squares(Legal(b, Sq("e1"), last)))
	}
	res, err := Apply(b, NewMove(Sq("e1"), Sq("g1")), false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.Move.Castling {
		t.Fatalf("move not flagged castling")
	}
	king, _ := res.Board.PieceAt(Sq("g1"))
	rook, _ := res.Board.PieceAt(Sq("f1"))
	if king.Kind != King || !king.HasMoved {
		t.Fatalf("king on g1 = %+v", king)
	}
	if rook.Kind != Rook || !rook.HasMoved {
		t.Fatalf("rook on f1 = %+v", rook)
	}
	if !res.Board.IsEmpty(Sq("h1")) || !res.Board.IsEmpty(Sq("e1")) {
		t.Fatalf("corner and start squares should be empty:\n%s", res.Board)
	}
}

func TestCastlingRestrictions(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		want []string
	}{
		{"both sides", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"c1", "g1"}},
		{"no rights", "r3k2r/8/8/8/8/8/8/R3K2R w - - 0 1", nil},
		{"in check", "r3k2r/8/8/8/4r3/8/8/R3K2R w KQ - 0 1", nil},
		{"f1 attacked", "r3k2r/8/8/8/5r2/8/8/R3K2R w KQ - 0 1", []string{"c1"}},
		{"g1 attacked", "r3k2r/8/8/8/6r1/8/8/R3K2R w KQ - 0 1", []string{"c1"}},
		{"b1 attacked only", "r3k2r/8/8/8/1r6/8/8/R3K2R w KQ - 0 1", []string{"c1", "g1"}},
		{"b1 occupied", "r3k2r/8/8/8/8/8/8/RN2K2R w KQ - 0 1", []string{"g1"}},
		{"rook moved", "r3k2r/8/8/8/8/8/8/R3K2R w Q - 0 1", []string{"c1"}},
	}
	for _, tc := range cases {
		s := mustSetup(t, tc.fen)
		var got []Position
		for _, to := range PseudoLegal(s.Board, Sq("e1"), nil) {
			if to == Sq("c1") || to == Sq("g1") {
				got = append(got, to)
			}
		}
		if diff := cmp.Diff(tc.want, squares(got), cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("%s: castling targets mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestPinnedPieceCannotLeaveLine(t *testing.T) {
	s := mustSetup(t, "4k3/4r3/8/8/8/8/4N3/4K3 w - - 0 1")
	if got := Legal(s.Board, Sq("e2"), nil); len(got) != 0 {
		t.Fatalf("pinned knight has moves %v", squares(got))
	}
}

func TestLegalMovesNeverLeaveKingAttacked(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/8/8/8/3q4/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		s := mustSetup(t, fen)
		for _, c := range []Color{White, Black} {
			for _, m := range LegalMoves(s.Board, c, s.Last) {
				res, err := Apply(s.Board, m, true)
				if err != nil {
					t.Fatalf("%s: Apply(%s): %v", fen, m, err)
				}
				if InCheck(res.Board, c) {
					t.Fatalf("%s: legal move %s leaves %s king attacked", fen, m, c)
				}
			}
		}
	}
}

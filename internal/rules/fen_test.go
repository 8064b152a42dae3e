package rules

import (
	"errors"
	"testing"
)

func TestStartFENMatchesStandardBoard(t *testing.T) {
	s := mustSetup(t, StartFEN)
	if !s.Board.Equal(StandardBoard()) {
		t.Fatalf("ParseFEN(StartFEN) differs from StandardBoard:\n%s", s.Board)
	}
	if s.Turn != White || s.Last != nil || s.HalfmoveClock != 0 || s.FullmoveNumber != 1 {
		t.Fatalf("unexpected setup %+v", s)
	}
	if got := FEN(StandardBoard(), White, nil, 0, 1); got != StartFEN {
		t.Fatalf("FEN = %q, want %q", got, StartFEN)
	}
}

func TestFENTracksCastlingAndEnPassant(t *testing.T) {
	b, last := play(t, StandardBoard(), "e2e4")
	if got, want := FEN(b, Black, last, 0, 1), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"; got != want {
		t.Fatalf("FEN = %q, want %q", got, want)
	}

	b, last = play(t, StandardBoard(), "e2e4", "e7e5", "e1e2", "a7a6", "h2h4", "h7h6", "h1h3")
	if got, want := FEN(b, Black, last, 1, 4), "rnbqkbnr/1ppp1pp1/p6p/4p3/4P2P/7R/PPPPKPP1/RNBQ1BN1 b kq - 1 4"; got != want {
		t.Fatalf("FEN = %q, want %q", got, want)
	}
}

func TestParseFENRoundTrip(t *testing.T) {
	fens := []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k3/8/8/8/8/8/8/4K2R b Kq - 12 40",
	}
	for _, fen := range fens {
		s := mustSetup(t, fen)
		if got := FEN(s.Board, s.Turn, s.Last, s.HalfmoveClock, s.FullmoveNumber); got != fen {
			t.Fatalf("round trip:\n got %q\nwant %q", got, fen)
		}
	}
}

func TestParseFENEnPassantField(t *testing.T) {
	s := mustSetup(t, "rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	if s.Last == nil || s.Last.From != Sq("d7") || s.Last.To != Sq("d5") {
		t.Fatalf("Last = %+v, want d7d5", s.Last)
	}
	if !contains(Legal(s.Board, Sq("e5"), s.Last), Sq("d6")) {
		t.Fatalf("en passant from FEN not honoured")
	}
}

func TestParseFENErrors(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8 w - - 0 1",
		"9/8/8/8/8/8/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq z9 0 1",
		"4k3/8/8/8/8/8/8/4R1K1 w - - 0 1",
		"8/8/8/8/8/8/8/R7 w - - 0 1",
		"4k3/8/8/8/8/8/8/K3K3 w - - 0 1",
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Fatalf("ParseFEN(%q) err = %v, want ErrInvalidFEN", fen, err)
		}
	}
}

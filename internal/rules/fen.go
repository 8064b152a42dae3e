package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidFEN = errors.New("invalid FEN")

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Setup is a position decoded from FEN.
type Setup struct {
	Board *Board
	Turn  Color
	// Last is the double pawn push implied by the en-passant field, or nil.
	Last           *Move
	HalfmoveClock  int
	FullmoveNumber int
}

// Placement returns the piece-placement field of FEN for b.
func Placement(b *Board) string {
	var sb strings.Builder
	for r := boardSize - 1; r >= 0; r-- {
		empty := 0
		for f := 0; f < boardSize; f++ {
			pos, _ := NewPosition(f, r)
			p, ok := b.PieceAt(pos)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(p.fenLetter())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// FEN encodes the full position. Castling availability is derived from the
// has-moved flags of kings and corner rooks; the en-passant field is set
// after any double pawn push.
func FEN(b *Board, turn Color, last *Move, halfmove, fullmove int) string {
	side := "w"
	if turn == Black {
		side = "b"
	}
	ep := "-"
	if isDoublePawnPush(b, last) {
		mid, _ := NewPosition(last.From.File(), (last.From.Rank()+last.To.Rank())/2)
		ep = mid.String()
	}
	if fullmove < 1 {
		fullmove = 1
	}
	return fmt.Sprintf("%s %s %s %s %d %d", Placement(b), side, castlingField(b), ep, halfmove, fullmove)
}

func castlingField(b *Board) string {
	var sb strings.Builder
	for _, c := range []Color{White, Black} {
		for _, side := range castleSides {
			if castlingRight(b, c, side.rookFile) {
				letter := byte('K')
				if side.rookFile == 0 {
					letter = 'Q'
				}
				if c == Black {
					letter += 'a' - 'A'
				}
				sb.WriteByte(letter)
			}
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func castlingRight(b *Board, c Color, rookFile int) bool {
	kingAt, _ := NewPosition(4, c.backRank())
	rookAt, _ := NewPosition(rookFile, c.backRank())
	k, ok := b.PieceAt(kingAt)
	if !ok || k.Kind != King || k.Color != c || k.HasMoved {
		return false
	}
	r, ok := b.PieceAt(rookAt)
	return ok && r.Kind == Rook && r.Color == c && !r.HasMoved
}

// ParseFEN decodes a FEN string. Has-moved flags are reconstructed: pawns off
// their start rank, and kings and corner rooks without the matching castling
// right, are marked moved.
func ParseFEN(s string) (Setup, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return Setup{}, fmt.Errorf("%w: want at least 2 fields, got %d", ErrInvalidFEN, len(fields))
	}
	b := NewBoard()
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != boardSize {
		return Setup{}, fmt.Errorf("%w: want 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for i, row := range ranks {
		r := boardSize - 1 - i
		f := 0
		for _, ch := range row {
			if ch >= '1' && ch <= '8' {
				f += int(ch - '0')
				continue
			}
			kind, err := ParsePieceKind(string(ch))
			if err != nil {
				return Setup{}, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
			}
			pos, ok := NewPosition(f, r)
			if !ok {
				return Setup{}, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, r+1)
			}
			c := White
			if ch >= 'a' && ch <= 'z' {
				c = Black
			}
			b.SetPiece(pos, startingPiece(kind, c, pos))
			f++
		}
		if f != boardSize {
			return Setup{}, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, r+1, f)
		}
	}

	setup := Setup{Board: b, Turn: White, FullmoveNumber: 1}
	switch fields[1] {
	case "w":
	case "b":
		setup.Turn = Black
	default:
		return Setup{}, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}
	for _, c := range []Color{White, Black} {
		if n := countKings(b, c); n != 1 {
			return Setup{}, fmt.Errorf("%w: %s has %d kings", ErrInvalidFEN, c, n)
		}
	}
	if InCheck(b, setup.Turn.Opponent()) {
		return Setup{}, fmt.Errorf("%w: %s to move but %s is in check", ErrInvalidFEN, setup.Turn, setup.Turn.Opponent())
	}

	rights := "-"
	if len(fields) > 2 {
		rights = fields[2]
	}
	markMoved(b, rights)

	if len(fields) > 3 && fields[3] != "-" {
		ep, err := ParsePosition(fields[3])
		if err != nil {
			return Setup{}, fmt.Errorf("%w: en passant %q", ErrInvalidFEN, fields[3])
		}
		mover := setup.Turn.Opponent()
		from, ok1 := ep.Offset(0, -mover.forward())
		to, ok2 := ep.Offset(0, mover.forward())
		if !ok1 || !ok2 {
			return Setup{}, fmt.Errorf("%w: en passant %q", ErrInvalidFEN, fields[3])
		}
		setup.Last = &Move{From: from, To: to}
	}
	if len(fields) > 4 {
		if n, err := strconv.Atoi(fields[4]); err == nil && n >= 0 {
			setup.HalfmoveClock = n
		}
	}
	if len(fields) > 5 {
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			setup.FullmoveNumber = n
		}
	}
	return setup, nil
}

func countKings(b *Board, c Color) int {
	n := 0
	for _, pos := range b.PiecesOf(c) {
		if p, _ := b.PieceAt(pos); p.Kind == King {
			n++
		}
	}
	return n
}

func markMoved(b *Board, rights string) {
	has := func(r byte) bool { return strings.IndexByte(rights, r) >= 0 }
	for _, pos := range b.Occupied() {
		p, _ := b.PieceAt(pos)
		switch p.Kind {
		case Pawn:
			p.HasMoved = pos.Rank() != p.Color.pawnStartRank()
		case King:
			k, q := byte('K'), byte('Q')
			if p.Color == Black {
				k, q = 'k', 'q'
			}
			home := pos.Rank() == p.Color.backRank() && pos.File() == 4
			p.HasMoved = !home || (!has(k) && !has(q))
		case Rook:
			right := byte(0)
			if pos.Rank() == p.Color.backRank() {
				switch pos.File() {
				case 7:
					right = 'K'
				case 0:
					right = 'Q'
				}
			}
			if right != 0 && p.Color == Black {
				right += 'a' - 'A'
			}
			p.HasMoved = right == 0 || !has(right)
		}
		b.SetPiece(pos, p)
	}
}

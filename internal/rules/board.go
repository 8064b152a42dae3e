package rules

import (
	"strings"
)

// Board is one position snapshot: a sparse mapping from Position to Piece.
// Keying by Position guarantees at most one piece per square. The zero value
// is not usable; construct with NewBoard or StandardBoard.
type Board struct {
	squares map[Position]Piece
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{squares: make(map[Position]Piece, 32)}
}

var backRankKinds = [boardSize]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StandardBoard returns the standard starting layout. Piece identities are
// deterministic, so two standard boards compare equal.
func StandardBoard() *Board {
	b := NewBoard()
	for f := 0; f < boardSize; f++ {
		for _, c := range []Color{White, Black} {
			back, _ := NewPosition(f, c.backRank())
			pawn, _ := NewPosition(f, c.pawnStartRank())
			b.squares[back] = startingPiece(backRankKinds[f], c, back)
			b.squares[pawn] = startingPiece(Pawn, c, pawn)
		}
	}
	return b
}

func (b *Board) PieceAt(pos Position) (Piece, bool) {
	p, ok := b.squares[pos]
	return p, ok
}

func (b *Board) IsEmpty(pos Position) bool {
	_, ok := b.squares[pos]
	return !ok
}

// SetPiece places p on pos, replacing whatever was there.
func (b *Board) SetPiece(pos Position, p Piece) {
	b.squares[pos] = p
}

// RemovePiece empties pos and returns what was there.
func (b *Board) RemovePiece(pos Position) (Piece, bool) {
	p, ok := b.squares[pos]
	if ok {
		delete(b.squares, pos)
	}
	return p, ok
}

// Clone returns a fully independent copy. Pieces are values, so no state is
// shared with the original.
func (b *Board) Clone() *Board {
	n := &Board{squares: make(map[Position]Piece, len(b.squares))}
	for pos, p := range b.squares {
		n.squares[pos] = p
	}
	return n
}

func (b *Board) Len() int { return len(b.squares) }

// Occupied lists the occupied squares in index order (a1, b1, ... h8), so
// scans over the board are deterministic.
func (b *Board) Occupied() []Position {
	out := make([]Position, 0, len(b.squares))
	for i := 0; i < boardSize*boardSize; i++ {
		pos := positionAt(i)
		if _, ok := b.squares[pos]; ok {
			out = append(out, pos)
		}
	}
	return out
}

// PiecesOf lists squares holding pieces of color c in index order.
func (b *Board) PiecesOf(c Color) []Position {
	var out []Position
	for _, pos := range b.Occupied() {
		if b.squares[pos].Color == c {
			out = append(out, pos)
		}
	}
	return out
}

// King returns the square of c's king.
func (b *Board) King(c Color) (Position, bool) {
	for pos, p := range b.squares {
		if p.Kind == King && p.Color == c {
			return pos, true
		}
	}
	return Position{}, false
}

// Equal compares piece placement, identity and has-moved flags.
func (b *Board) Equal(o *Board) bool {
	if b == nil || o == nil {
		return b == o
	}
	if len(b.squares) != len(o.squares) {
		return false
	}
	for pos, p := range b.squares {
		if q, ok := o.squares[pos]; !ok || q != p {
			return false
		}
	}
	return true
}

// String renders the board rank 8 first, one line per rank, using FEN letters
// and '.' for empty squares.
func (b *Board) String() string {
	var sb strings.Builder
	for r := boardSize - 1; r >= 0; r-- {
		for f := 0; f < boardSize; f++ {
			pos, _ := NewPosition(f, r)
			if p, ok := b.squares[pos]; ok {
				sb.WriteByte(p.fenLetter())
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

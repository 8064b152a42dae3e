package rules

import (
	"errors"
	"fmt"
)

var ErrNoPieceToMove = errors.New("no piece on origin square")

// Applied is the outcome of Apply.
type Applied struct {
	// Board is the new position; the input board is left untouched.
	Board *Board
	// Move is the input move with EnPassant, Castling and the effective
	// Promotion resolved from the board.
	Move Move
	// Captured is the removed enemy piece, if any.
	Captured *Piece
}

// Apply plays m on a clone of b without checking legality. Speculative
// applications leave every HasMoved flag as it was, so a simulation has no
// observable effect on the pieces it copied.
//
// A pawn reaching the farthest rank becomes m.Promotion, or a queen when no
// valid promotion kind was supplied.
func Apply(b *Board, m Move, speculative bool) (Applied, error) {
	piece, ok := b.PieceAt(m.From)
	if !ok {
		return Applied{}, fmt.Errorf("%w: %s", ErrNoPieceToMove, m.From)
	}
	next := b.Clone()
	resolved := Move{From: m.From, To: m.To}

	var captured *Piece
	switch {
	case piece.Kind == Pawn && m.From.file != m.To.file && next.IsEmpty(m.To):
		resolved.EnPassant = true
		victimAt, _ := NewPosition(m.To.File(), m.From.Rank())
		if v, ok := next.RemovePiece(victimAt); ok {
			captured = &v
		}
	case piece.Kind == King && abs(int(m.To.file)-int(m.From.file)) == 2:
		resolved.Castling = true
		relocateCastlingRook(next, m, speculative)
	default:
		if v, ok := next.RemovePiece(m.To); ok {
			captured = &v
		}
	}

	next.RemovePiece(m.From)
	if piece.Kind == Pawn && m.To.Rank() == piece.Color.promotionRank() {
		kind := m.Promotion
		if !kind.IsPromotionChoice() {
			kind = Queen
		}
		piece.Kind = kind
		resolved.Promotion = kind
	}
	if !speculative {
		piece.HasMoved = true
	}
	next.SetPiece(m.To, piece)

	return Applied{Board: next, Move: resolved, Captured: captured}, nil
}

// relocateCastlingRook moves the rook from its corner to the square next to
// the king's destination, on the king's side of travel.
func relocateCastlingRook(b *Board, m Move, speculative bool) {
	rookFile, rookTo := 0, m.To.File()+1
	if m.To.file > m.From.file {
		rookFile, rookTo = boardSize-1, m.To.File()-1
	}
	from, _ := NewPosition(rookFile, m.From.Rank())
	to, _ := NewPosition(rookTo, m.From.Rank())
	rook, ok := b.RemovePiece(from)
	if !ok {
		return
	}
	if !speculative {
		rook.HasMoved = true
	}
	b.SetPiece(to, rook)
}

// IsPromotion reports whether moving from→to on b would be a pawn reaching
// the farthest rank.
func IsPromotion(b *Board, from, to Position) bool {
	p, ok := b.PieceAt(from)
	return ok && p.Kind == Pawn && to.Rank() == p.Color.promotionRank()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package rules

// PseudoLegal returns the destinations the piece on from can reach by its
// movement geometry and blocking, ignoring whether the move would leave its
// own king attacked. last is the immediately preceding move, or nil; it
// decides en-passant eligibility. An empty from yields nil.
func PseudoLegal(b *Board, from Position, last *Move) []Position {
	p, ok := b.PieceAt(from)
	if !ok {
		return nil
	}
	switch p.Kind {
	case Pawn:
		return pawnTargets(b, from, p.Color, last)
	case Knight:
		return stepTargets(b, from, p.Color, knightOffsets)
	case Bishop:
		return rayTargets(b, from, p.Color, diagonalDirs)
	case Rook:
		return rayTargets(b, from, p.Color, straightDirs)
	case Queen:
		return rayTargets(b, from, p.Color, queenDirs)
	case King:
		out := stepTargets(b, from, p.Color, kingOffsets)
		return append(out, castlingTargets(b, from, p)...)
	}
	return nil
}

func pawnTargets(b *Board, from Position, c Color, last *Move) []Position {
	var out []Position
	fwd := c.forward()
	if one, ok := from.Offset(0, fwd); ok && b.IsEmpty(one) {
		out = append(out, one)
		if from.Rank() == c.pawnStartRank() {
			if two, ok := from.Offset(0, 2*fwd); ok && b.IsEmpty(two) {
				out = append(out, two)
			}
		}
	}
	for _, df := range []int{-1, 1} {
		to, ok := from.Offset(df, fwd)
		if !ok {
			continue
		}
		if target, occupied := b.PieceAt(to); occupied {
			if target.Color != c {
				out = append(out, to)
			}
			continue
		}
		if enPassantTarget(b, from, c, last) == to {
			out = append(out, to)
		}
	}
	return out
}

// enPassantTarget returns the square a pawn of color c on from may capture
// onto en passant, or an off-board sentinel when none exists. The previous
// move must be an enemy pawn's double push landing beside from.
func enPassantTarget(b *Board, from Position, c Color, last *Move) Position {
	none := Position{file: -1, rank: -1}
	if !isDoublePawnPush(b, last) {
		return none
	}
	victim, _ := b.PieceAt(last.To)
	if victim.Color == c || last.To.rank != from.rank {
		return none
	}
	df := int(last.To.file) - int(from.file)
	if df != 1 && df != -1 {
		return none
	}
	to, ok := from.Offset(df, c.forward())
	if !ok || !b.IsEmpty(to) {
		return none
	}
	return to
}

func stepTargets(b *Board, from Position, c Color, offsets []offset) []Position {
	var out []Position
	for _, o := range offsets {
		to, ok := from.Offset(o.df, o.dr)
		if !ok {
			continue
		}
		if p, occupied := b.PieceAt(to); occupied && p.Color == c {
			continue
		}
		out = append(out, to)
	}
	return out
}

func rayTargets(b *Board, from Position, c Color, dirs []offset) []Position {
	var out []Position
	for _, d := range dirs {
		cur := from
		for {
			next, ok := cur.Offset(d.df, d.dr)
			if !ok {
				break
			}
			cur = next
			p, occupied := b.PieceAt(cur)
			if !occupied {
				out = append(out, cur)
				continue
			}
			if p.Color != c {
				out = append(out, cur)
			}
			break
		}
	}
	return out
}

type castleSide struct {
	rookFile  int
	kingTo    int
	between   []int // must be empty
	traversed []int // must not be attacked, king start included
}

var castleSides = []castleSide{
	{rookFile: 7, kingTo: 6, between: []int{5, 6}, traversed: []int{4, 5, 6}},
	{rookFile: 0, kingTo: 2, between: []int{1, 2, 3}, traversed: []int{4, 3, 2}},
}

// castlingTargets returns the king destinations for castling. The king must
// be unmoved on its home square, the rook unmoved in its corner, the squares
// between them empty, and no square the king traverses attacked. Each
// traversed square is tested by placing the king there on a clone.
func castlingTargets(b *Board, from Position, king Piece) []Position {
	rank := king.Color.backRank()
	if king.HasMoved || from.Rank() != rank || from.File() != 4 {
		return nil
	}
	var out []Position
	for _, side := range castleSides {
		rookAt, _ := NewPosition(side.rookFile, rank)
		rook, ok := b.PieceAt(rookAt)
		if !ok || rook.Kind != Rook || rook.Color != king.Color || rook.HasMoved {
			continue
		}
		if !allEmpty(b, rank, side.between) {
			continue
		}
		if !pathSafe(b, from, king, side.traversed) {
			continue
		}
		to, _ := NewPosition(side.kingTo, rank)
		out = append(out, to)
	}
	return out
}

func allEmpty(b *Board, rank int, files []int) bool {
	for _, f := range files {
		pos, _ := NewPosition(f, rank)
		if !b.IsEmpty(pos) {
			return false
		}
	}
	return true
}

func pathSafe(b *Board, from Position, king Piece, files []int) bool {
	for _, f := range files {
		sq, _ := NewPosition(f, from.Rank())
		sim := b.Clone()
		sim.RemovePiece(from)
		sim.SetPiece(sq, king)
		if IsSquareAttacked(sim, sq, king.Color.Opponent()) {
			return false
		}
	}
	return true
}

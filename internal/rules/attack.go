package rules

type offset struct{ df, dr int }

var (
	knightOffsets = []offset{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingOffsets   = []offset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonalDirs  = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	straightDirs  = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	queenDirs     = append(append([]offset{}, diagonalDirs...), straightDirs...)
)

// IsSquareAttacked reports whether any piece of color by pseudo-attacks sq.
// Pawns attack their forward diagonals only; sliders stop at the first
// occupied square. Occupancy of sq itself is irrelevant.
func IsSquareAttacked(b *Board, sq Position, by Color) bool {
	// Pawns of color by sit one rank behind sq from their point of view.
	for _, df := range []int{-1, 1} {
		if from, ok := sq.Offset(df, -by.forward()); ok && holds(b, from, Pawn, by) {
			return true
		}
	}
	for _, o := range knightOffsets {
		if from, ok := sq.Offset(o.df, o.dr); ok && holds(b, from, Knight, by) {
			return true
		}
	}
	for _, o := range kingOffsets {
		if from, ok := sq.Offset(o.df, o.dr); ok && holds(b, from, King, by) {
			return true
		}
	}
	if rayHits(b, sq, diagonalDirs, by, Bishop) || rayHits(b, sq, straightDirs, by, Rook) {
		return true
	}
	return false
}

// rayHits walks outward from sq and reports whether the first piece met on
// any ray is a slider of color by of the given kind or a queen.
func rayHits(b *Board, sq Position, dirs []offset, by Color, slider PieceKind) bool {
	for _, d := range dirs {
		cur := sq
		for {
			next, ok := cur.Offset(d.df, d.dr)
			if !ok {
				break
			}
			cur = next
			p, occupied := b.PieceAt(cur)
			if !occupied {
				continue
			}
			if p.Color == by && (p.Kind == slider || p.Kind == Queen) {
				return true
			}
			break
		}
	}
	return false
}

func holds(b *Board, pos Position, kind PieceKind, c Color) bool {
	p, ok := b.PieceAt(pos)
	return ok && p.Kind == kind && p.Color == c
}

// InCheck reports whether c's king is attacked. A board without a king of
// color c is never in check.
func InCheck(b *Board, c Color) bool {
	king, ok := b.King(c)
	if !ok {
		return false
	}
	return IsSquareAttacked(b, king, c.Opponent())
}

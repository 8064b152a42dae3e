package rules

// Legal filters PseudoLegal destinations down to those that do not leave the
// mover's own king attacked. Each candidate is tried speculatively on a
// clone; b is never modified.
func Legal(b *Board, from Position, last *Move) []Position {
	p, ok := b.PieceAt(from)
	if !ok {
		return nil
	}
	var out []Position
	for _, to := range PseudoLegal(b, from, last) {
		if keepsKingSafe(b, Move{From: from, To: to}, p.Color) {
			out = append(out, to)
		}
	}
	return out
}

// IsLegal reports whether from→to is a legal move for the piece on from.
func IsLegal(b *Board, from, to Position, last *Move) bool {
	for _, dst := range Legal(b, from, last) {
		if dst == to {
			return true
		}
	}
	return false
}

// HasLegalMove reports whether color c has at least one legal move. It stops
// at the first origin square with a non-empty legal set.
func HasLegalMove(b *Board, c Color, last *Move) bool {
	for _, from := range b.PiecesOf(c) {
		for _, to := range PseudoLegal(b, from, last) {
			if keepsKingSafe(b, Move{From: from, To: to}, c) {
				return true
			}
		}
	}
	return false
}

// LegalMoves lists every legal from/to pair for color c in board order.
// Promotions appear once, without a promotion kind.
func LegalMoves(b *Board, c Color, last *Move) []Move {
	var out []Move
	for _, from := range b.PiecesOf(c) {
		for _, to := range Legal(b, from, last) {
			out = append(out, Move{From: from, To: to})
		}
	}
	return out
}

func keepsKingSafe(b *Board, m Move, c Color) bool {
	res, err := Apply(b, m, true)
	if err != nil {
		return false
	}
	return !InCheck(res.Board, c)
}

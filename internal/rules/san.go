package rules

import "strings"

// SAN encodes m in standard algebraic notation relative to b, the position
// before the move. m must be legal; last is the move that produced b. The
// check suffix is '+' or '#'.
func SAN(b *Board, m Move, last *Move) string {
	p, ok := b.PieceAt(m.From)
	if !ok {
		return m.String()
	}

	var sb strings.Builder
	switch {
	case p.Kind == King && abs(m.To.File()-m.From.File()) == 2:
		if m.To.File() > m.From.File() {
			sb.WriteString("O-O")
		} else {
			sb.WriteString("O-O-O")
		}
	case p.Kind == Pawn:
		if m.From.File() != m.To.File() {
			sb.WriteByte(byte('a' + m.From.File()))
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.To.Rank() == p.Color.promotionRank() {
			kind := m.Promotion
			if !kind.IsPromotionChoice() {
				kind = Queen
			}
			sb.WriteByte('=')
			sb.WriteByte(kind.Letter())
		}
	default:
		sb.WriteByte(p.Kind.Letter())
		sb.WriteString(disambiguation(b, m, p, last))
		if !b.IsEmpty(m.To) {
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
	}

	res, err := Apply(b, m, true)
	if err != nil {
		return sb.String()
	}
	st := Evaluate(res.Board, p.Color.Opponent(), &res.Move)
	switch {
	case st.Checkmated:
		sb.WriteByte('#')
	case st.InCheck:
		sb.WriteByte('+')
	}
	return sb.String()
}

// disambiguation returns the minimal origin qualifier: file if it is unique
// among rivals, else rank if unique, else both.
func disambiguation(b *Board, m Move, p Piece, last *Move) string {
	var rivals []Position
	for _, sq := range b.PiecesOf(p.Color) {
		if sq == m.From {
			continue
		}
		q, _ := b.PieceAt(sq)
		if q.Kind == p.Kind && IsLegal(b, sq, m.To, last) {
			rivals = append(rivals, sq)
		}
	}
	if len(rivals) == 0 {
		return ""
	}
	sameFile, sameRank := false, false
	for _, r := range rivals {
		if r.File() == m.From.File() {
			sameFile = true
		}
		if r.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	switch {
	case !sameFile:
		return string(byte('a' + m.From.File()))
	case !sameRank:
		return string(byte('1' + m.From.Rank()))
	}
	return m.From.String()
}

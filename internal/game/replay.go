package game

import (
	"fmt"

	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

// Record converts an engine move to its serializable record.
func Record(m rules.Move) chessdto.MoveRecord {
	rec := chessdto.MoveRecord{
		From:        m.From.String(),
		To:          m.To.String(),
		IsEnPassant: m.EnPassant,
		IsCastling:  m.Castling,
	}
	if m.Promotion != rules.NoKind {
		rec.Promotion = m.Promotion.String()
	}
	return rec
}

// Records converts a move list.
func Records(moves []rules.Move) []chessdto.MoveRecord {
	out := make([]chessdto.MoveRecord, 0, len(moves))
	for _, m := range moves {
		out = append(out, Record(m))
	}
	return out
}

// FromRecord parses a record. The derived flags are copied as given; the
// engine recomputes them when the move is applied.
func FromRecord(rec chessdto.MoveRecord) (rules.Move, error) {
	from, err := rules.ParsePosition(rec.From)
	if err != nil {
		return rules.Move{}, fmt.Errorf("%w: from: %v", ErrIllegalMove, err)
	}
	to, err := rules.ParsePosition(rec.To)
	if err != nil {
		return rules.Move{}, fmt.Errorf("%w: to: %v", ErrIllegalMove, err)
	}
	m := rules.Move{From: from, To: to, EnPassant: rec.IsEnPassant, Castling: rec.IsCastling}
	if rec.Promotion != "" {
		kind, err := rules.ParsePieceKind(rec.Promotion)
		if err != nil || !kind.IsPromotionChoice() {
			return rules.Move{}, fmt.Errorf("%w: promotion %q", ErrIllegalMove, rec.Promotion)
		}
		m.Promotion = kind
	}
	return m, nil
}

// Replay builds a session by applying moves in order from the standard
// layout. Replaying a session's own history reproduces its board, turn and
// flags exactly.
func Replay(moves []rules.Move, opts ...Option) (*Session, error) {
	s := New(opts...)
	if err := s.applyAll(moves); err != nil {
		return nil, err
	}
	return s, nil
}

// ReplayRecords is Replay for wire records.
func ReplayRecords(recs []chessdto.MoveRecord, opts ...Option) (*Session, error) {
	moves := make([]rules.Move, 0, len(recs))
	for i, rec := range recs {
		m, err := FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		moves = append(moves, m)
	}
	return Replay(moves, opts...)
}

func (s *Session) applyAll(moves []rules.Move) error {
	for i, m := range moves {
		if _, err := s.ApplyRecord(m); err != nil {
			return fmt.Errorf("replay move %d (%s): %w", i+1, m, err)
		}
	}
	return nil
}

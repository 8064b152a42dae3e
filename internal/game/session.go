// Package game orchestrates a chess game on top of the rules engine: turn
// order, history, pending promotion, undo by replay and termination state.
package game

import (
	"sync"

	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/rules"
)

// State is the session's position in its state machine.
type State int

const (
	InProgress State = iota
	AwaitingPromotion
	Checkmate
	Stalemate
)

var stateNames = [...]string{"in_progress", "awaiting_promotion", "checkmate", "stalemate"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether no further moves are accepted.
func (s State) Terminal() bool { return s == Checkmate || s == Stalemate }

// Result is returned by every move-producing call.
type Result struct {
	// Completed is false when the call only opened a promotion prompt.
	Completed bool
	Move      rules.Move
	SAN       string
	Captured  *rules.Piece
	Snapshot  Snapshot
}

type Option func(*Session)

// WithLogger sets the session logger; nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLocalColor binds the session to one side for selection purposes.
func WithLocalColor(c rules.Color) Option {
	return func(s *Session) { s.local = &c }
}

// WithOnMove registers a callback fired after each completed real move. It
// runs outside the session lock.
func WithOnMove(fn func(Result)) Option {
	return func(s *Session) { s.onMove = fn }
}

// Session is one game. All methods are safe for concurrent use; state
// transitions are serialized.
type Session struct {
	mu     sync.Mutex
	log    *zap.Logger
	local  *rules.Color
	onMove func(Result)

	start rules.Setup

	board    *rules.Board
	turn     rules.Color
	last     *rules.Move
	history  []rules.Move
	san      []string
	captured []rules.Piece
	status   rules.Status
	state    State
	pending  *rules.Move
	halfmove int
	fullmove int

	selected *rules.Position
	targets  []rules.Position
}

// New starts a session from the standard layout.
func New(opts ...Option) *Session {
	s := &Session{log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	s.start = standardSetup()
	s.restart()
	return s
}

// NewFromFEN starts a session from an arbitrary position.
func NewFromFEN(fen string, opts ...Option) (*Session, error) {
	setup, err := rules.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	s := &Session{log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	s.start = setup
	s.restart()
	return s, nil
}

func standardSetup() rules.Setup {
	return rules.Setup{Board: rules.StandardBoard(), Turn: rules.White, FullmoveNumber: 1}
}

// restart rebuilds all mutable state from s.start.
func (s *Session) restart() {
	s.board = s.start.Board.Clone()
	s.turn = s.start.Turn
	s.last = nil
	if s.start.Last != nil {
		m := *s.start.Last
		s.last = &m
	}
	s.history = nil
	s.san = nil
	s.captured = nil
	s.pending = nil
	s.halfmove = s.start.HalfmoveClock
	s.fullmove = s.start.FullmoveNumber
	s.clearSelection()
	s.evaluate()
}

func (s *Session) evaluate() {
	s.status = rules.Evaluate(s.board, s.turn, s.last)
	switch {
	case s.status.Checkmated:
		s.state = Checkmate
	case s.status.Stalemated:
		s.state = Stalemate
	default:
		s.state = InProgress
	}
}

func (s *Session) clearSelection() {
	s.selected = nil
	s.targets = nil
}

// SubmitMove requests from→to for the side to move. A pawn reaching the last
// rank leaves the board untouched and opens a promotion prompt; the returned
// Result then has Completed == false.
func (s *Session) SubmitMove(from, to rules.Position) (Result, error) {
	s.mu.Lock()
	res, err := s.submitLocked(from, to)
	s.mu.Unlock()
	s.emit(res, err)
	return res, err
}

func (s *Session) submitLocked(from, to rules.Position) (Result, error) {
	if err := s.checkMove(from, to); err != nil {
		s.log.Debug("move_rejected",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(err))
		return Result{}, err
	}
	if rules.IsPromotion(s.board, from, to) {
		pending := rules.NewMove(from, to)
		s.pending = &pending
		s.state = AwaitingPromotion
		s.clearSelection()
		return Result{Snapshot: s.snapshotLocked()}, nil
	}
	return s.commit(rules.NewMove(from, to)), nil
}

func (s *Session) checkMove(from, to rules.Position) error {
	switch {
	case s.state == AwaitingPromotion:
		return illegal(from, to, "promotion choice pending")
	case s.state.Terminal():
		return illegal(from, to, "game is over (%s)", s.state)
	}
	p, ok := s.board.PieceAt(from)
	if !ok {
		return illegal(from, to, "no piece on %s", from)
	}
	if p.Color != s.turn {
		return illegal(from, to, "%s to move", s.turn)
	}
	if !rules.IsLegal(s.board, from, to, s.last) {
		return illegal(from, to, "%s cannot move to %s", p.Kind, to)
	}
	return nil
}

// ChoosePromotion completes the pending promotion with kind.
func (s *Session) ChoosePromotion(kind rules.PieceKind) (Result, error) {
	s.mu.Lock()
	res, err := s.promoteLocked(kind)
	s.mu.Unlock()
	s.emit(res, err)
	return res, err
}

func (s *Session) promoteLocked(kind rules.PieceKind) (Result, error) {
	if s.pending == nil {
		return Result{}, ErrInvalidPromotionRequest
	}
	if !kind.IsPromotionChoice() {
		s.log.Debug("promotion_rejected", zap.String("kind", kind.String()))
		return Result{}, ErrInvalidPromotionRequest
	}
	m := *s.pending
	m.Promotion = kind
	return s.commit(m), nil
}

// ApplyRecord applies a move received from outside (sync peer or stored
// list) through the same validation as SubmitMove and ChoosePromotion. A
// promotion record must carry its kind. The call is atomic: on error the
// session is unchanged.
func (s *Session) ApplyRecord(m rules.Move) (Result, error) {
	s.mu.Lock()
	res, err := s.applyRecordLocked(m)
	s.mu.Unlock()
	s.emit(res, err)
	return res, err
}

func (s *Session) applyRecordLocked(m rules.Move) (Result, error) {
	if err := s.checkMove(m.From, m.To); err != nil {
		return Result{}, err
	}
	promo := rules.IsPromotion(s.board, m.From, m.To)
	switch {
	case promo && !m.Promotion.IsPromotionChoice():
		return Result{}, illegal(m.From, m.To, "promotion kind missing")
	case !promo && m.Promotion != rules.NoKind:
		return Result{}, illegal(m.From, m.To, "unexpected promotion to %s", m.Promotion)
	}
	res, err := s.submitLocked(m.From, m.To)
	if err != nil || res.Completed {
		return res, err
	}
	return s.promoteLocked(m.Promotion)
}

// commit applies a validated move for real and advances the session.
func (s *Session) commit(m rules.Move) Result {
	san := rules.SAN(s.board, m, s.last)
	mover, _ := s.board.PieceAt(m.From)
	applied, err := rules.Apply(s.board, m, false)
	if err != nil {
		// unreachable: checkMove guarantees a piece on m.From
		panic(err)
	}

	if mover.Kind == rules.Pawn || applied.Captured != nil {
		s.halfmove = 0
	} else {
		s.halfmove++
	}
	if s.turn == rules.Black {
		s.fullmove++
	}

	s.board = applied.Board
	mv := applied.Move
	s.last = &mv
	s.history = append(s.history, mv)
	s.san = append(s.san, san)
	if applied.Captured != nil {
		s.captured = append(s.captured, *applied.Captured)
	}
	s.pending = nil
	s.turn = s.turn.Opponent()
	s.clearSelection()
	s.evaluate()

	s.log.Info("move_applied",
		zap.String("move", mv.String()),
		zap.String("san", san),
		zap.Int("ply", len(s.history)),
		zap.String("state", s.state.String()))

	return Result{
		Completed: true,
		Move:      mv,
		SAN:       san,
		Captured:  applied.Captured,
		Snapshot:  s.snapshotLocked(),
	}
}

func (s *Session) emit(res Result, err error) {
	if err != nil || !res.Completed || s.onMove == nil {
		return
	}
	s.onMove(res)
}

// Undo drops the last move and rebuilds the session by replaying the rest
// of the history from the initial position.
func (s *Session) Undo() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil || len(s.history) == 0 {
		return Snapshot{}, ErrUndoUnavailable
	}
	keep := s.history[:len(s.history)-1]
	s.replayLocked(keep)
	s.log.Info("move_undone", zap.Int("ply", len(s.history)))
	return s.snapshotLocked(), nil
}

func (s *Session) replayLocked(moves []rules.Move) {
	moves = append([]rules.Move(nil), moves...)
	s.restart()
	for _, m := range moves {
		s.commit(m)
	}
}

// Reset returns to the standard starting layout with an empty history.
func (s *Session) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = standardSetup()
	s.restart()
	s.log.Info("session_reset")
	return s.snapshotLocked()
}

// Select implements tap-to-move. If the current selection can reach pos the
// move is submitted; otherwise pos becomes the new selection when it holds a
// piece of the side to move (and of the local colour, if bound), or the
// selection is cleared.
func (s *Session) Select(pos rules.Position) (Result, error) {
	s.mu.Lock()
	if s.state == InProgress && s.selected != nil {
		for _, t := range s.targets {
			if t == pos {
				from := *s.selected
				res, err := s.submitLocked(from, pos)
				s.mu.Unlock()
				s.emit(res, err)
				return res, err
			}
		}
	}
	defer s.mu.Unlock()
	s.clearSelection()
	if s.state != InProgress {
		return Result{Snapshot: s.snapshotLocked()}, nil
	}
	if p, ok := s.board.PieceAt(pos); ok && p.Color == s.turn && (s.local == nil || *s.local == p.Color) {
		sel := pos
		s.selected = &sel
		s.targets = rules.Legal(s.board, pos, s.last)
	}
	return Result{Snapshot: s.snapshotLocked()}, nil
}

// LegalTargets lists legal destinations from pos for the side to move.
func (s *Session) LegalTargets(pos rules.Position) []rules.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InProgress {
		return nil
	}
	p, ok := s.board.PieceAt(pos)
	if !ok || p.Color != s.turn {
		return nil
	}
	return rules.Legal(s.board, pos, s.last)
}

// History returns a copy of the applied moves.
func (s *Session) History() []rules.Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rules.Move(nil), s.history...)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

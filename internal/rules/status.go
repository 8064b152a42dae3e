package rules

// Status holds the termination flags for the side to move. Checkmated and
// Stalemated are mutually exclusive; InCheck is also set on checkmate.
type Status struct {
	InCheck    bool `json:"inCheck"`
	Checkmated bool `json:"checkmated"`
	Stalemated bool `json:"stalemated"`
}

// Terminal reports whether the game is over.
func (s Status) Terminal() bool { return s.Checkmated || s.Stalemated }

// Evaluate computes the termination flags for turn on b. last is the move
// that produced b and matters only for en passant.
func Evaluate(b *Board, turn Color, last *Move) Status {
	st := Status{InCheck: InCheck(b, turn)}
	if HasLegalMove(b, turn, last) {
		return st
	}
	if st.InCheck {
		st.Checkmated = true
	} else {
		st.Stalemated = true
	}
	return st
}

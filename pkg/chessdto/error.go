package chessdto

// Error codes carried by DomainError.
const (
	CodeIllegalMove      = "illegal_move"
	CodeInvalidPromotion = "invalid_promotion"
	CodeUndoUnavailable  = "undo_unavailable"
	CodeGameNotFound     = "game_not_found"
	CodeGameFull         = "game_full"
	CodeGameNotStarted   = "game_not_started"
	CodeTooManyGames     = "too_many_games"
	CodeNotYourTurn      = "not_your_turn"
	CodeNotInGame        = "not_in_game"
	CodeGameFinished     = "game_finished"
	CodeConcurrentUpdate = "concurrent_update"
	CodeBadRequest       = "bad_request"
	CodeInternal         = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}

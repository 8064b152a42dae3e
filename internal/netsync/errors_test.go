package netsync

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/cheese-chess/internal/game"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/internal/store"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func TestDomainErrorMessages(t *testing.T) {
	cat, err := msgcat.New("en", "")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	moveErr := &game.MoveError{From: rules.Sq("a1"), To: rules.Sq("a8"), Reason: "path is blocked"}

	tests := []struct {
		name string
		err  error
		want chessdto.DomainError
	}{
		{"not found", store.ErrGameNotFound, chessdto.DomainError{Code: chessdto.CodeGameNotFound, Message: "Game 123456 was not found or has expired."}},
		{"turn", fmt.Errorf("append: %w", store.ErrNotYourTurn), chessdto.DomainError{Code: chessdto.CodeNotYourTurn, Message: "It is not your turn."}},
		{"concurrent", store.ErrConcurrentUpdate, chessdto.DomainError{Code: chessdto.CodeConcurrentUpdate, Message: "The game changed while your move was processed. Please retry.", Retryable: true}},
		{"move error", fmt.Errorf("replay: %w", moveErr), chessdto.DomainError{Code: chessdto.CodeIllegalMove, Message: "Illegal move a1a8: path is blocked."}},
		{"plain illegal", game.ErrIllegalMove, chessdto.DomainError{Code: chessdto.CodeIllegalMove, Message: "That move is not legal here."}},
		{"unknown", errors.New("boom"), chessdto.DomainError{Code: chessdto.CodeInternal, Message: "Something went wrong on the server."}},
	}
	for _, tc := range tests {
		got := DomainError(tc.err, "123456", cat)
		if diff := cmp.Diff(tc.want, *got); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", tc.name, diff)
		}
	}
	if DomainError(nil, "", cat) != nil {
		t.Fatalf("nil error mapped")
	}
}

func TestDomainErrorWithoutCatalog(t *testing.T) {
	got := DomainError(store.ErrGameFull, "1", nil)
	if got.Code != chessdto.CodeGameFull || got.Message != "game is full" {
		t.Fatalf("unexpected %+v", got)
	}
}

package game

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func TestReplayReproducesRandomGames(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		rng := rand.New(rand.NewSource(seed))
		s := New()
		for ply := 0; ply < 120; ply++ {
			snap := s.Snapshot()
			if snap.State.Terminal() {
				break
			}
			moves := rules.LegalMoves(snap.Board, snap.Turn, snap.LastMove)
			m := moves[rng.Intn(len(moves))]
			res, err := s.SubmitMove(m.From, m.To)
			if err != nil {
				t.Fatalf("seed %d: SubmitMove(%s): %v", seed, m, err)
			}
			if !res.Completed {
				kinds := []rules.PieceKind{rules.Queen, rules.Rook, rules.Bishop, rules.Knight}
				if _, err := s.ChoosePromotion(kinds[rng.Intn(len(kinds))]); err != nil {
					t.Fatalf("seed %d: ChoosePromotion: %v", seed, err)
				}
			}
		}

		want := s.Snapshot()
		replayed, err := ReplayRecords(Records(want.History))
		if err != nil {
			t.Fatalf("seed %d: ReplayRecords: %v", seed, err)
		}
		same(t, replayed.Snapshot(), want)
	}
}

func TestApplyRecordPromotion(t *testing.T) {
	s, err := NewFromFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("NewFromFEN: %v", err)
	}
	before := s.Snapshot()

	_, err = s.ApplyRecord(rules.NewMove(sq("a7"), sq("a8")))
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("promotion without kind: %v", err)
	}
	same(t, s.Snapshot(), before)

	m := rules.NewMove(sq("a1"), sq("b1"))
	m.Promotion = rules.Queen
	if _, err := s.ApplyRecord(m); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("promotion on a king move: %v", err)
	}

	m = rules.NewMove(sq("a7"), sq("a8"))
	m.Promotion = rules.Rook
	res, err := s.ApplyRecord(m)
	if err != nil {
		t.Fatalf("ApplyRecord: %v", err)
	}
	if !res.Completed || res.Move.Promotion != rules.Rook || res.Snapshot.State != InProgress {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestReplayRejectsOutOfTurnRecord(t *testing.T) {
	recs := []chessdto.MoveRecord{{From: "e2", To: "e4"}, {From: "d2", To: "d4"}}
	_, err := ReplayRecords(recs)
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	var me *MoveError
	if !errors.As(err, &me) || me.From != sq("d2") {
		t.Fatalf("err = %v, want MoveError on d2", err)
	}
}

func TestRecordJSON(t *testing.T) {
	s := New()
	mustPlay(t, s, "e2e4", "a7a6", "e4e5", "d7d5", "e5d6")
	last := s.Snapshot().LastMove
	raw, err := json.Marshal(Record(*last))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"from":"e5","to":"d6","isEnPassant":true,"isCastling":false}`
	if string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}

	var rec chessdto.MoveRecord
	if err := json.Unmarshal([]byte(`{"from":"a7","to":"a8","promotion":"queen"}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if diff := cmp.Diff(rules.Move{From: sq("a7"), To: sq("a8"), Promotion: rules.Queen}, m, cmp.Comparer(func(a, b rules.Position) bool { return a == b })); diff != "" {
		t.Fatalf("FromRecord mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []chessdto.MoveRecord{
		{From: "z9", To: "a1"},
		{From: "a7", To: "a8", Promotion: "king"},
	} {
		if _, err := FromRecord(bad); !errors.Is(err, ErrIllegalMove) {
			t.Fatalf("FromRecord(%+v) = %v", bad, err)
		}
	}
}

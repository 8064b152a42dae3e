package archive

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/internal/store"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func foolsMate() *store.Game {
	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	return &store.Game{
		ID:        "123456",
		WhiteID:   "u1",
		WhiteName: "alice",
		BlackID:   "u2",
		Moves: []chessdto.MoveRecord{
			{From: "f2", To: "f3"}, {From: "e7", To: "e5"},
			{From: "g2", To: "g4"}, {From: "d8", To: "h4"},
		},
		SAN:       []string{"f3", "e5", "g4", "Qh4#"},
		Turn:      "white",
		Status:    store.StatusFinished,
		Winner:    "u2",
		Outcome:   "black",
		Method:    "checkmate",
		CreatedAt: start,
		UpdatedAt: start.Add(90 * time.Second),
	}
}

func TestFromStoreBuildsPGN(t *testing.T) {
	got, err := FromStore(foolsMate())
	if err != nil {
		t.Fatalf("FromStore: %v", err)
	}
	wantPGN := "[Event \"Cheese Chess Online\"]\n" +
		"[Site \"123456\"]\n" +
		"[Date \"2026.10.17\"]\n" +
		"[Round \"-\"]\n" +
		"[White \"alice\"]\n" +
		"[Black \"u2\"]\n" +
		"[Result \"0-1\"]\n" +
		"[Termination \"checkmate\"]\n" +
		"\n" +
		"1. f3 e5 2. g4 Qh4# 0-1"
	if got.PGN != wantPGN {
		t.Fatalf("pgn mismatch (-want +got):\n%s", cmp.Diff(wantPGN, got.PGN))
	}
	if diff := cmp.Diff([]string{"f2f3", "e7e5", "g2g4", "d8h4"}, got.MovesUCI); diff != "" {
		t.Fatalf("uci (-want +got):\n%s", diff)
	}
	if got.Result != "black" || got.ResultMethod != "checkmate" || got.Duration != 90*time.Second {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestBuildPGNOddPliesAndSanitize(t *testing.T) {
	g := &domain.ChessGame{
		Code:      "000001",
		WhiteName: `say "hi"`,
		BlackName: `back\slash`,
		MovesSAN:  []string{"e4", "e5", "Nf3"},
		EndedAt:   time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	pgn := BuildPGN(g)
	for _, want := range []string{
		`[White "say 'hi'"]`,
		`[Black "back slash"]`,
		`[Result "*"]`,
		"1. e4 e5 2. Nf3 *",
	} {
		if !strings.Contains(pgn, want) {
			t.Fatalf("pgn missing %q:\n%s", want, pgn)
		}
	}
	if strings.Contains(pgn, "Termination") {
		t.Fatalf("termination tag without a method:\n%s", pgn)
	}
}

func TestResultToPGN(t *testing.T) {
	for in, want := range map[string]string{"white": "1-0", "Black": "0-1", " draw ": "1/2-1/2", "": "*", "resign": "*"} {
		if got := ResultToPGN(in); got != want {
			t.Fatalf("ResultToPGN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestArchiverSkipsUnfinishedAndDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	a := NewArchiver(repo, nil)

	open := foolsMate()
	open.Status = store.StatusPlaying
	if id, err := a.Archive(ctx, open); err != nil || id != 0 {
		t.Fatalf("unfinished game archived: id=%d err=%v", id, err)
	}

	id, err := a.Archive(ctx, foolsMate())
	if err != nil || id != 1 {
		t.Fatalf("Archive: id=%d err=%v", id, err)
	}
	if id, err := a.Archive(ctx, foolsMate()); err != nil || id != 0 {
		t.Fatalf("second archive: id=%d err=%v", id, err)
	}

	got, err := repo.GetGameByCode(ctx, "123456")
	if err != nil || got == nil {
		t.Fatalf("GetGameByCode: %v %v", got, err)
	}
	if got.ID != 1 || got.MovesSAN[3] != "Qh4#" {
		t.Fatalf("stored game %+v", got)
	}
}

func TestMemoryRepositoryRecentGames(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, code := range []string{"000001", "000002", "000003"} {
		g := &domain.ChessGame{Code: code, WhiteID: "u1", BlackID: "u2", EndedAt: base.Add(time.Duration(i) * time.Hour)}
		if i == 2 {
			g.BlackID = "u3"
		}
		if _, err := repo.InsertGame(ctx, g); err != nil {
			t.Fatalf("InsertGame %s: %v", code, err)
		}
	}
	if _, err := repo.InsertGame(ctx, &domain.ChessGame{Code: "000001"}); !errors.Is(err, ErrDuplicateGame) {
		t.Fatalf("duplicate insert err = %v", err)
	}

	codes := func(gs []*domain.ChessGame) []string {
		out := make([]string, 0, len(gs))
		for _, g := range gs {
			out = append(out, g.Code)
		}
		return out
	}
	u1, _ := repo.GetRecentGames(ctx, "u1", 0)
	if diff := cmp.Diff([]string{"000003", "000002", "000001"}, codes(u1)); diff != "" {
		t.Fatalf("u1 games (-want +got):\n%s", diff)
	}
	u2, _ := repo.GetRecentGames(ctx, "u2", 1)
	if diff := cmp.Diff([]string{"000002"}, codes(u2)); diff != "" {
		t.Fatalf("u2 games (-want +got):\n%s", diff)
	}
	none, _ := repo.GetRecentGames(ctx, "nobody", 5)
	if diff := cmp.Diff([]string{}, codes(none), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("unknown player games: %s", diff)
	}

	// returned rows are copies
	u1[0].MovesSAN = append(u1[0].MovesSAN, "e4")
	again, _ := repo.GetGameByCode(ctx, "000003")
	if len(again.MovesSAN) != 0 {
		t.Fatalf("repository row mutated through a returned copy")
	}
}

// Runs against a real database when CHESS_TEST_DATABASE_URL is set.
func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("CHESS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CHESS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	repo, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer repo.Close()

	g, err := FromStore(foolsMate())
	if err != nil {
		t.Fatalf("FromStore: %v", err)
	}
	g.Code = time.Now().Format("150405.000000")
	id, err := repo.InsertGame(ctx, g)
	if err != nil {
		t.Fatalf("InsertGame: %v", err)
	}
	if _, err := repo.InsertGame(ctx, g); !errors.Is(err, ErrDuplicateGame) {
		t.Fatalf("duplicate insert err = %v", err)
	}
	got, err := repo.GetGameByCode(ctx, g.Code)
	if err != nil || got == nil {
		t.Fatalf("GetGameByCode: %v %v", got, err)
	}
	g.ID = id
	if diff := cmp.Diff(g, got, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
	if missing, err := repo.GetGameByCode(ctx, "no-such-code"); err != nil || missing != nil {
		t.Fatalf("missing code: %v %v", missing, err)
	}
}

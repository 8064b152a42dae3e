// Package store keeps online games in Redis: the 6-digit game code, the two
// seats, and the move list every peer replays to catch up.
package store

import (
    "context"
    "crypto/rand"
    "encoding/json"
    "errors"
    "fmt"
    "math/big"
    "sort"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/park285/cheese-chess/internal/game"
    "github.com/park285/cheese-chess/internal/obslog"
    "github.com/park285/cheese-chess/internal/rules"
    "github.com/park285/cheese-chess/pkg/chessdto"
)

const (
    defaultTTL   = 24 * time.Hour
    codeAttempts = 8
)

type Store struct {
    rdb      *redis.Client
    ttl      time.Duration
    maxGames int
    log      *zap.Logger
    now      func() time.Time
}

type Option func(*Store)

// WithTTL sets how long an idle game survives. Non-positive keeps the default.
func WithTTL(d time.Duration) Option {
    return func(s *Store) { if d > 0 { s.ttl = d } }
}

// WithMaxGames caps the number of unfinished games; 0 disables the cap.
func WithMaxGames(n int) Option {
    return func(s *Store) { if n >= 0 { s.maxGames = n } }
}

func WithLogger(l *zap.Logger) Option {
    return func(s *Store) { if l != nil { s.log = l } }
}

func New(rdb *redis.Client, opts ...Option) *Store {
    s := &Store{rdb: rdb, ttl: defaultTTL, log: obslog.L(), now: time.Now}
    for _, o := range opts { o(s) }
    return s
}

// Open connects to REDIS_URL and pings it.
func Open(ctx context.Context, redisURL string, opts ...Option) (*Store, error) {
    if strings.TrimSpace(redisURL) == "" {
        return nil, fmt.Errorf("REDIS_URL required for game store")
    }
    ro, err := ParseRedisURL(redisURL)
    if err != nil { return nil, err }
    rdb := redis.NewClient(ro)
    if err := rdb.Ping(ctx).Err(); err != nil {
        _ = rdb.Close()
        return nil, fmt.Errorf("redis ping: %w", err)
    }
    return New(rdb, opts...), nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

func (s *Store) Close() error {
    if s == nil || s.rdb == nil { return nil }
    return s.rdb.Close()
}

func gameKey(code string) string        { return "chess:game:" + strings.TrimSpace(code) }
func playerKey(playerID string) string  { return "chess:index:player:" + strings.TrimSpace(playerID) }
func activeKey() string                 { return "chess:active" }

// Create opens a new game with playerID as White, waiting for an opponent.
func (s *Store) Create(ctx context.Context, playerID, name string) (*Game, error) {
    playerID = strings.TrimSpace(playerID)
    if playerID == "" { return nil, ErrInvalidArgs }
    if s.maxGames > 0 {
        n, err := s.rdb.SCard(ctx, activeKey()).Result()
        if err != nil { return nil, err }
        if n >= int64(s.maxGames) { return nil, ErrTooManyGames }
    }

    now := s.now()
    g := &Game{
        WhiteID:   playerID,
        WhiteName: strings.TrimSpace(name),
        Moves:     []chessdto.MoveRecord{},
        SAN:       []string{},
        Turn:      rules.White.String(),
        Status:    StatusWaiting,
        CreatedAt: now,
        UpdatedAt: now,
    }
    // 코드 충돌 시 재시도
    for i := 0; i < codeAttempts; i++ {
        code, err := codeGen()
        if err != nil { return nil, err }
        g.ID = code
        raw, err := json.Marshal(g)
        if err != nil { return nil, err }
        ok, err := s.rdb.SetNX(ctx, gameKey(code), raw, s.ttl).Result()
        if err != nil { return nil, err }
        if !ok { continue }
        if err := s.index(ctx, code, playerID); err != nil { return nil, s.discard(ctx, code, playerID, err) }
        if err := s.rdb.SAdd(ctx, activeKey(), code).Err(); err != nil { return nil, s.discard(ctx, code, playerID, err) }
        s.log.Info("chess_game_create", zap.String("game_id", code), zap.String("white_id", playerID))
        return g, nil
    }
    return nil, fmt.Errorf("allocate game code: %d collisions", codeAttempts)
}

// discard drops a half-created game so no waiting game outlives a failed Create.
func (s *Store) discard(ctx context.Context, code, playerID string, cause error) error {
    if err := s.rdb.Del(ctx, gameKey(code)).Err(); err != nil {
        s.log.Warn("chess_game_discard_failed", zap.String("game_id", code), zap.Error(err))
    }
    // 인덱스 정리는 best-effort
    _ = s.rdb.SRem(ctx, playerKey(playerID), code).Err()
    _ = s.rdb.SRem(ctx, activeKey(), code).Err()
    return cause
}

// Join seats playerID. A returning player keeps their colour; a newcomer takes
// Black and starts the game; anyone else gets ErrGameFull.
func (s *Store) Join(ctx context.Context, code, playerID, name string) (*Game, rules.Color, error) {
    playerID = strings.TrimSpace(playerID)
    if playerID == "" || strings.TrimSpace(code) == "" { return nil, rules.White, ErrInvalidArgs }

    var (
        out   *Game
        color rules.Color
    )
    key := gameKey(code)
    err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
        cur, err := s.read(ctx, tx, code)
        if err != nil { return err }
        if c, ok := cur.ColorOf(playerID); ok {
            out, color = cur, c
            return nil
        }
        if cur.Status == StatusFinished { return ErrGameFinished }
        if cur.BlackID != "" { return ErrGameFull }

        cur.BlackID = playerID
        cur.BlackName = strings.TrimSpace(name)
        cur.Status = StatusPlaying
        cur.UpdatedAt = s.now()
        raw, err := json.Marshal(cur)
        if err != nil { return err }
        _, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
            pipe.Set(ctx, key, raw, s.ttl)
            return nil
        })
        if err != nil { return err }
        out, color = cur, rules.Black
        return nil
    }, key)
    if errors.Is(err, redis.TxFailedErr) { return nil, rules.White, ErrConcurrentUpdate }
    if err != nil { return nil, rules.White, err }

    if err := s.index(ctx, out.ID, playerID); err != nil { return nil, rules.White, err }
    s.log.Info("chess_game_join",
        zap.String("game_id", out.ID),
        zap.String("player_id", playerID),
        zap.String("color", color.String()),
        zap.String("status", string(out.Status)),
    )
    return out, color, nil
}

// Load returns the game or ErrGameNotFound.
func (s *Store) Load(ctx context.Context, code string) (*Game, error) {
    return s.read(ctx, s.rdb, code)
}

// Moves returns the full move list for catch-up.
func (s *Store) Moves(ctx context.Context, code string) ([]chessdto.MoveRecord, error) {
    g, err := s.Load(ctx, code)
    if err != nil { return nil, err }
    return g.Moves, nil
}

// Appended is the result of a successful AppendMove.
type Appended struct {
    Game   *Game
    Result game.Result
}

// AppendMove validates rec for playerID against the replayed game and stores
// the engine-resolved move.
func (s *Store) AppendMove(ctx context.Context, code, playerID string, rec chessdto.MoveRecord) (*Appended, error) {
    g, err := s.Load(ctx, code)
    if err != nil { return nil, err }
    return s.AppendMoveAt(ctx, code, playerID, len(g.Moves), rec)
}

// AppendMoveAt is AppendMove for a caller that has seen ply moves. If the
// stored list has a different length, or changes during the transaction, it
// fails with ErrConcurrentUpdate.
func (s *Store) AppendMoveAt(ctx context.Context, code, playerID string, ply int, rec chessdto.MoveRecord) (*Appended, error) {
    playerID = strings.TrimSpace(playerID)
    if playerID == "" { return nil, ErrInvalidArgs }
    key := gameKey(code)

    var out *Appended
    err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
        cur, err := s.read(ctx, tx, code)
        if err != nil { return err }
        color, ok := cur.ColorOf(playerID)
        if !ok { return ErrNotInGame }
        switch cur.Status {
        case StatusFinished:
            return ErrGameFinished
        case StatusWaiting:
            return ErrGameNotStarted
        }
        if len(cur.Moves) != ply { return redis.TxFailedErr }

        sess, err := cur.Session()
        if err != nil { return fmt.Errorf("replay stored game %s: %w", cur.ID, err) }
        if sess.Snapshot().Turn != color { return ErrNotYourTurn }

        m, err := game.FromRecord(rec)
        if err != nil { return err }
        res, err := sess.ApplyRecord(m)
        if err != nil { return err }

        cur.Moves = append(cur.Moves, game.Record(res.Move))
        cur.SAN = append(cur.SAN, res.SAN)
        cur.Turn = res.Snapshot.Turn.String()
        cur.UpdatedAt = s.now()
        switch res.Snapshot.State {
        case game.Checkmate:
            cur.Status = StatusFinished
            cur.Winner = playerID
            cur.Outcome = color.String()
            cur.Method = "checkmate"
        case game.Stalemate:
            cur.Status = StatusFinished
            cur.Outcome = "draw"
            cur.Method = "stalemate"
        }

        raw, err := json.Marshal(cur)
        if err != nil { return err }
        _, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
            pipe.Set(ctx, key, raw, s.ttl)
            if cur.Status == StatusFinished {
                pipe.SRem(ctx, activeKey(), cur.ID)
            }
            return nil
        })
        if err != nil { return err }
        out = &Appended{Game: cur, Result: res}
        return nil
    }, key)

    if err != nil {
        if errors.Is(err, redis.TxFailedErr) { return nil, ErrConcurrentUpdate }
        s.log.Debug("chess_move_rejected",
            zap.String("game_id", code),
            zap.String("player_id", playerID),
            zap.String("move", rec.From+rec.To),
            zap.Error(err),
        )
        return nil, err
    }
    s.log.Info("chess_move",
        zap.String("game_id", out.Game.ID),
        zap.String("player_id", playerID),
        zap.String("san", out.Result.SAN),
        zap.String("status", string(out.Game.Status)),
    )
    return out, nil
}

// GamesByPlayer lists the player's games, most recently updated first.
// Expired codes are pruned from the index.
func (s *Store) GamesByPlayer(ctx context.Context, playerID string) ([]*Game, error) {
    if strings.TrimSpace(playerID) == "" { return nil, nil }
    codes, err := s.rdb.SMembers(ctx, playerKey(playerID)).Result()
    if err != nil { return nil, err }
    var list []*Game
    for _, code := range codes {
        g, gerr := s.Load(ctx, code)
        if errors.Is(gerr, ErrGameNotFound) {
            _ = s.rdb.SRem(ctx, playerKey(playerID), code).Err()
            continue
        }
        if gerr != nil { return nil, gerr }
        list = append(list, g)
    }
    sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
    return list, nil
}

func (s *Store) index(ctx context.Context, code, playerID string) error {
    key := playerKey(playerID)
    if err := s.rdb.SAdd(ctx, key, code).Err(); err != nil { return err }
    // 인덱스 키 TTL도 갱신하여 누적 방지(게임 TTL과 동일)
    return s.rdb.Expire(ctx, key, s.ttl).Err()
}

type getter interface {
    Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *Store) read(ctx context.Context, c getter, code string) (*Game, error) {
    raw, err := c.Get(ctx, gameKey(code)).Bytes()
    if err == redis.Nil { return nil, ErrGameNotFound }
    if err != nil { return nil, err }
    var g Game
    if err := json.Unmarshal(raw, &g); err != nil { return nil, fmt.Errorf("decode game %s: %w", code, err) }
    return &g, nil
}

// codeGen returns a 6-digit numeric game code.
func codeGen() (string, error) {
    n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
    if err != nil { return "", err }
    return fmt.Sprintf("%06d", n.Int64()), nil
}

// ParseRedisURL converts a redis:// or rediss:// URL into client options.
// rediss enables TLS; user, password, db and query options are honoured.
func ParseRedisURL(raw string) (*redis.Options, error) {
    o, err := redis.ParseURL(strings.TrimSpace(raw))
    if err != nil { return nil, fmt.Errorf("parse redis url: %w", err) }
    return o, nil
}

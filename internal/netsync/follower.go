package netsync

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/game"
	"github.com/park285/cheese-chess/internal/obslog"
	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

// Follower mirrors a remote game into a local session. Remote move lists are
// authoritative; only records beyond the local history are applied.
type Follower struct {
	mu      sync.Mutex
	session *game.Session
	color   rules.Color
	log     *zap.Logger
}

// NewFollower creates a follower whose session selection is bound to color.
func NewFollower(color rules.Color, log *zap.Logger, opts ...game.Option) *Follower {
	if log == nil {
		log = obslog.L()
	}
	opts = append([]game.Option{game.WithLocalColor(color), game.WithLogger(log)}, opts...)
	return &Follower{session: game.New(opts...), color: color, log: log}
}

func (f *Follower) Session() *game.Session { return f.session }

func (f *Follower) Color() rules.Color { return f.color }

// Apply brings the session up to recs. Records already in the local history
// must match it. It returns how many records were applied; on a mismatch or
// an illegal record the error wraps game.ErrIllegalMove and the session keeps
// every move applied before it.
func (f *Follower) Apply(recs []chessdto.MoveRecord) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyLocked(recs)
}

func (f *Follower) applyLocked(recs []chessdto.MoveRecord) (int, error) {
	local := f.session.History()
	if len(recs) < len(local) {
		return 0, f.desync(fmt.Errorf("%w: remote has %d moves, local has %d", game.ErrIllegalMove, len(recs), len(local)))
	}
	for i, m := range local {
		if !sameMove(game.Record(m), recs[i]) {
			return 0, f.desync(fmt.Errorf("%w: move %d differs: local %s remote %s%s", game.ErrIllegalMove, i+1, m, recs[i].From, recs[i].To))
		}
	}

	applied := 0
	for i := len(local); i < len(recs); i++ {
		m, err := game.FromRecord(recs[i])
		if err != nil {
			return applied, f.desync(fmt.Errorf("remote move %d: %w", i+1, err))
		}
		if _, err := f.session.ApplyRecord(m); err != nil {
			return applied, f.desync(fmt.Errorf("remote move %d (%s): %w", i+1, m, err))
		}
		applied++
	}
	return applied, nil
}

// ApplyAt applies rec as move number ply. A ply already present must match;
// a ply past the next one returns ErrSyncGap.
func (f *Follower) ApplyAt(ply int, rec chessdto.MoveRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	local := f.session.History()
	n := len(local)
	switch {
	case ply <= 0:
		return fmt.Errorf("%w: ply %d", game.ErrIllegalMove, ply)
	case ply > n+1:
		return fmt.Errorf("%w: have %d, got ply %d", ErrSyncGap, n, ply)
	case ply <= n:
		if !sameMove(game.Record(local[ply-1]), rec) {
			return f.desync(fmt.Errorf("%w: move %d differs: local %s remote %s%s", game.ErrIllegalMove, ply, local[ply-1], rec.From, rec.To))
		}
		return nil
	}
	_, err := f.applyLocked(append(game.Records(local), rec))
	return err
}

func (f *Follower) desync(err error) error {
	f.log.Warn("chess_sync_desync", zap.String("color", f.color.String()), zap.Error(err))
	return err
}

func sameMove(a, b chessdto.MoveRecord) bool {
	return a.From == b.From && a.To == b.To && a.Promotion == b.Promotion
}

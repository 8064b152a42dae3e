package netsync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-chess/internal/obslog"
	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

type PeerState int

const (
	PeerDisconnected PeerState = iota
	PeerConnecting
	PeerConnected
	PeerReconnecting
	PeerFailed
	PeerClosed
)

func (s PeerState) String() string {
	switch s {
	case PeerConnecting:
		return "connecting"
	case PeerConnected:
		return "connected"
	case PeerReconnecting:
		return "reconnecting"
	case PeerFailed:
		return "failed"
	case PeerClosed:
		return "closed"
	}
	return "disconnected"
}

// Peer is a websocket client of a Hub. Every sync and move frame is applied
// to its Follower before it is handed to Frames.
type Peer struct {
	endpoint string
	game     string
	player   string
	name     string

	// idM guards game, color and follower, rewritten by reconnects.
	idM      sync.RWMutex
	follower *Follower
	color    rules.Color
	log      *zap.Logger

	conn    *websocket.Conn
	state   PeerState
	connM   sync.RWMutex
	onState func(PeerState)

	frames chan chessdto.ServerFrame

	maxReconnectAttempts int
	pingInterval         time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

type PeerOption func(*Peer)

// WithGame joins an existing game; without it the hub creates one.
func WithGame(code string) PeerOption { return func(p *Peer) { p.game = code } }

func WithPlayer(id, name string) PeerOption {
	return func(p *Peer) { p.player, p.name = id, name }
}

func WithReconnect(maxAttempts int) PeerOption {
	return func(p *Peer) { p.maxReconnectAttempts = maxAttempts }
}

func WithPingInterval(d time.Duration) PeerOption {
	return func(p *Peer) {
		if d > 0 {
			p.pingInterval = d
		}
	}
}

func WithPeerLogger(l *zap.Logger) PeerOption {
	return func(p *Peer) {
		if l != nil {
			p.log = l
		}
	}
}

// WithStateCallback is called on every state transition.
func WithStateCallback(fn func(PeerState)) PeerOption { return func(p *Peer) { p.onState = fn } }

// Dial connects to endpoint (ws://host/ws), waits for the sync frame and
// starts the read and ping loops.
func Dial(ctx context.Context, endpoint string, opts ...PeerOption) (*Peer, error) {
	p := &Peer{
		endpoint:             endpoint,
		log:                  obslog.L(),
		frames:               make(chan chessdto.ServerFrame, 64),
		maxReconnectAttempts: 5,
		pingInterval:         30 * time.Second,
		stopCh:               make(chan struct{}),
	}
	for _, o := range opts {
		o(p)
	}
	// reconnects must present the same identity to keep the seat
	if p.player == "" {
		p.player = uuid.NewString()
	}
	p.rootCtx, p.rootCancel = context.WithCancel(context.Background())
	p.setState(PeerConnecting)
	if err := p.connect(ctx); err != nil {
		p.setState(PeerFailed)
		p.rootCancel()
		return nil, err
	}
	return p, nil
}

func (p *Peer) connect(ctx context.Context) error {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return err
	}
	q := u.Query()
	setIf(q, "game", p.Game())
	setIf(q, "player", p.player)
	setIf(q, "name", p.name)
	u.RawQuery = q.Encode()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, u.String(), &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		return err
	}

	var first chessdto.ServerFrame
	if err := wsjson.Read(dialCtx, conn, &first); err != nil {
		_ = conn.Close(websocket.StatusProtocolError, "no sync")
		return fmt.Errorf("read sync frame: %w", err)
	}
	if first.Type == chessdto.FrameError && first.Error != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "rejected")
		return first.Error
	}
	if first.Type != chessdto.FrameSync {
		_ = conn.Close(websocket.StatusProtocolError, "no sync")
		return fmt.Errorf("expected sync frame, got %q", first.Type)
	}
	color, err := rules.ParseColor(first.Color)
	if err != nil {
		_ = conn.Close(websocket.StatusProtocolError, "bad color")
		return err
	}

	p.idM.Lock()
	if p.follower == nil {
		p.follower = NewFollower(color, p.log)
	}
	p.color = color
	p.game = first.Game
	follower := p.follower
	p.idM.Unlock()
	if _, err := follower.Apply(first.Moves); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "desync")
		return err
	}

	p.connM.Lock()
	p.conn = conn
	p.connM.Unlock()
	p.setState(PeerConnected)
	p.emit(first)

	p.wg.Add(2)
	go p.listen(conn)
	go p.pingLoop(conn)
	return nil
}

// Move asks the hub to play rec. The result arrives as a move or error frame.
func (p *Peer) Move(ctx context.Context, rec chessdto.MoveRecord) error {
	p.connM.RLock()
	conn := p.conn
	p.connM.RUnlock()
	if conn == nil {
		return errors.New("peer not connected")
	}
	return wsjson.Write(ctx, conn, chessdto.ClientFrame{Type: chessdto.FrameMove, Move: &rec})
}

func (p *Peer) Frames() <-chan chessdto.ServerFrame { return p.frames }

func (p *Peer) Follower() *Follower {
	p.idM.RLock()
	defer p.idM.RUnlock()
	return p.follower
}

func (p *Peer) Color() rules.Color {
	p.idM.RLock()
	defer p.idM.RUnlock()
	return p.color
}

// Game is the game code, known once connected.
func (p *Peer) Game() string {
	p.idM.RLock()
	defer p.idM.RUnlock()
	return p.game
}

// Player is the id presented to the hub.
func (p *Peer) Player() string { return p.player }

func (p *Peer) State() PeerState {
	p.connM.RLock()
	defer p.connM.RUnlock()
	return p.state
}

func (p *Peer) listen(conn *websocket.Conn) {
	defer p.wg.Done()
	for {
		var f chessdto.ServerFrame
		if err := wsjson.Read(p.rootCtx, conn, &f); err != nil {
			if p.isStopping() {
				return
			}
			p.log.Debug("chess_peer_read_failed", zap.String("game_id", p.Game()), zap.Error(err))
			p.dropConn(conn, websocket.StatusGoingAway, "reconnect")
			return
		}
		switch f.Type {
		case chessdto.FrameSync:
			if _, err := p.Follower().Apply(f.Moves); err != nil {
				p.dropConn(conn, websocket.StatusInternalError, "desync")
				return
			}
		case chessdto.FrameMove:
			if f.Move == nil {
				continue
			}
			if err := p.Follower().ApplyAt(f.Ply, *f.Move); err != nil {
				// reconnecting yields a fresh sync frame
				p.log.Warn("chess_peer_move_rejected", zap.String("game_id", p.Game()), zap.Int("ply", f.Ply), zap.Error(err))
				p.dropConn(conn, websocket.StatusGoingAway, "resync")
				return
			}
		}
		p.emit(f)
	}
}

func (p *Peer) pingLoop(conn *websocket.Conn) {
	defer p.wg.Done()
	t := time.NewTicker(p.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-p.stopCh:
			return
		case <-p.rootCtx.Done():
			return
		case <-t.C:
			if !p.current(conn) {
				return
			}
			ctx, cancel := context.WithTimeout(p.rootCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				p.dropConn(conn, websocket.StatusGoingAway, "ping failure")
				return
			}
		}
	}
}

// dropConn closes conn if it is still current and schedules a reconnect.
func (p *Peer) dropConn(conn *websocket.Conn, code websocket.StatusCode, reason string) {
	p.connM.Lock()
	if p.conn != conn {
		p.connM.Unlock()
		return
	}
	p.conn = nil
	p.connM.Unlock()
	_ = conn.Close(code, reason)
	if p.isStopping() {
		return
	}
	p.setState(PeerDisconnected)
	p.scheduleReconnect()
}

func (p *Peer) scheduleReconnect() {
	if p.maxReconnectAttempts <= 0 {
		p.setState(PeerFailed)
		return
	}
	p.setState(PeerReconnecting)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for attempt := 1; attempt <= p.maxReconnectAttempts; attempt++ {
			select {
			case <-p.stopCh:
				return
			case <-time.After(backoffDuration(attempt)):
			}
			if err := p.connect(p.rootCtx); err != nil {
				p.log.Debug("chess_peer_reconnect_failed", zap.Int("attempt", attempt), zap.Error(err))
				continue
			}
			return
		}
		p.setState(PeerFailed)
	}()
}

func (p *Peer) emit(f chessdto.ServerFrame) {
	select {
	case p.frames <- f:
	default:
		p.log.Warn("chess_peer_frame_dropped", zap.String("game_id", p.Game()), zap.String("type", f.Type))
	}
}

// Close stops the loops and closes the connection.
func (p *Peer) Close(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.connM.Lock()
	conn := p.conn
	p.conn = nil
	p.connM.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "close")
	}
	p.rootCancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		p.setState(PeerClosed)
		return nil
	}
}

func (p *Peer) setState(s PeerState) {
	p.connM.Lock()
	p.state = s
	cb := p.onState
	p.connM.Unlock()
	if cb != nil {
		cb(s)
	}
}

func (p *Peer) current(conn *websocket.Conn) bool {
	p.connM.RLock()
	defer p.connM.RUnlock()
	return p.conn == conn
}

func (p *Peer) isStopping() bool {
	select {
	case <-p.stopCh:
		return true
	default:
		return false
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func setIf(q url.Values, k, v string) {
	if v != "" {
		q.Set(k, v)
	}
}

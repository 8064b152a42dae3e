// Package netsync relays moves between the two players of an online game:
// Hub is the websocket server, Peer the client and Follower the client-side
// mirror of the authoritative move list.
package netsync

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-chess/internal/archive"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/notify"
	"github.com/park285/cheese-chess/internal/obslog"
	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/internal/store"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

const (
	sendBuffer    = 16
	writeTimeout  = 5 * time.Second
	notifyTimeout = 10 * time.Second
)

type Hub struct {
	store    *store.Store
	archiver *archive.Archiver
	notifier notify.Notifier
	cat      *msgcat.Catalog
	log      *zap.Logger
	origins  []string

	mu    sync.Mutex
	rooms map[string]map[*client]struct{}
	locks map[string]*gameLock
	wg    sync.WaitGroup
}

// gameLock orders appends and their broadcasts within one game.
type gameLock struct {
	mu   sync.Mutex
	refs int
}

type HubOption func(*Hub)

func WithArchiver(a *archive.Archiver) HubOption { return func(h *Hub) { h.archiver = a } }

func WithNotifier(n notify.Notifier) HubOption {
	return func(h *Hub) {
		if n != nil {
			h.notifier = n
		}
	}
}

func WithCatalog(c *msgcat.Catalog) HubOption { return func(h *Hub) { h.cat = c } }

func WithHubLogger(l *zap.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// WithOriginPatterns allows cross-origin browser clients matching patterns.
func WithOriginPatterns(patterns ...string) HubOption {
	return func(h *Hub) { h.origins = append(h.origins, patterns...) }
}

func NewHub(st *store.Store, opts ...HubOption) *Hub {
	h := &Hub{
		store:    st,
		notifier: notify.Nop{},
		log:      obslog.L(),
		rooms:    make(map[string]map[*client]struct{}),
		locks:    make(map[string]*gameLock),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

type client struct {
	conn   *websocket.Conn
	game   string
	player string
	color  rules.Color
	send   chan chessdto.ServerFrame
	done   chan struct{}
	once   sync.Once
}

func (c *client) close() { c.once.Do(func() { close(c.done) }) }

// ServeHTTP upgrades /ws?game=<code>&player=<id>&name=<display>. Without a
// game code a new game is created with the caller as White.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := strings.TrimSpace(q.Get("game"))
	player := strings.TrimSpace(q.Get("player"))
	if player == "" {
		player = uuid.NewString()
	}
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		name = petname.Generate(2, "-")
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.log.Warn("chess_ws_accept_failed", zap.Error(err))
		return
	}
	ctx := r.Context()

	// a join holds the game lock until registered so no move frame falls
	// between the sync frame and the first broadcast
	unlock := func() {}
	if code != "" {
		unlock = h.lockGame(code)
	}
	g, color, err := h.seat(ctx, code, player, name)
	if err != nil {
		unlock()
		de := DomainError(err, code, h.cat)
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		_ = wsjson.Write(wctx, conn, chessdto.ServerFrame{Type: chessdto.FrameError, Game: code, Error: de})
		cancel()
		_ = conn.Close(websocket.StatusPolicyViolation, de.Code)
		return
	}

	c := &client{
		conn:   conn,
		game:   g.ID,
		player: player,
		color:  color,
		send:   make(chan chessdto.ServerFrame, sendBuffer),
		done:   make(chan struct{}),
	}
	c.send <- chessdto.ServerFrame{
		Type:    chessdto.FrameSync,
		Game:    g.ID,
		Color:   color.String(),
		Players: g.Players(),
		Moves:   g.Moves,
		Ply:     len(g.Moves),
		Status:  string(g.Status),
		Winner:  g.Winner,
	}
	h.register(c)
	unlock()
	h.broadcastExcept(c, g.ID, chessdto.ServerFrame{Type: chessdto.FrameJoin, Game: g.ID, Players: g.Players(), Status: string(g.Status)})
	h.log.Info("chess_ws_connected", zap.String("game_id", g.ID), zap.String("player_id", player), zap.String("color", color.String()))

	go h.writeLoop(ctx, c)
	h.readLoop(ctx, c)

	h.unregister(c)
	c.close()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	h.log.Info("chess_ws_disconnected", zap.String("game_id", g.ID), zap.String("player_id", player))
}

func (h *Hub) seat(ctx context.Context, code, player, name string) (*store.Game, rules.Color, error) {
	if code == "" {
		g, err := h.store.Create(ctx, player, name)
		if err != nil {
			return nil, rules.White, err
		}
		return g, rules.White, nil
	}
	return h.store.Join(ctx, code, player, name)
}

func (h *Hub) readLoop(ctx context.Context, c *client) {
	for {
		var frame chessdto.ClientFrame
		if err := wsjson.Read(ctx, c.conn, &frame); err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				h.log.Debug("chess_ws_read_failed", zap.String("game_id", c.game), zap.Error(err))
			}
			return
		}
		if frame.Type != chessdto.FrameMove || frame.Move == nil {
			h.deliver(c, chessdto.ServerFrame{Type: chessdto.FrameError, Game: c.game, Error: badRequest("expected a move frame", h.cat)})
			continue
		}
		if _, err := h.Submit(ctx, c.game, c.player, *frame.Move); err != nil {
			h.deliver(c, chessdto.ServerFrame{Type: chessdto.FrameError, Game: c.game, Error: DomainError(err, c.game, h.cat)})
		}
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *client) {
	for {
		select {
		case <-c.done:
			return
		case f := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c.conn, f)
			cancel()
			if err != nil {
				h.log.Debug("chess_ws_write_failed", zap.String("game_id", c.game), zap.Error(err))
				c.close()
				_ = c.conn.Close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

// Submit appends a move for player and fans the result out: a move frame to
// every connection of the game, a webhook event, and the archive once the
// game is finished.
func (h *Hub) Submit(ctx context.Context, code, player string, rec chessdto.MoveRecord) (*store.Appended, error) {
	unlock := h.lockGame(code)
	out, err := h.store.AppendMove(ctx, code, player, rec)
	if err != nil {
		unlock()
		return nil, err
	}
	g := out.Game
	stored := g.Moves[len(g.Moves)-1]
	h.broadcast(g.ID, chessdto.ServerFrame{
		Type:   chessdto.FrameMove,
		Game:   g.ID,
		Move:   &stored,
		Ply:    len(g.Moves),
		SAN:    out.Result.SAN,
		Status: string(g.Status),
		Winner: g.Winner,
	})
	unlock()

	color, _ := g.ColorOf(player)
	ev := notify.MoveEvent{
		Game:    g.ID,
		Ply:     len(g.Moves),
		Player:  player,
		Color:   color.String(),
		Move:    stored,
		SAN:     out.Result.SAN,
		FEN:     out.Result.Snapshot.FEN,
		Status:  string(g.Status),
		Outcome: g.Outcome,
		Winner:  g.Winner,
		At:      g.UpdatedAt,
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := h.notifier.Notify(nctx, ev); err != nil {
			h.log.Warn("chess_notify_failed", zap.String("game_id", ev.Game), zap.Int("ply", ev.Ply), zap.Error(err))
		}
	}()

	if g.Status == store.StatusFinished && h.archiver != nil {
		if _, err := h.archiver.Archive(ctx, g); err != nil {
			h.log.Error("chess_archive_error", zap.String("game_id", g.ID), zap.Error(err))
		}
	}
	return out, nil
}

// Wait blocks until pending webhook deliveries finish.
func (h *Hub) Wait() { h.wg.Wait() }

// Connections returns how many sockets are attached to code.
func (h *Hub) Connections(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[code])
}

// lockGame serialises work on code and returns the matching unlock.
func (h *Hub) lockGame(code string) func() {
	h.mu.Lock()
	l := h.locks[code]
	if l == nil {
		l = &gameLock{}
		h.locks[code] = l
	}
	l.refs++
	h.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		h.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(h.locks, code)
		}
		h.mu.Unlock()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[c.game]
	if room == nil {
		room = make(map[*client]struct{})
		h.rooms[c.game] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[c.game]
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.game)
	}
}

func (h *Hub) broadcast(code string, f chessdto.ServerFrame) { h.broadcastExcept(nil, code, f) }

func (h *Hub) broadcastExcept(skip *client, code string, f chessdto.ServerFrame) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.rooms[code]))
	for c := range h.rooms[code] {
		if c != skip {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()
	for _, c := range targets {
		h.deliver(c, f)
	}
}

// deliver queues f; a peer whose buffer is full is disconnected and will
// resync on reconnect.
func (h *Hub) deliver(c *client, f chessdto.ServerFrame) {
	select {
	case <-c.done:
	case c.send <- f:
	default:
		h.log.Warn("chess_ws_slow_peer", zap.String("game_id", c.game), zap.String("player_id", c.player))
		c.close()
		_ = c.conn.Close(websocket.StatusPolicyViolation, "too slow")
	}
}

package director

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/malexanderboyd/godr4ft/internal"
	"github.com/malexanderboyd/godr4ft/internal/cardlist"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/director/models"
	"github.com/malexanderboyd/godr4ft/internal/game"
)

type Config struct {
	Pool *cards.Pool
	// Rater is optional; without it bots use the rarity heuristic.
	Rater        Rater
	Defaults     game.Options
	StatusKey    string
	SnapshotPath string
	// Seed, when set, seeds every session's random source.
	Seed func() uint64
}

type inbound struct {
	conn *Connection
	msg  *models.Message
}

// Coordinator owns every session and connection. All state is mutated by the
// Listen loop only; other goroutines talk to it through channels.
type Coordinator struct {
	pool         *cards.Pool
	rater        Rater
	defaults     game.Options
	statusKey    string
	snapshotPath string
	seed         func() uint64

	sessions    map[string]*Session
	connections map[string]*Connection
	inactive    map[string]*sessionSnapshot

	addConnCh chan *Connection
	delConnCh chan *Connection
	inboundCh chan inbound
	callCh    chan func()
	doneCh    chan chan error
	stopped   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	upgrader  websocket.Upgrader
	startedAt time.Time
	drafting  *atomic.Int64
	active    *atomic.Int64
	connected *atomic.Int64
}

func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.Pool == nil {
		return nil, errors.New("coordinator needs a card pool")
	}
	seed := cfg.Seed
	if seed == nil {
		seed = rand.Uint64
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		pool:         cfg.Pool,
		rater:        cfg.Rater,
		defaults:     cfg.Defaults.Clone(),
		statusKey:    cfg.StatusKey,
		snapshotPath: cfg.SnapshotPath,
		seed:         seed,
		sessions:     make(map[string]*Session),
		connections:  make(map[string]*Connection),
		inactive:     make(map[string]*sessionSnapshot),
		addConnCh:    make(chan *Connection),
		delConnCh:    make(chan *Connection),
		inboundCh:    make(chan inbound),
		callCh:       make(chan func()),
		doneCh:       make(chan chan error),
		stopped:      make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		startedAt: time.Now(),
		drafting:  atomic.NewInt64(0),
		active:    atomic.NewInt64(0),
		connected: atomic.NewInt64(0),
	}
	if c.snapshotPath != "" {
		snaps, err := readSnapshots(c.snapshotPath)
		if err != nil {
			cancel()
			return nil, err
		}
		for _, snap := range snaps {
			c.inactive[snap.ID] = snap
		}
		internal.GetLogger().Infow("loaded inactive sessions", "sessions", len(snaps), "path", c.snapshotPath)
	}
	return c, nil
}

// AddConnection hands a freshly upgraded socket to the loop. It reports false
// once the coordinator has shut down.
func (c *Coordinator) AddConnection(conn *Connection) bool {
	select {
	case c.addConnCh <- conn:
		return true
	case <-c.stopped:
		return false
	}
}

func (c *Coordinator) RemoveConnection(conn *Connection) {
	select {
	case c.delConnCh <- conn:
	case <-c.stopped:
	}
}

func (c *Coordinator) receive(conn *Connection, msg *models.Message) bool {
	select {
	case c.inboundCh <- inbound{conn: conn, msg: msg}:
		return true
	case <-c.stopped:
		return false
	}
}

// call runs fn on the loop.
func (c *Coordinator) call(fn func()) {
	select {
	case c.callCh <- fn:
	case <-c.stopped:
	}
}

// Shutdown stops the loop, snapshots idle sessions and closes every socket.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case c.doneCh <- reply:
	case <-c.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listen is the event loop. Every session and connection mutation happens
// here, one event at a time.
func (c *Coordinator) Listen() {
	logger := internal.GetLogger()
	logger.Infow("coordinator listening")
	for {
		select {
		case conn := <-c.addConnCh:
			c.addConnection(conn)
		case conn := <-c.delConnCh:
			c.removeConnection(conn)
		case in := <-c.inboundCh:
			c.handle(in.conn, in.msg)
		case fn := <-c.callCh:
			c.safely("call", fn)
		case reply := <-c.doneCh:
			err := c.shutdown()
			close(c.stopped)
			c.cancel()
			reply <- err
			logger.Infow("coordinator stopped")
			return
		}
		c.reap()
		c.refreshStatus()
	}
}

func (c *Coordinator) addConnection(conn *Connection) {
	logger := internal.GetLogger()
	if old := c.connections[conn.UserID]; old != nil && old != conn {
		logger.Infow("replacing existing connection", "user", conn.UserID)
		old.Done()
	}
	c.connections[conn.UserID] = conn
	logger.Debugw("added connection", "user", conn.UserID, "total", len(c.connections))

	sessionID := conn.requested
	if sessionID == "" {
		sessionID = c.sessionOf(conn.UserID)
	}
	c.safely("connect", func() {
		if err := c.joinSession(conn, sessionID); err != nil {
			logger.Warnw("cannot join session", "user", conn.UserID, "session", sessionID, "error", err)
		}
	})
}

func (c *Coordinator) removeConnection(conn *Connection) {
	if c.connections[conn.UserID] != conn {
		return
	}
	delete(c.connections, conn.UserID)
	internal.GetLogger().Debugw("removed connection", "user", conn.UserID, "total", len(c.connections))
	if s := c.sessions[conn.SessionID]; s != nil {
		c.safely("disconnect", func() {
			s.Leave(conn.UserID)
		})
	}
}

// sessionOf finds the session a user is in. A seat handed to a bot after the
// user moved on does not count.
func (c *Coordinator) sessionOf(userID string) string {
	for id, s := range c.sessions {
		if contains(s.Users, userID) || (s.isPlayer(userID) && !s.replaced[userID]) {
			return id
		}
	}
	return ""
}

func (c *Coordinator) joinSession(conn *Connection, sessionID string) error {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if prev := c.sessionOf(conn.UserID); prev != "" && prev != sessionID {
		if err := c.sessions[prev].Depart(conn.UserID); err != nil {
			internal.GetLogger().Warnw("error while leaving session", "session", prev, "user", conn.UserID, "error", err)
		}
	}
	conn.SessionID = sessionID
	s, err := c.session(sessionID, conn.UserID)
	if err != nil {
		return err
	}
	s.Join(conn.UserID, conn.UserName)
	return nil
}

// session returns the live session id, restoring or creating it.
func (c *Coordinator) session(id, owner string) (*Session, error) {
	if s, ok := c.sessions[id]; ok {
		return s, nil
	}
	env := SessionEnv{
		Hub:   c,
		Pool:  c.pool,
		Rater: c.rater,
		RNG:   rand.New(rand.NewPCG(c.seed(), c.seed())),
	}
	if snap, ok := c.inactive[id]; ok {
		s, err := restoreSession(snap, env)
		if err != nil {
			return nil, game.Internal(err)
		}
		delete(c.inactive, id)
		c.sessions[id] = s
		internal.GetLogger().Infow("restored inactive session", "session", id)
		return s, nil
	}
	s := NewSession(id, owner, c.defaults, env)
	c.sessions[id] = s
	internal.GetLogger().Infow("created session", "session", id, "owner", owner)
	return s, nil
}

// reap drops sessions nobody is in. Sessions of a standing organizer are
// parked in the inactive table instead.
func (c *Coordinator) reap() {
	logger := internal.GetLogger()
	for id, s := range c.sessions {
		if !s.Empty() {
			continue
		}
		if s.KeepWhenEmpty() {
			snap, err := s.snapshot()
			if err != nil {
				logger.Errorw("cannot park session", "session", id, "error", err)
			} else {
				c.inactive[id] = snap
			}
		}
		delete(c.sessions, id)
		logger.Infow("removed empty session", "session", id, "parked", s.KeepWhenEmpty())
	}
}

func (c *Coordinator) refreshStatus() {
	var drafting int64
	for _, s := range c.sessions {
		if s.Drafting() {
			drafting++
		}
	}
	c.drafting.Store(drafting)
	c.active.Store(int64(len(c.sessions)))
	c.connected.Store(int64(len(c.connections)))
}

// safely runs fn, turning a panic into a logged internal error so the loop
// keeps running.
func (c *Coordinator) safely(what string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			internal.GetLogger().Errorw("recovered from panic", "during", what, "panic", r, "stack", string(debug.Stack()))
			err = game.Internal(fmt.Errorf("panic during %s: %v", what, r))
		}
	}()
	fn()
	return nil
}

func (c *Coordinator) handle(conn *Connection, msg *models.Message) {
	logger := internal.GetLogger()
	var err error
	if perr := c.safely(string(msg.Type), func() { err = c.route(conn, msg) }); perr != nil {
		err = perr
	}
	if err != nil {
		fields := []interface{}{"session", conn.SessionID, "user", conn.UserID, "event", msg.Type, "error", err}
		switch game.KindOf(err) {
		case game.ValidationError:
			logger.Debugw("rejected event", fields...)
		case game.InternalError:
			logger.Errorw("event failed", fields...)
		default:
			logger.Infow("rejected event", fields...)
		}
	}
	c.reply(conn, msg, err)
}

// reply answers acknowledged requests. Failures of requests without an ack
// id are reported as a notice so they are never dropped silently.
func (c *Coordinator) reply(conn *Connection, msg *models.Message, err error) {
	if msg.Ack == nil {
		if err != nil {
			conn.Write(models.NewMessage(models.Notice, models.NoticePayload{Title: "Error", Text: err.Error()}))
		}
		return
	}
	resp := models.AckResponse{Code: game.CodeOf(err)}
	if err != nil {
		resp.Error = err.Error()
		var pe *cardlist.ParseError
		if errors.As(err, &pe) {
			resp.ParseError = pe
		}
	}
	ack := models.NewMessage(models.Ack, resp)
	ack.Ack = msg.Ack
	conn.Write(ack)
}

func decode(msg *models.Message, v interface{}) error {
	if err := msg.Decode(v); err != nil {
		return game.Validation("malformed %s payload: %v", msg.Type, err)
	}
	return nil
}

func (c *Coordinator) route(conn *Connection, msg *models.Message) error {
	switch msg.Type {
	case models.JoinSession:
		var req models.JoinSessionRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		return c.joinSession(conn, req.SessionID)
	case models.SetCollection:
		var req models.CollectionRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		conn.Collection = req.Collection
		return nil
	}

	s := c.sessions[conn.SessionID]
	if s == nil {
		return game.Validation("join a session first")
	}
	user := conn.UserID
	switch msg.Type {
	case models.SetOptions:
		opts := s.Options.Clone()
		if err := decode(msg, &opts); err != nil {
			return err
		}
		return s.SetOptions(user, opts)
	case models.SetSeating:
		var req models.SeatingRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		return s.SetSeating(user, req.Order)
	case models.RandomizeSeating:
		return s.RandomizeSeating(user)
	case models.ParseCustomCardList:
		var req models.CustomListRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		return s.SetCustomList(user, req.Text)
	case models.UploadBoosters:
		var req models.UploadBoostersRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		return s.UploadBoosters(user, req.Boosters)
	case models.StartDraft:
		return s.StartDraft(user)
	case models.StopDraft:
		return s.StopDraft(user)
	case models.PickCard:
		var req models.PickRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		return s.PickCard(user, req.Picks, req.Burns)
	case models.WinstonDraftTakePile:
		return s.WinstonTakePile(user)
	case models.WinstonDraftSkipPile:
		return s.WinstonSkipPile(user)
	case models.GridDraftPick:
		var req models.GridPickRequest
		if err := decode(msg, &req); err != nil {
			return err
		}
		return s.GridPick(user, req.Choice)
	case models.ReplaceDisconnectedPlayers:
		return s.ReplaceDisconnectedPlayers(user)
	}
	return game.Validation("unknown event %q", msg.Type)
}

func (c *Coordinator) shutdown() error {
	logger := internal.GetLogger()
	logger.Infow("shutting down", "sessions", len(c.sessions), "connections", len(c.connections))
	var err error
	for id, s := range c.sessions {
		s.cancelTimer()
		if s.Drafting() {
			logger.Warnw("dropping session with a running draft", "session", id)
			continue
		}
		snap, serr := s.snapshot()
		if serr != nil {
			err = multierr.Append(err, serr)
			continue
		}
		c.inactive[id] = snap
	}
	if c.snapshotPath != "" {
		snaps := make([]*sessionSnapshot, 0, len(c.inactive))
		for _, snap := range c.inactive {
			snaps = append(snaps, snap)
		}
		sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })
		err = multierr.Append(err, writeSnapshots(c.snapshotPath, snaps))
		logger.Infow("wrote inactive sessions", "sessions", len(snaps), "path", c.snapshotPath)
	}
	for _, conn := range c.connections {
		conn.Done()
	}
	return err
}

// Hub implementation. These run on the loop.

func (c *Coordinator) Send(userID string, msg *models.Message) {
	if conn := c.connections[userID]; conn != nil {
		conn.Write(msg)
	}
}

func (c *Coordinator) IsConnected(userID string) bool {
	_, ok := c.connections[userID]
	return ok
}

func (c *Coordinator) Collection(userID string) map[string]int {
	if conn := c.connections[userID]; conn != nil {
		return conn.Collection
	}
	return nil
}

func (c *Coordinator) AfterFunc(sessionID string, d time.Duration, fn func(*Session)) func() {
	t := time.AfterFunc(d, func() {
		c.call(func() {
			if s := c.sessions[sessionID]; s != nil {
				fn(s)
			}
		})
	})
	return func() { t.Stop() }
}

func (c *Coordinator) Async(sessionID string, work func(ctx context.Context) func(*Session)) {
	go func() {
		cont := work(c.ctx)
		if cont == nil {
			return
		}
		c.call(func() {
			if s := c.sessions[sessionID]; s != nil {
				cont(s)
			}
		})
	}()
}

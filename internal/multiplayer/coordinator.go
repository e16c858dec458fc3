package multiplayer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/metric"

	"github.com/vovakirdan/warzone/internal/protocol"
	"github.com/vovakirdan/warzone/internal/sim"
)

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	Rules *sim.Rules
	Seed  int64 // 0 = time based

	// ResetOnFinishedJoin starts a fresh world when someone joins a finished match.
	ResetOnFinishedJoin bool
	// ReattachOnReset re-seats every previously joined session after a reset.
	ReattachOnReset bool

	// MaxPending bounds the intent queue between two ticks.
	MaxPending int

	// MeterProvider receives the controller metrics. Nil uses the global provider.
	MeterProvider metric.MeterProvider
}

// DefaultMaxPending is used when CoordinatorConfig.MaxPending is zero.
const DefaultMaxPending = 4096

const resetNotice = "Match reset. Send JOIN_GAME to play again."

// Stats is a point-in-time view of the controller, safe to read from any goroutine.
type Stats struct {
	MatchID  MatchID
	Status   sim.Status
	Tick     uint64
	Players  int
	Sessions int
}

// Coordinator is the match controller. One goroutine (Run) owns the match;
// sessions talk to it only through Send.
type Coordinator struct {
	config      CoordinatorConfig
	sessions    *SessionRegistry
	resultSaver MatchResultSaver // Optional, can be nil
	logger      *log.Logger
	metrics     *metrics
	clock       func() time.Time

	// Message channel for async processing
	msgChan chan CoordinatorMessage
	pending []CoordinatorMessage

	match  *Match
	status sim.Status // last status the controller reacted to
	dirty  bool

	stats atomic.Pointer[Stats]
	saves sync.WaitGroup
	done  chan struct{}
}

// NewCoordinator creates a coordinator with a fresh match in Waiting.
func NewCoordinator(cfg CoordinatorConfig, sessions *SessionRegistry, logger *log.Logger) (*Coordinator, error) {
	if cfg.Rules == nil {
		return nil, errors.New("multiplayer: coordinator needs a ruleset")
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = DefaultMaxPending
	}
	if logger == nil {
		logger = log.Default()
	}

	m, err := newMetrics(cfg.MeterProvider, sessions)
	if err != nil {
		return nil, fmt.Errorf("multiplayer: %w", err)
	}

	c := &Coordinator{
		config:   cfg,
		sessions: sessions,
		logger:   logger.WithPrefix("match"),
		metrics:  m,
		clock:    time.Now,
		msgChan:  make(chan CoordinatorMessage, 256),
		done:     make(chan struct{}),
		status:   sim.StatusWaiting,
	}
	c.match = newMatch(cfg.Rules, c.seed(), c.now)
	c.publishStats()
	return c, nil
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

func (c *Coordinator) now() time.Time {
	return c.clock()
}

func (c *Coordinator) seed() int64 {
	if c.config.Seed != 0 {
		return c.config.Seed
	}
	return c.clock().UnixNano()
}

// Send queues a message for the next tick. It never blocks once Run has returned.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// Connect registers a session for broadcasts.
func (c *Coordinator) Connect(s SessionHandle) {
	c.Send(SessionConnectedMsg{Session: s})
}

// Disconnect removes a session and its player.
func (c *Coordinator) Disconnect(id SessionID) {
	c.Send(SessionDisconnectedMsg{SessionID: id})
}

// Stats returns the latest published controller stats.
func (c *Coordinator) Stats() Stats {
	return *c.stats.Load()
}

// Run drives the tick loop until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)

	ticker := time.NewTicker(c.config.Rules.TickPeriod)
	defer ticker.Stop()

	c.logger.Info("controller running", "match", c.match.id, "tick", c.config.Rules.TickPeriod)

	for {
		select {
		case msg := <-c.msgChan:
			c.enqueue(msg)
		case <-ticker.C:
			c.tick(ctx)
		case <-ctx.Done():
			c.saves.Wait()
			c.logger.Info("controller stopped", "match", c.match.id, "tick", c.match.game.Tick())
			return nil
		}
	}
}

func (c *Coordinator) enqueue(msg CoordinatorMessage) {
	if len(c.pending) >= c.config.MaxPending {
		c.logger.Warn("intent queue full, dropping message", "type", fmt.Sprintf("%T", msg))
		return
	}
	c.pending = append(c.pending, msg)
}

// tick drains queued intents in arrival order, steps the world and broadcasts.
func (c *Coordinator) tick(ctx context.Context) {
	start := c.clock()

	pending := c.pending
	c.pending = nil
	for _, msg := range pending {
		c.handleMessage(ctx, msg)
	}
	c.observe(ctx)

	res := c.match.game.Step()
	c.observe(ctx)

	if res.Simulated || c.dirty {
		c.broadcastSnapshot()
		c.dirty = false
	}

	c.publishStats()
	c.metrics.recordTick(ctx, res.Simulated, len(pending), c.clock().Sub(start))
}

// observe reacts to status transitions of the current match.
func (c *Coordinator) observe(ctx context.Context) {
	g := c.match.game
	cur := g.Status()
	if cur == c.status {
		return
	}

	switch {
	case cur == sim.StatusPlaying:
		c.announce("Match started")
		c.logger.Info("match started", "match", c.match.id, "players", len(g.AlivePlayers()))
	case cur == sim.StatusWaiting && c.status == sim.StatusPlaying:
		c.logger.Info("match paused", "match", c.match.id, "players", len(g.AlivePlayers()))
	case cur == sim.StatusFinished:
		c.onFinished(ctx)
	}
	c.status = cur
	c.dirty = true
}

func (c *Coordinator) onFinished(ctx context.Context) {
	g := c.match.game
	c.announce(fmt.Sprintf("%s wins by %s", strings.ToUpper(g.Winner()), g.FinishReason()))
	c.logger.Info("match finished",
		"match", c.match.id,
		"winner", g.Winner(),
		"reason", g.FinishReason(),
		"ticks", g.GameTime(),
		"wall", c.clock().Sub(c.match.startedAt).Round(time.Second),
	)
	c.metrics.recordFinish(ctx, string(g.FinishReason()))
	c.saveResult(c.match.result())
}

// saveResult persists off the tick path.
func (c *Coordinator) saveResult(res MatchResultData) {
	if c.resultSaver == nil {
		return
	}
	saver := c.resultSaver
	c.saves.Go(func() {
		if err := saver.SaveMatchResult(res); err != nil {
			c.logger.Error("could not save match result", "match", res.MatchID, "error", err)
		}
	})
}

func (c *Coordinator) announce(text string) {
	msg := c.match.game.Announce(text)
	c.sessions.Broadcast(ChatEvent{Message: msg})
}

func (c *Coordinator) broadcastSnapshot() {
	g := c.match.game
	snap := g.Snapshot(c.sessions.Count())
	data, err := protocol.Encode(protocol.NewGameState(snap, ""))
	if err != nil {
		c.logger.Error("could not encode snapshot", "tick", g.Tick(), "error", err)
		return
	}
	c.sessions.Broadcast(SnapshotEvent{Tick: g.Tick(), State: snap, Encoded: data})
}

func (c *Coordinator) publishStats() {
	g := c.match.game
	c.stats.Store(&Stats{
		MatchID:  c.match.id,
		Status:   g.Status(),
		Tick:     g.Tick(),
		Players:  len(g.AlivePlayers()),
		Sessions: c.sessions.Count(),
	})
}

func (c *Coordinator) handleMessage(ctx context.Context, msg CoordinatorMessage) {
	switch m := msg.(type) {
	case SessionConnectedMsg:
		c.sessions.Register(m.Session)
		c.logger.Debug("session connected", "session", m.Session.ID())
	case SessionDisconnectedMsg:
		c.handleDisconnected(m)
	case JoinGameMsg:
		c.handleJoin(m)
	case SpawnUnitMsg:
		c.handleSpawn(ctx, m)
	case MoveUnitMsg:
		if st, ok := c.match.seatOf(m.SessionID); ok {
			c.match.game.Move(st.player, sim.UnitID(m.UnitID), m.X, m.Y)
		}
	case GetStateMsg:
		c.handleGetState(m)
	case ChatMsg:
		c.handleChat(m)
	case GetPlayersMsg:
		if s, ok := c.sessions.Get(m.SessionID); ok {
			s.Send(PlayersListEvent{Players: c.match.game.AlivePlayers()})
		}
	case PingMsg:
		if s, ok := c.sessions.Get(m.SessionID); ok {
			s.Send(PongEvent{})
		}
	}
}

func (c *Coordinator) handleDisconnected(msg SessionDisconnectedMsg) {
	c.sessions.Unregister(msg.SessionID)
	st, ok := c.match.leave(msg.SessionID)
	if !ok {
		c.logger.Debug("session disconnected", "session", msg.SessionID)
		return
	}
	c.dirty = true
	c.logger.Info("player left", "player", st.player, "name", st.name)
}

func (c *Coordinator) handleJoin(msg JoinGameMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	g := c.match.game
	if g.Status() == sim.StatusFinished {
		if c.config.ResetOnFinishedJoin {
			c.reset(session, msg.PlayerName)
		}
		return
	}

	if st, seated := c.match.seatOf(msg.SessionID); seated {
		if p, ok := g.Player(st.player); ok {
			session.Send(JoinConfirmedEvent{Player: p, Status: g.Status()})
		}
		return
	}
	c.seat(session, msg.PlayerName)
}

// seat joins the session to the current match and confirms it.
func (c *Coordinator) seat(session SessionHandle, name string) {
	p, err := c.match.join(session.ID(), name)
	if err != nil {
		c.logger.Warn("join refused", "session", session.ID(), "error", err)
		return
	}
	session.Send(JoinConfirmedEvent{Player: p, Status: c.match.game.Status()})
	c.dirty = true
	c.logger.Info("player joined", "player", p.ID, "name", p.Name, "team", p.Team)
}

// reset discards the finished world. The joiner is seated first.
func (c *Coordinator) reset(joiner SessionHandle, name string) {
	old := c.match
	c.match = newMatch(c.config.Rules, c.seed(), c.now)
	c.status = sim.StatusWaiting
	c.dirty = true
	c.logger.Info("match reset", "previous", old.id, "match", c.match.id)

	c.announce("New match started")
	c.seat(joiner, name)

	for _, st := range old.seats {
		if st.session == joiner.ID() {
			continue
		}
		s, ok := c.sessions.Get(st.session)
		if !ok {
			continue
		}
		if c.config.ReattachOnReset {
			c.seat(s, st.name)
			continue
		}
		s.Send(ChatEvent{Message: sim.ChatMessage{
			PlayerName: sim.SystemName,
			Message:    resetNotice,
			Timestamp:  c.clock().UnixMilli(),
		}})
	}
}

func (c *Coordinator) handleSpawn(ctx context.Context, msg SpawnUnitMsg) {
	st, ok := c.match.seatOf(msg.SessionID)
	if !ok {
		return
	}

	u, res := c.match.game.Spawn(st.player, msg.UnitType)
	c.metrics.recordSpawn(ctx, res.String())
	switch res {
	case sim.SpawnOK:
		c.dirty = true
		c.logger.Debug("unit spawned", "player", st.player, "unit", u.ID, "type", u.Type())
	case sim.SpawnGathererCap:
		c.notify(st, fmt.Sprintf("Max %d %ss!", c.config.Rules.Economy.GathererCap, msg.UnitType))
	}
}

func (c *Coordinator) handleGetState(msg GetStateMsg) {
	st, ok := c.match.seatOf(msg.SessionID)
	if !ok {
		return
	}
	s, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}
	g := c.match.game
	s.Send(SnapshotEvent{Tick: g.Tick(), State: g.Snapshot(c.sessions.Count()), ForPlayer: st.player})
}

func (c *Coordinator) handleChat(msg ChatMsg) {
	st, ok := c.match.seatOf(msg.SessionID)
	if !ok {
		return
	}

	if isCommand(msg.Text) {
		if reply := runCommand(c.match.game, st.player, msg.Text); reply != "" {
			c.notify(st, reply)
		}
		return
	}

	if m, ok := c.match.game.Chat(st.player, msg.Text); ok {
		c.sessions.Broadcast(ChatEvent{Message: m})
	}
}

// notify sends a SYSTEM line to one seated player only.
func (c *Coordinator) notify(st seat, text string) {
	s, ok := c.sessions.Get(st.session)
	if !ok {
		return
	}
	m := sim.ChatMessage{
		PlayerID:   st.player,
		PlayerName: sim.SystemName,
		Message:    text,
		Timestamp:  c.clock().UnixMilli(),
	}
	if p, ok := c.match.game.Player(st.player); ok {
		m.Team = p.Team
	}
	s.Send(ChatEvent{Message: m})
}

// Package ws is the WebSocket transport: it upgrades HTTP connections,
// turns client frames into controller intents and writes session events back.
package ws

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/warzone/internal/multiplayer"
	"github.com/vovakirdan/warzone/internal/protocol"
)

// Controller is the part of the match controller the transport talks to.
type Controller interface {
	Send(msg multiplayer.CoordinatorMessage)
	Stats() multiplayer.Stats
}

// Config holds transport settings.
type Config struct {
	// Path is where the WebSocket endpoint is mounted (e.g., "/").
	Path string

	// SendBuffer is the per-session event queue length.
	SendBuffer int

	// ReadLimit caps the size of one inbound frame in bytes.
	ReadLimit int64

	PongWait     time.Duration
	PingInterval time.Duration // must be less than PongWait
	WriteWait    time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Path:         "/",
		SendBuffer:   64,
		ReadLimit:    4096,
		PongWait:     60 * time.Second,
		PingInterval: 54 * time.Second,
		WriteWait:    10 * time.Second,
	}
}

// Server serves the game endpoint and a health check.
type Server struct {
	ctrl     Controller
	config   Config
	logger   *log.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a transport bound to a controller.
func NewServer(ctrl Controller, cfg Config, logger *log.Logger) *Server {
	def := DefaultConfig()
	if cfg.Path == "" {
		cfg.Path = def.Path
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = def.ReadLimit
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = def.PongWait
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = def.WriteWait
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		ctrl:   ctrl,
		config: cfg,
		logger: logger.WithPrefix("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// any origin may connect
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP routes: the WebSocket endpoint and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc(s.config.Path, s.ServeWS)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.ctrl.Stats()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "ok status=%s players=%d sessions=%d tick=%d match=%s\n",
		st.Status, st.Players, st.Sessions, st.Tick, st.MatchID)
}

// ServeWS upgrades one client connection and starts its pumps.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		conn:    conn,
		session: multiplayer.NewChannelSession(multiplayer.NewSessionID(), s.config.SendBuffer),
		ctrl:    s.ctrl,
		config:  s.config,
		logger:  s.logger,
	}
	s.ctrl.Send(multiplayer.SessionConnectedMsg{Session: c.session})
	s.logger.Info("client connected", "session", c.session.ID(), "remote", r.RemoteAddr)

	go c.writePump()
	go c.readPump()
}

// client is one connection. The session's queue sits between the
// controller and writePump.
type client struct {
	conn    *websocket.Conn
	session *multiplayer.ChannelSession
	ctrl    Controller
	config  Config
	logger  *log.Logger
}

func (c *client) readPump() {
	defer func() {
		c.session.Close()
		c.ctrl.Send(multiplayer.SessionDisconnectedMsg{SessionID: c.session.ID()})
		_ = c.conn.Close()
		c.logger.Info("client disconnected", "session", c.session.ID(), "dropped", c.session.Dropped())
	}()

	c.conn.SetReadLimit(c.config.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read failed", "session", c.session.ID(), "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))

		msg, err := protocol.Decode(data)
		if err != nil {
			c.logger.Warn("dropping message", "session", c.session.ID(), "error", err)
			continue
		}
		c.ctrl.Send(intentFor(c.session.ID(), msg))
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case evt := <-c.session.Events():
			data, err := encodeEvent(evt)
			if err != nil {
				c.logger.Error("could not encode event", "session", c.session.ID(), "error", err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.session.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.config.WriteWait))
			return
		}
	}
}

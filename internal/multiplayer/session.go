package multiplayer

import (
	"sync"
	"sync/atomic"
)

// SessionHandle is the transport-neutral interface for communicating with a session.
// It allows the coordinator to send events without depending on WebSocket or Wish.
type SessionHandle interface {
	// ID returns the unique session identifier.
	ID() SessionID

	// Send sends an event to the session asynchronously.
	// Must be non-blocking; implementations should use buffered channels.
	Send(evt SessionEvent)

	// Done returns a channel that closes when the session ends.
	Done() <-chan struct{}
}

// ChannelSession is a bounded event queue between the controller and one
// connection. The transport drains Events; the controller never waits on it.
type ChannelSession struct {
	id      SessionID
	events  chan SessionEvent
	dropped atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
}

// NewChannelSession creates a session whose queue holds size events (64 if size < 1).
func NewChannelSession(id SessionID, size int) *ChannelSession {
	if size < 1 {
		size = 64
	}
	return &ChannelSession{
		id:     id,
		events: make(chan SessionEvent, size),
		done:   make(chan struct{}),
	}
}

func (s *ChannelSession) ID() SessionID { return s.id }

// Send queues evt. A full queue sheds its oldest event first, so a slow
// reader sees the newest world state. Sends after Close are discarded.
func (s *ChannelSession) Send(evt SessionEvent) {
	if s.closed() {
		return
	}
	for range 2 {
		select {
		case s.events <- evt:
			return
		default:
		}
		select {
		case <-s.events:
			s.dropped.Add(1)
		default:
		}
	}
	// another sender refilled the queue; evt is the one lost
	s.dropped.Add(1)
}

// Events is drained by the transport's writer.
func (s *ChannelSession) Events() <-chan SessionEvent { return s.events }

func (s *ChannelSession) Done() <-chan struct{} { return s.done }

// Dropped counts events shed because the queue was full.
func (s *ChannelSession) Dropped() uint64 { return s.dropped.Load() }

// Close ends the session. Safe to call more than once.
func (s *ChannelSession) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *ChannelSession) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// SessionRegistry is the set of connected sessions, keyed by id.
// The controller writes it; metrics and stats read it concurrently.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[SessionID]SessionHandle
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[SessionID]SessionHandle),
	}
}

// Register adds or replaces a session.
func (r *SessionRegistry) Register(session SessionHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

func (r *SessionRegistry) Unregister(id SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *SessionRegistry) Get(id SessionID) (SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count is also reported as activeSessions in snapshots.
func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Broadcast sends an event to every session that has not finished.
// Closed sessions are skipped; delivery is best effort per session.
func (r *SessionRegistry) Broadcast(evt SessionEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		select {
		case <-s.Done():
			continue
		default:
		}
		s.Send(evt)
	}
}

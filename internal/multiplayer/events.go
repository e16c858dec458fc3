package multiplayer

import "github.com/vovakirdan/warzone/internal/sim"

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// JoinConfirmedEvent answers a join, and is sent again when a reset re-seats a session.
type JoinConfirmedEvent struct {
	Player sim.Player
	Status sim.Status
}

func (JoinConfirmedEvent) sessionEvent() {}

// SnapshotEvent carries the world state to sessions.
// Broadcast snapshots are pre-encoded once per tick in Encoded.
// Replies to a state request set ForPlayer and leave Encoded empty.
type SnapshotEvent struct {
	Tick      uint64
	State     *sim.Snapshot
	ForPlayer sim.PlayerID
	Encoded   []byte
}

func (SnapshotEvent) sessionEvent() {}

// ChatEvent carries a chat line, a command reply or a server notice.
type ChatEvent struct {
	Message sim.ChatMessage
}

func (ChatEvent) sessionEvent() {}

// PlayersListEvent answers a players request.
type PlayersListEvent struct {
	Players []sim.PlayerSummary
}

func (PlayersListEvent) sessionEvent() {}

// PongEvent answers a ping.
type PongEvent struct{}

func (PongEvent) sessionEvent() {}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// SessionConnectedMsg registers a session for broadcasts.
type SessionConnectedMsg struct {
	Session SessionHandle
}

func (SessionConnectedMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}

// JoinGameMsg asks for a seat in the match.
type JoinGameMsg struct {
	SessionID  SessionID
	PlayerName string
}

func (JoinGameMsg) coordinatorMessage() {}

// SpawnUnitMsg asks to buy a unit.
type SpawnUnitMsg struct {
	SessionID SessionID
	UnitType  string
}

func (SpawnUnitMsg) coordinatorMessage() {}

// MoveUnitMsg orders a unit to a point.
type MoveUnitMsg struct {
	SessionID SessionID
	UnitID    string
	X, Y      float64
}

func (MoveUnitMsg) coordinatorMessage() {}

// GetStateMsg asks for an immediate snapshot.
type GetStateMsg struct {
	SessionID SessionID
}

func (GetStateMsg) coordinatorMessage() {}

// ChatMsg is a chat line or slash command.
type ChatMsg struct {
	SessionID SessionID
	Text      string
}

func (ChatMsg) coordinatorMessage() {}

// GetPlayersMsg asks for the list of alive players.
type GetPlayersMsg struct {
	SessionID SessionID
}

func (GetPlayersMsg) coordinatorMessage() {}

// PingMsg asks for a pong.
type PingMsg struct {
	SessionID SessionID
}

func (PingMsg) coordinatorMessage() {}

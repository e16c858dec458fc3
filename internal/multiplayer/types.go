// Package multiplayer runs the authoritative match controller: it owns the
// simulation, queues client intents between ticks and fans snapshots out to
// connected sessions.
package multiplayer

import (
	"github.com/google/uuid"

	"github.com/vovakirdan/warzone/internal/sim"
)

// SessionID uniquely identifies a connected client (WebSocket or SSH).
type SessionID string

// MatchID uniquely identifies one match from Waiting through Finished.
type MatchID string

// NewSessionID returns a random session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

func newMatchID() MatchID {
	return MatchID(uuid.NewString())
}

// MatchResultSaver persists finished matches.
// It lets the controller save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData is the persisted summary of a finished match.
type MatchResultData struct {
	MatchID      string
	Winner       string
	Reason       string
	Ticks        uint64
	DurationSecs int
	Players      []PlayerResult
}

// PlayerResult is one player's line in a match summary.
type PlayerResult struct {
	PlayerID string
	Name     string
	Team     string
	Kills    int
	Alive    bool
}

// seat binds a session to its player in the current match.
type seat struct {
	session SessionID
	player  sim.PlayerID
	name    string
}

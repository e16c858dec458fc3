package multiplayer

import (
	"time"

	"github.com/vovakirdan/warzone/internal/sim"
)

// Match is one world from Waiting through Finished, plus the sessions seated in it.
// It is owned by the coordinator goroutine and is not safe for concurrent use.
type Match struct {
	id        MatchID
	game      *sim.Game
	startedAt time.Time
	seats     []seat
}

func newMatch(rules *sim.Rules, seed int64, now func() time.Time) *Match {
	g := sim.NewGame(rules, seed)
	g.SetClock(now)
	return &Match{
		id:        newMatchID(),
		game:      g,
		startedAt: now(),
	}
}

// ID returns the match identifier.
func (m *Match) ID() MatchID {
	return m.id
}

// Game returns the simulation.
func (m *Match) Game() *sim.Game {
	return m.game
}

func (m *Match) seatOf(session SessionID) (seat, bool) {
	for _, s := range m.seats {
		if s.session == session {
			return s, true
		}
	}
	return seat{}, false
}

// join creates a player for the session and seats it.
func (m *Match) join(session SessionID, name string) (sim.Player, error) {
	p, err := m.game.Join(name)
	if err != nil {
		return sim.Player{}, err
	}
	m.seats = append(m.seats, seat{session: session, player: p.ID, name: p.Name})
	return p, nil
}

// leave removes the session's player from the world.
func (m *Match) leave(session SessionID) (seat, bool) {
	for i, s := range m.seats {
		if s.session != session {
			continue
		}
		m.seats = append(m.seats[:i], m.seats[i+1:]...)
		m.game.Leave(s.player)
		return s, true
	}
	return seat{}, false
}

// result summarizes the match for persistence.
func (m *Match) result() MatchResultData {
	played := time.Duration(m.game.GameTime()) * m.game.Rules().TickPeriod
	res := MatchResultData{
		MatchID:      string(m.id),
		Winner:       m.game.Winner(),
		Reason:       string(m.game.FinishReason()),
		Ticks:        m.game.GameTime(),
		DurationSecs: int(played / time.Second),
	}
	for _, p := range m.game.Players() {
		res.Players = append(res.Players, PlayerResult{
			PlayerID: string(p.ID),
			Name:     p.Name,
			Team:     p.Team,
			Kills:    p.Kills,
			Alive:    p.Alive,
		})
	}
	return res
}

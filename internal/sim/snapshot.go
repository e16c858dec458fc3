package sim

import (
	"slices"

	"github.com/vovakirdan/warzone/internal/core"
)

// Version is the world-state format version reported to clients.
const Version = "3.1"

// Snapshot is the full world state pushed to clients every tick.
// Numbers clients draw are rounded to integers.
type Snapshot struct {
	Version        string           `json:"version"`
	Tick           uint64           `json:"tick"`
	GameTime       uint64           `json:"gameTime"`
	Players        []PlayerView     `json:"players"`
	Units          []UnitView       `json:"units"`
	Bases          []BaseView       `json:"bases"`
	ResourceNodes  []NodeView       `json:"resourceNodes"`
	Projectiles    []ProjectileView `json:"projectiles"`
	Obstacles      []ObstacleView   `json:"obstacles"`
	Leaderboard    []PlayerView     `json:"leaderboard"`
	GameStatus     Status           `json:"gameStatus"`
	Winner         string           `json:"winner,omitempty"`
	FinishReason   FinishReason     `json:"finishReason,omitempty"`
	ActiveSessions int              `json:"activeSessions"`
	Messages       []ChatMessage    `json:"messages"`
	MapWidth       float64          `json:"mapWidth"`
	MapHeight      float64          `json:"mapHeight"`
}

// PlayerView is a player's public state. Dead players are not listed.
type PlayerView struct {
	ID      PlayerID `json:"id"`
	Name    string   `json:"name"`
	Team    string   `json:"team"`
	BaseX   int      `json:"baseX"`
	BaseY   int      `json:"baseY"`
	Health  int      `json:"health"`
	Kills   int      `json:"kills"`
	Gold    int      `json:"gold"`
	Energy  int      `json:"energy"`
	IsAlive bool     `json:"isAlive"`
}

// UnitView is a unit on the field. TargetX and TargetY are set only while
// the unit has a move order.
type UnitView struct {
	ID         UnitID   `json:"id"`
	PlayerID   PlayerID `json:"playerId"`
	Type       string   `json:"type"`
	X          int      `json:"x"`
	Y          int      `json:"y"`
	TargetX    *int     `json:"targetX,omitempty"`
	TargetY    *int     `json:"targetY,omitempty"`
	Health     int      `json:"health"`
	MaxHealth  int      `json:"maxHealth"`
	Team       string   `json:"team"`
	Range      float64  `json:"range"`
	Damage     float64  `json:"damage"`
	IsShooting bool     `json:"isShooting"`
	Carrying   int      `json:"carrying"`
	Returning  bool     `json:"returning"`
}

// BaseView is a player's base.
type BaseView struct {
	ID        BaseID   `json:"id"`
	PlayerID  PlayerID `json:"playerId"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Health    int      `json:"health"`
	MaxHealth int      `json:"maxHealth"`
	Team      string   `json:"team"`
}

// NodeView is a resource node and its remaining gold.
type NodeView struct {
	ID        NodeID `json:"id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Amount    int    `json:"amount"`
	MaxAmount int    `json:"maxAmount"`
}

// ProjectileView is a shot in flight.
type ProjectileView struct {
	ID   ProjectileID `json:"id"`
	X    int          `json:"x"`
	Y    int          `json:"y"`
	Team string       `json:"team"`
}

// ObstacleView is a circular rock or forest.
type ObstacleView struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Radius int    `json:"radius"`
	Type   string `json:"type"`
}

// Snapshot builds the world view. activeSessions is the number of
// connected transport sessions, which the Game does not track itself.
func (g *Game) Snapshot(activeSessions int) *Snapshot {
	s := &Snapshot{
		Version:        Version,
		Tick:           g.tick,
		GameTime:       g.playTicks,
		Players:        []PlayerView{},
		Units:          make([]UnitView, 0, g.units.len()),
		Bases:          make([]BaseView, 0, g.bases.len()),
		ResourceNodes:  make([]NodeView, 0, len(g.nodes)),
		Projectiles:    make([]ProjectileView, 0, g.projectiles.len()),
		Obstacles:      make([]ObstacleView, 0, len(g.rules.Obstacles)),
		GameStatus:     g.status,
		Winner:         g.winner,
		FinishReason:   g.reason,
		ActiveSessions: activeSessions,
		Messages:       g.chat.last(g.rules.ChatSnapshot),
		MapWidth:       g.rules.Width,
		MapHeight:      g.rules.Height,
	}

	g.players.each(func(p *Player) {
		if !p.Alive {
			return
		}
		s.Players = append(s.Players, PlayerView{
			ID:      p.ID,
			Name:    p.Name,
			Team:    p.Team,
			BaseX:   core.Round(p.BasePos.X),
			BaseY:   core.Round(p.BasePos.Y),
			Health:  core.Round(p.Health),
			Kills:   p.Kills,
			Gold:    core.Round(p.Gold),
			Energy:  core.Round(p.Energy),
			IsAlive: p.Alive,
		})
	})

	g.units.each(func(u *Unit) {
		if u.Health <= 0 {
			return
		}
		v := UnitView{
			ID:         u.ID,
			PlayerID:   u.Owner,
			Type:       u.Type().String(),
			X:          core.Round(u.Pos.X),
			Y:          core.Round(u.Pos.Y),
			Health:     core.Round(u.Health),
			MaxHealth:  core.Round(u.Spec.MaxHealth),
			Team:       u.Team,
			Range:      u.Spec.Range,
			Damage:     u.Spec.Damage,
			IsShooting: u.Shooting,
			Carrying:   core.Round(u.Cargo),
			Returning:  u.Returning,
		}
		if u.HasTarget {
			tx, ty := core.Round(u.Target.X), core.Round(u.Target.Y)
			v.TargetX, v.TargetY = &tx, &ty
		}
		s.Units = append(s.Units, v)
	})

	g.bases.each(func(b *Base) {
		s.Bases = append(s.Bases, BaseView{
			ID:        b.ID,
			PlayerID:  b.Owner,
			X:         core.Round(b.Pos.X),
			Y:         core.Round(b.Pos.Y),
			Health:    core.Round(b.Health),
			MaxHealth: core.Round(b.MaxHealth),
			Team:      b.Team,
		})
	})

	for _, n := range g.nodes {
		s.ResourceNodes = append(s.ResourceNodes, NodeView{
			ID:        n.ID,
			X:         core.Round(n.Pos.X),
			Y:         core.Round(n.Pos.Y),
			Amount:    core.Round(n.Amount),
			MaxAmount: core.Round(n.MaxAmount),
		})
	}

	g.projectiles.each(func(p *Projectile) {
		if !p.Alive {
			return
		}
		s.Projectiles = append(s.Projectiles, ProjectileView{
			ID:   p.ID,
			X:    core.Round(p.Pos.X),
			Y:    core.Round(p.Pos.Y),
			Team: p.Team,
		})
	})

	for _, o := range g.rules.Obstacles {
		s.Obstacles = append(s.Obstacles, ObstacleView{
			X:      core.Round(o.Pos.X),
			Y:      core.Round(o.Pos.Y),
			Radius: core.Round(o.Radius),
			Type:   o.Kind,
		})
	}

	s.Leaderboard = slices.Clone(s.Players)
	slices.SortStableFunc(s.Leaderboard, func(a, b PlayerView) int {
		return b.Kills - a.Kills
	})
	return s
}

// PlayerSummary is the short player entry used by PLAYERS_LIST.
type PlayerSummary struct {
	ID    PlayerID `json:"id"`
	Name  string   `json:"name"`
	Team  string   `json:"team"`
	Kills int      `json:"kills"`
}

// AlivePlayers lists alive players in join order.
func (g *Game) AlivePlayers() []PlayerSummary {
	out := []PlayerSummary{}
	for _, p := range g.alivePlayers() {
		out = append(out, PlayerSummary{ID: p.ID, Name: p.Name, Team: p.Team, Kills: p.Kills})
	}
	return out
}

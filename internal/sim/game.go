package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vovakirdan/warzone/internal/core"
)

// ErrMatchFinished is returned by Join while the match is over.
// The controller decides whether to start a new Game.
var ErrMatchFinished = errors.New("match finished")

const maxNameLen = 24

// Game is one match from Waiting through Finished.
// Resetting a match means building a new Game.
type Game struct {
	rules *Rules
	rng   *rand.Rand
	now   func() time.Time

	players     registry[PlayerID, Player]
	units       registry[UnitID, Unit]
	bases       registry[BaseID, Base]
	projectiles registry[ProjectileID, Projectile]
	nodes       []*ResourceNode

	nextPlayer     int
	nextUnit       int
	nextProjectile int

	tick      uint64 // driver ticks since creation
	playTicks uint64 // ticks simulated while Playing
	startTick uint64
	started   bool
	status    Status
	winner    string
	reason    FinishReason

	chat *chatLog
}

// NewGame creates an empty match in Waiting state.
// The seed drives spawn placement only.
func NewGame(rules *Rules, seed int64) *Game {
	g := &Game{
		rules:       rules,
		rng:         rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		now:         time.Now,
		players:     newRegistry[PlayerID, Player](),
		units:       newRegistry[UnitID, Unit](),
		bases:       newRegistry[BaseID, Base](),
		projectiles: newRegistry[ProjectileID, Projectile](),
		status:      StatusWaiting,
		chat:        newChatLog(rules.ChatHistory),
	}
	for i, n := range rules.Nodes {
		g.nodes = append(g.nodes, &ResourceNode{
			ID:        NodeID(fmt.Sprintf("node_%d", i)),
			Pos:       core.V(n.X, n.Y),
			Amount:    n.Amount,
			MaxAmount: n.Amount,
		})
	}
	return g
}

// SetClock replaces the wall clock used for chat timestamps.
func (g *Game) SetClock(now func() time.Time) {
	g.now = now
}

// Rules returns the ruleset the game runs on.
func (g *Game) Rules() *Rules { return g.rules }

// Tick returns the number of driver ticks since creation.
func (g *Game) Tick() uint64 { return g.tick }

// GameTime returns the number of ticks simulated while Playing.
func (g *Game) GameTime() uint64 { return g.playTicks }

// Status returns the lifecycle state.
func (g *Game) Status() Status { return g.status }

// Winner returns the winning team, empty until Finished.
func (g *Game) Winner() string { return g.winner }

// FinishReason returns why the match ended.
func (g *Game) FinishReason() FinishReason { return g.reason }

// Join adds a player on the least-populated team, creates its base and
// tries to start the match.
func (g *Game) Join(name string) (Player, error) {
	if g.status == StatusFinished {
		return Player{}, ErrMatchFinished
	}

	g.nextPlayer++
	id := PlayerID(fmt.Sprintf("player_%d", g.nextPlayer))
	team := g.pickTeam()

	p := &Player{
		ID:      id,
		Name:    cleanName(name, id),
		Team:    team.Name,
		BaseID:  BaseID("base_" + string(id)),
		BasePos: team.Base,
		Health:  g.rules.Economy.StartHealth,
		Gold:    g.rules.Economy.StartGold,
		Energy:  g.rules.Economy.StartEnergy,
		Alive:   true,
	}
	g.players.put(id, p)
	g.bases.put(p.BaseID, &Base{
		ID:        p.BaseID,
		Owner:     id,
		Team:      team.Name,
		Pos:       team.Base,
		Health:    g.rules.Combat.BaseMaxHealth,
		MaxHealth: g.rules.Combat.BaseMaxHealth,
	})

	g.tryStart()
	return *p, nil
}

// pickTeam returns the team with the fewest players; ties go to declaration order.
func (g *Game) pickTeam() Team {
	counts := make(map[string]int, len(g.rules.Teams))
	g.players.each(func(p *Player) {
		counts[p.Team]++
	})
	best := g.rules.Teams[0]
	for _, t := range g.rules.Teams[1:] {
		if counts[t.Name] < counts[best.Name] {
			best = t
		}
	}
	return best
}

func cleanName(name string, id PlayerID) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return string(id)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		name = string([]rune(name)[:maxNameLen])
	}
	return name
}

func (g *Game) alivePlayers() []*Player {
	var out []*Player
	g.players.each(func(p *Player) {
		if p.Alive {
			out = append(out, p)
		}
	})
	return out
}

// tryStart moves Waiting to Playing once enough players are alive.
func (g *Game) tryStart() {
	alive := len(g.alivePlayers())
	if alive >= g.rules.MinPlayers && !g.started && g.status == StatusWaiting {
		g.status = StatusPlaying
		g.started = true
		g.startTick = g.tick
		return
	}
	if alive < g.rules.MinPlayers && g.status == StatusPlaying {
		g.pause()
	}
}

func (g *Game) pause() {
	g.status = StatusWaiting
	g.started = false
}

// Leave removes a player with its units and base. If too few players
// remain the match pauses in Waiting; remaining units are kept.
func (g *Game) Leave(id PlayerID) bool {
	p, ok := g.players.get(id)
	if !ok {
		return false
	}
	p.Alive = false

	for _, uid := range g.units.ids() {
		if u, ok := g.units.get(uid); ok && u.Owner == id {
			g.units.remove(uid)
		}
	}
	g.bases.remove(p.BaseID)
	g.players.remove(id)

	if g.status == StatusPlaying {
		if len(g.alivePlayers()) < g.rules.MinPlayers {
			g.pause()
		} else {
			g.checkWin()
		}
	}
	return true
}

// SpawnResult reports the outcome of a spawn request.
type SpawnResult int

const (
	SpawnOK SpawnResult = iota
	SpawnNoPlayer
	SpawnNotPlaying
	SpawnUnknownType
	SpawnNoGold
	SpawnNoEnergy
	SpawnGathererCap
)

func (r SpawnResult) String() string {
	switch r {
	case SpawnOK:
		return "ok"
	case SpawnNoPlayer:
		return "no player"
	case SpawnNotPlaying:
		return "not playing"
	case SpawnUnknownType:
		return "unknown type"
	case SpawnNoGold:
		return "insufficient gold"
	case SpawnNoEnergy:
		return "insufficient energy"
	case SpawnGathererCap:
		return "gatherer cap"
	default:
		return "unknown"
	}
}

// Spawn validates and pays for a unit, then places it in the spawn annulus
// around the player's base. On any failed check nothing changes.
func (g *Game) Spawn(id PlayerID, unitType string) (Unit, SpawnResult) {
	p, ok := g.players.get(id)
	if !ok || !p.Alive {
		return Unit{}, SpawnNoPlayer
	}
	if g.status != StatusPlaying {
		return Unit{}, SpawnNotPlaying
	}
	typ, ok := ParseUnitType(unitType)
	if !ok {
		return Unit{}, SpawnUnknownType
	}
	spec, ok := g.rules.Spec(typ)
	if !ok {
		return Unit{}, SpawnUnknownType
	}
	if p.Gold < spec.Cost.Gold {
		return Unit{}, SpawnNoGold
	}
	if p.Energy < spec.Cost.Energy {
		return Unit{}, SpawnNoEnergy
	}
	if typ.Role() == RoleGatherer && g.countUnits(id, typ) >= g.rules.Economy.GathererCap {
		return Unit{}, SpawnGathererCap
	}

	p.Gold -= spec.Cost.Gold
	p.Energy -= spec.Cost.Energy
	u := g.addUnit(p, spec, g.spawnPosition(p.BasePos))
	return *u, SpawnOK
}

func (g *Game) spawnPosition(base core.Vec) core.Vec {
	eco := g.rules.Economy
	angle := g.rng.Float64() * 2 * math.Pi
	dist := eco.SpawnMinDist + g.rng.Float64()*(eco.SpawnMaxDist-eco.SpawnMinDist)
	pos := base.Polar(angle, dist)
	return core.V(
		core.ClampF(pos.X, eco.SpawnMargin, g.rules.Width-eco.SpawnMargin),
		core.ClampF(pos.Y, eco.SpawnMargin, g.rules.Height-eco.SpawnMargin),
	)
}

func (g *Game) addUnit(owner *Player, spec UnitSpec, pos core.Vec) *Unit {
	g.nextUnit++
	u := &Unit{
		ID:     UnitID(fmt.Sprintf("unit_%d", g.nextUnit)),
		Owner:  owner.ID,
		Team:   owner.Team,
		Spec:   spec,
		Pos:    pos,
		Health: spec.Health,
	}
	g.units.put(u.ID, u)
	return u
}

func (g *Game) countUnits(owner PlayerID, typ UnitType) int {
	n := 0
	g.units.each(func(u *Unit) {
		if u.Owner == owner && (typ == UnitUnknown || u.Type() == typ) {
			n++
		}
	})
	return n
}

// UnitCount returns how many units a player owns.
func (g *Game) UnitCount(owner PlayerID) int {
	return g.countUnits(owner, UnitUnknown)
}

// Move gives a unit an explicit move order. Only the owner may move a unit,
// and only while Playing. Gatherers abandon their trip.
func (g *Game) Move(id PlayerID, unitID UnitID, x, y float64) bool {
	if g.status != StatusPlaying {
		return false
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return false
	}
	u, ok := g.units.get(unitID)
	if !ok || u.Owner != id {
		return false
	}
	// Targets stay inside the reachable area so the order can complete.
	margin := g.rules.Movement.EdgeMargin
	u.Target = core.V(
		core.ClampF(x, margin, g.rules.Width-margin),
		core.ClampF(y, margin, g.rules.Height-margin),
	)
	u.HasTarget = true
	if u.Type().Role() == RoleGatherer {
		u.Returning = false
		u.TargetNode = ""
	}
	return true
}

// Chat records a message from a player. Blank messages are dropped.
func (g *Game) Chat(id PlayerID, text string) (ChatMessage, bool) {
	p, ok := g.players.get(id)
	if !ok {
		return ChatMessage{}, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, false
	}
	m := ChatMessage{
		PlayerID:   id,
		PlayerName: p.Name,
		Team:       p.Team,
		Message:    text,
		Timestamp:  g.now().UnixMilli(),
	}
	g.chat.add(m)
	return m, true
}

// Announce records a server notice in the chat history.
func (g *Game) Announce(text string) ChatMessage {
	m := ChatMessage{
		PlayerName: SystemName,
		Message:    text,
		Timestamp:  g.now().UnixMilli(),
	}
	g.chat.add(m)
	return m
}

// StepResult summarizes one tick.
type StepResult struct {
	Simulated bool // false while not Playing
	Finished  bool // the match ended during this tick
	Shots     int
	Kills     int
}

// Step advances the match by one tick. While Playing it runs
// behavior, combat, economy and the win check in that order.
func (g *Game) Step() StepResult {
	g.tick++
	if g.status != StatusPlaying {
		return StepResult{}
	}
	g.playTicks++

	res := StepResult{Simulated: true}
	res.Shots = g.runBehavior()
	res.Kills = g.runCombat()
	g.runEconomy()
	res.Finished = g.checkWin()
	return res
}

// checkWin ends the match when one team remains among alive players,
// or when the match clock runs out. It reports whether the match ended.
func (g *Game) checkWin() bool {
	if g.status != StatusPlaying || !g.started {
		return false
	}
	alive := g.alivePlayers()
	if len(alive) == 0 {
		return false
	}

	var teams []string
	kills := make(map[string]int)
	for _, p := range alive {
		if _, seen := kills[p.Team]; !seen {
			teams = append(teams, p.Team)
		}
		kills[p.Team] += p.Kills
	}

	if len(teams) == 1 {
		g.finish(teams[0], FinishElimination)
		return true
	}

	if g.tick-g.startTick >= g.rules.DurationTicks {
		winner, best := teams[0], 0
		for _, t := range teams {
			if kills[t] > best {
				winner, best = t, kills[t]
			}
		}
		g.finish(winner, FinishTimeout)
		return true
	}
	return false
}

func (g *Game) finish(team string, reason FinishReason) {
	g.status = StatusFinished
	g.winner = team
	g.reason = reason
	g.started = false
}

// Player returns a copy of a player.
func (g *Game) Player(id PlayerID) (Player, bool) {
	p, ok := g.players.get(id)
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Players returns copies of all players in join order.
func (g *Game) Players() []Player {
	out := make([]Player, 0, g.players.len())
	g.players.each(func(p *Player) {
		out = append(out, *p)
	})
	return out
}

// Unit returns a copy of a unit.
func (g *Game) Unit(id UnitID) (Unit, bool) {
	u, ok := g.units.get(id)
	if !ok {
		return Unit{}, false
	}
	return *u, true
}

// Units returns copies of all units in spawn order.
func (g *Game) Units() []Unit {
	out := make([]Unit, 0, g.units.len())
	g.units.each(func(u *Unit) {
		out = append(out, *u)
	})
	return out
}

// Base returns a copy of a base.
func (g *Game) Base(id BaseID) (Base, bool) {
	b, ok := g.bases.get(id)
	if !ok {
		return Base{}, false
	}
	return *b, true
}

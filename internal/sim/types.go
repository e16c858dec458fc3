// Package sim is the authoritative battlefield simulation: entity registries,
// unit behavior, projectile combat, the resource economy and match rules.
//
// A Game is single-writer. Callers serialize every method call; the
// multiplayer controller does so by owning the Game from one goroutine.
package sim

import "github.com/vovakirdan/warzone/internal/core"

// Identifier types. Formats follow the wire protocol:
// player_N, unit_N, base_<playerId>, pN and node_N.
type (
	PlayerID     string
	UnitID       string
	BaseID       string
	ProjectileID string
	NodeID       string
)

// Status is the match lifecycle state.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// FinishReason explains how a match ended.
type FinishReason string

const (
	FinishNone        FinishReason = ""
	FinishElimination FinishReason = "elimination"
	FinishTimeout     FinishReason = "timeout"
)

// Player is a commander in the match.
type Player struct {
	ID      PlayerID
	Name    string
	Team    string
	BaseID  BaseID
	BasePos core.Vec
	Health  float64
	Kills   int
	Gold    float64
	Energy  float64
	Alive   bool
}

// Unit is a spawned unit. Spec is copied from the unit table at creation.
type Unit struct {
	ID    UnitID
	Owner PlayerID
	Team  string
	Spec  UnitSpec

	Pos       core.Vec
	Vel       core.Vec
	Target    core.Vec
	HasTarget bool
	Rebound   core.Vec // velocity carried into the next tick after a bounce

	Health   float64
	ReadyAt  uint64 // first tick the unit may fire again
	Shooting bool

	// Gatherer state
	Cargo      float64
	Returning  bool
	TargetNode NodeID
}

// Type returns the unit's type tag.
func (u *Unit) Type() UnitType {
	return u.Spec.Type
}

// Base is a player's headquarters.
type Base struct {
	ID        BaseID
	Owner     PlayerID
	Team      string
	Pos       core.Vec
	Health    float64
	MaxHealth float64
}

// Destroyed reports whether the base has no health left.
func (b *Base) Destroyed() bool {
	return b.Health <= 0
}

// Projectile is a shot in flight. It never re-aims.
type Projectile struct {
	ID        ProjectileID
	Shooter   UnitID
	Owner     PlayerID
	Team      string
	Pos       core.Vec
	Vel       core.Vec
	Damage    float64
	Traveled  float64
	MaxTravel float64
	Alive     bool
}

// ResourceNode is a harvestable deposit. The set is fixed for the match.
type ResourceNode struct {
	ID        NodeID
	Pos       core.Vec
	Amount    float64
	MaxAmount float64
}

// Obstacle is static terrain.
type Obstacle struct {
	Pos    core.Vec
	Radius float64
	Kind   string
}

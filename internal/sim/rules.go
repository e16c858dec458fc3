package sim

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/vovakirdan/warzone/internal/config"
	"github.com/vovakirdan/warzone/internal/core"
)

// UnitType enumerates the known unit archetypes.
type UnitType uint8

const (
	UnitUnknown UnitType = iota
	Soldier
	Tank
	Fighter
	Cannon
	Helicopter
	Bomber
	Collector
	Constructor
	Turret
	Barracks
)

var unitTypeNames = [...]string{
	UnitUnknown: "unknown",
	Soldier:     "soldier",
	Tank:        "tank",
	Fighter:     "fighter",
	Cannon:      "cannon",
	Helicopter:  "helicopter",
	Bomber:      "bomber",
	Collector:   "collector",
	Constructor: "constructor",
	Turret:      "turret",
	Barracks:    "barracks",
}

// String returns the wire name of the unit type.
func (t UnitType) String() string {
	if int(t) < len(unitTypeNames) {
		return unitTypeNames[t]
	}
	return unitTypeNames[UnitUnknown]
}

// ParseUnitType maps a wire name to a UnitType.
func ParseUnitType(name string) (UnitType, bool) {
	for i, n := range unitTypeNames {
		if i != int(UnitUnknown) && n == name {
			return UnitType(i), true
		}
	}
	return UnitUnknown, false
}

// Role selects the behavior a unit runs each tick.
type Role uint8

const (
	RoleCombat    Role = iota // chases and shoots enemies, obeys move orders
	RoleGatherer              // harvests resource nodes
	RoleDefender              // stationary, fires within range
	RoleStructure             // passive
)

// String returns a human-readable role name.
func (r Role) String() string {
	switch r {
	case RoleCombat:
		return "combat"
	case RoleGatherer:
		return "gatherer"
	case RoleDefender:
		return "defender"
	case RoleStructure:
		return "structure"
	default:
		return "unknown"
	}
}

// Role returns the behavior role of the unit type.
func (t UnitType) Role() Role {
	switch t {
	case Collector:
		return RoleGatherer
	case Turret:
		return RoleDefender
	case Barracks:
		return RoleStructure
	default:
		return RoleCombat
	}
}

// Cost is the price of a unit.
type Cost struct {
	Gold   float64
	Energy float64
}

// UnitSpec is one row of the static unit table.
type UnitSpec struct {
	Type          UnitType
	Health        float64
	MaxHealth     float64
	Damage        float64
	Speed         float64
	Range         float64
	CooldownMS    int
	CooldownTicks uint64
	Cost          Cost
}

// Team is a team slot with its fixed base position.
type Team struct {
	Name string
	Base core.Vec
}

// Rules is the compiled, immutable ruleset a Game runs on.
// Millisecond settings are converted to tick counts once here.
type Rules struct {
	Width, Height float64
	Teams         []Team
	Obstacles     []Obstacle
	Nodes         []config.NodeConfig

	Units map[UnitType]UnitSpec

	TickPeriod    time.Duration
	DurationTicks uint64
	MinPlayers    int
	ChatHistory   int
	ChatSnapshot  int

	Movement config.MovementConfig
	Combat   config.CombatConfig
	Economy  config.EconomyConfig
}

// Compile validates cfg and builds the static tables.
func Compile(cfg config.Config) (*Rules, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Rules{
		Width:         cfg.Map.Width,
		Height:        cfg.Map.Height,
		Nodes:         slices.Clone(cfg.Map.Nodes),
		Units:         make(map[UnitType]UnitSpec, len(cfg.Units)),
		TickPeriod:    time.Duration(cfg.Match.TickMS) * time.Millisecond,
		MinPlayers:    cfg.Match.MinPlayers,
		ChatHistory:   cfg.Match.ChatHistory,
		ChatSnapshot:  cfg.Match.ChatInSnapshot,
		Movement:      cfg.Movement,
		Combat:        cfg.Combat,
		Economy:       cfg.Economy,
		DurationTicks: ticksFor(cfg.Match.DurationMS, cfg.Match.TickMS),
	}

	for _, t := range cfg.Map.Teams {
		r.Teams = append(r.Teams, Team{Name: t.Name, Base: core.V(t.BaseX, t.BaseY)})
	}
	for _, o := range cfg.Map.Obstacles {
		r.Obstacles = append(r.Obstacles, Obstacle{Pos: core.V(o.X, o.Y), Radius: o.Radius, Kind: o.Kind})
	}

	for name, u := range cfg.Units {
		typ, ok := ParseUnitType(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown unit type %q", config.ErrInvalid, name)
		}
		r.Units[typ] = UnitSpec{
			Type:          typ,
			Health:        u.Health,
			MaxHealth:     u.EffectiveMaxHealth(),
			Damage:        u.Damage,
			Speed:         u.Speed,
			Range:         u.Range,
			CooldownMS:    u.CooldownMS,
			CooldownTicks: ticksFor(u.CooldownMS, cfg.Match.TickMS),
			Cost:          Cost{Gold: u.Cost.Gold, Energy: u.Cost.Energy},
		}
	}

	return r, nil
}

// ticksFor converts a millisecond duration to whole ticks, rounding up.
func ticksFor(ms, tickMS int) uint64 {
	if ms <= 0 || tickMS <= 0 {
		return 0
	}
	return uint64(math.Ceil(float64(ms) / float64(tickMS)))
}

// Spec returns the table row for a unit type.
func (r *Rules) Spec(t UnitType) (UnitSpec, bool) {
	s, ok := r.Units[t]
	return s, ok
}

// Roster returns the available unit specs ordered by type.
func (r *Rules) Roster() []UnitSpec {
	out := make([]UnitSpec, 0, len(r.Units))
	for _, s := range r.Units {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b UnitSpec) int {
		return int(a.Type) - int(b.Type)
	})
	return out
}

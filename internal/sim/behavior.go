package sim

import (
	"fmt"

	"github.com/vovakirdan/warzone/internal/config"
	"github.com/vovakirdan/warzone/internal/core"
)

// runBehavior decides and integrates every unit in spawn order.
// Units re-evaluate from scratch each tick; only gatherer cargo state and a
// pending rebound persist. A rebounding unit coasts for one tick.
func (g *Game) runBehavior() int {
	shots := 0
	g.units.each(func(u *Unit) {
		if !u.Rebound.IsZero() {
			u.Vel, u.Rebound = u.Rebound, core.Vec{}
			u.Shooting = false
			g.integrate(u)
			return
		}
		switch u.Type().Role() {
		case RoleGatherer:
			g.gather(u)
		case RoleDefender:
			if g.defend(u) {
				shots++
			}
		case RoleStructure:
			u.Vel = core.Vec{}
			u.Shooting = false
		default:
			if g.engage(u) {
				shots++
			}
		}
		g.integrate(u)
	})
	return shots
}

// nearestEnemy returns the closest enemy unit strictly inside the detection
// radius. The first unit found wins ties.
func (g *Game) nearestEnemy(u *Unit) *Unit {
	best := u.Spec.Range * g.rules.Movement.DetectionMultiplier
	var found *Unit
	g.units.each(func(o *Unit) {
		if o.Team == u.Team || o.Health <= 0 {
			return
		}
		if d := u.Pos.Dist(o.Pos); d < best {
			best = d
			found = o
		}
	})
	return found
}

// engage runs combat behavior. It reports whether the unit fired.
func (g *Game) engage(u *Unit) bool {
	if enemy := g.nearestEnemy(u); enemy != nil {
		if u.Pos.Dist(enemy.Pos) <= u.Spec.Range {
			u.Vel = core.Vec{}
			u.Shooting = true
			return g.fire(u, enemy.Pos)
		}
		u.Shooting = false
		u.Vel = u.Pos.Toward(enemy.Pos, u.Spec.Speed)
		return false
	}

	u.Shooting = false
	if !u.HasTarget {
		u.Vel = core.Vec{}
		return false
	}
	if u.Pos.Dist(u.Target) <= g.rules.Movement.ArriveThreshold {
		u.Vel = core.Vec{}
		u.HasTarget = false
		return false
	}
	if g.blocked(u.Pos, u.Target) {
		u.Vel = core.Vec{}
		return false
	}
	u.Vel = u.Pos.Toward(u.Target, u.Spec.Speed)
	return false
}

// defend runs stationary behavior: fire at the nearest enemy within range.
func (g *Game) defend(u *Unit) bool {
	u.Vel = core.Vec{}
	enemy := g.nearestEnemy(u)
	if enemy == nil || u.Pos.Dist(enemy.Pos) > u.Spec.Range {
		u.Shooting = false
		return false
	}
	u.Shooting = true
	return g.fire(u, enemy.Pos)
}

// fire launches a projectile at the target's current position when the
// cooldown has elapsed.
func (g *Game) fire(u *Unit, at core.Vec) bool {
	if g.tick < u.ReadyAt {
		return false
	}
	u.ReadyAt = g.tick + u.Spec.CooldownTicks

	g.nextProjectile++
	c := g.rules.Combat
	p := &Projectile{
		ID:        ProjectileID(fmt.Sprintf("p%d", g.nextProjectile)),
		Shooter:   u.ID,
		Owner:     u.Owner,
		Team:      u.Team,
		Pos:       u.Pos,
		Vel:       u.Pos.Toward(at, c.ProjectileSpeed),
		Damage:    u.Spec.Damage,
		MaxTravel: u.Pos.Dist(at) + c.Overshoot,
		Alive:     true,
	}
	if p.Vel.IsZero() {
		// Coincident target: shoot along +x so the shot still expires.
		p.Vel = core.V(c.ProjectileSpeed, 0)
	}
	g.projectiles.put(p.ID, p)
	return true
}

// blocked reports whether an explicit move order is suppressed by terrain.
func (g *Game) blocked(from, to core.Vec) bool {
	m := g.rules.Movement
	for _, o := range g.rules.Obstacles {
		limit := o.Radius + m.ObstacleBlockBuffer
		if m.ObstacleCheck == config.ObstacleCheckDestination {
			if to.Dist(o.Pos) < limit {
				return true
			}
			continue
		}
		// Only paths that get closer to the obstacle count, so a unit
		// parked at the push-out ring can still walk away.
		if d := core.SegmentDist(o.Pos, from, to); d < limit && d < from.Dist(o.Pos) {
			return true
		}
	}
	return false
}

// gather runs the gatherer cycle: seek the nearest non-empty node, harvest
// until full, return to base and deposit.
func (g *Game) gather(u *Unit) {
	u.Shooting = false
	owner, ok := g.players.get(u.Owner)
	if !ok {
		u.Vel = core.Vec{}
		return
	}
	eco := g.rules.Economy

	if u.Returning {
		if u.Pos.Dist(owner.BasePos) < eco.DepositRadius {
			g.deposit(owner, u)
			u.HasTarget = false
		} else {
			u.Target = owner.BasePos
			u.HasTarget = true
		}
	} else if node, dist := g.nearestNode(u.Pos); node != nil {
		u.TargetNode = node.ID
		u.Target = node.Pos
		u.HasTarget = true
		if dist < eco.HarvestRadius {
			take := min(eco.CollectRate, node.Amount, eco.CarryCapacity-u.Cargo)
			u.Cargo += take
			node.Amount = max(0, node.Amount-take)
			if u.Cargo >= eco.CarryCapacity {
				u.Returning = true
			}
		}
	}

	if !u.HasTarget {
		u.Vel = core.Vec{}
		return
	}
	if u.Pos.Dist(u.Target) > eco.SeekArrive {
		u.Vel = u.Pos.Toward(u.Target, u.Spec.Speed)
	} else {
		u.Vel = core.Vec{}
	}
}

// deposit turns cargo into gold and a fraction of it into energy.
func (g *Game) deposit(p *Player, u *Unit) {
	eco := g.rules.Economy
	p.Gold = g.capGold(p.Gold + u.Cargo)
	p.Energy = min(p.Energy+u.Cargo*eco.EnergyConversion, eco.EnergyCap)
	u.Cargo = 0
	u.Returning = false
	u.TargetNode = ""
}

func (g *Game) nearestNode(pos core.Vec) (*ResourceNode, float64) {
	var best *ResourceNode
	bestDist := 0.0
	for _, n := range g.nodes {
		if n.Amount <= 0 {
			continue
		}
		if d := pos.Dist(n.Pos); best == nil || d < bestDist {
			best, bestDist = n, d
		}
	}
	return best, bestDist
}

// integrate applies velocity, keeps the unit on the map and pushes it out
// of any obstacle it entered. In bounce mode an edge reflects the velocity
// and an obstacle reverses it scaled by the damping factor; either way the
// result is kept as the unit's rebound for the next tick.
func (g *Game) integrate(u *Unit) {
	m := g.rules.Movement
	lo := m.EdgeMargin
	hiX, hiY := g.rules.Width-m.EdgeMargin, g.rules.Height-m.EdgeMargin
	bounce := m.EdgeMode == config.EdgeBounce
	bounced := false

	u.Pos = u.Pos.Add(u.Vel)
	if bounce {
		if u.Pos.X < lo || u.Pos.X > hiX {
			u.Vel.X = -u.Vel.X
			bounced = true
		}
		if u.Pos.Y < lo || u.Pos.Y > hiY {
			u.Vel.Y = -u.Vel.Y
			bounced = true
		}
	}
	u.Pos = core.V(core.ClampF(u.Pos.X, lo, hiX), core.ClampF(u.Pos.Y, lo, hiY))

	for _, o := range g.rules.Obstacles {
		ring := o.Radius + m.ObstaclePushBuffer
		d := u.Pos.Dist(o.Pos)
		if d >= ring {
			continue
		}
		dir := u.Pos.Sub(o.Pos)
		if d == 0 {
			dir = core.V(1, 0)
			d = 1
		}
		u.Pos = o.Pos.Add(dir.Scale(ring / d))
		if bounce {
			u.Vel = u.Vel.Scale(m.VelocityDamping)
			bounced = true
		}
	}
	u.Pos = core.V(core.ClampF(u.Pos.X, lo, hiX), core.ClampF(u.Pos.Y, lo, hiY))
	if bounced {
		u.Rebound = u.Vel
	}
}

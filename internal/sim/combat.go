package sim

// runCombat advances projectiles, resolves hits and applies siege damage.
// It returns the number of units destroyed.
func (g *Game) runCombat() int {
	kills := 0
	c := g.rules.Combat

	for _, pid := range g.projectiles.ids() {
		p, ok := g.projectiles.get(pid)
		if !ok {
			continue
		}
		g.advance(p)
		if p.Alive {
			if g.hitUnit(p) {
				kills++
			}
		}
		if p.Alive {
			g.hitBase(p)
		}
		if !p.Alive {
			g.projectiles.remove(pid)
		}
	}

	// Siege runs every tick whether or not anything fired.
	g.bases.each(func(b *Base) {
		if b.Destroyed() {
			return
		}
		g.units.each(func(u *Unit) {
			if u.Team != b.Team && u.Health > 0 && u.Pos.Dist(b.Pos) < c.SiegeRadius {
				b.Health = max(0, b.Health-u.Spec.Damage*c.SiegeFactor)
			}
		})
	})

	g.bases.each(func(b *Base) {
		if !b.Destroyed() {
			return
		}
		if owner, ok := g.players.get(b.Owner); ok {
			owner.Alive = false
		}
	})
	return kills
}

// advance moves a projectile and expires it past its range or off the map.
func (g *Game) advance(p *Projectile) {
	p.Pos = p.Pos.Add(p.Vel)
	p.Traveled += p.Vel.Len()
	if p.Traveled >= p.MaxTravel ||
		p.Pos.X < 0 || p.Pos.X > g.rules.Width ||
		p.Pos.Y < 0 || p.Pos.Y > g.rules.Height {
		p.Alive = false
	}
}

// hitUnit applies the projectile to the first enemy unit inside the hit
// radius. It reports whether that unit died.
func (g *Game) hitUnit(p *Projectile) bool {
	radius := g.rules.Combat.UnitHitRadius
	for _, uid := range g.units.ids() {
		u, ok := g.units.get(uid)
		if !ok || u.Team == p.Team || u.Health <= 0 {
			continue
		}
		if u.Pos.Dist(p.Pos) >= radius {
			continue
		}
		u.Health = max(0, u.Health-p.Damage)
		p.Alive = false
		if u.Health > 0 {
			return false
		}
		g.units.remove(uid)
		if killer, ok := g.players.get(p.Owner); ok && killer.Alive {
			killer.Kills++
		}
		return true
	}
	return false
}

// hitBase applies scaled damage to the first enemy base inside the base hit radius.
func (g *Game) hitBase(p *Projectile) {
	c := g.rules.Combat
	for _, bid := range g.bases.ids() {
		b, _ := g.bases.get(bid)
		if b.Team == p.Team || b.Destroyed() {
			continue
		}
		if b.Pos.Dist(p.Pos) < c.BaseHitRadius {
			b.Health = max(0, b.Health-p.Damage*c.BaseDamageFactor)
			p.Alive = false
			return
		}
	}
}

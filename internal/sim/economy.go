package sim

// runEconomy regenerates resource nodes and pays per-tick income.
func (g *Game) runEconomy() {
	eco := g.rules.Economy
	for _, n := range g.nodes {
		if n.Amount < n.MaxAmount {
			n.Amount = min(n.MaxAmount, n.Amount+eco.NodeRegenPerTick)
		}
	}
	g.players.each(func(p *Player) {
		if !p.Alive {
			return
		}
		p.Gold = g.capGold(p.Gold + eco.GoldPerTick)
		p.Energy = min(p.Energy+eco.EnergyPerTick, eco.EnergyCap)
	})
}

// capGold applies the optional gold ceiling.
func (g *Game) capGold(v float64) float64 {
	if c := g.rules.Economy.GoldCap; c > 0 {
		return min(v, c)
	}
	return v
}

package tui

import (
	"github.com/vovakirdan/warzone/internal/core"
	"github.com/vovakirdan/warzone/internal/sim"
)

// unitGlyphs maps unit types to minimap runes.
var unitGlyphs = map[string]rune{
	"soldier":     's',
	"tank":        'T',
	"fighter":     'f',
	"cannon":      'C',
	"helicopter":  'h',
	"bomber":      'B',
	"collector":   'c',
	"constructor": 'k',
	"turret":      't',
	"barracks":    'R',
}

func unitGlyph(typ string) rune {
	if r, ok := unitGlyphs[typ]; ok {
		return r
	}
	return '?'
}

// minimap projects world coordinates onto the inside of a bordered screen.
type minimap struct {
	scr    *core.Screen
	sx, sy float64
}

func newMinimap(scr *core.Screen, snap *sim.Snapshot) minimap {
	m := minimap{scr: scr}
	innerW, innerH := scr.Width()-2, scr.Height()-2
	if innerW > 0 && innerH > 0 && snap.MapWidth > 0 && snap.MapHeight > 0 {
		m.sx = float64(innerW) / snap.MapWidth
		m.sy = float64(innerH) / snap.MapHeight
	}
	return m
}

func (m minimap) cell(x, y int) (int, int) {
	return 1 + int(float64(x)*m.sx), 1 + int(float64(y)*m.sy)
}

func (m minimap) plot(x, y int, r rune, c core.Color) {
	cx, cy := m.cell(x, y)
	// keep the border intact
	if cx < 1 || cy < 1 || cx > m.scr.Width()-2 || cy > m.scr.Height()-2 {
		return
	}
	m.scr.SetColor(cx, cy, r, c)
}

// fillCircle marks every cell whose centre lies inside the circle.
func (m minimap) fillCircle(o sim.ObstacleView, r rune, c core.Color) {
	if m.sx == 0 || m.sy == 0 {
		return
	}
	center := core.V(float64(o.X), float64(o.Y))
	for cy := 1; cy < m.scr.Height()-1; cy++ {
		for cx := 1; cx < m.scr.Width()-1; cx++ {
			world := core.V((float64(cx-1)+0.5)/m.sx, (float64(cy-1)+0.5)/m.sy)
			if world.Dist(center) <= float64(o.Radius) {
				m.scr.SetColor(cx, cy, r, c)
			}
		}
	}
}

// DrawMinimap renders the battlefield into scr, border included.
// Later layers win: terrain, nodes, bases, units, projectiles.
func DrawMinimap(scr *core.Screen, snap *sim.Snapshot) {
	scr.Clear()
	scr.DrawBox(0, 0, scr.Width(), scr.Height(), core.ColorGray)
	if snap == nil {
		scr.DrawText(2, 1, "waiting for state...", core.ColorGray)
		return
	}

	m := newMinimap(scr, snap)

	for _, o := range snap.Obstacles {
		if o.Type == "forest" {
			m.fillCircle(o, '♣', core.ColorGreen)
		} else {
			m.fillCircle(o, '▒', core.ColorGray)
		}
	}

	for _, n := range snap.ResourceNodes {
		if n.Amount > 0 {
			m.plot(n.X, n.Y, '$', core.ColorYellow)
		} else {
			m.plot(n.X, n.Y, '.', core.ColorGray)
		}
	}

	for _, b := range snap.Bases {
		if b.Health <= 0 {
			m.plot(b.X, b.Y, 'x', core.ColorGray)
			continue
		}
		m.plot(b.X, b.Y, '■', core.TeamColor(b.Team))
	}

	for _, u := range snap.Units {
		m.plot(u.X, u.Y, unitGlyph(u.Type), core.TeamColor(u.Team))
	}

	for _, p := range snap.Projectiles {
		m.plot(p.X, p.Y, '*', core.TeamColor(p.Team))
	}
}

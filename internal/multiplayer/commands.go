package multiplayer

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/warzone/internal/core"
	"github.com/vovakirdan/warzone/internal/sim"
)

const commandHelp = "/stats /units /help"

func isCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// runCommand answers a slash command for a player. Commands never mutate the world.
func runCommand(g *sim.Game, id sim.PlayerID, text string) string {
	p, ok := g.Player(id)
	if !ok {
		return ""
	}
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return "Unknown. /help"
	}

	switch strings.ToLower(fields[0]) {
	case "/stats":
		return fmt.Sprintf("HP=%d K=%d G=%d E=%d",
			core.Round(p.Health), p.Kills, core.Round(p.Gold), core.Round(p.Energy))
	case "/units":
		return fmt.Sprintf("Units: %d", g.UnitCount(id))
	case "/help":
		return commandHelp
	default:
		return "Unknown. /help"
	}
}

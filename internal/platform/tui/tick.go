package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	refreshInterval = time.Second
	staleAfter      = 3 * time.Second // no snapshot for this long marks the view stale
)

// refreshMsg redraws the dashboard between snapshots.
type refreshMsg time.Time

// refreshCmd returns a Bubble Tea command that sends one refresh message after refreshInterval.
func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

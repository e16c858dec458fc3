package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/warzone/internal/sim"
	"github.com/vovakirdan/warzone/internal/storage"
)

// Dashboard layout constants
const (
	sidePanelWidth = 40 // leaderboard and chat column
	minMapWidth    = 20
	minMapHeight   = 8
	chatLines      = 6
	historyLimit   = 50
)

// newTable creates a table with the dashboard styles.
func newTable(columns []table.Column, height int) table.Model {
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func newLeaderboardTable(height int) table.Model {
	return newTable([]table.Column{
		{Title: "#", Width: 3},
		{Title: "Name", Width: 12},
		{Title: "Team", Width: 7},
		{Title: "Kills", Width: 5},
		{Title: "Gold", Width: 6},
	}, height)
}

func newHistoryTable(width, height int) table.Model {
	dateWidth := width - 46
	if dateWidth < 12 {
		dateWidth = 12
	}
	if dateWidth > 20 {
		dateWidth = 20
	}
	return newTable([]table.Column{
		{Title: "Match", Width: 8},
		{Title: "Winner", Width: 7},
		{Title: "Reason", Width: 11},
		{Title: "Time", Width: 6},
		{Title: "Players", Width: 7},
		{Title: "Date", Width: dateWidth},
	}, height)
}

// leaderboardRows lists players by kills, as ordered in the snapshot.
func leaderboardRows(snap *sim.Snapshot) []table.Row {
	if snap == nil {
		return nil
	}
	rows := make([]table.Row, 0, len(snap.Leaderboard))
	for i, p := range snap.Leaderboard {
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			truncate(p.Name, 12),
			p.Team,
			strconv.Itoa(p.Kills),
			strconv.Itoa(p.Gold),
		})
	}
	return rows
}

func historyRows(recs []storage.MatchRecord) []table.Row {
	rows := make([]table.Row, len(recs))
	for i, r := range recs {
		rows[i] = table.Row{
			truncate(r.MatchID, 8),
			r.Winner,
			r.Reason,
			clock(time.Duration(r.Duration) * time.Second),
			strconv.Itoa(len(r.Players)),
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// clock formats a duration as m:ss.
func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "."
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/warzone/internal/core"
	"github.com/vovakirdan/warzone/internal/sim"
	"github.com/vovakirdan/warzone/internal/storage"
)

// SnapshotMsg delivers a new world state to the dashboard.
type SnapshotMsg struct {
	State *sim.Snapshot
}

// ChatMsg delivers one chat line.
type ChatMsg struct {
	Message sim.ChatMessage
}

// DisconnectedMsg reports that the feed has ended.
type DisconnectedMsg struct {
	Err error
}

type historyMsg struct {
	records []storage.MatchRecord
	err     error
}

// Feed yields dashboard messages. Next blocks until one is available and
// returns a DisconnectedMsg once the feed is over.
type Feed interface {
	Next() tea.Msg
}

// HistorySource lists finished matches, newest first.
type HistorySource interface {
	RecentMatches(limit int) ([]storage.MatchRecord, error)
}

// SpectatorOptions configures a dashboard.
type SpectatorOptions struct {
	Title      string
	TickPeriod time.Duration // converts game ticks to a match clock
	History    HistorySource // optional
	Width      int
	Height     int
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	statusStyle = map[sim.Status]lipgloss.Style{
		sim.StatusWaiting:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		sim.StatusPlaying:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		sim.StatusFinished: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

// SpectatorModel is the Bubble Tea model for the live match dashboard.
type SpectatorModel struct {
	feed    Feed
	history HistorySource
	title   string
	period  time.Duration

	keys    SpectatorKeyMap
	help    help.Model
	board   table.Model
	past    table.Model
	screen  *core.Screen
	snap    *sim.Snapshot
	chat    []sim.ChatMessage
	records []storage.MatchRecord

	lastUpdate  time.Time
	stale       bool
	showHistory bool
	historyErr  error
	feedErr     error
	offline     bool
	quitting    bool
	width       int
	height      int
}

// NewSpectatorModel creates a dashboard reading from feed.
func NewSpectatorModel(feed Feed, opts SpectatorOptions) SpectatorModel {
	if opts.Title == "" {
		opts.Title = "WARZONE"
	}
	if opts.TickPeriod <= 0 {
		opts.TickPeriod = 30 * time.Millisecond
	}
	if opts.Width <= 0 {
		opts.Width = 100
	}
	if opts.Height <= 0 {
		opts.Height = 30
	}

	m := SpectatorModel{
		feed:    feed,
		history: opts.History,
		title:   opts.Title,
		period:  opts.TickPeriod,
		keys:    DefaultSpectatorKeyMap(),
		help:    help.New(),
	}
	m.resize(opts.Width, opts.Height)
	return m
}

func (m *SpectatorModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width

	mapW := max(width-sidePanelWidth-4, minMapWidth)
	mapH := max(height-4, minMapHeight)
	if m.screen == nil {
		m.screen = core.NewScreen(mapW, mapH)
	} else {
		m.screen.Resize(mapW, mapH)
	}

	m.board = newLeaderboardTable(mapH - chatLines - 6)
	m.board.SetRows(leaderboardRows(m.snap))
	m.past = newHistoryTable(width-4, height-8)
	m.past.SetRows(historyRows(m.records))
}

// listen waits for the next feed message.
func listen(f Feed) tea.Cmd {
	return func() tea.Msg {
		return f.Next()
	}
}

func loadHistory(h HistorySource) tea.Cmd {
	return func() tea.Msg {
		recs, err := h.RecentMatches(historyLimit)
		return historyMsg{records: recs, err: err}
	}
}

// Init starts reading the feed.
func (m SpectatorModel) Init() tea.Cmd {
	return tea.Batch(listen(m.feed), refreshCmd())
}

// Update handles messages for the dashboard.
func (m SpectatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case SnapshotMsg:
		m.applySnapshot(msg.State)
		m.lastUpdate = time.Now()
		m.stale = false
		return m, listen(m.feed)

	case refreshMsg:
		m.stale = !m.lastUpdate.IsZero() && time.Time(msg).Sub(m.lastUpdate) > staleAfter
		if m.offline {
			return m, nil
		}
		return m, refreshCmd()

	case ChatMsg:
		m.appendChat(msg.Message)
		return m, listen(m.feed)

	case DisconnectedMsg:
		m.offline = true
		m.feedErr = msg.Err
		return m, nil

	case historyMsg:
		m.records, m.historyErr = msg.records, msg.err
		m.past.SetRows(historyRows(m.records))
		m.past.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.History):
			if m.history == nil {
				return m, nil
			}
			m.showHistory = !m.showHistory
			if m.showHistory {
				return m, loadHistory(m.history)
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			if m.showHistory {
				m.past, cmd = m.past.Update(msg)
			} else {
				m.board, cmd = m.board.Update(msg)
			}
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	}

	return m, nil
}

func (m *SpectatorModel) applySnapshot(snap *sim.Snapshot) {
	if snap == nil {
		return
	}
	m.snap = snap
	m.board.SetRows(leaderboardRows(snap))
	if len(snap.Messages) > 0 {
		m.chat = append(m.chat[:0], snap.Messages...)
		m.trimChat()
	}
}

func (m *SpectatorModel) appendChat(msg sim.ChatMessage) {
	// the same line may already have arrived inside a snapshot
	if n := len(m.chat); n > 0 && sameLine(m.chat[n-1], msg) {
		return
	}
	m.chat = append(m.chat, msg)
	m.trimChat()
}

// sameLine ignores timestamps, which websocket chat frames do not carry.
func sameLine(a, b sim.ChatMessage) bool {
	return a.PlayerID == b.PlayerID && a.PlayerName == b.PlayerName && a.Message == b.Message
}

func (m *SpectatorModel) trimChat() {
	if over := len(m.chat) - chatLines; over > 0 {
		m.chat = append(m.chat[:0], m.chat[over:]...)
	}
}

// View renders the dashboard.
func (m SpectatorModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")

	if m.showHistory {
		b.WriteString(panelStyle.Render(m.historyContent()))
	} else {
		DrawMinimap(m.screen, m.snap)
		side := lipgloss.JoinVertical(lipgloss.Left,
			panelStyle.Render(m.leaderboardContent()),
			panelStyle.Width(sidePanelWidth-2).Render(m.chatContent()),
		)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, RenderScreen(m.screen), " ", side))
	}

	b.WriteString("\n")
	if m.offline {
		text := "disconnected"
		if m.feedErr != nil {
			text += ": " + m.feedErr.Error()
		}
		b.WriteString(errorStyle.Render(text))
		b.WriteString("  ")
	}
	b.WriteString(mutedStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m SpectatorModel) header() string {
	if m.snap == nil {
		return titleStyle.Render(m.title) + mutedStyle.Render("  connecting...")
	}
	s := m.snap

	status := string(s.GameStatus)
	if st, ok := statusStyle[s.GameStatus]; ok {
		status = st.Render(strings.ToUpper(status))
	}
	line := fmt.Sprintf("%s  %s  tick %d  %s  players %d  sessions %d",
		titleStyle.Render(m.title),
		status,
		s.Tick,
		clock(time.Duration(s.GameTime)*m.period),
		len(s.Players),
		s.ActiveSessions,
	)
	if m.stale && !m.offline {
		line += mutedStyle.Render("  (stale)")
	}
	if s.GameStatus == sim.StatusFinished && s.Winner != "" {
		line += "  " + teamStyle(s.Winner).Render(strings.ToUpper(s.Winner)+" wins by "+string(s.FinishReason))
	}
	return line
}

func (m SpectatorModel) leaderboardContent() string {
	if m.snap == nil || len(m.snap.Leaderboard) == 0 {
		return mutedStyle.Italic(true).Render("No players yet.")
	}
	return m.board.View()
}

func (m SpectatorModel) chatContent() string {
	if len(m.chat) == 0 {
		return mutedStyle.Render("no messages")
	}
	lines := make([]string, len(m.chat))
	for i, c := range m.chat {
		name := teamStyle(c.Team).Render(truncate(c.PlayerName, 10))
		if c.PlayerName == sim.SystemName {
			name = mutedStyle.Render(c.PlayerName)
		}
		lines[i] = name + " " + truncate(c.Message, sidePanelWidth-16)
	}
	return strings.Join(lines, "\n")
}

func (m SpectatorModel) historyContent() string {
	switch {
	case m.historyErr != nil:
		return errorStyle.Render("could not load history: " + m.historyErr.Error())
	case len(m.records) == 0:
		return mutedStyle.Italic(true).Padding(1, 2).Render("No finished matches yet.")
	}
	return m.past.View()
}

// Snapshot returns the last world state received.
func (m SpectatorModel) Snapshot() *sim.Snapshot {
	return m.snap
}

// Offline reports whether the feed has ended.
func (m SpectatorModel) Offline() bool {
	return m.offline
}

package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/warzone/internal/sim"
	"github.com/vovakirdan/warzone/internal/storage"
)

type fakeFeed struct {
	msgs chan tea.Msg
}

func (f *fakeFeed) Next() tea.Msg { return <-f.msgs }

type fakeHistory struct {
	records []storage.MatchRecord
	err     error
	calls   int
}

func (h *fakeHistory) RecentMatches(limit int) ([]storage.MatchRecord, error) {
	h.calls++
	return h.records, h.err
}

func update(t *testing.T, m SpectatorModel, msg tea.Msg) (SpectatorModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	sm, ok := next.(SpectatorModel)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return sm, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func playingSnapshot() *sim.Snapshot {
	snap := testSnapshot()
	snap.Tick = 2100
	snap.GameTime = 2000
	snap.GameStatus = sim.StatusPlaying
	snap.ActiveSessions = 3
	snap.Players = []sim.PlayerView{
		{ID: "player_1", Name: "alice", Team: "blue", Kills: 1, Gold: 120, IsAlive: true},
		{ID: "player_2", Name: "bob", Team: "red", Kills: 4, Gold: 80, IsAlive: true},
	}
	snap.Leaderboard = []sim.PlayerView{snap.Players[1], snap.Players[0]}
	snap.Messages = []sim.ChatMessage{{PlayerName: sim.SystemName, Message: "Match started", Timestamp: 1}}
	return snap
}

func TestSpectatorInitListens(t *testing.T) {
	feed := &fakeFeed{msgs: make(chan tea.Msg, 1)}
	feed.msgs <- SnapshotMsg{State: playingSnapshot()}

	m := NewSpectatorModel(feed, SpectatorOptions{})
	if m.Init() == nil {
		t.Fatal("Init() returned nil cmd")
	}
	if _, ok := listen(feed)().(SnapshotMsg); !ok {
		t.Error("listen() did not read the feed")
	}
}

func TestSpectatorStale(t *testing.T) {
	m := NewSpectatorModel(&fakeFeed{}, SpectatorOptions{})

	// nothing received yet, nothing to call stale
	m, cmd := update(t, m, refreshMsg(time.Now()))
	if m.stale || cmd == nil {
		t.Fatalf("stale = %v, cmd = %v before first snapshot", m.stale, cmd)
	}

	m, _ = update(t, m, SnapshotMsg{State: playingSnapshot()})
	m, _ = update(t, m, refreshMsg(m.lastUpdate.Add(time.Second)))
	if m.stale {
		t.Error("stale after 1s")
	}
	m, _ = update(t, m, refreshMsg(m.lastUpdate.Add(staleAfter+time.Second)))
	if !m.stale || !strings.Contains(m.View(), "(stale)") {
		t.Error("view not marked stale")
	}

	m, _ = update(t, m, SnapshotMsg{State: playingSnapshot()})
	if m.stale {
		t.Error("new snapshot did not clear stale")
	}

	m, _ = update(t, m, DisconnectedMsg{})
	if _, cmd := update(t, m, refreshMsg(time.Now())); cmd != nil {
		t.Error("refresh kept running after disconnect")
	}
}

func TestSpectatorSnapshot(t *testing.T) {
	m := NewSpectatorModel(&fakeFeed{}, SpectatorOptions{Title: "WZ", TickPeriod: 30 * time.Millisecond, Width: 100, Height: 30})

	if view := m.View(); !strings.Contains(view, "connecting") {
		t.Errorf("View() before state = %q", view)
	}

	m, cmd := update(t, m, SnapshotMsg{State: playingSnapshot()})
	if cmd == nil {
		t.Error("SnapshotMsg did not re-arm the feed")
	}
	if m.Snapshot() == nil || m.Snapshot().Tick != 2100 {
		t.Fatalf("Snapshot() = %+v", m.Snapshot())
	}

	view := m.View()
	for _, want := range []string{"WZ", "PLAYING", "tick 2100", "1:00", "players 2", "sessions 3", "bob", "alice", "Match started"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if rows := m.board.Rows(); len(rows) != 2 || rows[0][1] != "bob" {
		t.Errorf("leaderboard rows = %v", rows)
	}
}

func TestSpectatorFinishedHeader(t *testing.T) {
	m := NewSpectatorModel(&fakeFeed{}, SpectatorOptions{})
	snap := playingSnapshot()
	snap.GameStatus = sim.StatusFinished
	snap.Winner = "red"
	snap.FinishReason = sim.FinishReason("elimination")

	m, _ = update(t, m, SnapshotMsg{State: snap})
	if !strings.Contains(m.View(), "RED wins by elimination") {
		t.Error("View() missing winner line")
	}
}

func TestSpectatorChat(t *testing.T) {
	m := NewSpectatorModel(&fakeFeed{}, SpectatorOptions{})
	m, _ = update(t, m, SnapshotMsg{State: playingSnapshot()})

	// same line already delivered by the snapshot
	m, cmd := update(t, m, ChatMsg{Message: sim.ChatMessage{PlayerName: sim.SystemName, Message: "Match started"}})
	if cmd == nil {
		t.Error("ChatMsg did not re-arm the feed")
	}
	if len(m.chat) != 1 {
		t.Errorf("chat = %d lines, want 1", len(m.chat))
	}

	for i := range chatLines + 2 {
		m, _ = update(t, m, ChatMsg{Message: sim.ChatMessage{PlayerID: "player_1", PlayerName: "alice", Team: "blue", Message: strings.Repeat("x", i+1)}})
	}
	if len(m.chat) != chatLines {
		t.Errorf("chat = %d lines, want %d", len(m.chat), chatLines)
	}
	if last := m.chat[len(m.chat)-1].Message; len(last) != chatLines+2 {
		t.Errorf("last line = %q, want newest kept", last)
	}
}

func TestSpectatorDisconnected(t *testing.T) {
	m := NewSpectatorModel(&fakeFeed{}, SpectatorOptions{})
	m, cmd := update(t, m, DisconnectedMsg{Err: errors.New("connection reset")})
	if cmd != nil {
		t.Error("DisconnectedMsg re-armed the feed")
	}
	if !m.Offline() {
		t.Error("Offline() = false")
	}
	if !strings.Contains(m.View(), "disconnected: connection reset") {
		t.Error("View() missing disconnect notice")
	}
}

func TestSpectatorHistory(t *testing.T) {
	hist := &fakeHistory{records: []storage.MatchRecord{
		{MatchID: "abcdef123456", Winner: "blue", Reason: "timeout", Duration: 600, CreatedAt: time.Now()},
	}}
	m := NewSpectatorModel(&fakeFeed{}, SpectatorOptions{History: hist})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.showHistory || cmd == nil {
		t.Fatal("tab did not open history")
	}
	m, _ = update(t, m, cmd())
	if hist.calls != 1 {
		t.Errorf("RecentMatches() called %d times", hist.calls)
	}

	view := m.View()
	for _, want := range []string{"abcdef1.", "blue", "timeout", "10:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("history view missing %q", want)
		}
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.showHistory {
		t.Error("tab did not return to live view")
	}
}

func TestSpectatorHistoryError(t *testing.T) {
	hist := &fakeHistory{err: errors.New("db locked")}
	m := NewSpectatorModel(&fakeFeed{}, SpectatorOptions{History: hist})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, cmd())
	if !strings.Contains(m.View(), "could not load history: db locked") {
		t.Error("View() missing history error")
	}
}

func TestSpectatorHistoryDisabled(t *testing.T) {
	m := NewSpectatorModel(&fakeFeed{}, SpectatorOptions{})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.showHistory || cmd != nil {
		t.Error("history opened without a source")
	}
}

func TestSpectatorQuit(t *testing.T) {
	m := NewSpectatorModel(&fakeFeed{}, SpectatorOptions{})
	m, cmd := update(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatal("q returned nil cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if m.View() != "" {
		t.Error("View() after quit not empty")
	}
}

func TestSpectatorResize(t *testing.T) {
	m := NewSpectatorModel(&fakeFeed{}, SpectatorOptions{Width: 100, Height: 30})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 50})

	if m.screen.Width() != 140-sidePanelWidth-4 || m.screen.Height() != 46 {
		t.Errorf("minimap = %dx%d", m.screen.Width(), m.screen.Height())
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 5})
	if m.screen.Width() != minMapWidth || m.screen.Height() != minMapHeight {
		t.Errorf("minimap = %dx%d, want minimum size", m.screen.Width(), m.screen.Height())
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{10 * time.Minute, "10:00"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		if got := clock(tt.in); got != tt.want {
			t.Errorf("clock(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("alexander", 5); got != "alex." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("bob", 5); got != "bob" {
		t.Errorf("truncate() = %q", got)
	}
}

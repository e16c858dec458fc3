package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/warzone/internal/config"
	"github.com/vovakirdan/warzone/internal/multiplayer"
	"github.com/vovakirdan/warzone/internal/storage"
)

func TestDefaultURL(t *testing.T) {
	tests := []struct {
		srv  config.ServerConfig
		want string
	}{
		{config.ServerConfig{Addr: ":3000", WSPath: "/ws"}, "ws://localhost:3000/ws"},
		{config.ServerConfig{Addr: "0.0.0.0:8080", WSPath: ""}, "ws://0.0.0.0:8080/"},
		{config.ServerConfig{Addr: "game.local:9000", WSPath: "play"}, "ws://game.local:9000/play"},
	}
	for _, tt := range tests {
		if got := defaultURL(tt.srv); got != tt.want {
			t.Errorf("defaultURL(%+v) = %q, want %q", tt.srv, got, tt.want)
		}
	}
}

func TestPlayerList(t *testing.T) {
	got := playerList([]storage.PlayerRecord{
		{Name: "alice", Team: "blue", Kills: 3, Alive: true},
		{Name: "bob", Team: "red", Kills: 1},
	})
	if got != "alice*(blue) 3, bob(red) 1" {
		t.Errorf("playerList() = %q", got)
	}
	if playerList(nil) != "" {
		t.Error("playerList(nil) not empty")
	}
}

func TestPrintMatch(t *testing.T) {
	var buf bytes.Buffer
	printMatch(&buf, &storage.MatchRecord{
		MatchID:   "3f2a9c1e-0000",
		Winner:    "red",
		Reason:    "elimination",
		Ticks:     4200,
		Duration:  126,
		CreatedAt: time.Date(2026, 3, 1, 18, 5, 0, 0, time.UTC),
		Players: []storage.PlayerRecord{
			{Name: "bob", Team: "red", Kills: 4, Alive: true},
			{Name: "alice", Team: "blue", Kills: 1},
		},
	})

	out := buf.String()
	for _, want := range []string{"Match 3f2a9c1e-0000", "red (elimination)", "2:06 (4200 ticks)", "2026-03-01 18:05", "alive", "destroyed"} {
		if !strings.Contains(out, want) {
			t.Errorf("printMatch() missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "bob") > strings.Index(out, "alice") {
		t.Error("players not printed in stored order")
	}
}

func TestShowMatch(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()
	if err := store.SaveMatchResult(multiplayer.MatchResultData{MatchID: "3f2a9c1e-0000", Winner: "blue", Reason: "timeout"}); err != nil {
		t.Fatalf("SaveMatchResult() failed: %v", err)
	}

	var buf bytes.Buffer
	if err := showMatch(&buf, store, "3f2a"); err != nil {
		t.Fatalf("showMatch() failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Match 3f2a9c1e-0000") {
		t.Errorf("showMatch() = %q", buf.String())
	}
	if err := showMatch(&buf, store, "ffff"); err == nil {
		t.Error("showMatch() of an unknown id succeeded")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID() = %q", got)
	}
	if got := shortID("m1"); got != "m1" {
		t.Errorf("shortID() = %q", got)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	old := flagLogLevel
	t.Cleanup(func() { flagLogLevel = old })

	flagLogLevel = "debug"
	if _, err := newLogger(); err != nil {
		t.Errorf("newLogger(debug) failed: %v", err)
	}
	flagLogLevel = "loud"
	if _, err := newLogger(); err == nil || !strings.Contains(err.Error(), "loud") {
		t.Errorf("newLogger(loud) = %v, want error", err)
	}
}

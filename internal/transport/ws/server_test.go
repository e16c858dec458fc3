package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/warzone/internal/config"
	"github.com/vovakirdan/warzone/internal/multiplayer"
	"github.com/vovakirdan/warzone/internal/protocol"
	"github.com/vovakirdan/warzone/internal/sim"
)

type stubController struct {
	stats multiplayer.Stats
	sent  []multiplayer.CoordinatorMessage
}

func (s *stubController) Send(msg multiplayer.CoordinatorMessage) { s.sent = append(s.sent, msg) }
func (s *stubController) Stats() multiplayer.Stats                { return s.stats }

// startServer runs a real controller behind an httptest server.
func startServer(t *testing.T) (*multiplayer.Coordinator, string) {
	t.Helper()
	rules, err := sim.Compile(config.DefaultConfig())
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	logger := log.New(io.Discard)
	coord, err := multiplayer.NewCoordinator(multiplayer.CoordinatorConfig{Rules: rules, Seed: 1}, multiplayer.NewSessionRegistry(), logger)
	if err != nil {
		t.Fatalf("NewCoordinator() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = coord.Run(ctx)
	}()

	srv := httptest.NewServer(NewServer(coord, Config{Path: "/ws"}, logger).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return coord, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	c, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// readUntil skips messages until one of type typ arrives.
func readUntil(t *testing.T, c *Client, typ string) []byte {
	t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		got, data, err := c.Next()
		if err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if got == typ {
			return data
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHealthz(t *testing.T) {
	ctrl := &stubController{stats: multiplayer.Stats{MatchID: "m1", Status: sim.StatusPlaying, Tick: 42, Players: 2, Sessions: 3}}
	srv := httptest.NewServer(NewServer(ctrl, DefaultConfig(), log.New(io.Discard)).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	want := "ok status=playing players=2 sessions=3 tick=42 match=m1\n"
	if resp.StatusCode != http.StatusOK || string(body) != want {
		t.Errorf("GET /healthz = %d %q, want 200 %q", resp.StatusCode, body, want)
	}
}

func TestJoinAndSnapshots(t *testing.T) {
	coord, url := startServer(t)
	alice := dial(t, url)
	bob := dial(t, url)

	if err := alice.Send(protocol.JoinGame{PlayerName: "alice"}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	var jc protocol.JoinConfirmed
	if err := json.Unmarshal(readUntil(t, alice, protocol.TypeJoinConfirmed), &jc); err != nil {
		t.Fatalf("decoding JOIN_CONFIRMED: %v", err)
	}
	if jc.PlayerID != "player_1" || jc.Team != "blue" || jc.Version != sim.Version || jc.BaseX != 100 {
		t.Errorf("JOIN_CONFIRMED = %+v", jc)
	}

	if err := bob.Send(protocol.JoinGame{PlayerName: "bob"}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	readUntil(t, bob, protocol.TypeJoinConfirmed)

	gs, err := protocol.DecodeGameState(readUntil(t, alice, protocol.TypeGameState))
	if err != nil {
		t.Fatalf("DecodeGameState() failed: %v", err)
	}
	if gs.Version != sim.Version || len(gs.Players) == 0 || gs.MapWidth != 1000 {
		t.Errorf("GAME_STATE = version %q players %d width %v", gs.Version, len(gs.Players), gs.MapWidth)
	}
	if gs.MyPlayerID != "" {
		t.Errorf("broadcast carried myPlayerId %q", gs.MyPlayerID)
	}

	waitFor(t, "match start", func() bool { return coord.Stats().Status == sim.StatusPlaying })

	if err := alice.Send(protocol.GetState{}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	_ = alice.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		typ, data, err := alice.Next()
		if err != nil {
			t.Fatalf("waiting for GET_STATE reply: %v", err)
		}
		if typ != protocol.TypeGameState {
			continue
		}
		gs, err := protocol.DecodeGameState(data)
		if err != nil {
			t.Fatalf("DecodeGameState() failed: %v", err)
		}
		if gs.MyPlayerID == "player_1" {
			break
		}
	}
}

func TestMalformedMessageKeepsConnection(t *testing.T) {
	_, url := startServer(t)
	c := dial(t, url)

	for _, raw := range []string{"not json", `{"type":"HEAL"}`, `{"type":"MOVE_UNIT"}`} {
		if err := c.conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("WriteMessage() failed: %v", err)
		}
	}
	if err := c.Send(protocol.Ping{}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	readUntil(t, c, protocol.TypePong)

	if err := c.Send(protocol.GetPlayers{}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	var pl protocol.PlayersList
	if err := json.Unmarshal(readUntil(t, c, protocol.TypePlayersList), &pl); err != nil {
		t.Fatalf("decoding PLAYERS_LIST: %v", err)
	}
	if pl.Players == nil || len(pl.Players) != 0 {
		t.Errorf("players = %#v, want empty list", pl.Players)
	}
}

func TestDisconnectRemovesPlayer(t *testing.T) {
	coord, url := startServer(t)
	c := dial(t, url)
	if err := c.Send(protocol.JoinGame{PlayerName: "ghost"}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	readUntil(t, c, protocol.TypeJoinConfirmed)
	waitFor(t, "player seated", func() bool { return coord.Stats().Players == 1 })

	_ = c.Close()
	waitFor(t, "player removed", func() bool {
		st := coord.Stats()
		return st.Players == 0 && st.Sessions == 0
	})
}

func TestIntentFor(t *testing.T) {
	id := multiplayer.SessionID("s1")
	tests := []struct {
		in   protocol.Inbound
		want multiplayer.CoordinatorMessage
	}{
		{protocol.JoinGame{PlayerName: "n"}, multiplayer.JoinGameMsg{SessionID: id, PlayerName: "n"}},
		{protocol.SpawnUnit{UnitType: "tank"}, multiplayer.SpawnUnitMsg{SessionID: id, UnitType: "tank"}},
		{protocol.MoveUnit{UnitID: "unit_1", X: 1, Y: 2}, multiplayer.MoveUnitMsg{SessionID: id, UnitID: "unit_1", X: 1, Y: 2}},
		{protocol.GetState{}, multiplayer.GetStateMsg{SessionID: id}},
		{protocol.Chat{Message: "hi"}, multiplayer.ChatMsg{SessionID: id, Text: "hi"}},
		{protocol.GetPlayers{}, multiplayer.GetPlayersMsg{SessionID: id}},
		{protocol.Ping{}, multiplayer.PingMsg{SessionID: id}},
	}

	for _, tt := range tests {
		if got := intentFor(id, tt.in); got != tt.want {
			t.Errorf("intentFor(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestEncodeEvent(t *testing.T) {
	pre := []byte(`{"type":"GAME_STATE"}`)
	got, err := encodeEvent(multiplayer.SnapshotEvent{Encoded: pre})
	if err != nil || string(got) != string(pre) {
		t.Errorf("encodeEvent(pre-encoded) = %s, %v", got, err)
	}

	got, err = encodeEvent(multiplayer.PongEvent{})
	if err != nil || string(got) != `{"type":"PONG"}` {
		t.Errorf("encodeEvent(PongEvent) = %s, %v", got, err)
	}

	got, err = encodeEvent(multiplayer.ChatEvent{Message: sim.ChatMessage{PlayerName: sim.SystemName, Message: "hi"}})
	if err != nil {
		t.Fatalf("encodeEvent(ChatEvent) failed: %v", err)
	}
	m, err := protocol.DecodeChat(got)
	if err != nil || m.PlayerName != sim.SystemName || m.Message != "hi" {
		t.Errorf("chat round trip = %+v, %v", m, err)
	}
}

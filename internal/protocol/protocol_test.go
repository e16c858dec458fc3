package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/warzone/internal/core"
	"github.com/vovakirdan/warzone/internal/sim"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Inbound
	}{
		{"join", `{"type":"JOIN_GAME","playerName":"neo"}`, JoinGame{PlayerName: "neo"}},
		{"join without name", `{"type":"JOIN_GAME"}`, JoinGame{}},
		{"spawn", `{"type":"SPAWN_UNIT","unitType":"tank"}`, SpawnUnit{UnitType: "tank"}},
		{"move", `{"type":"MOVE_UNIT","unitId":"unit_3","x":12.5,"y":40}`, MoveUnit{UnitID: "unit_3", X: 12.5, Y: 40}},
		{"move to origin", `{"type":"MOVE_UNIT","unitId":"unit_3","x":0,"y":0}`, MoveUnit{UnitID: "unit_3"}},
		{"state", `{"type":"GET_STATE"}`, GetState{}},
		{"chat", `{"type":"CHAT_MESSAGE","message":"gg"}`, Chat{Message: "gg"}},
		{"players", `{"type":"GET_PLAYERS"}`, GetPlayers{}},
		{"ping", `{"type":"PING"}`, Ping{}},
		{"extra fields ignored", `{"type":"PING","ts":123}`, Ping{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not json", `hello`, ErrMalformed},
		{"array", `[1,2]`, ErrMalformed},
		{"missing type", `{"playerName":"x"}`, ErrMalformed},
		{"wrong field type", `{"type":"SPAWN_UNIT","unitType":5}`, ErrMalformed},
		{"move without coords", `{"type":"MOVE_UNIT","unitId":"unit_1"}`, ErrMalformed},
		{"move without unit", `{"type":"MOVE_UNIT","x":1,"y":2}`, ErrMalformed},
		{"unknown", `{"type":"HEAL"}`, ErrUnknownType},
		{"server type from client", `{"type":"PONG"}`, ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeJoinConfirmed(t *testing.T) {
	p := sim.Player{ID: "player_1", Team: "blue", BasePos: core.V(100, 100)}
	data, err := Encode(NewJoinConfirmed(p, sim.StatusWaiting))
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	want := `{"type":"JOIN_CONFIRMED","playerId":"player_1","team":"blue","baseX":100,"baseY":100,"version":"3.1","gameStatus":"waiting"}`
	if string(data) != want {
		t.Errorf("Encode() = %s\nwant %s", data, want)
	}
}

func TestEncodeSmallMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  any
		want string
	}{
		{"pong", NewPong(), `{"type":"PONG"}`},
		{"empty players", NewPlayersList(nil), `{"type":"PLAYERS_LIST","players":[]}`},
		{
			"players",
			NewPlayersList([]sim.PlayerSummary{{ID: "player_2", Name: "trin", Team: "red", Kills: 4}}),
			`{"type":"PLAYERS_LIST","players":[{"id":"player_2","name":"trin","team":"red","kills":4}]}`,
		},
		{
			"chat",
			NewChatBroadcast(sim.ChatMessage{PlayerName: sim.SystemName, Message: "Unknown. /help", Timestamp: 5}),
			`{"type":"CHAT_MESSAGE","playerId":"","playerName":"SYSTEM","team":"","message":"Unknown. /help"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.msg)
			if err != nil {
				t.Fatalf("Encode() failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Encode() = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestGameStateFlattensSnapshot(t *testing.T) {
	snap := &sim.Snapshot{Version: sim.Version, GameStatus: sim.StatusPlaying, MapWidth: 1000, MapHeight: 800}

	data, err := Encode(NewGameState(snap, ""))
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	s := string(data)
	if !strings.HasPrefix(s, `{"type":"GAME_STATE","version":"3.1"`) {
		t.Errorf("encoded state = %s", s)
	}
	if strings.Contains(s, "myPlayerId") {
		t.Error("broadcast state carries myPlayerId")
	}

	data, err = Encode(NewGameState(snap, "player_7"))
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	gs, err := DecodeGameState(data)
	if err != nil {
		t.Fatalf("DecodeGameState() failed: %v", err)
	}
	if gs.MyPlayerID != "player_7" || gs.GameStatus != sim.StatusPlaying || gs.MapWidth != 1000 {
		t.Errorf("DecodeGameState() = %+v", gs)
	}

	if _, err := DecodeGameState([]byte(`{"type":"PONG"}`)); !errors.Is(err, ErrUnknownType) {
		t.Errorf("DecodeGameState(PONG) error = %v", err)
	}
}

func TestDecodeChat(t *testing.T) {
	m, err := DecodeChat([]byte(`{"type":"CHAT_MESSAGE","playerName":"SYSTEM","message":"hi"}`))
	if err != nil {
		t.Fatalf("DecodeChat() failed: %v", err)
	}
	if m.PlayerName != "SYSTEM" || m.Message != "hi" {
		t.Errorf("DecodeChat() = %+v", m)
	}
	if _, err := DecodeChat([]byte(`{"type":"PING"}`)); !errors.Is(err, ErrUnknownType) {
		t.Errorf("DecodeChat(PING) error = %v", err)
	}
}

func TestEncodeRequestDecodes(t *testing.T) {
	msgs := []Inbound{
		JoinGame{PlayerName: "trinity"},
		MoveUnit{UnitID: "unit_9", X: 300, Y: 0},
		Chat{Message: "/stats"},
		Ping{},
	}

	for _, msg := range msgs {
		data, err := EncodeRequest(msg)
		if err != nil {
			t.Fatalf("EncodeRequest(%T) failed: %v", msg, err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(%s) failed: %v", data, err)
		}
		if got != msg {
			t.Errorf("Decode(EncodeRequest()) = %#v, want %#v", got, msg)
		}
	}

	if data, _ := EncodeRequest(Ping{}); string(data) != `{"type":"PING"}` {
		t.Errorf("EncodeRequest(Ping{}) = %s", data)
	}
}

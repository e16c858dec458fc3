// Package protocol defines the JSON messages exchanged with game clients.
// Every message is a flat object discriminated by its "type" field.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vovakirdan/warzone/internal/sim"
)

// Message types.
const (
	// client -> server
	TypeJoinGame   = "JOIN_GAME"
	TypeSpawnUnit  = "SPAWN_UNIT"
	TypeMoveUnit   = "MOVE_UNIT"
	TypeGetState   = "GET_STATE"
	TypeGetPlayers = "GET_PLAYERS"
	TypePing       = "PING"

	// both directions
	TypeChatMessage = "CHAT_MESSAGE"

	// server -> client
	TypeJoinConfirmed = "JOIN_CONFIRMED"
	TypeGameState     = "GAME_STATE"
	TypePlayersList   = "PLAYERS_LIST"
	TypePong          = "PONG"
)

var (
	// ErrMalformed is returned for input that is not a valid message object.
	ErrMalformed = errors.New("protocol: malformed message")

	// ErrUnknownType is returned for a well-formed message with an unsupported type.
	ErrUnknownType = errors.New("protocol: unknown message type")
)

type envelope struct {
	Type string `json:"type"`
}

// Inbound is a decoded client message.
type Inbound interface {
	inbound()
}

type JoinGame struct {
	PlayerName string `json:"playerName"`
}

type SpawnUnit struct {
	UnitType string `json:"unitType"`
}

type MoveUnit struct {
	UnitID string  `json:"unitId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type GetState struct{}

type Chat struct {
	Message string `json:"message"`
}

type GetPlayers struct{}

type Ping struct{}

func (JoinGame) inbound()   {}
func (SpawnUnit) inbound()  {}
func (MoveUnit) inbound()   {}
func (GetState) inbound()   {}
func (Chat) inbound()       {}
func (GetPlayers) inbound() {}
func (Ping) inbound()       {}

// PeekType returns the type field of a message without decoding the rest.
func PeekType(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env.Type, nil
}

// Decode parses one client message.
func Decode(data []byte) (Inbound, error) {
	typ, err := PeekType(data)
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypeJoinGame:
		return decodeInto[JoinGame](data)
	case TypeSpawnUnit:
		return decodeInto[SpawnUnit](data)
	case TypeMoveUnit:
		var raw struct {
			UnitID string   `json:"unitId"`
			X      *float64 `json:"x"`
			Y      *float64 `json:"y"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if raw.UnitID == "" || raw.X == nil || raw.Y == nil {
			return nil, fmt.Errorf("%w: MOVE_UNIT needs unitId, x and y", ErrMalformed)
		}
		return MoveUnit{UnitID: raw.UnitID, X: *raw.X, Y: *raw.Y}, nil
	case TypeGetState:
		return GetState{}, nil
	case TypeChatMessage:
		return decodeInto[Chat](data)
	case TypeGetPlayers:
		return GetPlayers{}, nil
	case TypePing:
		return Ping{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
}

func decodeInto[T Inbound](data []byte) (Inbound, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// JoinConfirmed acknowledges a JOIN_GAME.
type JoinConfirmed struct {
	Type       string       `json:"type"`
	PlayerID   sim.PlayerID `json:"playerId"`
	Team       string       `json:"team"`
	BaseX      float64      `json:"baseX"`
	BaseY      float64      `json:"baseY"`
	Version    string       `json:"version"`
	GameStatus sim.Status   `json:"gameStatus"`
}

// GameState wraps a world snapshot. MyPlayerID is set only on replies to GET_STATE.
type GameState struct {
	Type string `json:"type"`
	*sim.Snapshot
	MyPlayerID sim.PlayerID `json:"myPlayerId,omitempty"`
}

// ChatBroadcast is a chat line pushed to clients.
type ChatBroadcast struct {
	Type       string       `json:"type"`
	PlayerID   sim.PlayerID `json:"playerId"`
	PlayerName string       `json:"playerName"`
	Team       string       `json:"team"`
	Message    string       `json:"message"`
}

type PlayersList struct {
	Type    string              `json:"type"`
	Players []sim.PlayerSummary `json:"players"`
}

type Pong struct {
	Type string `json:"type"`
}

func NewJoinConfirmed(p sim.Player, status sim.Status) JoinConfirmed {
	return JoinConfirmed{
		Type:       TypeJoinConfirmed,
		PlayerID:   p.ID,
		Team:       p.Team,
		BaseX:      p.BasePos.X,
		BaseY:      p.BasePos.Y,
		Version:    sim.Version,
		GameStatus: status,
	}
}

func NewGameState(s *sim.Snapshot, me sim.PlayerID) GameState {
	return GameState{Type: TypeGameState, Snapshot: s, MyPlayerID: me}
}

func NewChatBroadcast(m sim.ChatMessage) ChatBroadcast {
	return ChatBroadcast{
		Type:       TypeChatMessage,
		PlayerID:   m.PlayerID,
		PlayerName: m.PlayerName,
		Team:       m.Team,
		Message:    m.Message,
	}
}

func NewPlayersList(players []sim.PlayerSummary) PlayersList {
	if players == nil {
		players = []sim.PlayerSummary{}
	}
	return PlayersList{Type: TypePlayersList, Players: players}
}

func NewPong() Pong {
	return Pong{Type: TypePong}
}

// Encode serializes an outbound message.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot encode message: %w", err)
	}
	return data, nil
}

// DecodeGameState parses a GAME_STATE message, as read by spectator clients.
func DecodeGameState(data []byte) (*GameState, error) {
	typ, err := PeekType(data)
	if err != nil {
		return nil, err
	}
	if typ != TypeGameState {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrUnknownType, TypeGameState, typ)
	}
	gs := &GameState{Snapshot: &sim.Snapshot{}}
	if err := json.Unmarshal(data, gs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return gs, nil
}

// DecodeChat parses an outbound CHAT_MESSAGE, as read by spectator clients.
func DecodeChat(data []byte) (ChatBroadcast, error) {
	var m ChatBroadcast
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m.Type != TypeChatMessage {
		return m, fmt.Errorf("%w: want %s", ErrUnknownType, TypeChatMessage)
	}
	return m, nil
}

// TypeOf returns the wire type of a client message.
func TypeOf(msg Inbound) string {
	switch msg.(type) {
	case JoinGame:
		return TypeJoinGame
	case SpawnUnit:
		return TypeSpawnUnit
	case MoveUnit:
		return TypeMoveUnit
	case GetState:
		return TypeGetState
	case Chat:
		return TypeChatMessage
	case GetPlayers:
		return TypeGetPlayers
	case Ping:
		return TypePing
	default:
		return ""
	}
}

// EncodeRequest serializes a client message with its type field.
func EncodeRequest(msg Inbound) ([]byte, error) {
	typ := TypeOf(msg)
	if typ == "" {
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, msg)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("protocol: cannot encode message: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("protocol: cannot encode message: %w", err)
	}
	fields["type"], _ = json.Marshal(typ)
	return Encode(fields)
}

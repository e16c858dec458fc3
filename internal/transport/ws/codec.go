package ws

import (
	"fmt"

	"github.com/vovakirdan/warzone/internal/multiplayer"
	"github.com/vovakirdan/warzone/internal/protocol"
)

// intentFor maps a decoded client message to a controller intent.
func intentFor(id multiplayer.SessionID, msg protocol.Inbound) multiplayer.CoordinatorMessage {
	switch m := msg.(type) {
	case protocol.JoinGame:
		return multiplayer.JoinGameMsg{SessionID: id, PlayerName: m.PlayerName}
	case protocol.SpawnUnit:
		return multiplayer.SpawnUnitMsg{SessionID: id, UnitType: m.UnitType}
	case protocol.MoveUnit:
		return multiplayer.MoveUnitMsg{SessionID: id, UnitID: m.UnitID, X: m.X, Y: m.Y}
	case protocol.GetState:
		return multiplayer.GetStateMsg{SessionID: id}
	case protocol.Chat:
		return multiplayer.ChatMsg{SessionID: id, Text: m.Message}
	case protocol.GetPlayers:
		return multiplayer.GetPlayersMsg{SessionID: id}
	default:
		return multiplayer.PingMsg{SessionID: id}
	}
}

// encodeEvent renders a session event as one wire message.
// Broadcast snapshots arrive pre-encoded.
func encodeEvent(evt multiplayer.SessionEvent) ([]byte, error) {
	switch e := evt.(type) {
	case multiplayer.JoinConfirmedEvent:
		return protocol.Encode(protocol.NewJoinConfirmed(e.Player, e.Status))
	case multiplayer.SnapshotEvent:
		if e.Encoded != nil {
			return e.Encoded, nil
		}
		return protocol.Encode(protocol.NewGameState(e.State, e.ForPlayer))
	case multiplayer.ChatEvent:
		return protocol.Encode(protocol.NewChatBroadcast(e.Message))
	case multiplayer.PlayersListEvent:
		return protocol.Encode(protocol.NewPlayersList(e.Players))
	case multiplayer.PongEvent:
		return protocol.Encode(protocol.NewPong())
	default:
		return nil, fmt.Errorf("ws: no encoding for %T", evt)
	}
}

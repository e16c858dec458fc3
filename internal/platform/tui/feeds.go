package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/warzone/internal/multiplayer"
	"github.com/vovakirdan/warzone/internal/protocol"
	"github.com/vovakirdan/warzone/internal/sim"
	"github.com/vovakirdan/warzone/internal/transport/ws"
)

// SessionFeed reads controller events from an in-process session, as SSH spectators do.
type SessionFeed struct {
	session *multiplayer.ChannelSession
}

func NewSessionFeed(session *multiplayer.ChannelSession) *SessionFeed {
	return &SessionFeed{session: session}
}

// Next implements Feed.
func (f *SessionFeed) Next() tea.Msg {
	for {
		select {
		case <-f.session.Done():
			return DisconnectedMsg{}
		case evt := <-f.session.Events():
			switch e := evt.(type) {
			case multiplayer.SnapshotEvent:
				if e.State != nil {
					return SnapshotMsg{State: e.State}
				}
			case multiplayer.ChatEvent:
				return ChatMsg{Message: e.Message}
			}
		}
	}
}

// WSFeed reads server messages from a websocket connection.
type WSFeed struct {
	client *ws.Client
}

func NewWSFeed(client *ws.Client) *WSFeed {
	return &WSFeed{client: client}
}

// Next implements Feed. Messages that fail to decode are skipped.
func (f *WSFeed) Next() tea.Msg {
	for {
		typ, data, err := f.client.Next()
		if err != nil {
			return DisconnectedMsg{Err: err}
		}
		switch typ {
		case protocol.TypeGameState:
			gs, err := protocol.DecodeGameState(data)
			if err != nil {
				continue
			}
			return SnapshotMsg{State: gs.Snapshot}
		case protocol.TypeChatMessage:
			c, err := protocol.DecodeChat(data)
			if err != nil {
				continue
			}
			return ChatMsg{Message: sim.ChatMessage{
				PlayerID:   c.PlayerID,
				PlayerName: c.PlayerName,
				Team:       c.Team,
				Message:    c.Message,
			}}
		}
	}
}

package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/warzone/internal/protocol"
)

// Client is a game connection from the other side, used by spectator tooling.
type Client struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	writeWait time.Duration
}

// Dial connects to a warzone server, e.g. "ws://localhost:8080/".
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: cannot dial %s: %w", url, err)
	}
	return &Client{conn: conn, writeWait: 10 * time.Second}, nil
}

// Send writes one client message.
func (c *Client) Send(msg protocol.Inbound) error {
	data, err := protocol.EncodeRequest(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("ws: cannot send %s: %w", protocol.TypeOf(msg), err)
	}
	return nil
}

// Next blocks for the next server message and returns its type with the raw frame.
// Only one goroutine may call Next.
func (c *Client) Next() (string, []byte, error) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", nil, err
		}
		typ, err := protocol.PeekType(data)
		if err != nil {
			continue
		}
		return typ, data, nil
	}
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}

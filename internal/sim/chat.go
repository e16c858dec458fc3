package sim

// SystemName is the sender name used for server notices.
const SystemName = "SYSTEM"

// ChatMessage is one line of match chat.
type ChatMessage struct {
	PlayerID   PlayerID `json:"playerId"`
	PlayerName string   `json:"playerName"`
	Team       string   `json:"team"`
	Message    string   `json:"message"`
	Timestamp  int64    `json:"timestamp"` // unix milliseconds
}

// chatLog is a fixed-capacity ring of recent messages.
type chatLog struct {
	buf   []ChatMessage
	start int
	n     int
}

func newChatLog(capacity int) *chatLog {
	return &chatLog{buf: make([]ChatMessage, max(capacity, 1))}
}

func (c *chatLog) add(m ChatMessage) {
	if c.n < len(c.buf) {
		c.buf[(c.start+c.n)%len(c.buf)] = m
		c.n++
		return
	}
	c.buf[c.start] = m
	c.start = (c.start + 1) % len(c.buf)
}

// last returns up to k most recent messages, oldest first.
func (c *chatLog) last(k int) []ChatMessage {
	k = min(k, c.n)
	out := make([]ChatMessage, 0, k)
	for i := c.n - k; i < c.n; i++ {
		out = append(out, c.buf[(c.start+i)%len(c.buf)])
	}
	return out
}

func (c *chatLog) len() int {
	return c.n
}

package presence

import "sync"

// Client is one live websocket connection of a user.
// A user on several devices owns several clients.
type Client struct {
	UserID string

	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// NewClient create a client with a bounded outbound queue
func NewClient(userID string, buffer int) *Client {
	return &Client{
		UserID: userID,
		send:   make(chan []byte, buffer),
	}
}

// Send is the outbound frame channel consumed by the writer goroutine.
// The channel is closed when the client is deregistered.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// TrySend queues a frame without blocking.
// A full queue or a closed client drops the frame, push delivery
// is fire and forget.
func (c *Client) TrySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

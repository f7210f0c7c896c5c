package presence

import (
	"sync"

	"brand_collab_service/pkg/logger"

	"go.uber.org/zap"
)

// Hub tracks live connections per user and per joined conversation.
// All state is in memory, a restart empties the registry.
type Hub struct {
	mu             sync.RWMutex
	byUser         map[string]map[*Client]struct{}
	byConversation map[string]map[*Client]struct{}
	joined         map[*Client]map[string]struct{}
}

// NewHub create an empty registry
func NewHub() *Hub {
	return &Hub{
		byUser:         make(map[string]map[*Client]struct{}),
		byConversation: make(map[string]map[*Client]struct{}),
		joined:         make(map[*Client]map[string]struct{}),
	}
}

// Register adds a connection and reports whether it is the
// user's first live handle.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.byUser[c.UserID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.byUser[c.UserID] = clients
	}
	clients[c] = struct{}{}
	h.joined[c] = make(map[string]struct{})

	return len(clients) == 1
}

// Deregister removes a connection, detaches it from every joined
// conversation and closes its queue. Reports whether the user has
// no live handle left.
func (h *Hub) Deregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	last := false
	if clients, ok := h.byUser[c.UserID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.byUser, c.UserID)
			last = true
		}
	}

	for conversationID := range h.joined[c] {
		h.detachLocked(c, conversationID)
	}
	delete(h.joined, c)

	c.close()
	return last
}

// JoinConversation attaches the connection to a conversation group
func (h *Hub) JoinConversation(c *Client, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.byConversation[conversationID]
	if !ok {
		group = make(map[*Client]struct{})
		h.byConversation[conversationID] = group
	}
	group[c] = struct{}{}
	if joined, ok := h.joined[c]; ok {
		joined[conversationID] = struct{}{}
	}
}

// LeaveConversation detaches the connection from a conversation group
func (h *Hub) LeaveConversation(c *Client, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detachLocked(c, conversationID)
	if joined, ok := h.joined[c]; ok {
		delete(joined, conversationID)
	}
}

func (h *Hub) detachLocked(c *Client, conversationID string) {
	if group, ok := h.byConversation[conversationID]; ok {
		delete(group, c)
		if len(group) == 0 {
			delete(h.byConversation, conversationID)
		}
	}
}

// IsOnline reports whether the user has at least one live handle
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID]) > 0
}

// SendToUser queues a frame on every connection of one user
func (h *Hub) SendToUser(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.byUser[userID] {
		h.trySend(c, payload)
	}
}

// BroadcastToConversation queues a frame on every connection joined
// to the conversation, skipping except.
func (h *Hub) BroadcastToConversation(conversationID string, payload []byte, except *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.byConversation[conversationID] {
		if c == except {
			continue
		}
		h.trySend(c, payload)
	}
}

// BroadcastUnion queues a frame on the union of the conversation group
// and every connection of the given users. Each connection receives
// the frame at most once.
func (h *Hub) BroadcastUnion(conversationID string, userIDs []string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*Client]struct{})
	for c := range h.byConversation[conversationID] {
		seen[c] = struct{}{}
	}
	for _, userID := range userIDs {
		for c := range h.byUser[userID] {
			seen[c] = struct{}{}
		}
	}
	for c := range seen {
		h.trySend(c, payload)
	}
}

// BroadcastAll queues a frame on every connection except those of
// exceptUserID.
func (h *Hub) BroadcastAll(payload []byte, exceptUserID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, clients := range h.byUser {
		if userID == exceptUserID {
			continue
		}
		for c := range clients {
			h.trySend(c, payload)
		}
	}
}

func (h *Hub) trySend(c *Client, payload []byte) {
	if !c.TrySend(payload) {
		logger.Log.Debug("presence frame dropped", zap.String("user_id", c.UserID))
	}
}

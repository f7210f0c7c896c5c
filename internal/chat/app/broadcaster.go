package app

import (
	"encoding/json"

	"brand_collab_service/internal/chat/domain"
	"brand_collab_service/internal/chat/presence"
	"brand_collab_service/pkg/logger"
)

// MessageBroadcaster pushes server events to live websocket clients.
// Delivery is best effort, users without an open connection catch up
// over the REST endpoints.
type MessageBroadcaster interface {
	NewMessage(conversation *domain.Conversation, message *domain.Message)
	MessageRead(message *domain.Message, readerID string)
	Typing(conversationID, userID string, isTyping bool, except *presence.Client)
	UserOnline(userID string)
	UserOffline(userID string)
}

type hubBroadcaster struct {
	hub *presence.Hub
}

// NewHubBroadcaster create a MessageBroadcaster on top of the presence hub
func NewHubBroadcaster(hub *presence.Hub) MessageBroadcaster {
	return &hubBroadcaster{hub: hub}
}

func marshalEvent(event domain.Event, payload map[string]interface{}) ([]byte, bool) {
	frame, err := json.Marshal(domain.WSResponse{
		Action:  string(event),
		Success: true,
		Payload: payload,
	})
	if err != nil {
		logger.Log.Errorf("marshal websocket event error:", err)
		return nil, false
	}
	return frame, true
}

// NewMessage fans a fresh message out to everyone viewing the thread
// plus every handle of both participants, deduplicated by the hub.
func (b *hubBroadcaster) NewMessage(conversation *domain.Conversation, message *domain.Message) {
	frame, ok := marshalEvent(domain.NewMessage, map[string]interface{}{
		"message": message,
	})
	if !ok {
		return
	}
	b.hub.BroadcastUnion(conversation.ID, conversation.Participants, frame)
}

// MessageRead tells the original sender their message was seen
func (b *hubBroadcaster) MessageRead(message *domain.Message, readerID string) {
	frame, ok := marshalEvent(domain.MessageRead, map[string]interface{}{
		"message_id":      message.ID,
		"conversation_id": message.ConversationID,
		"reader_id":       readerID,
		"read_at":         message.ReadAt,
	})
	if !ok {
		return
	}
	b.hub.SendToUser(message.SenderID, frame)
}

// Typing relays a typing indicator to the other thread viewers.
// Nothing is persisted, a dropped frame is fine.
func (b *hubBroadcaster) Typing(conversationID, userID string, isTyping bool, except *presence.Client) {
	frame, ok := marshalEvent(domain.TypingEvent, map[string]interface{}{
		"conversation_id": conversationID,
		"user_id":         userID,
		"is_typing":       isTyping,
	})
	if !ok {
		return
	}
	b.hub.BroadcastToConversation(conversationID, frame, except)
}

// UserOnline announces the first handle of a user
func (b *hubBroadcaster) UserOnline(userID string) {
	frame, ok := marshalEvent(domain.UserOnline, map[string]interface{}{
		"user_id": userID,
	})
	if !ok {
		return
	}
	b.hub.BroadcastAll(frame, userID)
}

// UserOffline announces the last handle of a user going away
func (b *hubBroadcaster) UserOffline(userID string) {
	frame, ok := marshalEvent(domain.UserOffline, map[string]interface{}{
		"user_id": userID,
	})
	if !ok {
		return
	}
	b.hub.BroadcastAll(frame, userID)
}

package domain

import "time"

// Stream event types published to kafka
const (
	// EventMessageSent a message was appended
	EventMessageSent = "message_sent"
	// EventMessageRead a message was marked read
	EventMessageRead = "message_read"
	// EventConversationCreated a thread came into existence
	EventConversationCreated = "conversation_created"
	// EventConversationDeleted a thread was removed with its messages
	EventConversationDeleted = "conversation_deleted"
)

// StreamEvent is the payload written to the event stream
type StreamEvent struct {
	Type           string    `json:"type"`
	ConversationID string    `json:"conversation_id,omitempty"`
	MessageID      string    `json:"message_id,omitempty"`
	SenderID       string    `json:"sender_id,omitempty"`
	ReaderID       string    `json:"reader_id,omitempty"`
	Participants   []string  `json:"participants,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

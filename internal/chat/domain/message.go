package domain

import "time"

// Message is one chat message inside a conversation
type Message struct {
	ID             string     `bson:"_id" json:"id"`
	ConversationID string     `bson:"conversation_id" json:"conversation_id"`
	SenderID       string     `bson:"sender_id" json:"sender_id"`
	Text           string     `bson:"text" json:"text"`
	Attachments    []string   `bson:"attachments,omitempty" json:"attachments,omitempty"`
	IsRead         bool       `bson:"is_read" json:"is_read"`
	ReadAt         *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
}

// MessageSnapshot is the conversation level copy of the newest message
type MessageSnapshot struct {
	MessageID string    `bson:"message_id" json:"message_id"`
	SenderID  string    `bson:"sender_id" json:"sender_id"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Snapshot copies the fields the conversation list denormalizes
func (m *Message) Snapshot() *MessageSnapshot {
	return &MessageSnapshot{
		MessageID: m.ID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

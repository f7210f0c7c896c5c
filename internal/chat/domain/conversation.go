package domain

import (
	"sort"
	"strings"
	"time"

	"brand_collab_service/pkg"
)

// Conversation is a two party thread between a brand and an influencer
type Conversation struct {
	ID             string           `bson:"_id" json:"id"`
	Participants   []string         `bson:"participants" json:"participants"`
	ParticipantKey string           `bson:"participant_key" json:"-"`
	LastMessage    *MessageSnapshot `bson:"last_message,omitempty" json:"last_message,omitempty"`
	CreatedAt      time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `bson:"updated_at" json:"updated_at"`
}

// ParticipantKeyOf builds the canonical key for a participant set.
// Order does not matter, the key is sorted before joining.
func ParticipantKeyOf(participants []string) string {
	sorted := make([]string, len(participants))
	copy(sorted, participants)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// HasParticipant check user is in the thread
func (c *Conversation) HasParticipant(userID string) bool {
	return pkg.Contains(c.Participants, userID)
}

// OtherParticipant returns the peer of userID
func (c *Conversation) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// ConversationUnreadInfo is one unread aggregation row
type ConversationUnreadInfo struct {
	ConversationID string    `bson:"_id" json:"conversation_id"`
	UnreadCount    int       `bson:"unread_count" json:"unread_count"`
	LastUnreadAt   time.Time `bson:"last_unread_at" json:"last_unread_at"`
}

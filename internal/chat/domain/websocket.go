package domain

// Action websocket request action
type Action string

const (
	// JoinConversation websocket action join_conversation
	JoinConversation Action = "join_conversation"
	// LeaveConversation websocket action leave_conversation
	LeaveConversation Action = "leave_conversation"
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// Typing websocket action typing
	Typing Action = "typing"
	// MarkRead websocket action mark_read
	MarkRead Action = "mark_read"
)

// Event websocket server push event
type Event string

const (
	// NewMessage websocket event new_message
	NewMessage Event = "new_message"
	// MessageRead websocket event message_read
	MessageRead Event = "message_read"
	// TypingEvent websocket event typing
	TypingEvent Event = "typing"
	// UserOnline websocket event user_online
	UserOnline Event = "user_online"
	// UserOffline websocket event user_offline
	UserOffline Event = "user_offline"
	// ErrorEvent websocket event error
	ErrorEvent Event = "error"
)

// WSRequest websocket Request
type WSRequest struct {
	Action         string   `json:"action"`
	ConversationID string   `json:"conversation_id"`
	Text           string   `json:"text"`
	Attachments    []string `json:"attachments"`
	MessageID      string   `json:"message_id"`
	IsTyping       bool     `json:"is_typing"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

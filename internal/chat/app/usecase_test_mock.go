package app

import (
	"context"
	"time"

	"brand_collab_service/internal/chat/domain"
	"brand_collab_service/internal/chat/presence"

	"github.com/stretchr/testify/mock"
)

// MockConversationRepository mock ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// Create mock insert conversation
func (m *MockConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

// FindByID mock find conversation by id
func (m *MockConversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByParticipantKey mock find conversation by participant key
func (m *MockConversationRepository) FindByParticipantKey(ctx context.Context, key string) (*domain.Conversation, error) {
	args := m.Called(ctx, key)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByParticipant mock list conversations of a user
func (m *MockConversationRepository) FindByParticipant(ctx context.Context, userID string, limit, offset int64) ([]domain.Conversation, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindIDsByParticipant mock list conversation ids of a user
func (m *MockConversationRepository) FindIDsByParticipant(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateLastMessage mock snapshot update
func (m *MockConversationRepository) UpdateLastMessage(ctx context.Context, conversationID string, snapshot *domain.MessageSnapshot, updatedAt time.Time) error {
	args := m.Called(ctx, conversationID, snapshot, updatedAt)
	return args.Error(0)
}

// Delete mock delete conversation
func (m *MockConversationRepository) Delete(ctx context.Context, conversationID string) error {
	args := m.Called(ctx, conversationID)
	return args.Error(0)
}

// EnsureIndexes mock index creation
func (m *MockConversationRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMessageRepository mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert mock insert message
func (m *MockMessageRepository) Insert(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// FindByID mock find message by id
func (m *MockMessageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByConversation mock list messages newest first
func (m *MockMessageRepository) FindByConversation(ctx context.Context, conversationID string, limit, offset int64) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, limit, offset)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkRead mock mark read
func (m *MockMessageRepository) MarkRead(ctx context.Context, messageID string, readAt time.Time) error {
	args := m.Called(ctx, messageID, readAt)
	return args.Error(0)
}

// DeleteByConversation mock cascade delete
func (m *MockMessageRepository) DeleteByConversation(ctx context.Context, conversationID string) (int64, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).(int64), args.Error(1)
}

// CountUnreadByConversation mock unread aggregation
func (m *MockMessageRepository) CountUnreadByConversation(ctx context.Context, userID string, conversationIDs []string) ([]domain.ConversationUnreadInfo, error) {
	args := m.Called(ctx, userID, conversationIDs)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ConversationUnreadInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

// EnsureIndexes mock index creation
func (m *MockMessageRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIdentityResolver mock IdentityResolver
type MockIdentityResolver struct {
	mock.Mock
}

// Resolve mock credential resolution
func (m *MockIdentityResolver) Resolve(ctx context.Context, credential string) (string, error) {
	args := m.Called(ctx, credential)
	return args.String(0), args.Error(1)
}

// Exists mock existence check
func (m *MockIdentityResolver) Exists(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockPublisher mock events.Publisher
type MockPublisher struct {
	mock.Mock
}

// MessageSent mock message_sent
func (m *MockPublisher) MessageSent(ctx context.Context, message *domain.Message) {
	m.Called(ctx, message)
}

// MessageRead mock message_read
func (m *MockPublisher) MessageRead(ctx context.Context, message *domain.Message, readerID string) {
	m.Called(ctx, message, readerID)
}

// ConversationCreated mock conversation_created
func (m *MockPublisher) ConversationCreated(ctx context.Context, conversation *domain.Conversation) {
	m.Called(ctx, conversation)
}

// ConversationDeleted mock conversation_deleted
func (m *MockPublisher) ConversationDeleted(ctx context.Context, conversation *domain.Conversation) {
	m.Called(ctx, conversation)
}

// MockBroadcaster mock MessageBroadcaster
type MockBroadcaster struct {
	mock.Mock
}

// NewMessage mock new_message fan out
func (m *MockBroadcaster) NewMessage(conversation *domain.Conversation, message *domain.Message) {
	m.Called(conversation, message)
}

// MessageRead mock read receipt push
func (m *MockBroadcaster) MessageRead(message *domain.Message, readerID string) {
	m.Called(message, readerID)
}

// Typing mock typing relay
func (m *MockBroadcaster) Typing(conversationID, userID string, isTyping bool, except *presence.Client) {
	m.Called(conversationID, userID, isTyping, except)
}

// UserOnline mock user_online announce
func (m *MockBroadcaster) UserOnline(userID string) {
	m.Called(userID)
}

// UserOffline mock user_offline announce
func (m *MockBroadcaster) UserOffline(userID string) {
	m.Called(userID)
}

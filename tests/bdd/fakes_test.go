package bdd

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"brand_collab_service/internal/chat/domain"
	"brand_collab_service/internal/chat/presence"
	"brand_collab_service/pkg"
	errprocess "brand_collab_service/pkg/err"

	"go.mongodb.org/mongo-driver/mongo"
)

// fakeConversationRepository keeps conversations in memory and mirrors
// the mongo error contract of the real one, including the duplicate key
// error on the participant key index.
type fakeConversationRepository struct {
	mu    sync.Mutex
	byID  map[string]*domain.Conversation
	byKey map[string]string
}

func newFakeConversationRepository() *fakeConversationRepository {
	return &fakeConversationRepository{
		byID:  map[string]*domain.Conversation{},
		byKey: map[string]string{},
	}
}

func (f *fakeConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byKey[conversation.ParticipantKey]; ok {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	clone := *conversation
	f.byID[clone.ID] = &clone
	f.byKey[clone.ParticipantKey] = clone.ID
	return nil
}

func (f *fakeConversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conversation, ok := f.byID[conversationID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *conversation
	return &clone, nil
}

func (f *fakeConversationRepository) FindByParticipantKey(ctx context.Context, key string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byKey[key]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *f.byID[id]
	return &clone, nil
}

func (f *fakeConversationRepository) FindByParticipant(ctx context.Context, userID string, limit, offset int64) ([]domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Conversation{}
	for _, c := range f.byID {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if offset >= int64(len(out)) {
		return []domain.Conversation{}, nil
	}
	out = out[offset:]
	if limit < int64(len(out)) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeConversationRepository) FindIDsByParticipant(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []string{}
	for id, c := range f.byID {
		if c.HasParticipant(userID) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeConversationRepository) UpdateLastMessage(ctx context.Context, conversationID string, snapshot *domain.MessageSnapshot, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conversation, ok := f.byID[conversationID]; ok {
		conversation.LastMessage = snapshot
		conversation.UpdatedAt = updatedAt
	}
	return nil
}

func (f *fakeConversationRepository) Delete(ctx context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conversation, ok := f.byID[conversationID]; ok {
		delete(f.byKey, conversation.ParticipantKey)
		delete(f.byID, conversationID)
	}
	return nil
}

func (f *fakeConversationRepository) EnsureIndexes(ctx context.Context) error { return nil }

// fakeMessageRepository stores messages in insert order and serves
// pages newest first the way the timeline index does.
type fakeMessageRepository struct {
	mu       sync.Mutex
	messages []*domain.Message
}

func newFakeMessageRepository() *fakeMessageRepository {
	return &fakeMessageRepository{}
}

func (f *fakeMessageRepository) Insert(ctx context.Context, message *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *message
	f.messages = append(f.messages, &clone)
	return nil
}

func (f *fakeMessageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == messageID {
			clone := *m
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeMessageRepository) FindByConversation(ctx context.Context, conversationID string, limit, offset int64) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Message{}
	skipped := int64(0)
	for i := len(f.messages) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		m := f.messages[i]
		if m.ConversationID != conversationID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMessageRepository) MarkRead(ctx context.Context, messageID string, readAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == messageID {
			at := readAt
			m.IsRead = true
			m.ReadAt = &at
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeMessageRepository) DeleteByConversation(ctx context.Context, conversationID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.messages[:0]
	var removed int64
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	f.messages = kept
	return removed, nil
}

func (f *fakeMessageRepository) CountUnreadByConversation(ctx context.Context, userID string, conversationIDs []string) ([]domain.ConversationUnreadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byConversation := map[string]*domain.ConversationUnreadInfo{}
	for _, m := range f.messages {
		if m.IsRead || m.SenderID == userID || !pkg.Contains(conversationIDs, m.ConversationID) {
			continue
		}
		info, ok := byConversation[m.ConversationID]
		if !ok {
			info = &domain.ConversationUnreadInfo{ConversationID: m.ConversationID}
			byConversation[m.ConversationID] = info
		}
		info.UnreadCount++
		if m.CreatedAt.After(info.LastUnreadAt) {
			info.LastUnreadAt = m.CreatedAt
		}
	}
	out := []domain.ConversationUnreadInfo{}
	for _, info := range byConversation {
		out = append(out, *info)
	}
	return out, nil
}

func (f *fakeMessageRepository) EnsureIndexes(ctx context.Context) error { return nil }

// fakeIdentity resolves static credentials of the form token-<user>.
type fakeIdentity struct {
	users map[string]bool
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{users: map[string]bool{}}
}

func (f *fakeIdentity) Resolve(ctx context.Context, credential string) (string, error) {
	userID := strings.TrimPrefix(credential, "token-")
	if !f.users[userID] {
		return "", errprocess.AuthenticationFailed("unknown credential")
	}
	return userID, nil
}

func (f *fakeIdentity) Exists(ctx context.Context, userID string) (bool, error) {
	return f.users[userID], nil
}

// readReceipt is one sender notification captured by the recorder.
type readReceipt struct {
	messageID string
	senderID  string
	readerID  string
}

// recordingBroadcaster captures fan out calls instead of pushing
// frames to live sockets.
type recordingBroadcaster struct {
	mu           sync.Mutex
	delivered    []string
	readReceipts []readReceipt
}

func (r *recordingBroadcaster) NewMessage(conversation *domain.Conversation, message *domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, message.ID)
}

func (r *recordingBroadcaster) MessageRead(message *domain.Message, readerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readReceipts = append(r.readReceipts, readReceipt{
		messageID: message.ID,
		senderID:  message.SenderID,
		readerID:  readerID,
	})
}

func (r *recordingBroadcaster) Typing(conversationID, userID string, isTyping bool, except *presence.Client) {
}

func (r *recordingBroadcaster) UserOnline(userID string) {}

func (r *recordingBroadcaster) UserOffline(userID string) {}

// nopPublisher drops every stream event.
type nopPublisher struct{}

func (nopPublisher) MessageSent(ctx context.Context, message *domain.Message) {}

func (nopPublisher) MessageRead(ctx context.Context, message *domain.Message, readerID string) {}

func (nopPublisher) ConversationCreated(ctx context.Context, conversation *domain.Conversation) {}

func (nopPublisher) ConversationDeleted(ctx context.Context, conversation *domain.Conversation) {}

package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"brand_collab_service/internal/chat/domain"
	"brand_collab_service/internal/chat/events"
	"brand_collab_service/internal/chat/repository"
	"brand_collab_service/pkg"
	errprocess "brand_collab_service/pkg/err"
	"brand_collab_service/pkg/logger"
)

const (
	defaultMessagePage = 50
	maxMessagePage     = 100
)

// MessageUseCase drives sending, reading and listing messages
type MessageUseCase struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	broadcaster      MessageBroadcaster
	publisher        events.Publisher
}

// NewMessageUseCase init message use case
func NewMessageUseCase(
	c repository.ConversationRepository,
	m repository.MessageRepository,
	broadcaster MessageBroadcaster,
	publisher events.Publisher,
) *MessageUseCase {
	return &MessageUseCase{
		conversationRepo: c,
		messageRepo:      m,
		broadcaster:      broadcaster,
		publisher:        publisher,
	}
}

func (uc *MessageUseCase) loadForParticipant(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	conversation, err := uc.conversationRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("conversation not found")
		}
		return nil, errprocess.Unavailable("conversation lookup failed", err)
	}
	if !conversation.HasParticipant(userID) {
		return nil, errprocess.Forbidden("not a participant of this conversation")
	}
	return conversation, nil
}

// Send appends a message to a thread the sender belongs to. The
// message insert is the source of truth, the conversation snapshot
// update is best effort and repaired on the next single thread read.
func (uc *MessageUseCase) Send(ctx context.Context, conversationID, senderID, text string, attachments []string) (*domain.Message, error) {
	conversation, err := uc.loadForParticipant(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errprocess.InvalidArgument("message text is empty")
	}

	message := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversation.ID,
		SenderID:       senderID,
		Text:           text,
		Attachments:    attachments,
		IsRead:         false,
		CreatedAt:      time.Now().UTC(),
	}

	if err := uc.messageRepo.Insert(ctx, message); err != nil {
		return nil, errprocess.Unavailable("message insert failed", err)
	}

	if err := uc.conversationRepo.UpdateLastMessage(ctx, conversation.ID, message.Snapshot(), message.CreatedAt); err != nil {
		logger.Log.Warn("last message snapshot update failed",
			zap.String("conversationID", conversation.ID), zap.Error(err))
	}

	uc.broadcaster.NewMessage(conversation, message)
	uc.publisher.MessageSent(ctx, message)
	return message, nil
}

// MarkRead flags a message of the other participant as seen.
// Re-reading an already read message is a no-op and does not notify
// the sender again.
func (uc *MessageUseCase) MarkRead(ctx context.Context, messageID, readerID string) (*domain.Message, error) {
	message, err := uc.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errprocess.NotFound("message not found")
		}
		return nil, errprocess.Unavailable("message lookup failed", err)
	}

	if message.SenderID == readerID {
		return nil, errprocess.InvalidArgument("cannot mark your own message as read")
	}

	if _, err := uc.loadForParticipant(ctx, message.ConversationID, readerID); err != nil {
		return nil, err
	}

	if message.IsRead {
		return message, nil
	}

	readAt := time.Now().UTC()
	if err := uc.messageRepo.MarkRead(ctx, message.ID, readAt); err != nil {
		return nil, errprocess.Unavailable("mark read failed", err)
	}
	message.IsRead = true
	message.ReadAt = &readAt

	uc.broadcaster.MessageRead(message, readerID)
	uc.publisher.MessageRead(ctx, message, readerID)
	return message, nil
}

// List returns one page of a thread in chronological order. The page
// window is taken from the newest end, offset 0 is the latest page.
func (uc *MessageUseCase) List(ctx context.Context, conversationID, userID string, limit, offset int64) ([]domain.Message, error) {
	if _, err := uc.loadForParticipant(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMessagePage
	}
	if limit > maxMessagePage {
		limit = maxMessagePage
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := uc.messageRepo.FindByConversation(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, errprocess.Unavailable("message list failed", err)
	}

	pkg.Reverse(messages)
	return messages, nil
}

// UnreadCount totals unread messages addressed to the user across all
// their threads, with a per thread breakdown for badge rendering.
func (uc *MessageUseCase) UnreadCount(ctx context.Context, userID string) (int, []domain.ConversationUnreadInfo, error) {
	conversationIDs, err := uc.conversationRepo.FindIDsByParticipant(ctx, userID)
	if err != nil {
		return 0, nil, errprocess.Unavailable("conversation id list failed", err)
	}
	if len(conversationIDs) == 0 {
		return 0, []domain.ConversationUnreadInfo{}, nil
	}

	infos, err := uc.messageRepo.CountUnreadByConversation(ctx, userID, conversationIDs)
	if err != nil {
		return 0, nil, errprocess.Unavailable("unread aggregation failed", err)
	}

	total := 0
	for _, info := range infos {
		total += info.UnreadCount
	}
	return total, infos, nil
}

package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"brand_collab_service/internal/chat/domain"
	"brand_collab_service/internal/chat/events"
	"brand_collab_service/internal/chat/repository"
	errprocess "brand_collab_service/pkg/err"
	"brand_collab_service/pkg/logger"
)

// IdentityResolver is the slice of the identity module the chat side
// needs: credential resolution for websocket auth and existence checks
// before opening a thread.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (string, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

const (
	defaultConversationPage = 20
	maxConversationPage     = 100
)

// ConversationUseCase drives thread lifecycle between a brand and an influencer
type ConversationUseCase struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	identity         IdentityResolver
	publisher        events.Publisher
}

// NewConversationUseCase init conversation use case
func NewConversationUseCase(
	c repository.ConversationRepository,
	m repository.MessageRepository,
	identity IdentityResolver,
	publisher events.Publisher,
) *ConversationUseCase {
	return &ConversationUseCase{
		conversationRepo: c,
		messageRepo:      m,
		identity:         identity,
		publisher:        publisher,
	}
}

// CreateOrGet opens the thread between creator and other, or returns
// the existing one. The unique participant key index makes concurrent
// opens converge on a single thread. created reports which case hit.
func (uc *ConversationUseCase) CreateOrGet(ctx context.Context, creatorID, otherID string) (*domain.Conversation, bool, error) {
	if otherID == "" {
		return nil, false, errprocess.InvalidArgument("participant id is required")
	}
	if otherID == creatorID {
		return nil, false, errprocess.InvalidArgument("cannot open a conversation with yourself")
	}

	ok, err := uc.identity.Exists(ctx, otherID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, errprocess.NotFound("participant not found")
	}

	key := domain.ParticipantKeyOf([]string{creatorID, otherID})

	existing, err := uc.conversationRepo.FindByParticipantKey(ctx, key)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, errprocess.Unavailable("conversation lookup failed", err)
	}

	now := time.Now().UTC()
	conversation := &domain.Conversation{
		ID:             uuid.New().String(),
		Participants:   []string{creatorID, otherID},
		ParticipantKey: key,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.conversationRepo.Create(ctx, conversation); err != nil {
		if repository.IsDuplicateKeyError(err) {
			// lost the race, the winner's thread is the thread
			winner, findErr := uc.conversationRepo.FindByParticipantKey(ctx, key)
			if findErr != nil {
				return nil, false, errprocess.Unavailable("conversation lookup failed", findErr)
			}
			return winner, false, nil
		}
		return nil, false, errprocess.Unavailable("conversation create failed", err)
	}

	uc.publisher.ConversationCreated(ctx, conversation)
	return conversation, true, nil
}

// List returns the user's threads, most recently active first
func (uc *ConversationUseCase) List(ctx context.Context, userID string, limit, offset int64) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = defaultConversationPage
	}
	if limit > maxConversationPage {
		limit = maxConversationPage
	}
	if offset < 0 {
		offset = 0
	}

	conversations, err := uc.conversationRepo.FindByParticipant(ctx, userID, limit, offset)
	if err != nil {
		return nil, errprocess.Unavailable("conversation list failed", err)
	}
	return conversations, nil
}

// Get returns one thread for a participant. The denormalized last
// message snapshot is repaired against the message log when it went
// stale, since the send path only updates it best effort.
func (uc *ConversationUseCase) Get(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	conversation, err := uc.VerifyParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	newest, err := uc.messageRepo.FindByConversation(ctx, conversation.ID, 1, 0)
	if err != nil {
		logger.Log.Warn("last message lookup failed, skip repair", zap.Error(err))
		return conversation, nil
	}
	if len(newest) == 0 {
		return conversation, nil
	}

	head := &newest[0]
	if conversation.LastMessage != nil && conversation.LastMessage.MessageID == head.ID {
		return conversation, nil
	}

	conversation.LastMessage = head.Snapshot()
	conversation.UpdatedAt = head.CreatedAt
	if err := uc.conversationRepo.UpdateLastMessage(ctx, conversation.ID, conversation.LastMessage, head.CreatedAt); err != nil {
		logger.Log.Warn("last message repair failed", zap.Error(err))
	}
	return conversation, nil
}

// Delete removes a thread and its whole message log
func (uc *ConversationUseCase) Delete(ctx context.Context, conversationID, userID string) error {
	conversation, err := uc.VerifyParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	removed, err := uc.messageRepo.DeleteByConversation(ctx, conversation.ID)
	if err != nil {
		return errprocess.Unavailable("message cascade delete failed", err)
	}
	if err := uc.conversationRepo.Delete(ctx, conversation.ID); err != nil {
		return errprocess.Unavailable("conversation delete failed", err)
	}

	logger.Log.Info("conversation deleted",
		zap.String("conversationID", conversation.ID),
		zap.String("userID", userID),
		zap.Int64("messages", removed))

	uc.publisher.ConversationDeleted(ctx, conversation)
	return nil
}

// VerifyParticipant loads the thread and checks userID belongs to it
func (uc *ConversationUseCase) VerifyParticipant(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
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

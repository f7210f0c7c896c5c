package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"brand_collab_service/internal/chat/domain"
	errprocess "brand_collab_service/pkg/err"
)

func conversationFixture(userA, userB string) *domain.Conversation {
	now := time.Now().UTC()
	return &domain.Conversation{
		ID:             uuid.New().String(),
		Participants:   []string{userA, userB},
		ParticipantKey: domain.ParticipantKeyOf([]string{userA, userB}),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestConversationUseCase_CreateOrGet(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a new thread", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		identity.On("Exists", ctx, "influencer-1").Return(true, nil)
		convRepo.On("FindByParticipantKey", ctx, mock.Anything).Return(nil, mongo.ErrNoDocuments)
		convRepo.On("Create", ctx, mock.Anything).Return(nil)
		publisher.On("ConversationCreated", ctx, mock.Anything).Return()

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		conversation, created, err := uc.CreateOrGet(ctx, "brand-1", "influencer-1")

		assert.NoError(t, err)
		assert.True(t, created)
		assert.NotEmpty(t, conversation.ID)
		assert.ElementsMatch(t, []string{"brand-1", "influencer-1"}, conversation.Participants)
		assert.Equal(t, domain.ParticipantKeyOf([]string{"brand-1", "influencer-1"}), conversation.ParticipantKey)
		convRepo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("returns the existing thread", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		existing := conversationFixture("brand-1", "influencer-1")
		identity.On("Exists", ctx, "influencer-1").Return(true, nil)
		convRepo.On("FindByParticipantKey", ctx, existing.ParticipantKey).Return(existing, nil)

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		conversation, created, err := uc.CreateOrGet(ctx, "brand-1", "influencer-1")

		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, conversation.ID)
		convRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		publisher.AssertNotCalled(t, "ConversationCreated", mock.Anything, mock.Anything)
	})

	t.Run("participant order does not matter", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		existing := conversationFixture("brand-1", "influencer-1")
		identity.On("Exists", ctx, "brand-1").Return(true, nil)
		convRepo.On("FindByParticipantKey", ctx, existing.ParticipantKey).Return(existing, nil)

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		conversation, created, err := uc.CreateOrGet(ctx, "influencer-1", "brand-1")

		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, conversation.ID)
	})

	t.Run("rejects a thread with yourself", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		_, _, err := uc.CreateOrGet(ctx, "brand-1", "brand-1")

		assert.Error(t, err)
		assert.True(t, errprocess.IsInvalidArgument(err))
		identity.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	})

	t.Run("unknown participant", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		identity.On("Exists", ctx, "ghost").Return(false, nil)

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		_, _, err := uc.CreateOrGet(ctx, "brand-1", "ghost")

		assert.Error(t, err)
		assert.True(t, errprocess.IsNotFound(err))
		convRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate key race returns the winner", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		winner := conversationFixture("brand-1", "influencer-1")
		dupErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

		identity.On("Exists", ctx, "influencer-1").Return(true, nil)
		convRepo.On("FindByParticipantKey", ctx, winner.ParticipantKey).Return(nil, mongo.ErrNoDocuments).Once()
		convRepo.On("Create", ctx, mock.Anything).Return(dupErr)
		convRepo.On("FindByParticipantKey", ctx, winner.ParticipantKey).Return(winner, nil).Once()

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		conversation, created, err := uc.CreateOrGet(ctx, "brand-1", "influencer-1")

		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, winner.ID, conversation.ID)
		publisher.AssertNotCalled(t, "ConversationCreated", mock.Anything, mock.Anything)
	})
}

func TestConversationUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the default page size", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		threads := []domain.Conversation{*conversationFixture("brand-1", "influencer-1")}
		convRepo.On("FindByParticipant", ctx, "brand-1", int64(defaultConversationPage), int64(0)).Return(threads, nil)

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		got, err := uc.List(ctx, "brand-1", 0, -5)

		assert.NoError(t, err)
		assert.Len(t, got, 1)
		convRepo.AssertExpectations(t)
	})

	t.Run("caps an oversized page", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		convRepo.On("FindByParticipant", ctx, "brand-1", int64(maxConversationPage), int64(40)).Return([]domain.Conversation{}, nil)

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		_, err := uc.List(ctx, "brand-1", 5000, 40)

		assert.NoError(t, err)
		convRepo.AssertExpectations(t)
	})
}

func TestConversationUseCase_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("repairs a stale last message snapshot", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		conversation := conversationFixture("brand-1", "influencer-1")
		newest := domain.Message{
			ID:             uuid.New().String(),
			ConversationID: conversation.ID,
			SenderID:       "influencer-1",
			Text:           "rates attached",
			CreatedAt:      time.Now().UTC(),
		}

		convRepo.On("FindByID", ctx, conversation.ID).Return(conversation, nil)
		msgRepo.On("FindByConversation", ctx, conversation.ID, int64(1), int64(0)).Return([]domain.Message{newest}, nil)
		convRepo.On("UpdateLastMessage", ctx, conversation.ID, mock.Anything, newest.CreatedAt).Return(nil)

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		got, err := uc.Get(ctx, conversation.ID, "brand-1")

		assert.NoError(t, err)
		assert.NotNil(t, got.LastMessage)
		assert.Equal(t, newest.ID, got.LastMessage.MessageID)
		assert.Equal(t, newest.Text, got.LastMessage.Text)
		convRepo.AssertExpectations(t)
	})

	t.Run("fresh snapshot is left alone", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		conversation := conversationFixture("brand-1", "influencer-1")
		newest := domain.Message{
			ID:             uuid.New().String(),
			ConversationID: conversation.ID,
			SenderID:       "brand-1",
			Text:           "deal",
			CreatedAt:      time.Now().UTC(),
		}
		conversation.LastMessage = newest.Snapshot()

		convRepo.On("FindByID", ctx, conversation.ID).Return(conversation, nil)
		msgRepo.On("FindByConversation", ctx, conversation.ID, int64(1), int64(0)).Return([]domain.Message{newest}, nil)

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		_, err := uc.Get(ctx, conversation.ID, "brand-1")

		assert.NoError(t, err)
		convRepo.AssertNotCalled(t, "UpdateLastMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown thread", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		convRepo.On("FindByID", ctx, "missing").Return(nil, mongo.ErrNoDocuments)

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		_, err := uc.Get(ctx, "missing", "brand-1")

		assert.Error(t, err)
		assert.True(t, errprocess.IsNotFound(err))
	})

	t.Run("outsider is rejected", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		conversation := conversationFixture("brand-1", "influencer-1")
		convRepo.On("FindByID", ctx, conversation.ID).Return(conversation, nil)

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		_, err := uc.Get(ctx, conversation.ID, "stranger")

		assert.Error(t, err)
		assert.True(t, errprocess.IsForbidden(err))
	})
}

func TestConversationUseCase_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades into the message log", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		conversation := conversationFixture("brand-1", "influencer-1")
		convRepo.On("FindByID", ctx, conversation.ID).Return(conversation, nil)
		msgRepo.On("DeleteByConversation", ctx, conversation.ID).Return(int64(7), nil)
		convRepo.On("Delete", ctx, conversation.ID).Return(nil)
		publisher.On("ConversationDeleted", ctx, conversation).Return()

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		err := uc.Delete(ctx, conversation.ID, "influencer-1")

		assert.NoError(t, err)
		convRepo.AssertExpectations(t)
		msgRepo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("outsider cannot delete", func(t *testing.T) {
		convRepo := new(MockConversationRepository)
		msgRepo := new(MockMessageRepository)
		identity := new(MockIdentityResolver)
		publisher := new(MockPublisher)

		conversation := conversationFixture("brand-1", "influencer-1")
		convRepo.On("FindByID", ctx, conversation.ID).Return(conversation, nil)

		uc := NewConversationUseCase(convRepo, msgRepo, identity, publisher)
		err := uc.Delete(ctx, conversation.ID, "stranger")

		assert.Error(t, err)
		assert.True(t, errprocess.IsForbidden(err))
		msgRepo.AssertNotCalled(t, "DeleteByConversation", mock.Anything, mock.Anything)
		convRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

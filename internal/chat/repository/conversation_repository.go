package repository

import (
	"context"
	"time"

	"brand_collab_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationRepository definition conversation persistence
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) error
	FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error)
	FindByParticipantKey(ctx context.Context, key string) (*domain.Conversation, error)
	FindByParticipant(ctx context.Context, userID string, limit, offset int64) ([]domain.Conversation, error)
	FindIDsByParticipant(ctx context.Context, userID string) ([]string, error)
	UpdateLastMessage(ctx context.Context, conversationID string, snapshot *domain.MessageSnapshot, updatedAt time.Time) error
	Delete(ctx context.Context, conversationID string) error
	EnsureIndexes(ctx context.Context) error
}

type conversationRepository struct {
	coll *mongo.Collection
}

// NewMongoConversationRepository create a ConversationRepository
func NewMongoConversationRepository(db *mongo.Database) ConversationRepository {
	return &conversationRepository{
		coll: db.Collection("conversations"),
	}
}

// IsDuplicateKeyError reports a unique index violation
func IsDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// EnsureIndexes creates the unique participant key index.
// The index is what makes create-or-get race free.
func (r *conversationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "participant_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Create insert conversation
func (r *conversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	_, err := r.coll.InsertOne(ctx, conversation)
	return err
}

// FindByID find conversation by id
func (r *conversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.coll.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conversation)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindByParticipantKey find conversation by its canonical participant key
func (r *conversationRepository) FindByParticipantKey(ctx context.Context, key string) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.coll.FindOne(ctx, bson.M{"participant_key": key}).Decode(&conversation)
	if err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindByParticipant lists threads of a user, most recently active first
func (r *conversationRepository) FindByParticipant(ctx context.Context, userID string, limit, offset int64) ([]domain.Conversation, error) {
	filter := bson.M{"participants": userID}
	opts := options.Find()
	opts.SetSort(bson.M{"updated_at": -1})
	opts.SetSkip(offset)
	opts.SetLimit(limit)

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var conversations []domain.Conversation
	if err := cur.All(ctx, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// FindIDsByParticipant returns only the thread ids of a user
func (r *conversationRepository) FindIDsByParticipant(ctx context.Context, userID string) ([]string, error) {
	filter := bson.M{"participants": userID}
	opts := options.Find()
	opts.SetProjection(bson.M{"_id": 1})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// UpdateLastMessage refreshes the denormalized snapshot and the activity time
func (r *conversationRepository) UpdateLastMessage(ctx context.Context, conversationID string, snapshot *domain.MessageSnapshot, updatedAt time.Time) error {
	filter := bson.M{"_id": conversationID}
	update := bson.M{"$set": bson.M{
		"last_message": snapshot,
		"updated_at":   updatedAt,
	}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

// Delete remove conversation
func (r *conversationRepository) Delete(ctx context.Context, conversationID string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": conversationID})
	return err
}

package repository

import (
	"context"
	"fmt"
	"time"

	"brand_collab_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition message persistence
type MessageRepository interface {
	Insert(ctx context.Context, message *domain.Message) error
	FindByID(ctx context.Context, messageID string) (*domain.Message, error)
	// FindByConversation pages newest first, the caller reverses for display
	FindByConversation(ctx context.Context, conversationID string, limit, offset int64) ([]domain.Message, error)
	MarkRead(ctx context.Context, messageID string, readAt time.Time) error
	DeleteByConversation(ctx context.Context, conversationID string) (int64, error)
	CountUnreadByConversation(ctx context.Context, userID string, conversationIDs []string) ([]domain.ConversationUnreadInfo, error)
	EnsureIndexes(ctx context.Context) error
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("messages"),
	}
}

// EnsureIndexes creates the conversation timeline index
func (r *messageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "conversation_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	return err
}

// Insert append one message
func (r *messageRepository) Insert(ctx context.Context, message *domain.Message) error {
	_, err := r.coll.InsertOne(ctx, message)
	return err
}

// FindByID find message by id
func (r *messageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	var message domain.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": messageID}).Decode(&message)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindByConversation pages the thread newest first
func (r *messageRepository) FindByConversation(ctx context.Context, conversationID string, limit, offset int64) ([]domain.Message, error) {
	filter := bson.M{"conversation_id": conversationID}
	opts := options.Find()
	opts.SetSort(bson.M{"created_at": -1})
	opts.SetSkip(offset)
	opts.SetLimit(limit)

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var messages []domain.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead stamps one message as read
func (r *messageRepository) MarkRead(ctx context.Context, messageID string, readAt time.Time) error {
	filter := bson.M{"_id": messageID}
	update := bson.M{"$set": bson.M{
		"is_read": true,
		"read_at": readAt,
	}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

// DeleteByConversation removes the whole thread history
func (r *messageRepository) DeleteByConversation(ctx context.Context, conversationID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"conversation_id": conversationID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountUnreadByConversation groups unread incoming messages per thread
func (r *messageRepository) CountUnreadByConversation(ctx context.Context, userID string, conversationIDs []string) ([]domain.ConversationUnreadInfo, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "conversation_id", Value: bson.D{{Key: "$in", Value: conversationIDs}}},
			{Key: "sender_id", Value: bson.D{{Key: "$ne", Value: userID}}},
			{Key: "is_read", Value: false},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$conversation_id"},
			{Key: "unread_count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last_unread_at", Value: bson.D{{Key: "$max", Value: "$created_at"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "last_unread_at", Value: -1},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate error: %w", err)
	}

	var results []domain.ConversationUnreadInfo
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}

	return results, nil
}

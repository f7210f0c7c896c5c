package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"brand_collab_service/internal/chat/domain"
	errprocess "brand_collab_service/pkg/err"

	"github.com/segmentio/kafka-go"
)

// Publisher emits domain events to the stream for downstream
// consumers (notifications, analytics). Publishing is fire and
// forget, failures are logged and never surface to callers.
type Publisher interface {
	MessageSent(ctx context.Context, message *domain.Message)
	MessageRead(ctx context.Context, message *domain.Message, readerID string)
	ConversationCreated(ctx context.Context, conversation *domain.Conversation)
	ConversationDeleted(ctx context.Context, conversation *domain.Conversation)
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher wraps a kafka writer.
// A nil writer disables publishing, the service runs without a stream.
func NewKafkaPublisher(writer *kafka.Writer) Publisher {
	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) publish(ctx context.Context, key string, event domain.StreamEvent) {
	if p.writer == nil {
		return
	}

	value, err := json.Marshal(event)
	if err != nil {
		errprocess.Set(fmt.Sprintf("marshal stream event %s: %v", event.Type, err))
		return
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	}); err != nil {
		errprocess.Set(fmt.Sprintf("publish stream event %s: %v", event.Type, err))
	}
}

// MessageSent publish message_sent
func (p *kafkaPublisher) MessageSent(ctx context.Context, message *domain.Message) {
	p.publish(ctx, message.ConversationID, domain.StreamEvent{
		Type:           domain.EventMessageSent,
		ConversationID: message.ConversationID,
		MessageID:      message.ID,
		SenderID:       message.SenderID,
		OccurredAt:     time.Now().UTC(),
	})
}

// MessageRead publish message_read
func (p *kafkaPublisher) MessageRead(ctx context.Context, message *domain.Message, readerID string) {
	p.publish(ctx, message.ConversationID, domain.StreamEvent{
		Type:           domain.EventMessageRead,
		ConversationID: message.ConversationID,
		MessageID:      message.ID,
		SenderID:       message.SenderID,
		ReaderID:       readerID,
		OccurredAt:     time.Now().UTC(),
	})
}

// ConversationCreated publish conversation_created
func (p *kafkaPublisher) ConversationCreated(ctx context.Context, conversation *domain.Conversation) {
	p.publish(ctx, conversation.ID, domain.StreamEvent{
		Type:           domain.EventConversationCreated,
		ConversationID: conversation.ID,
		Participants:   conversation.Participants,
		OccurredAt:     time.Now().UTC(),
	})
}

// ConversationDeleted publish conversation_deleted
func (p *kafkaPublisher) ConversationDeleted(ctx context.Context, conversation *domain.Conversation) {
	p.publish(ctx, conversation.ID, domain.StreamEvent{
		Type:           domain.EventConversationDeleted,
		ConversationID: conversation.ID,
		Participants:   conversation.Participants,
		OccurredAt:     time.Now().UTC(),
	})
}

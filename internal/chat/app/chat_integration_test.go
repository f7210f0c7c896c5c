package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"brand_collab_service/internal/chat/domain"
	"brand_collab_service/internal/chat/events"
	"brand_collab_service/internal/chat/presence"
	"brand_collab_service/internal/chat/repository"
	"brand_collab_service/pkg/database"
	errprocess "brand_collab_service/pkg/err"
	"brand_collab_service/pkg/logger"
	"brand_collab_service/pkg/middlewares"
	testtool "brand_collab_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	mongoContainer testcontainers.Container
	chatApp        *fiber.App
	conversationUC *ConversationUseCase
	messageUC      *MessageUseCase
)

// staticResolver stands in for the identity module, websocket auth and
// existence checks resolve against a fixed token table
type staticResolver struct {
	tokens map[string]string
}

func (s *staticResolver) Resolve(ctx context.Context, credential string) (string, error) {
	if userID, ok := s.tokens[credential]; ok {
		return userID, nil
	}
	return "", errprocess.AuthenticationFailed("invalid credential")
}

func (s *staticResolver) Exists(ctx context.Context, userID string) (bool, error) {
	for _, id := range s.tokens {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func TestMain(m *testing.M) {
	ctx := context.Background()
	logger.SetNewNop()
	var err error

	mongoContainer, mongoHost, mongoPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:latest",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})
	if err != nil {
		log.Fatalf("Failed to start MongoDB container: %v", err)
	}
	fmt.Printf("MongoDB running at %s:%s\n", mongoHost, mongoPort)

	os.Setenv("MONGO_URL", fmt.Sprintf("mongodb://%s:%s", mongoHost, mongoPort))

	mongo, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    os.Getenv("MONGO_URL"),
		RetryCount:    5,
		RetryInterval: 5,
	}, "test_collab_db")
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongo.Close(ctx)

	conversationRepo := repository.NewMongoConversationRepository(mongo.Database)
	messageRepo := repository.NewMongoMessageRepository(mongo.Database)
	if err := conversationRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("conversation indexes: %v", err)
	}
	if err := messageRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("message indexes: %v", err)
	}

	resolver := &staticResolver{tokens: map[string]string{
		"token-brand":      "brand-1",
		"token-influencer": "influencer-1",
		"token-second":     "influencer-2",
	}}

	hub := presence.NewHub()
	broadcaster := NewHubBroadcaster(hub)
	publisher := events.NewKafkaPublisher(nil)

	conversationUC = NewConversationUseCase(conversationRepo, messageRepo, resolver, publisher)
	messageUC = NewMessageUseCase(conversationRepo, messageRepo, broadcaster, publisher)
	wsHandler := NewChatWebsocketHandler(conversationUC, messageUC, resolver, hub, broadcaster)

	chatApp = fiber.New()
	chatApp.Use("/ws", middlewares.WSCredentialMiddleware())
	chatApp.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHandler.HandleConnection(context.Background(), c)
	}))

	go func() {
		if err := chatApp.Listen(":8082"); err != nil {
			log.Fatalf("Failed to start WebSocket server: %v", err)
		}
	}()
	time.Sleep(3 * time.Second)

	code := m.Run()

	_ = mongoContainer.Terminate(ctx)
	chatApp.Shutdown()

	os.Exit(code)
}

func dialWS(t *testing.T, token string) *gws.Conn {
	t.Helper()
	conn, _, err := gws.DefaultDialer.Dial("ws://127.0.0.1:8082/ws?auth="+token, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	return conn
}

func sendWS(t *testing.T, conn *gws.Conn, req domain.WSRequest) {
	t.Helper()
	frame, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	if err := conn.WriteMessage(gws.TextMessage, frame); err != nil {
		t.Fatalf("write request: %v", err)
	}
}

// readAction drains frames until one with the wanted action shows up,
// other events interleave freely and are skipped
func readAction(t *testing.T, conn *gws.Conn, action string) domain.WSResponse {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q frame: %v", action, err)
		}
		var resp domain.WSResponse
		if err := json.Unmarshal(frame, &resp); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if resp.Action == action {
			return resp
		}
	}
}

func TestWebsocketAuthReject(t *testing.T) {
	conn, _, err := gws.DefaultDialer.Dial("ws://127.0.0.1:8082/ws?auth=bogus", nil)
	assert.NoError(t, err, "upgrade should succeed even with a bad credential")
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, frame, err := conn.ReadMessage()
	assert.NoError(t, err)

	var resp domain.WSResponse
	assert.NoError(t, json.Unmarshal(frame, &resp))
	assert.Equal(t, string(domain.ErrorEvent), resp.Action)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)

	// the server closes right after the error frame
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestWebsocketSendDeliversToPeer(t *testing.T) {
	ctx := context.Background()
	conversation, _, err := conversationUC.CreateOrGet(ctx, "brand-1", "influencer-1")
	assert.NoError(t, err)

	brand := dialWS(t, "token-brand")
	defer brand.Close()
	influencer := dialWS(t, "token-influencer")
	defer influencer.Close()
	time.Sleep(200 * time.Millisecond)

	sendWS(t, brand, domain.WSRequest{
		Action:         string(domain.SendMessage),
		ConversationID: conversation.ID,
		Text:           "can you post by friday?",
	})

	ack := readAction(t, brand, string(domain.SendMessage))
	assert.True(t, ack.Success)
	acked, ok := ack.Payload["message"].(map[string]interface{})
	assert.True(t, ok, "ack should carry the stored message")
	assert.Equal(t, "can you post by friday?", acked["text"])

	evt := readAction(t, influencer, string(domain.NewMessage))
	delivered, ok := evt.Payload["message"].(map[string]interface{})
	assert.True(t, ok, "event should carry the message")
	assert.Equal(t, "can you post by friday?", delivered["text"])
	assert.Equal(t, "brand-1", delivered["sender_id"])
}

func TestWebsocketSendToForeignThreadFails(t *testing.T) {
	ctx := context.Background()
	conversation, _, err := conversationUC.CreateOrGet(ctx, "brand-1", "influencer-1")
	assert.NoError(t, err)

	second := dialWS(t, "token-second")
	defer second.Close()
	time.Sleep(200 * time.Millisecond)

	sendWS(t, second, domain.WSRequest{
		Action:         string(domain.SendMessage),
		ConversationID: conversation.ID,
		Text:           "let me in",
	})

	ack := readAction(t, second, string(domain.SendMessage))
	assert.False(t, ack.Success)
	assert.NotEmpty(t, ack.Error)
}

func TestWebsocketMarkReadNotifiesSender(t *testing.T) {
	ctx := context.Background()
	conversation, _, err := conversationUC.CreateOrGet(ctx, "brand-1", "influencer-1")
	assert.NoError(t, err)

	brand := dialWS(t, "token-brand")
	defer brand.Close()
	influencer := dialWS(t, "token-influencer")
	defer influencer.Close()
	time.Sleep(200 * time.Millisecond)

	sendWS(t, brand, domain.WSRequest{
		Action:         string(domain.SendMessage),
		ConversationID: conversation.ID,
		Text:           "draft is ready",
	})
	ack := readAction(t, brand, string(domain.SendMessage))
	assert.True(t, ack.Success)
	acked, ok := ack.Payload["message"].(map[string]interface{})
	assert.True(t, ok)
	messageID, _ := acked["id"].(string)
	assert.NotEmpty(t, messageID)

	sendWS(t, influencer, domain.WSRequest{
		Action:    string(domain.MarkRead),
		MessageID: messageID,
	})

	receipt := readAction(t, brand, string(domain.MessageRead))
	assert.Equal(t, messageID, receipt.Payload["message_id"])
	assert.Equal(t, "influencer-1", receipt.Payload["reader_id"])
}

func TestWebsocketTypingRelay(t *testing.T) {
	ctx := context.Background()
	conversation, _, err := conversationUC.CreateOrGet(ctx, "brand-1", "influencer-1")
	assert.NoError(t, err)

	brand := dialWS(t, "token-brand")
	defer brand.Close()
	influencer := dialWS(t, "token-influencer")
	defer influencer.Close()
	time.Sleep(200 * time.Millisecond)

	sendWS(t, brand, domain.WSRequest{
		Action:         string(domain.JoinConversation),
		ConversationID: conversation.ID,
	})
	sendWS(t, influencer, domain.WSRequest{
		Action:         string(domain.JoinConversation),
		ConversationID: conversation.ID,
	})
	time.Sleep(200 * time.Millisecond)

	sendWS(t, influencer, domain.WSRequest{
		Action:         string(domain.Typing),
		ConversationID: conversation.ID,
		IsTyping:       true,
	})

	evt := readAction(t, brand, string(domain.TypingEvent))
	assert.Equal(t, "influencer-1", evt.Payload["user_id"])
	assert.Equal(t, true, evt.Payload["is_typing"])
}

func TestWebsocketPresenceEvents(t *testing.T) {
	brand := dialWS(t, "token-brand")
	defer brand.Close()
	time.Sleep(200 * time.Millisecond)

	second := dialWS(t, "token-second")
	online := readAction(t, brand, string(domain.UserOnline))
	assert.Equal(t, "influencer-2", online.Payload["user_id"])

	second.Close()
	offline := readAction(t, brand, string(domain.UserOffline))
	assert.Equal(t, "influencer-2", offline.Payload["user_id"])
}

func TestConversationLifecycleStorage(t *testing.T) {
	ctx := context.Background()

	conversation, created, err := conversationUC.CreateOrGet(ctx, "brand-1", "influencer-2")
	assert.NoError(t, err)
	assert.True(t, created)

	again, createdAgain, err := conversationUC.CreateOrGet(ctx, "influencer-2", "brand-1")
	assert.NoError(t, err)
	assert.False(t, createdAgain)
	assert.Equal(t, conversation.ID, again.ID)

	var sent []*domain.Message
	for _, text := range []string{"first", "second", "third"} {
		message, err := messageUC.Send(ctx, conversation.ID, "brand-1", text, nil)
		assert.NoError(t, err)
		sent = append(sent, message)
	}

	listed, err := messageUC.List(ctx, conversation.ID, "influencer-2", 50, 0)
	assert.NoError(t, err)
	assert.Len(t, listed, 3)
	assert.Equal(t, "first", listed[0].Text)
	assert.Equal(t, "third", listed[2].Text)

	total, breakdown, err := messageUC.UnreadCount(ctx, "influencer-2")
	assert.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, breakdown, 1)
	assert.Equal(t, conversation.ID, breakdown[0].ConversationID)

	_, err = messageUC.MarkRead(ctx, sent[0].ID, "influencer-2")
	assert.NoError(t, err)
	_, err = messageUC.MarkRead(ctx, sent[0].ID, "influencer-2")
	assert.NoError(t, err, "second mark read is a no-op")

	total, _, err = messageUC.UnreadCount(ctx, "influencer-2")
	assert.NoError(t, err)
	assert.Equal(t, 2, total)

	got, err := conversationUC.Get(ctx, conversation.ID, "brand-1")
	assert.NoError(t, err)
	assert.NotNil(t, got.LastMessage)
	assert.Equal(t, sent[2].ID, got.LastMessage.MessageID)

	err = conversationUC.Delete(ctx, conversation.ID, "influencer-2")
	assert.NoError(t, err)

	_, err = conversationUC.Get(ctx, conversation.ID, "brand-1")
	assert.True(t, errprocess.IsNotFound(err))
	_, err = messageUC.List(ctx, conversation.ID, "brand-1", 50, 0)
	assert.True(t, errprocess.IsNotFound(err))
}

func TestConversationAccessControl(t *testing.T) {
	ctx := context.Background()

	conversation, _, err := conversationUC.CreateOrGet(ctx, "brand-1", "influencer-1")
	assert.NoError(t, err)

	_, err = conversationUC.Get(ctx, conversation.ID, "influencer-2")
	assert.True(t, errprocess.IsForbidden(err))

	_, _, err = conversationUC.CreateOrGet(ctx, "brand-1", "nobody-registered")
	assert.True(t, errprocess.IsNotFound(err))
}

package app

import (
	"context"
	"encoding/json"
	"time"

	"brand_collab_service/internal/chat/domain"
	"brand_collab_service/internal/chat/presence"
	"brand_collab_service/pkg/logger"
	"brand_collab_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// outboundBuffer is the per connection frame queue. A client that
// falls this far behind starts losing frames instead of blocking
// the fan out.
const outboundBuffer = 64

// ChatWebsocketHandler is the realtime gateway for one websocket connection
type ChatWebsocketHandler struct {
	conversationUC *ConversationUseCase
	messageUC      *MessageUseCase
	identity       IdentityResolver
	hub            *presence.Hub
	broadcaster    MessageBroadcaster
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	conversationUC *ConversationUseCase,
	messageUC *MessageUseCase,
	identity IdentityResolver,
	hub *presence.Hub,
	broadcaster MessageBroadcaster,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		conversationUC: conversationUC,
		messageUC:      messageUC,
		identity:       identity,
		hub:            hub,
		broadcaster:    broadcaster,
	}
}

// HandleConnection owns one upgraded connection end to end.
// The credential is checked after the upgrade so a bad one can be
// answered with an error frame before the close.
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	credential, _ := conn.Locals(middlewares.WSCredential).(string)
	userID, err := h.identity.Resolve(ctx, credential)
	if err != nil {
		h.sendError(conn, err.Error())
		closeWebSocketConnection(conn, websocket.ClosePolicyViolation, "authentication failed")
		return
	}
	logger.Log.Info("websocket handle userID", zap.String("userID", userID))

	client := presence.NewClient(userID, outboundBuffer)
	if first := h.hub.Register(client); first {
		h.broadcaster.UserOnline(userID)
	}

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		if last := h.hub.Deregister(client); last {
			h.broadcaster.UserOffline(userID)
		}
		logger.Log.Info("websocket close", zap.String("userID", userID))
		conn.Close()
		cancel()
	}()

	// fiber surfaces close frames as a ReadMessage error, the handler
	// is only here for the log line
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	// pong replies to our pings
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("received pong", zap.String("userID", userID))
		return nil
	})

	// client initiated pings are answered manually
	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// single writer: every data frame, acks included, goes through the
	// client queue. Pings use WriteControl which may run next to it.
	go func() {
		for {
			select {
			case frame, ok := <-client.Send():
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					logger.Log.Errorf("write message error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ticker.C:
				deadline := time.Now().Add(10 * time.Second)
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping message"), deadline); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", conn.RemoteAddr())
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, client, userID, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, client *presence.Client, userID string, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, client, userID, msg)

	default:
		// binary and everything else is dropped, the protocol is text only
		logger.Log.Warn("non text frame dropped",
			zap.String("userID", userID), zap.Int("messageType", mt))
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, client *presence.Client, userID string, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Warn("malformed frame dropped",
			zap.String("userID", userID), zap.Error(err))
		return
	}

	switch req.Action {
	// start receiving typing indicators of a thread
	case string(domain.JoinConversation):
		if _, err := h.conversationUC.VerifyParticipant(ctx, req.ConversationID, userID); err != nil {
			h.logDropped(userID, req.Action, err)
			return
		}
		h.hub.JoinConversation(client, req.ConversationID)

	case string(domain.LeaveConversation):
		h.hub.LeaveConversation(client, req.ConversationID)

	// the only acked action, the sender needs the stored message back
	case string(domain.SendMessage):
		resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
		message, err := h.messageUC.Send(ctx, req.ConversationID, userID, req.Text, req.Attachments)
		if err != nil {
			resp.Error = err.Error()
			logger.Log.Error("websocket err ",
				zap.String("userID", userID), zap.String("Action", req.Action), zap.String("err", resp.Error))
		} else {
			resp.Success = true
			resp.Payload["message"] = message
		}
		h.sendResponse(client, resp)

	case string(domain.Typing):
		conversation, err := h.conversationUC.VerifyParticipant(ctx, req.ConversationID, userID)
		if err != nil {
			h.logDropped(userID, req.Action, err)
			return
		}
		h.broadcaster.Typing(conversation.ID, userID, req.IsTyping, client)

	case string(domain.MarkRead):
		if _, err := h.messageUC.MarkRead(ctx, req.MessageID, userID); err != nil {
			h.logDropped(userID, req.Action, err)
		}

	default:
		logger.Log.Warn("unknown action dropped",
			zap.String("userID", userID), zap.String("Action", req.Action))
	}
}

func (h *ChatWebsocketHandler) logDropped(userID, action string, err error) {
	logger.Log.Warn("websocket action dropped",
		zap.String("userID", userID), zap.String("Action", action), zap.String("err", err.Error()))
}

// sendResponse queues a frame for the writer goroutine
func (h *ChatWebsocketHandler) sendResponse(client *presence.Client, resp domain.WSResponse) {
	frame, err := json.Marshal(resp)
	if err != nil {
		logger.Log.Errorf("marshal websocket response error:", err)
		return
	}
	if !client.TrySend(frame) {
		logger.Log.Debug("websocket ack dropped, slow consumer", zap.String("userID", client.UserID))
	}
}

// sendError writes straight to the connection, it runs before the
// client is registered so there is no writer goroutine yet
func (h *ChatWebsocketHandler) sendError(conn *websocket.Conn, errorMsg string) {
	frame, _ := json.Marshal(domain.WSResponse{
		Action:  string(domain.ErrorEvent),
		Success: false,
		Error:   errorMsg,
	})
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

func closeWebSocketConnection(conn *websocket.Conn, code int, reason string) {
	if err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason)); err != nil {
		logger.Log.Errorf("Failed to send CloseMessage: %v", err)
	}
	conn.Close()
	logger.Log.Infof("WebSocket connection closed:", conn.RemoteAddr())
}

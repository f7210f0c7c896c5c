package handlers

import (
	"context"

	chatapp "brand_collab_service/internal/chat/app"

	"github.com/gofiber/fiber/v2"
)

// SendMessageRequest is the REST send payload
type SendMessageRequest struct {
	ConversationID string   `json:"conversation_id"`
	Text           string   `json:"text"`
	Attachments    []string `json:"attachments"`
}

// MessageHandler handles message HTTP requests
type MessageHandler struct {
	messageUC *chatapp.MessageUseCase
}

// NewMessageHandler create MessageHandler
func NewMessageHandler(messageUC *chatapp.MessageUseCase) *MessageHandler {
	return &MessageHandler{
		messageUC: messageUC,
	}
}

// Send appends a message to a thread over REST.
// Live websocket clients of both participants still get the push.
// @Summary Send a message
// @Description Appends a message to a thread the caller belongs to
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body handlers.SendMessageRequest true "message payload"
// @Success 201 {object} map[string]interface{} "stored message"
// @Failure 400 {object} map[string]string "empty text"
// @Failure 403 {object} map[string]string "not a participant"
// @Failure 404 {object} map[string]string "unknown conversation"
// @Router /messages [post]
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	message, err := h.messageUC.Send(context.Background(), req.ConversationID, userID, req.Text, req.Attachments)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": message})
}

// MarkRead flags a peer message as seen
// @Summary Mark a message read
// @Description Flags the other participant's message as seen, idempotent
// @Tags Messages
// @Produce json
// @Param id path string true "message id"
// @Success 200 {object} map[string]interface{} "updated message"
// @Failure 400 {object} map[string]string "own message"
// @Failure 403 {object} map[string]string "not a participant"
// @Failure 404 {object} map[string]string "unknown message"
// @Router /messages/{id}/read [put]
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	message, err := h.messageUC.MarkRead(context.Background(), c.Params("id"), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": message})
}

// UnreadCount totals unread messages for the caller
// @Summary Unread count
// @Description Totals unread messages across all threads with a per thread breakdown
// @Tags Messages
// @Produce json
// @Success 200 {object} map[string]interface{} "totals"
// @Router /messages/unread/count [get]
func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	total, breakdown, err := h.messageUC.UnreadCount(context.Background(), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"total": total, "conversations": breakdown})
}

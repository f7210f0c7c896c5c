package handlers

import (
	"context"

	chatapp "brand_collab_service/internal/chat/app"

	"github.com/gofiber/fiber/v2"
)

// CreateConversationRequest names the other participant of a new thread
type CreateConversationRequest struct {
	ParticipantID string `json:"participant_id"`
}

// ConversationHandler handles thread HTTP requests
type ConversationHandler struct {
	conversationUC *chatapp.ConversationUseCase
	messageUC      *chatapp.MessageUseCase
}

// NewConversationHandler create ConversationHandler
func NewConversationHandler(conversationUC *chatapp.ConversationUseCase, messageUC *chatapp.MessageUseCase) *ConversationHandler {
	return &ConversationHandler{
		conversationUC: conversationUC,
		messageUC:      messageUC,
	}
}

// List returns the caller's threads, most recently active first
// @Summary List conversations
// @Description Returns the caller's threads ordered by last activity
// @Tags Conversations
// @Produce json
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} map[string]interface{} "conversations"
// @Router /conversations [get]
func (h *ConversationHandler) List(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	limit := int64(c.QueryInt("limit", 0))
	offset := int64(c.QueryInt("offset", 0))

	conversations, err := h.conversationUC.List(context.Background(), userID, limit, offset)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"conversations": conversations})
}

// Create opens the thread with another user, or returns the existing one
// @Summary Open a conversation
// @Description Opens the thread with another user, idempotent per pair
// @Tags Conversations
// @Accept json
// @Produce json
// @Param request body handlers.CreateConversationRequest true "other participant"
// @Success 200 {object} map[string]interface{} "existing conversation"
// @Success 201 {object} map[string]interface{} "created conversation"
// @Failure 400 {object} map[string]string "invalid participant"
// @Failure 404 {object} map[string]string "participant not found"
// @Router /conversations [post]
func (h *ConversationHandler) Create(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	var req CreateConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	conversation, created, err := h.conversationUC.CreateOrGet(context.Background(), userID, req.ParticipantID)
	if err != nil {
		return respondErr(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"conversation": conversation})
}

// Get returns one thread of the caller
// @Summary Get a conversation
// @Description Returns one thread with its last message snapshot
// @Tags Conversations
// @Produce json
// @Param id path string true "conversation id"
// @Success 200 {object} map[string]interface{} "conversation"
// @Failure 403 {object} map[string]string "not a participant"
// @Failure 404 {object} map[string]string "not found"
// @Router /conversations/{id} [get]
func (h *ConversationHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	conversation, err := h.conversationUC.Get(context.Background(), c.Params("id"), userID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"conversation": conversation})
}

// Messages returns one page of a thread in chronological order
// @Summary List messages
// @Description Returns one page of the thread, oldest first within the page
// @Tags Conversations
// @Produce json
// @Param id path string true "conversation id"
// @Param limit query int false "page size"
// @Param offset query int false "page offset from the newest end"
// @Success 200 {object} map[string]interface{} "messages"
// @Failure 403 {object} map[string]string "not a participant"
// @Failure 404 {object} map[string]string "not found"
// @Router /conversations/{id}/messages [get]
func (h *ConversationHandler) Messages(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	limit := int64(c.QueryInt("limit", 0))
	offset := int64(c.QueryInt("offset", 0))

	messages, err := h.messageUC.List(context.Background(), c.Params("id"), userID, limit, offset)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// Delete removes a thread and its whole message log
// @Summary Delete a conversation
// @Description Removes the thread and every message in it
// @Tags Conversations
// @Produce json
// @Param id path string true "conversation id"
// @Success 200 {object} map[string]string "deleted"
// @Failure 403 {object} map[string]string "not a participant"
// @Failure 404 {object} map[string]string "not found"
// @Router /conversations/{id} [delete]
func (h *ConversationHandler) Delete(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.conversationUC.Delete(context.Background(), c.Params("id"), userID); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "conversation deleted"})
}

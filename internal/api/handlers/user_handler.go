package handlers

import (
	"context"
	"fmt"

	identityapp "brand_collab_service/internal/identity/app"
	"brand_collab_service/internal/identity/domain"
	"brand_collab_service/pkg/logger"
	"brand_collab_service/pkg/middlewares"
	token "brand_collab_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RegisterRequest is the account creation payload
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// LoginRequest is the credential payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForceLogoutRequest names the account an admin kicks out
type ForceLogoutRequest struct {
	UserID string `json:"user_id"`
}

// UserHandler handles account and session HTTP requests
type UserHandler struct {
	identityUC identityapp.IdentityUseCase
}

// NewUserHandler create UserHandler
func NewUserHandler(identityUC identityapp.IdentityUseCase) *UserHandler {
	return &UserHandler{
		identityUC: identityUC,
	}
}

// Register creates a brand or influencer account
// @Summary Register account
// @Description Creates a brand or influencer account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body handlers.RegisterRequest true "registration payload"
// @Success 200 {object} map[string]string "register success"
// @Failure 400 {object} map[string]string "invalid payload"
// @Router /auth/register [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Debug("Register request", zap.String("email", req.Email), zap.String("role", req.Role))

	userID, err := h.identityUC.Register(context.Background(), req.Email, req.Password, req.DisplayName, req.Role)
	if err != nil {
		return respondErr(c, err)
	}

	logger.Log.Info(fmt.Sprintf("Register success %s", userID))
	return c.JSON(fiber.Map{"user_id": userID, "message": "register success"})
}

// Login exchanges credentials for a session token
// @Summary Login
// @Description Exchanges email and password for a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body handlers.LoginRequest true "credentials"
// @Success 200 {object} map[string]string "login success"
// @Failure 401 {object} map[string]string "login failed"
// @Router /auth/login [post]
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	logger.Log.Debug("Login", zap.String("Email", req.Email))

	t, err := h.identityUC.Login(context.Background(), req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{"token": t, "message": "login success"})
}

// Logout drops the caller's session
// @Summary Logout
// @Description Invalidates the caller's session
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]string "logout success"
// @Failure 401 {object} map[string]string "invalid credential"
// @Router /auth/logout [post]
func (h *UserHandler) Logout(c *fiber.Ctx) error {
	if err := h.identityUC.Logout(context.Background(), middlewares.ExtractToken(c)); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "logout success"})
}

// Session reports whether the caller's session is still alive
// @Summary Session probe
// @Description Reports whether the caller's session timed out
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]bool "session state"
// @Failure 401 {object} map[string]string "invalid credential"
// @Router /auth/session [get]
func (h *UserHandler) Session(c *fiber.Ctx) error {
	expired, err := h.identityUC.CheckSessionTimeout(context.Background(), middlewares.ExtractToken(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"expired": expired})
}

// Profile returns the caller's own account
// @Summary Own profile
// @Description Returns the authenticated account without the password
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{} "account"
// @Failure 404 {object} map[string]string "not found"
// @Router /auth/profile [get]
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondErr(c, err)
	}

	user, err := h.identityUC.FindUser(context.Background(), &domain.UserQuery{UserID: &userID})
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"user_id":      user.UserID,
			"email":        user.Email,
			"display_name": user.DisplayName,
			"role":         user.Role,
			"status":       user.Status,
		},
	})
}

// ForceLogout kicks another account out, admin only
// @Summary Force logout
// @Description Drops every session of the named account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body handlers.ForceLogoutRequest true "target account"
// @Success 200 {object} map[string]string "force logout success"
// @Failure 403 {object} map[string]string "admin only"
// @Router /auth/force-logout [post]
func (h *UserHandler) ForceLogout(c *fiber.Ctx) error {
	role, _ := c.Locals(middlewares.TokenRole).(string)
	if role != string(token.RoleAdmin) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin only"})
	}

	var req ForceLogoutRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	if err := h.identityUC.ForceLogout(context.Background(), req.UserID); err != nil {
		return respondErr(c, err)
	}

	logger.Log.Info("force logout", zap.String("userID", req.UserID), zap.String("by", fmt.Sprintf("%v", c.Locals(middlewares.TokenUserID))))
	return c.JSON(fiber.Map{"message": "force logout success"})
}

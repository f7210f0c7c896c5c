package router

import (
	"brand_collab_service/internal/api/handlers"
	"brand_collab_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// RegisterRoutes mounts the REST surface
// @title Brand Collab Messaging API
// @version 1.0
// @description API documentation for the brand and influencer messaging service
// @host localhost:8080
// @BasePath /
func RegisterRoutes(
	app *fiber.App,
	userHandler *handlers.UserHandler,
	conversationHandler *handlers.ConversationHandler,
	messageHandler *handlers.MessageHandler,
) {
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", userHandler.Register)
	authRoutes.Post("/login", userHandler.Login)

	authRoutes.Use(middlewares.JWTMiddleware())
	authRoutes.Post("/logout", userHandler.Logout)
	authRoutes.Get("/session", userHandler.Session)
	authRoutes.Get("/profile", userHandler.Profile)
	authRoutes.Post("/force-logout", userHandler.ForceLogout)

	conversationRoutes := app.Group("/conversations", middlewares.JWTMiddleware())
	conversationRoutes.Get("/", conversationHandler.List)
	conversationRoutes.Post("/", conversationHandler.Create)
	conversationRoutes.Get("/:id", conversationHandler.Get)
	conversationRoutes.Get("/:id/messages", conversationHandler.Messages)
	conversationRoutes.Delete("/:id", conversationHandler.Delete)

	messageRoutes := app.Group("/messages", middlewares.JWTMiddleware())
	messageRoutes.Post("/", messageHandler.Send)
	messageRoutes.Get("/unread/count", messageHandler.UnreadCount)
	messageRoutes.Put("/:id/read", messageHandler.MarkRead)
}

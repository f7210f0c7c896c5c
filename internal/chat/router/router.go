package router

import (
	"context"

	"brand_collab_service/internal/chat/app"
	"brand_collab_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes mounts the websocket endpoint.
// The credential is only stashed here, the handler validates it after
// the upgrade so the client gets an error frame instead of an HTTP 401.
func RegisterRoutes(r *fiber.App, chatWebsocket *app.ChatWebsocketHandler) {
	r.Use("/ws", middlewares.WSCredentialMiddleware())

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}

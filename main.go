package main

import (
	"brand_collab_service/internal/api/router"

	"github.com/gofiber/fiber/v2"
)

// Route registration entry point for generating API docs.
// swag init output ./docs
func main() {
	app := fiber.New()

	router.RegisterRoutes(app, nil, nil, nil)
}

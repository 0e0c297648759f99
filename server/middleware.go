package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

const (
	userIDHeader = "X-User-ID"
	userIDKey    = "user_id"
)

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())

	s.app.Use(logger.New())

	s.app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", userIDHeader},
	}))

	s.app.Use("/v1", func(c fiber.Ctx) error {
		c.Locals(userIDKey, c.Get(userIDHeader))
		return c.Next()
	})
}

func userID(c fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

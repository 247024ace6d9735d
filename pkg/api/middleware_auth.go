package api

import (
	"github.com/gofiber/fiber/v3"
	"golang.org/x/crypto/bcrypt"
)

// AuthMiddleware checks X-API-Key against the configured bcrypt hash.
// Auth is disabled when no hash is configured.
func (s *Server) AuthMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if s.apiKeyHash == "" {
			return c.Next()
		}

		apiKey := c.Get("X-API-Key")

		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "missing api key"})
		}

		if bcrypt.CompareHashAndPassword([]byte(s.apiKeyHash), []byte(apiKey)) != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "invalid api key"})
		}

		return c.Next()
	}
}

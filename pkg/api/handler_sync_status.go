package api

import (
	"github.com/gofiber/fiber/v3"
)

func (s *Server) HandleSyncStatus(c fiber.Ctx) error {
	return c.JSON(s.orch.Status())
}

package api

import (
	"github.com/gofiber/fiber/v3"
)

func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api := app.Group("/api/v1", s.AuthMiddleware())

	api.Post("/sync/trigger", s.HandleTriggerSync)
	api.Get("/sync/status", s.HandleSyncStatus)
	api.Get("/sync/log", s.HandleListSyncLog)
}

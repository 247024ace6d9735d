package api

import (
	"github.com/gofiber/fiber/v3"
)

// HandleTriggerSync requests an immediate sync cycle. The acknowledgment
// is unconditional: the cycle itself runs in the background and its
// outcome is observable via the status endpoint only.
func (s *Server) HandleTriggerSync(c fiber.Ctx) error {
	s.sched.Trigger()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "accepted",
	})
}

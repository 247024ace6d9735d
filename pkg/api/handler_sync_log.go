package api

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// HandleListSyncLog returns the newest audit entries.
func (s *Server) HandleListSyncLog(c fiber.Ctx) error {
	limit := defaultLogLimit

	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = min(l, maxLogLimit)
	}

	entries, err := s.audit.Recent(c.Context(), limit)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list sync log"})
	}

	return c.JSON(entries)
}

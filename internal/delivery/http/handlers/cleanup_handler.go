package handlers

import (
	"chat-importer/internal/usecases"

	"github.com/gofiber/fiber/v2"
)

type CleanupHandler struct {
	cleanupUC usecases.CleanupService
}

func NewCleanupHandler(cleanupUC usecases.CleanupService) *CleanupHandler {
	return &CleanupHandler{
		cleanupUC: cleanupUC,
	}
}

// RunCleanup
//
// @Summary      Run Janitor
// @Description  Manual trigger for the stale upload and work directory cleanup
// @Tags         Maintenance
// @Produce      json
// @Success      200  {object}  usecases.CleanupReport
// @Router       /maintenance/cleanup [post]
func (h *CleanupHandler) RunCleanup(c *fiber.Ctx) error {
	report := h.cleanupUC.RunOnce(c.UserContext())
	return c.JSON(report)
}

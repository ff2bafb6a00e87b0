package handlers

import (
	"context"
	"time"

	consts "chat-importer/pkg/constants"

	"github.com/gofiber/fiber/v2"
)

// Pinger checks a backing service, e.g. the database.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health
//
// @Summary      Health Check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	body := fiber.Map{"status": consts.StatusOK}
	status := fiber.StatusOK
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			body[name] = err.Error()
			body["status"] = "degraded"
			status = fiber.StatusServiceUnavailable
		}
	}
	return c.Status(status).JSON(body)
}

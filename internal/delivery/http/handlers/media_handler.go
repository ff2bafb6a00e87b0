package handlers

import (
	"chat-importer/internal/usecases"
	"chat-importer/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type MediaHandler struct {
	service usecases.ImportService
}

func NewMediaHandler(service usecases.ImportService) *MediaHandler {
	return &MediaHandler{service: service}
}

// ListMedia
//
// @Summary      List Imported Media
// @Description  Media files linked to messages of the chat created by an import
// @Tags         Media
// @Produce      json
// @Param        X-User-ID  header    string true "Owner user id"
// @Param        id         path      string true "Progress ID"
// @Success      200        {object}  dto.MediaListResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /imports/{id}/media [get]
func (h *MediaHandler) ListMedia(c *fiber.Ctx) error {
	resp, err := h.service.ListMedia(c.UserContext(), currentUser(c), c.Params("id"))
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}

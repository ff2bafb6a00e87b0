package handlers

import (
	"chat-importer/internal/usecases"
	"chat-importer/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type ImportHandler struct {
	importService usecases.ImportService
}

func NewImportHandler(importService usecases.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// GetProgress
//
// @Summary      Get Import Progress
// @Description  Status, counters and log of an import
// @Tags         Import
// @Produce      json
// @Param        X-User-ID  header    string true "Owner user id"
// @Param        id         path      string true "Progress ID"
// @Success      200        {object}  dto.ImportProgressResponse
// @Failure      403        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /imports/{id} [get]
func (h *ImportHandler) GetProgress(c *fiber.Ctx) error {
	resp, err := h.importService.GetProgress(c.UserContext(), currentUser(c), c.Params("id"))
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}

// CancelImport
//
// @Summary      Cancel Import
// @Description  Requests cooperative cancellation; already imported messages are kept
// @Tags         Import
// @Produce      json
// @Param        X-User-ID  header    string true "Owner user id"
// @Param        id         path      string true "Progress ID"
// @Success      200        {object}  dto.CancelResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Failure      409        {object}  dto.ErrorResponse "Import already finished"
// @Router       /imports/{id}/cancel [post]
func (h *ImportHandler) CancelImport(c *fiber.Ctx) error {
	resp, err := h.importService.CancelImport(c.UserContext(), currentUser(c), c.Params("id"))
	if err != nil {
		return errors.HandleError(c, err)
	}
	return c.JSON(resp)
}

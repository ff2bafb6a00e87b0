package routers

import (
	"chat-importer/internal/delivery/http/handlers"

	"github.com/gofiber/fiber/v2"
)

func SetupImportRoutes(api fiber.Router, importHandler *handlers.ImportHandler, mediaHandler *handlers.MediaHandler) {
	api.Get("/imports/:id", importHandler.GetProgress)
	api.Post("/imports/:id/cancel", importHandler.CancelImport)
	api.Get("/imports/:id/media", mediaHandler.ListMedia)
}

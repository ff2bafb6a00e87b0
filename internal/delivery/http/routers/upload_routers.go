package routers

import (
	"chat-importer/internal/delivery/http/handlers"

	"github.com/gofiber/fiber/v2"
)

func SetupUploadRoutes(api fiber.Router, uploadHandler *handlers.UploadHandler) {
	api.Post("/upload/init", uploadHandler.InitiateUpload)
	api.Post("/upload/chunk", uploadHandler.UploadChunk)
	api.Post("/upload/finalize", uploadHandler.FinalizeUpload)
	api.Post("/upload/cancel", uploadHandler.CancelUpload)
	api.Get("/upload/status", uploadHandler.UploadStatus)
}

package routers

import (
	"chat-importer/internal/delivery/http/handlers"
	"chat-importer/internal/usecases"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

type Services struct {
	Upload       usecases.UploadService
	Import       usecases.ImportService
	Cleanup      usecases.CleanupService
	MaxChunkSize int64
	Health       map[string]handlers.Pinger
}

// Setup registers every route of the API on app.
func Setup(app *fiber.App, svc Services) {
	health := handlers.NewHealthHandler(svc.Health)
	app.Get("/health", health.Health)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")

	// janitor tetikleyicisi kullanıcıya bağlı değil
	if svc.Cleanup != nil {
		cleanupHandler := handlers.NewCleanupHandler(svc.Cleanup)
		api.Post("/maintenance/cleanup", cleanupHandler.RunCleanup)
	}

	user := api.Group("", handlers.RequireUser())
	SetupUploadRoutes(user, handlers.NewUploadHandler(svc.Upload, svc.MaxChunkSize))
	SetupImportRoutes(user, handlers.NewImportHandler(svc.Import), handlers.NewMediaHandler(svc.Import))
}

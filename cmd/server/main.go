package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	_ "chat-importer/docs"

	"chat-importer/internal/app"
	"chat-importer/internal/delivery/http/routers"
	"chat-importer/internal/infrastructure/queue"
	"chat-importer/internal/pkg/config"
	"chat-importer/internal/pkg/logger"
	"chat-importer/pkg/errors"
	"chat-importer/pkg/errors/i18n"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// @title        Chat Importer API
// @version      1.0
// @description  Chunked upload and background import of exported chat archives.
// @host         localhost:3000
// @BasePath     /api/v1
func main() {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := config.LoadConfig()
	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("dizinler oluşturulamadı: %v", err)
	}

	lg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()
	errors.SetLogger(lg)
	if err := i18n.Load(cfg.Server.Locale); err != nil {
		lg.Warn("locale not loaded, using defaults", "locale", cfg.Server.Locale, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("startup failed", "error", err)
	}
	defer deps.Close()

	server := fiber.New(fiber.Config{
		BodyLimit: cfg.Server.BodyLimit,
	})

	// Middleware
	server.Use(fiberlogger.New())
	server.Use(cors.New())

	routers.Setup(server, deps.Routes())

	// Janitor
	c := cron.New(cron.WithSeconds())
	if _, err := deps.Cleanup.Schedule(c, cfg.Cleanup.Spec); err != nil {
		lg.Fatal("invalid cleanup schedule", "spec", cfg.Cleanup.Spec, "error", err)
	}
	c.Start() // cron job'u başlatır

	var pool *queue.WorkerPool
	if cfg.Worker.Embedded {
		pool = queue.NewWorkerPool(cfg.Worker.Concurrency, deps.JobHandlers(), lg)
		go func() {
			if err := pool.Consume(ctx, 5*time.Second, deps.Queue); err != nil {
				lg.Error("embedded worker stopped", "error", err)
			}
		}()
		lg.Info("embedded worker pool started", "workers", cfg.Worker.Concurrency)
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	lg.Info("server starting", "addr", addr)

	go func() {
		if err := server.Listen(addr); err != nil {
			lg.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("Shutdown sinyali alındı, server kapatılıyor...")

	ctxShut, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	<-c.Stop().Done()
	if err := server.ShutdownWithContext(ctxShut); err != nil {
		lg.Error("server did not shut down cleanly", "error", err)
	}
	if pool != nil {
		pool.Shutdown()
	}
	lg.Info("Server düzgün bir şekilde kapatıldı")
}

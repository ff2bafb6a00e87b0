package main //worker

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"chat-importer/internal/app"
	"chat-importer/internal/infrastructure/queue"
	"chat-importer/internal/pkg/config"
	"chat-importer/internal/pkg/logger"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

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
	lg = lg.With("component", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("startup failed", "error", err)
	}
	defer deps.Close()

	// önceki çalışmadan yarım kalan işler
	requeued, err := deps.Queue.RequeueInFlight(ctx)
	if err != nil {
		lg.Fatal("requeue in-flight jobs failed", "error", err)
	}
	if requeued > 0 {
		lg.Info("requeued in-flight jobs", "count", requeued)
	}

	pool := queue.NewWorkerPool(cfg.Worker.Concurrency, deps.JobHandlers(), lg)
	lg.Info("worker started", "queue", cfg.Redis.Queue, "workers", cfg.Worker.Concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pool.Consume(gctx, 5*time.Second, deps.Queue)
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				n, err := deps.Queue.Len(gctx)
				if err != nil {
					lg.Warn("queue length check failed", "error", err)
					continue
				}
				lg.Debug("queue depth", "pending", n)
			}
		}
	})

	if err := g.Wait(); err != nil {
		lg.Error("worker loop failed", "error", err)
	}
	lg.Info("shutting down, waiting for running jobs")
	pool.Shutdown()
	lg.Info("worker stopped")
}

package app

import (
	"context"
	"fmt"

	"chat-importer/internal/delivery/http/handlers"
	"chat-importer/internal/delivery/http/routers"
	"chat-importer/internal/infrastructure/archive"
	"chat-importer/internal/infrastructure/db"
	"chat-importer/internal/infrastructure/queue"
	infra_repo "chat-importer/internal/infrastructure/repositories"
	"chat-importer/internal/infrastructure/storage"
	"chat-importer/internal/pkg/config"
	"chat-importer/internal/pkg/logger"
	"chat-importer/internal/usecases"

	_ "chat-importer/migrations"

	"github.com/go-redis/redis/v8"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// Deps is everything the server and the worker share.
type Deps struct {
	Config *config.Config
	Log    *logger.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	Queue  *queue.RedisQueue
	Chunks *infra_repo.FileUploadRepository

	Uploads usecases.UploadService
	Imports usecases.ImportService
	Cleanup usecases.CleanupService
}

func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Deps, error) {
	database, err := db.NewPostgresDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigration {
		if err := migrate(ctx, database); err != nil {
			return nil, err
		}
	}

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	rdb := queue.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	jobQueue := queue.NewRedisQueue(rdb, cfg.Redis.Queue)

	chunks := infra_repo.NewFileUploadRepository(cfg.Upload.TempDir, cfg.Upload.UploadsDir)
	sessions := infra_repo.NewUploadSessionRepository(database)
	progress := infra_repo.NewImportProgressRepository(database)
	chats := infra_repo.NewChatRepository(database)

	stager := archive.NewStager(cfg.Import.WorkDir, log)
	media := usecases.NewMediaMatcher(chats, blobs, cfg.Media, log)

	uploads := usecases.NewUploadService(chunks, sessions, progress, jobQueue, cfg.Upload, log)

	return &Deps{
		Config:  cfg,
		Log:     log,
		DB:      database,
		Redis:   rdb,
		Queue:   jobQueue,
		Chunks:  chunks,
		Uploads: uploads,
		Imports: usecases.NewImportService(progress, chats, stager, media, uploads, cfg.Import, log),
		Cleanup: usecases.NewCleanupService(chunks, sessions, progress, cfg.Import.WorkDir, cfg.Cleanup.MaxAge, log),
	}, nil
}

func migrate(ctx context.Context, database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// JobHandlers maps queue job types to the services that run them.
func (d *Deps) JobHandlers() map[queue.JobType]queue.Handler {
	return map[queue.JobType]queue.Handler{
		queue.JobImport: func(ctx context.Context, job queue.Job) error {
			return d.Imports.Process(ctx, job.ProgressID)
		},
		queue.JobCleanup: func(ctx context.Context, job queue.Job) error {
			return d.Chunks.CleanupTempFiles(job.UploadID)
		},
	}
}

// Routes builds the router input, including health checks for the backing services.
func (d *Deps) Routes() routers.Services {
	return routers.Services{
		Upload:       d.Uploads,
		Import:       d.Imports,
		Cleanup:      d.Cleanup,
		MaxChunkSize: d.Config.Upload.MaxChunkSize,
		Health: map[string]handlers.Pinger{
			"database": func(ctx context.Context) error {
				sqlDB, err := d.DB.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error {
				return d.Redis.Ping(ctx).Err()
			},
		},
	}
}

func (d *Deps) Close() {
	if err := d.Redis.Close(); err != nil {
		d.Log.Warn("redis close failed", "error", err)
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

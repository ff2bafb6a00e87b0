package storage

import (
	"context"
	"fmt"

	"chat-importer/internal/domain/repositories"
	appconfig "chat-importer/internal/pkg/config"
)

// New returns the blob store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg appconfig.StorageConfig) (repositories.BlobStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg.BasePath), nil
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required for the s3 driver")
		}
		return NewS3Storage(ctx, cfg.Bucket, cfg.Region)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

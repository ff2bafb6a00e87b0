package repositories

import (
	"context"
	"io"
	"time"

	"chat-importer/internal/domain/entities"
)

// ChunkStore keeps the chunk files of an upload in its working directory.
type ChunkStore interface {
	// Chunk işlemleri
	CreateWorkDir(uploadID string) (string, error)
	WorkDirExists(uploadID string) bool
	// SaveChunk places the chunk only if the index is not present yet and
	// reports whether this call created it.
	SaveChunk(uploadID string, chunkIndex int, r io.Reader) (bool, error)
	ChunkExists(uploadID string, chunkIndex int) bool
	// ListChunks returns the stored indexes in ascending order.
	ListChunks(uploadID string) ([]int, error)
	// Birleştirme / temizlik
	MergeChunks(uploadID string, indexes []int, dst string) (int64, error)
	CleanupTempFiles(uploadID string) error
	TempDir() string
	UploadsDir() string
}

type UploadSessionRepository interface {
	Create(ctx context.Context, s *entities.UploadSession) error
	Get(ctx context.Context, id string) (*entities.UploadSession, error)
	GetByProgress(ctx context.Context, progressID string) (*entities.UploadSession, error)
	// IncrementReceived atomically bumps the received counter and returns the new value.
	IncrementReceived(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
	ListStale(ctx context.Context, updatedBefore time.Time) ([]entities.UploadSession, error)
}

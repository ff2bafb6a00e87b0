package repositories

import (
	"context"

	"chat-importer/internal/domain/entities"
)

// ImportProgressRepository persists import progress. Status writers never
// overwrite a terminal status.
type ImportProgressRepository interface {
	Create(ctx context.Context, p *entities.ImportProgress) error
	Get(ctx context.Context, id string) (*entities.ImportProgress, error)
	SetStatus(ctx context.Context, id, status string) error
	MarkPending(ctx context.Context, id, sourcePath, chatName, chatDescription string) error
	StartAttempt(ctx context.Context, id string) (int, error)
	SetChatID(ctx context.Context, id, chatID string) error
	UpdateCounters(ctx context.Context, id string, c entities.ImportCounters) error
	AppendLog(ctx context.Context, id, line string) error
	IsCancelRequested(ctx context.Context, id string) (bool, error)
	RequestCancel(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, summary []byte) error
	Fail(ctx context.Context, id, message string) error
	Cancel(ctx context.Context, id string) error
}

type JobQueue interface {
	EnqueueImport(ctx context.Context, progressID string) error
	// EnqueueCleanup hands a chunk directory that could not be removed inline to a worker.
	EnqueueCleanup(ctx context.Context, uploadID string) error
}

package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobType string

const (
	JobImport  JobType = "import"
	JobCleanup JobType = "cleanup_upload"
)

type Job struct {
	ID         string    `json:"id"`
	Type       JobType   `json:"type"`
	ProgressID string    `json:"progress_id,omitempty"`
	UploadID   string    `json:"upload_id,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`

	raw string // serialized form as read from the queue, used for ack
}

func NewImportJob(progressID string) Job {
	return Job{ID: uuid.NewString(), Type: JobImport, ProgressID: progressID, EnqueuedAt: time.Now().UTC()}
}

func NewCleanupJob(uploadID string) Job {
	return Job{ID: uuid.NewString(), Type: JobCleanup, UploadID: uploadID, EnqueuedAt: time.Now().UTC()}
}

func DeserializeJob(data string) (*Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("failed to deserialize job: %w", err)
	}
	job.raw = data
	return &job, nil
}

func SerializeJob(job Job) (string, error) {
	bytes, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to serialize job: %w", err)
	}
	return string(bytes), nil
}

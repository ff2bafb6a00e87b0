package entities

import (
	"time"

	consts "chat-importer/pkg/constants"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportProgress is the polled record of one import: status, counters and an
// append-only log.
type ImportProgress struct {
	ID              string  `gorm:"type:varchar(36);primaryKey"`
	UserID          string  `gorm:"type:varchar(255);not null;index"`
	ChatID          *string `gorm:"type:varchar(36);index"`
	ChatName        string  `gorm:"type:varchar(255)"`
	ChatDescription string
	SourcePath      string `gorm:"type:varchar(1000)"`
	Status          string `gorm:"type:varchar(32);not null;index"`

	TotalMessages     int `gorm:"not null;default:0"`
	ProcessedMessages int `gorm:"not null;default:0"`
	SkippedMessages   int `gorm:"not null;default:0"`
	FailedMessages    int `gorm:"not null;default:0"`

	TotalMedia     int `gorm:"not null;default:0"`
	ProcessedMedia int `gorm:"not null;default:0"`
	ImageCount     int `gorm:"not null;default:0"`
	VideoCount     int `gorm:"not null;default:0"`
	AudioCount     int `gorm:"not null;default:0"`
	DocumentCount  int `gorm:"not null;default:0"`
	UnmatchedMedia int `gorm:"not null;default:0"`

	Log             string `gorm:"type:text"`
	ErrorMessage    string `gorm:"type:text"`
	CancelRequested bool   `gorm:"not null;default:false"`
	Attempts        int    `gorm:"not null;default:0"`
	Summary         datatypes.JSON

	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ImportProgress) TableName() string { return "import_progress" }

func (p *ImportProgress) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = consts.StatusUploading
	}
	return
}

func (p *ImportProgress) IsTerminal() bool {
	return consts.IsTerminal(p.Status)
}

// ImportCounters is the set of counters flushed after each stage or batch.
type ImportCounters struct {
	TotalMessages     int
	ProcessedMessages int
	SkippedMessages   int
	FailedMessages    int
	TotalMedia        int
	ProcessedMedia    int
	ImageCount        int
	VideoCount        int
	AudioCount        int
	DocumentCount     int
	UnmatchedMedia    int
}

// ImportSummary is stored as JSON on completion.
type ImportSummary struct {
	ChatID            string  `json:"chat_id"`
	TotalMessages     int     `json:"total_messages"`
	InsertedMessages  int     `json:"inserted_messages"`
	SkippedMessages   int     `json:"skipped_messages"`
	FailedMessages    int     `json:"failed_messages"`
	Participants      int     `json:"participants"`
	ProcessedMedia    int     `json:"processed_media"`
	UnmatchedMedia    int     `json:"unmatched_media"`
	FailedMedia       int     `json:"failed_media"`
	Attempts          int     `json:"attempts"`
	DurationSeconds   float64 `json:"duration_seconds"`
	MessagesPerSecond float64 `json:"messages_per_second"`
}

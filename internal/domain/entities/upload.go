package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadSession tracks one chunked upload until it is finalized or cancelled.
type UploadSession struct {
	ID              string `gorm:"type:varchar(36);primaryKey"`
	ProgressID      string `gorm:"type:varchar(36);not null;index"`
	UserID          string `gorm:"type:varchar(255);not null;index"`
	Filename        string `gorm:"type:varchar(255);not null"`
	TotalChunks     int    `gorm:"not null"`
	ReceivedChunks  int    `gorm:"not null;default:0"`
	FileSize        int64
	ChatName        string `gorm:"type:varchar(255)"`
	ChatDescription string
	Checksum        string `gorm:"type:varchar(64)"` // opsiyonel sha256
	TempDir         string `gorm:"type:varchar(500);not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (s *UploadSession) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return
}

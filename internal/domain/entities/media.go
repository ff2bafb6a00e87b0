package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media links a stored file to the message that mentions it.
type Media struct {
	ID            string `gorm:"type:varchar(36);primaryKey"`
	MessageID     string `gorm:"type:varchar(36);not null;index"`
	ChatID        string `gorm:"type:varchar(36);not null;index"`
	Category      string `gorm:"type:varchar(16);not null"`
	MimeType      string `gorm:"type:varchar(127)"`
	Filename      string `gorm:"type:varchar(255);not null"`
	StoragePath   string `gorm:"type:varchar(1000);not null"`
	ThumbnailPath string `gorm:"type:varchar(1000)"`
	Size          int64
	Width         int // image için
	Height        int
	CreatedAt     time.Time
}

func (Media) TableName() string { return "media" }

func (m *Media) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return
}

package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chat struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	Name        string `gorm:"type:varchar(255);not null"`
	Description string
	OwnerID     string `gorm:"type:varchar(255);not null;index"`
	CreatedAt   time.Time
}

func (c *Chat) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return
}

type ChatMember struct {
	ChatID    string `gorm:"type:varchar(36);primaryKey"`
	UserID    string `gorm:"type:varchar(255);primaryKey"`
	Role      string `gorm:"type:varchar(32);not null"`
	CreatedAt time.Time
}

// Participant is a display name inside one chat; (chat_id, name) is unique.
type Participant struct {
	ID     string `gorm:"type:varchar(36);primaryKey"`
	ChatID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_participant_chat_name"`
	Name   string `gorm:"type:varchar(255);not null;uniqueIndex:idx_participant_chat_name"`
}

func (p *Participant) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return
}

type Message struct {
	ID              string    `gorm:"type:varchar(36);primaryKey"`
	ChatID          string    `gorm:"type:varchar(36);not null;index:idx_message_chat_ts"`
	ParticipantID   *string   `gorm:"type:varchar(36);index"`
	Timestamp       time.Time `gorm:"not null;index:idx_message_chat_ts"`
	Content         string    `gorm:"type:text"`
	IsSystemMessage bool      `gorm:"not null;default:false"`
	HasMedia        bool      `gorm:"not null;default:false"`
	MediaType       string    `gorm:"type:varchar(16)"`
	MediaFilename   string    `gorm:"type:varchar(255);index"`
	DedupHash       string    `gorm:"type:char(64);not null;uniqueIndex"`
	CreatedAt       time.Time
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return
}

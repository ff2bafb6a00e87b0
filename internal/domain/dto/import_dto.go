package dto

import (
	"encoding/json"
	"time"
)

type MediaCounts struct {
	Image     int `json:"image"`
	Video     int `json:"video"`
	Audio     int `json:"audio"`
	Document  int `json:"document"`
	Unmatched int `json:"unmatched"`
}

type ImportProgressResponse struct {
	ID                string          `json:"id"`
	ChatID            string          `json:"chat_id,omitempty"`
	ChatName          string          `json:"chat_name"`
	Status            string          `json:"status"`
	TotalMessages     int             `json:"total_messages"`
	ProcessedMessages int             `json:"processed_messages"`
	SkippedMessages   int             `json:"skipped_messages"`
	FailedMessages    int             `json:"failed_messages"`
	TotalMedia        int             `json:"total_media"`
	ProcessedMedia    int             `json:"processed_media"`
	Media             MediaCounts     `json:"media"`
	Percent           int             `json:"percent"`
	ErrorMessage      string          `json:"error_message,omitempty"`
	CancelRequested   bool            `json:"cancel_requested"`
	Attempts          int             `json:"attempts"`
	Summary           json.RawMessage `json:"summary,omitempty" swaggertype:"object"`
	Log               string          `json:"log"`
	StartedAt         *time.Time      `json:"started_at,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

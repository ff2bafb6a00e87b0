package dto

import "time"

type MediaResponse struct {
	ID            string    `json:"id"`
	MessageID     string    `json:"message_id"`
	Category      string    `json:"category"`
	MimeType      string    `json:"mime_type"`
	Filename      string    `json:"filename"`
	StoragePath   string    `json:"storage_path"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
	Size          int64     `json:"size"`
	Width         int       `json:"width,omitempty"`
	Height        int       `json:"height,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type MediaListResponse struct {
	ChatID string          `json:"chat_id"`
	Items  []MediaResponse `json:"items"`
}

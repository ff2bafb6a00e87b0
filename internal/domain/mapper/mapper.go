package mapper

import (
	"encoding/json"

	"chat-importer/internal/domain/dto"
	"chat-importer/internal/domain/entities"
	consts "chat-importer/pkg/constants"
	"chat-importer/pkg/helper"
)

func ProgressToDTO(p *entities.ImportProgress) dto.ImportProgressResponse {
	out := dto.ImportProgressResponse{
		ID:                p.ID,
		ChatName:          p.ChatName,
		Status:            p.Status,
		TotalMessages:     p.TotalMessages,
		ProcessedMessages: p.ProcessedMessages,
		SkippedMessages:   p.SkippedMessages,
		FailedMessages:    p.FailedMessages,
		TotalMedia:        p.TotalMedia,
		ProcessedMedia:    p.ProcessedMedia,
		Media: dto.MediaCounts{
			Image:     p.ImageCount,
			Video:     p.VideoCount,
			Audio:     p.AudioCount,
			Document:  p.DocumentCount,
			Unmatched: p.UnmatchedMedia,
		},
		ErrorMessage:    p.ErrorMessage,
		CancelRequested: p.CancelRequested,
		Attempts:        p.Attempts,
		Log:             p.Log,
		StartedAt:       p.StartedAt,
		CompletedAt:     p.CompletedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.ChatID != nil {
		out.ChatID = *p.ChatID
	}
	if len(p.Summary) > 0 {
		out.Summary = json.RawMessage(p.Summary)
	}
	out.Percent = percentOf(p)
	return out
}

// percentOf is a coarse overall progress: messages weigh 80%, media the rest.
func percentOf(p *entities.ImportProgress) int {
	switch p.Status {
	case consts.StatusCompleted:
		return 100
	case consts.StatusUploading, consts.StatusPending:
		return 0
	}
	pct := helper.Percent(p.ProcessedMessages, p.TotalMessages) * 80 / 100
	if p.TotalMedia > 0 {
		pct += helper.Percent(p.ProcessedMedia+p.UnmatchedMedia, p.TotalMedia) * 20 / 100
	}
	if pct > 99 {
		pct = 99
	}
	return pct
}

// SessionToStatusDTO reports the upload counters with the status of the
// linked progress row.
func SessionToStatusDTO(s *entities.UploadSession, status string) dto.UploadStatusResponse {
	return dto.UploadStatusResponse{
		UploadedChunks: s.ReceivedChunks,
		TotalChunks:    s.TotalChunks,
		Status:         status,
	}
}

func MediaToDTO(m *entities.Media) dto.MediaResponse {
	return dto.MediaResponse{
		ID:            m.ID,
		MessageID:     m.MessageID,
		Category:      m.Category,
		MimeType:      m.MimeType,
		Filename:      m.Filename,
		StoragePath:   m.StoragePath,
		ThumbnailPath: m.ThumbnailPath,
		Size:          m.Size,
		Width:         m.Width,
		Height:        m.Height,
		CreatedAt:     m.CreatedAt,
	}
}

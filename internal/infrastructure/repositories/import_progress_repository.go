package repositories

import (
	"context"
	"fmt"
	"time"

	"chat-importer/internal/domain/entities"
	"chat-importer/internal/domain/repositories"
	consts "chat-importer/pkg/constants"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var terminalStatuses = []string{consts.StatusCompleted, consts.StatusFailed, consts.StatusCancelled}

type importProgressRepository struct {
	db *gorm.DB
}

func NewImportProgressRepository(db *gorm.DB) repositories.ImportProgressRepository {
	return &importProgressRepository{db: db}
}

func (r *importProgressRepository) Create(ctx context.Context, p *entities.ImportProgress) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *importProgressRepository) Get(ctx context.Context, id string) (*entities.ImportProgress, error) {
	var p entities.ImportProgress
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// active scopes updates to rows that have not reached a terminal status.
func (r *importProgressRepository) active(ctx context.Context, id string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entities.ImportProgress{}).
		Where("id = ? AND status NOT IN ?", id, terminalStatuses)
}

func (r *importProgressRepository) update(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.active(ctx, id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotActive
	}
	return nil
}

func (r *importProgressRepository) SetStatus(ctx context.Context, id, status string) error {
	return r.update(ctx, id, map[string]interface{}{"status": status})
}

func (r *importProgressRepository) MarkPending(ctx context.Context, id, sourcePath, chatName, chatDescription string) error {
	fields := map[string]interface{}{
		"status":      consts.StatusPending,
		"source_path": sourcePath,
	}
	if chatName != "" {
		fields["chat_name"] = chatName
	}
	if chatDescription != "" {
		fields["chat_description"] = chatDescription
	}
	return r.update(ctx, id, fields)
}

func (r *importProgressRepository) StartAttempt(ctx context.Context, id string) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&entities.ImportProgress{}).
			Where("id = ? AND status NOT IN ?", id, terminalStatuses).
			Updates(map[string]interface{}{
				"attempts":      gorm.Expr("attempts + 1"),
				"started_at":    gorm.Expr("COALESCE(started_at, ?)", now),
				"error_message": "",
				"updated_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return tx.Model(&entities.ImportProgress{}).Select("attempts").Where("id = ?", id).Scan(&attempts).Error
	})
	return attempts, err
}

func (r *importProgressRepository) SetChatID(ctx context.Context, id, chatID string) error {
	return r.update(ctx, id, map[string]interface{}{"chat_id": chatID})
}

func (r *importProgressRepository) UpdateCounters(ctx context.Context, id string, c entities.ImportCounters) error {
	return r.update(ctx, id, map[string]interface{}{
		"total_messages":     c.TotalMessages,
		"processed_messages": c.ProcessedMessages,
		"skipped_messages":   c.SkippedMessages,
		"failed_messages":    c.FailedMessages,
		"total_media":        c.TotalMedia,
		"processed_media":    c.ProcessedMedia,
		"image_count":        c.ImageCount,
		"video_count":        c.VideoCount,
		"audio_count":        c.AudioCount,
		"document_count":     c.DocumentCount,
		"unmatched_media":    c.UnmatchedMedia,
	})
}

// AppendLog concatenates in SQL so concurrent writers never lose lines.
func (r *importProgressRepository) AppendLog(ctx context.Context, id, line string) error {
	now := time.Now().UTC()
	entry := fmt.Sprintf("[%s] %s\n", now.Format("2006-01-02 15:04:05"), line)
	return r.db.WithContext(ctx).
		Model(&entities.ImportProgress{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"log":        gorm.Expr("COALESCE(log, '') || ?", entry),
			"updated_at": now,
		}).Error
}

func (r *importProgressRepository) IsCancelRequested(ctx context.Context, id string) (bool, error) {
	var p entities.ImportProgress
	err := r.db.WithContext(ctx).Select("cancel_requested").First(&p, "id = ?", id).Error
	if err != nil {
		return false, translate(err)
	}
	return p.CancelRequested, nil
}

func (r *importProgressRepository) RequestCancel(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]interface{}{"cancel_requested": true})
}

func (r *importProgressRepository) Complete(ctx context.Context, id string, summary []byte) error {
	return r.finish(ctx, id, map[string]interface{}{
		"status":  consts.StatusCompleted,
		"summary": datatypes.JSON(summary),
	})
}

func (r *importProgressRepository) Fail(ctx context.Context, id, message string) error {
	return r.finish(ctx, id, map[string]interface{}{
		"status":        consts.StatusFailed,
		"error_message": message,
	})
}

func (r *importProgressRepository) Cancel(ctx context.Context, id string) error {
	return r.finish(ctx, id, map[string]interface{}{"status": consts.StatusCancelled})
}

func (r *importProgressRepository) finish(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["completed_at"] = time.Now().UTC()
	return r.update(ctx, id, fields)
}

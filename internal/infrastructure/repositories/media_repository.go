package repositories

import (
	"context"
	"strings"

	"chat-importer/internal/domain/entities"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *ChatRepository) CreateMedia(ctx context.Context, m *entities.Media) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindMessageByMediaFilename returns the earliest message whose parsed media
// reference equals filename.
func (r *ChatRepository) FindMessageByMediaFilename(ctx context.Context, chatID, filename string) (*entities.Message, error) {
	var m entities.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND media_filename = ?", chatID, filename).
		Order("timestamp asc").Order("created_at asc").
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// FindFirstMessageContaining matches case-insensitively on every driver:
// SQLite's LIKE ignores ASCII case, Postgres' does not.
func (r *ChatRepository) FindFirstMessageContaining(ctx context.Context, chatID, substr string) (*entities.Message, error) {
	var m entities.Message
	err := r.db.WithContext(ctx).
		Where(`chat_id = ? AND LOWER(content) LIKE ? ESCAPE '\'`, chatID, "%"+likeEscaper.Replace(strings.ToLower(substr))+"%").
		Order("timestamp asc").Order("created_at asc").
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *ChatRepository) ListMedia(ctx context.Context, chatID string) ([]entities.Media, error) {
	var media []entities.Media
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("created_at asc").Find(&media).Error
	return media, err
}

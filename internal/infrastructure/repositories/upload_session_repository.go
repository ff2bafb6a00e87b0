package repositories

import (
	"context"
	"errors"
	"time"

	"chat-importer/internal/domain/entities"
	"chat-importer/internal/domain/repositories"

	"gorm.io/gorm"
)

type uploadSessionRepository struct {
	db *gorm.DB
}

func NewUploadSessionRepository(db *gorm.DB) repositories.UploadSessionRepository {
	return &uploadSessionRepository{db: db}
}

func (r *uploadSessionRepository) Create(ctx context.Context, s *entities.UploadSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *uploadSessionRepository) Get(ctx context.Context, id string) (*entities.UploadSession, error) {
	var s entities.UploadSession
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *uploadSessionRepository) GetByProgress(ctx context.Context, progressID string) (*entities.UploadSession, error) {
	var s entities.UploadSession
	if err := r.db.WithContext(ctx).First(&s, "progress_id = ?", progressID).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// IncrementReceived runs the increment and the read back in one transaction
// so the returned count includes this call's increment.
func (r *uploadSessionRepository) IncrementReceived(ctx context.Context, id string) (int, error) {
	var received int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.UploadSession{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"received_chunks": gorm.Expr("received_chunks + 1"),
				"updated_at":      time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return tx.Model(&entities.UploadSession{}).
			Select("received_chunks").
			Where("id = ?", id).
			Scan(&received).Error
	})
	return received, err
}

func (r *uploadSessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entities.UploadSession{}, "id = ?", id).Error
}

func (r *uploadSessionRepository) ListStale(ctx context.Context, updatedBefore time.Time) ([]entities.UploadSession, error) {
	var sessions []entities.UploadSession
	err := r.db.WithContext(ctx).
		Where("updated_at < ?", updatedBefore.UTC()).
		Order("updated_at asc").
		Find(&sessions).Error
	return sessions, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return err
}

package repositories

import (
	"context"
	"errors"
	"strings"

	"chat-importer/internal/domain/entities"
	"chat-importer/internal/domain/repositories"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateChat stores the chat and attaches its owner as a member.
func (r *ChatRepository) CreateChat(ctx context.Context, chat *entities.Chat, role string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		member := entities.ChatMember{ChatID: chat.ID, UserID: chat.OwnerID, Role: role}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	})
}

func (r *ChatRepository) GetChat(ctx context.Context, id string) (*entities.Chat, error) {
	var chat entities.Chat
	if err := r.db.WithContext(ctx).First(&chat, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &chat, nil
}

func (r *ChatRepository) WithinTransaction(ctx context.Context, fn func(tx repositories.ChatTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&chatTx{db: tx})
	})
}

func (r *ChatRepository) CountParticipants(ctx context.Context, chatID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.Participant{}).Where("chat_id = ?", chatID).Count(&n).Error
	return n, err
}

type chatTx struct {
	db *gorm.DB
}

func (t *chatTx) FindOrCreateParticipant(chatID, name string) (string, error) {
	p := entities.Participant{ChatID: chatID, Name: name}
	if err := t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil && !isDuplicate(err) {
		return "", err
	}

	var existing entities.Participant
	if err := t.db.Where("chat_id = ? AND name = ?", chatID, name).First(&existing).Error; err != nil {
		return "", translate(err)
	}
	return existing.ID, nil
}

func (t *chatTx) MessageExists(dedupHash string) (bool, error) {
	var n int64
	err := t.db.Model(&entities.Message{}).Where("dedup_hash = ?", dedupHash).Limit(1).Count(&n).Error
	return n > 0, err
}

func (t *chatTx) InsertMessage(m *entities.Message) error {
	if err := t.db.Create(m).Error; err != nil {
		if isDuplicate(err) {
			return repositories.ErrDuplicate
		}
		return err
	}
	return nil
}

// Nested uses a savepoint on the enclosing transaction.
func (t *chatTx) Nested(fn func(tx repositories.ChatTx) error) error {
	return t.db.Transaction(func(inner *gorm.DB) error {
		return fn(&chatTx{db: inner})
	})
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

var _ repositories.ChatStore = (*ChatRepository)(nil)

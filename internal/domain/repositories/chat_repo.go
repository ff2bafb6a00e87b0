package repositories

import (
	"context"

	"chat-importer/internal/domain/entities"
)

// ChatStore is the relational store of chats, participants, messages and media.
type ChatStore interface {
	CreateChat(ctx context.Context, chat *entities.Chat, role string) error
	GetChat(ctx context.Context, id string) (*entities.Chat, error)
	// WithinTransaction runs fn in one atomic transaction.
	WithinTransaction(ctx context.Context, fn func(tx ChatTx) error) error
	FindMessageByMediaFilename(ctx context.Context, chatID, filename string) (*entities.Message, error)
	// FindFirstMessageContaining returns the earliest message whose content
	// contains substr.
	FindFirstMessageContaining(ctx context.Context, chatID, substr string) (*entities.Message, error)
	CreateMedia(ctx context.Context, m *entities.Media) error
	ListMedia(ctx context.Context, chatID string) ([]entities.Media, error)
	CountParticipants(ctx context.Context, chatID string) (int64, error)
}

// ChatTx is the view of ChatStore inside a transaction.
type ChatTx interface {
	FindOrCreateParticipant(chatID, name string) (string, error)
	MessageExists(dedupHash string) (bool, error)
	// InsertMessage returns ErrDuplicate on a dedup hash collision.
	InsertMessage(m *entities.Message) error
	// Nested runs fn in a savepoint; an error rolls back only fn's writes.
	Nested(fn func(tx ChatTx) error) error
}

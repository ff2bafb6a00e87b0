package db

import (
	"chat-importer/internal/domain/entities"

	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate( //* yeni entity eklenirse buraya da eklenmeli
		&entities.UploadSession{},
		&entities.ImportProgress{},
		&entities.Chat{},
		&entities.ChatMember{},
		&entities.Participant{},
		&entities.Message{},
		&entities.Media{},
	)
}

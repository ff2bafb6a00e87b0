package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInitialSchema, downInitialSchema)
}

func upInitialSchema(ctx context.Context, tx *sql.Tx) error {
	statements := []struct {
		name string
		sql  string
	}{
		{"upload_sessions", `
	CREATE TABLE upload_sessions (
		id VARCHAR(36) PRIMARY KEY,
		progress_id VARCHAR(36) NOT NULL,
		user_id VARCHAR(255) NOT NULL,
		filename VARCHAR(255) NOT NULL,
		total_chunks INTEGER NOT NULL,
		received_chunks INTEGER NOT NULL DEFAULT 0,
		file_size BIGINT,
		chat_name VARCHAR(255),
		chat_description TEXT,
		checksum VARCHAR(64),
		temp_dir VARCHAR(500) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	CREATE INDEX idx_upload_sessions_progress_id ON upload_sessions (progress_id);
	CREATE INDEX idx_upload_sessions_user_id ON upload_sessions (user_id);`},

		{"import_progress", `
	CREATE TABLE import_progress (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		chat_id VARCHAR(36),
		chat_name VARCHAR(255),
		chat_description TEXT,
		source_path VARCHAR(1000),
		status VARCHAR(32) NOT NULL,
		total_messages INTEGER NOT NULL DEFAULT 0,
		processed_messages INTEGER NOT NULL DEFAULT 0,
		skipped_messages INTEGER NOT NULL DEFAULT 0,
		failed_messages INTEGER NOT NULL DEFAULT 0,
		total_media INTEGER NOT NULL DEFAULT 0,
		processed_media INTEGER NOT NULL DEFAULT 0,
		image_count INTEGER NOT NULL DEFAULT 0,
		video_count INTEGER NOT NULL DEFAULT 0,
		audio_count INTEGER NOT NULL DEFAULT 0,
		document_count INTEGER NOT NULL DEFAULT 0,
		unmatched_media INTEGER NOT NULL DEFAULT 0,
		log TEXT,
		error_message TEXT,
		cancel_requested BOOLEAN NOT NULL DEFAULT FALSE,
		attempts INTEGER NOT NULL DEFAULT 0,
		summary JSONB,
		started_at TIMESTAMP WITH TIME ZONE,
		completed_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	CREATE INDEX idx_import_progress_user_id ON import_progress (user_id);
	CREATE INDEX idx_import_progress_status ON import_progress (status);
	CREATE INDEX idx_import_progress_chat_id ON import_progress (chat_id);`},

		{"chats", `
	CREATE TABLE chats (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		owner_id VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	CREATE INDEX idx_chats_owner_id ON chats (owner_id);`},

		{"chat_members", `
	CREATE TABLE chat_members (
		chat_id VARCHAR(36) NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		user_id VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (chat_id, user_id)
	);`},

		{"participants", `
	CREATE TABLE participants (
		id VARCHAR(36) PRIMARY KEY,
		chat_id VARCHAR(36) NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL
	);
	CREATE UNIQUE INDEX idx_participant_chat_name ON participants (chat_id, name);`},

		{"messages", `
	CREATE TABLE messages (
		id VARCHAR(36) PRIMARY KEY,
		chat_id VARCHAR(36) NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		participant_id VARCHAR(36) REFERENCES participants(id) ON DELETE SET NULL,
		timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
		content TEXT,
		is_system_message BOOLEAN NOT NULL DEFAULT FALSE,
		has_media BOOLEAN NOT NULL DEFAULT FALSE,
		media_type VARCHAR(16),
		media_filename VARCHAR(255),
		dedup_hash CHAR(64) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	CREATE UNIQUE INDEX idx_messages_dedup_hash ON messages (dedup_hash);
	CREATE INDEX idx_message_chat_ts ON messages (chat_id, timestamp);
	CREATE INDEX idx_messages_participant_id ON messages (participant_id);
	CREATE INDEX idx_messages_media_filename ON messages (media_filename);`},

		{"media", `
	CREATE TABLE media (
		id VARCHAR(36) PRIMARY KEY,
		message_id VARCHAR(36) NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		chat_id VARCHAR(36) NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		category VARCHAR(16) NOT NULL,
		mime_type VARCHAR(127),
		filename VARCHAR(255) NOT NULL,
		storage_path VARCHAR(1000) NOT NULL,
		thumbnail_path VARCHAR(1000),
		size BIGINT,
		width INTEGER,
		height INTEGER,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	CREATE INDEX idx_media_message_id ON media (message_id);
	CREATE INDEX idx_media_chat_id ON media (chat_id);`},
	}

	for _, st := range statements {
		if _, err := tx.ExecContext(ctx, st.sql); err != nil {
			return fmt.Errorf("could not create %s table: %w", st.name, err)
		}
	}
	return nil
}

func downInitialSchema(ctx context.Context, tx *sql.Tx) error {
	// Tabloları ters sırada sil
	dropTables := []string{"media", "messages", "participants", "chat_members", "chats", "import_progress", "upload_sessions"}
	for _, table := range dropTables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)); err != nil {
			return fmt.Errorf("could not drop table %s: %w", table, err)
		}
	}
	return nil
}

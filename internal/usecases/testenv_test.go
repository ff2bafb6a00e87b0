package usecases

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"chat-importer/internal/domain/repositories"
	"chat-importer/internal/infrastructure/archive"
	"chat-importer/internal/infrastructure/db"
	infra "chat-importer/internal/infrastructure/repositories"
	"chat-importer/internal/infrastructure/storage"
	"chat-importer/internal/pkg/config"
	"chat-importer/internal/pkg/logger"

	"github.com/klauspost/compress/zip"
	"gorm.io/gorm"
)

type fakeQueue struct {
	mu       sync.Mutex
	ids      []string
	cleanups []string
	err      error
}

func (q *fakeQueue) EnqueueCleanup(_ context.Context, uploadID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cleanups = append(q.cleanups, uploadID)
	return nil
}

func (q *fakeQueue) EnqueueImport(_ context.Context, progressID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, progressID)
	return nil
}

type testEnv struct {
	db       *gorm.DB
	chunks   *infra.FileUploadRepository
	sessions repositories.UploadSessionRepository
	progress repositories.ImportProgressRepository
	chats    *infra.ChatRepository
	blobs    repositories.BlobStore
	queue    *fakeQueue
	workDir  string
	blobDir  string

	uploads  UploadService
	media    MediaService
	importer *importService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()

	database, err := db.NewSQLiteDB(filepath.Join(base, "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{
		db:       database,
		chunks:   infra.NewFileUploadRepository(filepath.Join(base, "tmp"), filepath.Join(base, "uploads")),
		sessions: infra.NewUploadSessionRepository(database),
		progress: infra.NewImportProgressRepository(database),
		chats:    infra.NewChatRepository(database),
		queue:    &fakeQueue{},
		workDir:  filepath.Join(base, "work"),
		blobDir:  filepath.Join(base, "blobs"),
	}
	os.MkdirAll(env.workDir, 0o755)
	env.blobs = storage.NewLocalStorage(env.blobDir)

	log := logger.Nop()
	env.uploads = NewUploadService(env.chunks, env.sessions, env.progress, env.queue,
		config.UploadConfig{LogEvery: 10}, log)
	env.media = NewMediaMatcher(env.chats, env.blobs,
		config.MediaConfig{Thumbnails: true, ThumbnailSize: 32, ThumbnailQuality: 80}, log)
	env.importer = NewImportService(env.progress, env.chats, archive.NewStager(env.workDir, log), env.media, env.uploads,
		config.ImportConfig{
			BatchSize:        500,
			MaxAttempts:      2,
			RetryDelay:       time.Millisecond,
			JobTimeout:       time.Minute,
			LogEveryBatches:  1,
			DeleteSourceFile: true,
		}, log).(*importService)
	return env
}

func writeZip(t *testing.T, dir string, files map[string][]byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(body); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, "export.zip")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for x := 0; x < 64; x++ {
		for y := 0; y < 48; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

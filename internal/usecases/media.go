package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"chat-importer/internal/domain/entities"
	"chat-importer/internal/domain/repositories"
	"chat-importer/internal/infrastructure/processor"
	"chat-importer/internal/pkg/config"
	"chat-importer/internal/pkg/logger"
	consts "chat-importer/pkg/constants"
	"chat-importer/pkg/file"
)

// MediaReport counts the outcome of one media pass.
type MediaReport struct {
	Total      int
	Processed  int
	Unmatched  int
	Failed     int
	ByCategory map[string]int
}

func (r *MediaReport) counters(c *entities.ImportCounters) {
	c.TotalMedia = r.Total
	c.ProcessedMedia = r.Processed
	c.UnmatchedMedia = r.Unmatched
	c.ImageCount = r.ByCategory[consts.MediaImage]
	c.VideoCount = r.ByCategory[consts.MediaVideo]
	c.AudioCount = r.ByCategory[consts.MediaAudio]
	c.DocumentCount = r.ByCategory[consts.MediaDocument]
}

type MediaService interface {
	Match(ctx context.Context, chatID, dir, transcriptPath string) (*MediaReport, error)
}

// mediaMatcher copies extracted files to blob storage and links each to the
// message that mentions it.
type mediaMatcher struct {
	chats repositories.ChatStore
	blobs repositories.BlobStore
	cfg   config.MediaConfig
	log   *logger.Logger
}

func NewMediaMatcher(chats repositories.ChatStore, blobs repositories.BlobStore, cfg config.MediaConfig, log *logger.Logger) MediaService {
	return &mediaMatcher{chats: chats, blobs: blobs, cfg: cfg, log: log.With("component", "media_matcher")}
}

func (m *mediaMatcher) Match(ctx context.Context, chatID, dir, transcriptPath string) (*MediaReport, error) {
	report := &MediaReport{ByCategory: map[string]int{}}

	var paths []string
	transcript := filepath.Clean(transcriptPath)
	// WalkDir lexical sırayla gezer
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() || filepath.Clean(path) == transcript {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk media dir: %w", err)
	}
	report.Total = len(paths)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		matched, err := m.matchFile(ctx, chatID, path, report)
		switch {
		case err != nil:
			report.Failed++
			m.log.Warn("media file failed", "chat_id", chatID, "file", filepath.Base(path), "error", err)
		case !matched:
			report.Unmatched++
			m.log.Debug("media file unmatched", "chat_id", chatID, "file", filepath.Base(path))
		}
	}
	return report, nil
}

func (m *mediaMatcher) matchFile(ctx context.Context, chatID, path string, report *MediaReport) (bool, error) {
	category, mimeType, err := file.DetectCategory(path)
	if err != nil {
		return false, err
	}
	base := filepath.Base(path)

	location, size, err := m.store(ctx, path, file.MediaKey(chatID, base), mimeType)
	if err != nil {
		return false, err
	}

	msg, err := m.findMessage(ctx, chatID, base)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, nil
	}

	media := &entities.Media{
		MessageID:   msg.ID,
		ChatID:      chatID,
		Category:    category,
		MimeType:    mimeType,
		Filename:    base,
		StoragePath: location,
		Size:        size,
	}
	if category == consts.MediaImage && m.cfg.Thumbnails && file.IsDecodableImage(mimeType) {
		m.thumbnail(ctx, chatID, path, media)
	}
	if err := m.chats.CreateMedia(ctx, media); err != nil {
		return false, fmt.Errorf("create media: %w", err)
	}

	report.Processed++
	report.ByCategory[category]++
	return true, nil
}

func (m *mediaMatcher) store(ctx context.Context, path, key, mimeType string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}
	// önceki deneme aynı dosyayı zaten yüklediyse tekrar gönderme
	if location, size, ok := m.blobs.Stat(ctx, key); ok && size == info.Size() {
		return location, size, nil
	}
	location, err := m.blobs.Put(ctx, key, f, info.Size(), mimeType)
	if err != nil {
		return "", 0, fmt.Errorf("store %s: %w", key, err)
	}
	return location, info.Size(), nil
}

// findMessage prefers the reference captured while parsing and falls back to
// the earliest message mentioning the file name.
func (m *mediaMatcher) findMessage(ctx context.Context, chatID, base string) (*entities.Message, error) {
	msg, err := m.chats.FindMessageByMediaFilename(ctx, chatID, base)
	if err == nil {
		return msg, nil
	}
	if !stderrors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	msg, err = m.chats.FindFirstMessageContaining(ctx, chatID, base)
	if err == nil {
		return msg, nil
	}
	if stderrors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return nil, err
}

// thumbnail hataları medya kaydını engellemez
func (m *mediaMatcher) thumbnail(ctx context.Context, chatID, path string, media *entities.Media) {
	thumb, err := processor.MakeThumbnail(path, processor.ThumbnailOption{
		Size:    m.cfg.ThumbnailSize,
		Quality: m.cfg.ThumbnailQuality,
	})
	if err != nil {
		m.log.Warn("thumbnail failed", "file", media.Filename, "error", err)
		return
	}
	media.Width, media.Height = thumb.Width, thumb.Height

	size := int64(thumb.Data.Len())
	location, err := m.blobs.Put(ctx, file.ThumbnailKey(chatID, media.Filename), thumb.Data, size, "image/jpeg")
	if err != nil {
		m.log.Warn("thumbnail store failed", "file", media.Filename, "error", err)
		return
	}
	media.ThumbnailPath = location
}

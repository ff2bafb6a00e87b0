package usecases

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chat-importer/internal/domain/repositories"
	"chat-importer/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CleanupReport counts what one janitor pass removed.
type CleanupReport struct {
	Sessions int `json:"sessions"`
	TempDirs int `json:"temp_dirs"`
	WorkDirs int `json:"work_dirs"`
}

type CleanupService interface {
	CleanupStaleSessions(ctx context.Context, maxAge time.Duration) (int, error)
	CleanupOldTempFiles(maxAge time.Duration) (int, error)
	CleanupOldWorkDirs(maxAge time.Duration) (int, error)
	RunOnce(ctx context.Context) CleanupReport
	Schedule(c *cron.Cron, spec string) (cron.EntryID, error)
}

type cleanupService struct {
	chunks   repositories.ChunkStore
	sessions repositories.UploadSessionRepository
	progress repositories.ImportProgressRepository
	workDir  string
	maxAge   time.Duration
	log      *logger.Logger
}

func NewCleanupService(
	chunks repositories.ChunkStore,
	sessions repositories.UploadSessionRepository,
	progress repositories.ImportProgressRepository,
	workDir string,
	maxAge time.Duration,
	log *logger.Logger,
) CleanupService {
	return &cleanupService{
		chunks:   chunks,
		sessions: sessions,
		progress: progress,
		workDir:  workDir,
		maxAge:   maxAge,
		log:      log.With("component", "janitor"),
	}
}

// CleanupStaleSessions removes upload sessions that saw no chunk for maxAge
// and fails their progress rows.
func (s *cleanupService) CleanupStaleSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	stale, err := s.sessions.ListStale(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, session := range stale {
		if err := s.chunks.CleanupTempFiles(session.ID); err != nil {
			s.log.Warn("stale session temp cleanup failed", "upload_id", session.ID, "error", err)
			continue
		}
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.log.Warn("stale session delete failed", "upload_id", session.ID, "error", err)
			continue
		}
		_ = s.progress.Fail(ctx, session.ProgressID, "upload abandoned")
		_ = s.progress.AppendLog(ctx, session.ProgressID, "Upload abandoned, chunks removed")
		removed++
	}
	return removed, nil
}

// CleanupOldTempFiles removes chunk directories older than maxAge.
func (s *cleanupService) CleanupOldTempFiles(maxAge time.Duration) (int, error) {
	return removeOlderThan(s.chunks.TempDir(), maxAge, func(string) bool { return true })
}

// CleanupOldWorkDirs removes extraction directories left by crashed workers.
func (s *cleanupService) CleanupOldWorkDirs(maxAge time.Duration) (int, error) {
	if s.workDir == "" {
		return 0, nil
	}
	return removeOlderThan(s.workDir, maxAge, func(name string) bool {
		return strings.HasPrefix(name, "import-")
	})
}

func removeOlderThan(root string, maxAge time.Duration, match func(name string) bool) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	now := time.Now()
	for _, entry := range entries {
		if !entry.IsDir() || !match(entry.Name()) {
			continue
		}
		dirPath := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return removed, fmt.Errorf("cannot stat %s: %w", dirPath, err)
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.RemoveAll(dirPath); err != nil {
			return removed, fmt.Errorf("cannot remove %s: %w", dirPath, err)
		}
		removed++
	}
	return removed, nil
}

func (s *cleanupService) RunOnce(ctx context.Context) CleanupReport {
	var report CleanupReport
	var err error

	if report.Sessions, err = s.CleanupStaleSessions(ctx, s.maxAge); err != nil {
		s.log.Error("stale session cleanup failed", "error", err)
	}
	if report.TempDirs, err = s.CleanupOldTempFiles(s.maxAge); err != nil {
		s.log.Error("temp dir cleanup failed", "error", err)
	}
	if report.WorkDirs, err = s.CleanupOldWorkDirs(s.maxAge); err != nil {
		s.log.Error("work dir cleanup failed", "error", err)
	}
	if report.Sessions+report.TempDirs+report.WorkDirs > 0 {
		s.log.Info("janitor pass", "sessions", report.Sessions, "temp_dirs", report.TempDirs, "work_dirs", report.WorkDirs)
	}
	return report
}

// Schedule registers the janitor on c. spec uses the seconds field.
func (s *cleanupService) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	})
}

package usecases

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chat-importer/internal/domain/entities"
	"chat-importer/internal/pkg/logger"
	consts "chat-importer/pkg/constants"

	"github.com/robfig/cron/v3"
)

func age(t *testing.T, path string, d time.Duration) {
	t.Helper()
	old := time.Now().Add(-d)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
}

func TestCleanupStaleSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resp := initiate(t, env, 2)

	// updated_at geriye çekilir
	env.db.Model(&entities.UploadSession{}).Where("id = ?", resp.UploadID).
		UpdateColumn("updated_at", time.Now().UTC().Add(-48*time.Hour))

	svc := NewCleanupService(env.chunks, env.sessions, env.progress, env.workDir, 24*time.Hour, logger.Nop())
	n, err := svc.CleanupStaleSessions(ctx, 24*time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("removed = %d, err = %v", n, err)
	}
	if env.chunks.WorkDirExists(resp.UploadID) {
		t.Fatal("stale work dir kept")
	}
	if p := mustProgress(t, env, resp.ProgressID); p.Status != consts.StatusFailed {
		t.Fatalf("status = %s", p.Status)
	}

	fresh := initiate(t, env, 1)
	if n, _ := svc.CleanupStaleSessions(ctx, 24*time.Hour); n != 0 {
		t.Fatal("fresh session removed")
	}
	if !env.chunks.WorkDirExists(fresh.UploadID) {
		t.Fatal("fresh work dir removed")
	}
}

func TestCleanupOldDirectories(t *testing.T) {
	env := newTestEnv(t)
	oldTemp := filepath.Join(env.chunks.TempDir(), "orphan")
	newTemp := filepath.Join(env.chunks.TempDir(), "active")
	oldWork := filepath.Join(env.workDir, "import-123")
	foreign := filepath.Join(env.workDir, "something-else")
	for _, d := range []string{oldTemp, newTemp, oldWork, foreign} {
		os.MkdirAll(d, 0o755)
	}
	age(t, oldTemp, 48*time.Hour)
	age(t, oldWork, 48*time.Hour)
	age(t, foreign, 48*time.Hour)

	svc := NewCleanupService(env.chunks, env.sessions, env.progress, env.workDir, 24*time.Hour, logger.Nop())
	report := svc.RunOnce(context.Background())
	if report.TempDirs != 1 || report.WorkDirs != 1 {
		t.Fatalf("report = %+v", report)
	}
	if _, err := os.Stat(oldTemp); !os.IsNotExist(err) {
		t.Fatal("old temp dir kept")
	}
	if _, err := os.Stat(newTemp); err != nil {
		t.Fatal("new temp dir removed")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Fatal("non-import dir in work dir removed")
	}
}

func TestCleanupSchedule(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCleanupService(env.chunks, env.sessions, env.progress, env.workDir, time.Hour, logger.Nop())
	c := cron.New(cron.WithSeconds())
	if _, err := svc.Schedule(c, "0 */5 * * * *"); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Fatal("janitor not registered")
	}
	if _, err := svc.Schedule(c, "not a spec"); err == nil {
		t.Fatal("invalid spec accepted")
	}
}

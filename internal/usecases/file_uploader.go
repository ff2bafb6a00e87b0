package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"chat-importer/internal/domain/dto"
	"chat-importer/internal/domain/entities"
	"chat-importer/internal/domain/mapper"
	"chat-importer/internal/domain/repositories"
	"chat-importer/internal/pkg/config"
	"chat-importer/internal/pkg/logger"
	consts "chat-importer/pkg/constants"
	"chat-importer/pkg/errors"
	"chat-importer/pkg/file"
	"chat-importer/pkg/helper"

	"github.com/google/uuid"
)

type UploadService interface {
	Initiate(ctx context.Context, userID string, req *dto.InitiateUploadRequest) (*dto.InitiateUploadResponse, error)
	UploadChunk(ctx context.Context, userID string, req *dto.UploadChunkRequestDTO, chunk io.Reader) (*dto.UploadChunkResponse, error)
	Finalize(ctx context.Context, userID string, req *dto.FinalizeUploadRequest) (*dto.FinalizeUploadResponse, error)
	Status(ctx context.Context, userID string, req *dto.UploadStatusRequestDTO) (*dto.UploadStatusResponse, error)
	Cancel(ctx context.Context, userID string, req *dto.CancelUploadRequestDTO) (*dto.CancelResponse, error)
	// DiscardForProgress drops the unfinished upload of an import, if any.
	DiscardForProgress(ctx context.Context, progressID string) error
}

type uploadService struct {
	chunks   repositories.ChunkStore
	sessions repositories.UploadSessionRepository
	progress repositories.ImportProgressRepository
	jobs     repositories.JobQueue
	cfg      config.UploadConfig
	log      *logger.Logger

	// finalize ve cancel aynı upload üzerinde yarışmasın
	locksMu sync.Mutex
	locks   map[string]*uploadLock
}

// uploadLock is removed from the map once nobody holds or waits for it.
type uploadLock struct {
	mu   sync.Mutex
	refs int
}

func NewUploadService(
	chunks repositories.ChunkStore,
	sessions repositories.UploadSessionRepository,
	progress repositories.ImportProgressRepository,
	jobs repositories.JobQueue,
	cfg config.UploadConfig,
	log *logger.Logger,
) UploadService {
	if cfg.LogEvery < 1 {
		cfg.LogEvery = 10
	}
	return &uploadService{
		chunks:   chunks,
		sessions: sessions,
		progress: progress,
		jobs:     jobs,
		cfg:      cfg,
		log:      log.With("component", "upload_service"),
		locks:    map[string]*uploadLock{},
	}
}

func (s *uploadService) lock(uploadID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[uploadID]
	if !ok {
		l = &uploadLock{}
		s.locks[uploadID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, uploadID)
		}
		s.locksMu.Unlock()
	}
}

func (s *uploadService) Initiate(ctx context.Context, userID string, req *dto.InitiateUploadRequest) (*dto.InitiateUploadResponse, error) {
	filename := helper.SanitizeFilename(req.Filename)
	if filename == "" {
		return nil, errors.ErrInvalidRequest(fmt.Errorf("filename is required"))
	}
	if req.TotalChunks < 1 {
		return nil, errors.ErrInvalidChunkCount(nil)
	}

	progress := &entities.ImportProgress{
		UserID:          userID,
		ChatName:        req.ChatName,
		ChatDescription: req.ChatDescription,
		Status:          consts.StatusUploading,
	}
	if err := s.progress.Create(ctx, progress); err != nil {
		return nil, errors.ErrInternal(err)
	}

	session := &entities.UploadSession{
		ID:              uuid.NewString(),
		ProgressID:      progress.ID,
		UserID:          userID,
		Filename:        filename,
		TotalChunks:     req.TotalChunks,
		FileSize:        req.FileSize,
		ChatName:        req.ChatName,
		ChatDescription: req.ChatDescription,
		Checksum:        req.Checksum,
	}
	dir, err := s.chunks.CreateWorkDir(session.ID)
	if err != nil {
		_ = s.progress.Fail(ctx, progress.ID, "could not create upload directory")
		return nil, errors.ErrInternal(err)
	}
	session.TempDir = dir
	if err := s.sessions.Create(ctx, session); err != nil {
		_ = s.chunks.CleanupTempFiles(session.ID)
		_ = s.progress.Fail(ctx, progress.ID, "could not create upload session")
		return nil, errors.ErrInternal(err)
	}

	s.appendLog(ctx, progress.ID, fmt.Sprintf("Upload started: %s, %d chunks, %s",
		filename, req.TotalChunks, helper.HumanBytes(req.FileSize)))
	s.log.Info("upload initiated", "upload_id", session.ID, "progress_id", progress.ID, "user_id", userID, "chunks", req.TotalChunks)

	return &dto.InitiateUploadResponse{UploadID: session.ID, ProgressID: progress.ID}, nil
}

// ownedSession loads the session and checks the caller owns it.
func (s *uploadService) ownedSession(ctx context.Context, userID, uploadID string) (*entities.UploadSession, error) {
	if uploadID == "" {
		return nil, errors.ErrInvalidRequest(fmt.Errorf("upload_id is required"))
	}
	session, err := s.sessions.Get(ctx, uploadID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrNotFound) {
			return nil, errors.ErrSessionNotFound(err)
		}
		return nil, errors.ErrInternal(err)
	}
	if session.UserID != userID {
		return nil, errors.ErrUnauthorized(nil)
	}
	return session, nil
}

func (s *uploadService) UploadChunk(ctx context.Context, userID string, req *dto.UploadChunkRequestDTO, chunk io.Reader) (*dto.UploadChunkResponse, error) {
	// Chunk index doğrulama
	idx, err := strconv.Atoi(req.ChunkIndex)
	if err != nil {
		return nil, errors.ErrInvalidChunk(err)
	}
	if chunk == nil {
		return nil, errors.ErrInvalidChunk(fmt.Errorf("chunk payload is missing"))
	}

	session, err := s.ownedSession(ctx, userID, req.UploadID)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= session.TotalChunks {
		return nil, errors.ErrInvalidChunk(fmt.Errorf("chunk index %d out of range [0,%d)", idx, session.TotalChunks))
	}
	if !s.chunks.WorkDirExists(session.ID) {
		return nil, errors.ErrSessionNotFound(fmt.Errorf("upload directory is gone"))
	}

	// Idempotent kontrol
	if s.chunks.ChunkExists(session.ID, idx) {
		return skippedChunk(session), nil
	}

	created, err := s.chunks.SaveChunk(session.ID, idx, chunk)
	if err != nil {
		if stderrors.Is(err, repositories.ErrNotFound) {
			return nil, errors.ErrSessionNotFound(err)
		}
		return nil, errors.ErrInvalidChunk(err)
	}
	if !created {
		// aynı index eşzamanlı yüklendi, sayaç diğer istek tarafından arttırıldı
		if fresh, err := s.sessions.Get(ctx, session.ID); err == nil {
			session = fresh
		}
		return skippedChunk(session), nil
	}

	received, err := s.sessions.IncrementReceived(ctx, session.ID)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}

	if received == 1 || received == session.TotalChunks || received%s.cfg.LogEvery == 0 {
		s.appendLog(ctx, session.ProgressID, fmt.Sprintf("Received chunk %d/%d (%d%%)",
			received, session.TotalChunks, helper.Percent(received, session.TotalChunks)))
	}

	return &dto.UploadChunkResponse{
		Success:        true,
		UploadedChunks: received,
		TotalChunks:    session.TotalChunks,
	}, nil
}

func skippedChunk(session *entities.UploadSession) *dto.UploadChunkResponse {
	return &dto.UploadChunkResponse{
		Success:        true,
		UploadedChunks: session.ReceivedChunks,
		TotalChunks:    session.TotalChunks,
		Skipped:        true,
	}
}

func (s *uploadService) Finalize(ctx context.Context, userID string, req *dto.FinalizeUploadRequest) (*dto.FinalizeUploadResponse, error) {
	unlock := s.lock(req.UploadID)
	defer unlock()

	session, err := s.ownedSession(ctx, userID, req.UploadID)
	if err != nil {
		return nil, err
	}
	if !s.chunks.WorkDirExists(session.ID) {
		return nil, errors.ErrSessionNotFound(fmt.Errorf("upload directory is gone"))
	}
	if p, err := s.progress.Get(ctx, session.ProgressID); err == nil && p.IsTerminal() {
		s.discardSession(ctx, session)
		return nil, errors.ErrAlreadyFinished(fmt.Errorf("import is %s", p.Status))
	}

	indexes, err := s.chunks.ListChunks(session.ID)
	if err != nil {
		return nil, errors.ErrFinalizeFailed(err)
	}
	if len(indexes) != session.TotalChunks {
		return nil, errors.ErrIncompleteUpload(session.TotalChunks, len(indexes))
	}

	dst := filepath.Join(s.chunks.UploadsDir(), session.ProgressID, session.Filename)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, errors.ErrFinalizeFailed(err)
	}
	size, err := s.chunks.MergeChunks(session.ID, indexes, dst)
	if err != nil {
		s.log.Error("merge failed", "upload_id", session.ID, "error", err)
		return nil, errors.ErrFinalizeFailed(err)
	}
	if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
		_ = os.Remove(dst)
		return nil, errors.ErrFinalizeFailed(fmt.Errorf("assembled file is missing or empty"))
	}

	if err := file.ValidateFileHash(dst, session.Checksum); err != nil {
		// chunklar birleştirme sırasında silindi, oturum kurtarılamaz
		_ = os.Remove(dst)
		s.discardSession(ctx, session)
		_ = s.progress.Fail(ctx, session.ProgressID, "checksum mismatch")
		return nil, errors.ErrChecksumMismatch(err)
	}

	chatName := session.ChatName
	if req.ChatName != "" {
		chatName = req.ChatName
	}
	chatDescription := session.ChatDescription
	if req.ChatDescription != "" {
		chatDescription = req.ChatDescription
	}
	if err := s.progress.MarkPending(ctx, session.ProgressID, dst, chatName, chatDescription); err != nil {
		if stderrors.Is(err, repositories.ErrNotActive) {
			// birleştirme sırasında iptal edildi
			_ = os.RemoveAll(filepath.Dir(dst))
			s.discardSession(ctx, session)
			return nil, errors.ErrAlreadyFinished(err)
		}
		return nil, errors.ErrInternal(err)
	}
	s.appendLog(ctx, session.ProgressID, fmt.Sprintf("Upload complete: %s (%s)", session.Filename, helper.HumanBytes(size)))

	s.discardSession(ctx, session)

	if err := s.jobs.EnqueueImport(ctx, session.ProgressID); err != nil {
		s.log.Error("enqueue import failed", "progress_id", session.ProgressID, "error", err)
		return nil, errors.ErrInternal(err)
	}
	s.log.Info("upload finalized", "upload_id", session.ID, "progress_id", session.ProgressID, "bytes", size)

	return &dto.FinalizeUploadResponse{
		Success:     true,
		ProgressID:  session.ProgressID,
		RedirectURL: "/imports/" + session.ProgressID,
	}, nil
}

// discardSession removes the session row and its chunk directory.
func (s *uploadService) discardSession(ctx context.Context, session *entities.UploadSession) {
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		s.log.Warn("session delete failed", "upload_id", session.ID, "error", err)
	}
	if err := s.chunks.CleanupTempFiles(session.ID); err != nil {
		s.log.Warn("temp cleanup failed, deferring to worker", "upload_id", session.ID, "error", err)
		if err := s.jobs.EnqueueCleanup(ctx, session.ID); err != nil {
			s.log.Warn("cleanup enqueue failed", "upload_id", session.ID, "error", err)
		}
	}
}

func (s *uploadService) Status(ctx context.Context, userID string, req *dto.UploadStatusRequestDTO) (*dto.UploadStatusResponse, error) {
	session, err := s.ownedSession(ctx, userID, req.UploadID)
	if err != nil {
		return nil, err
	}
	status := consts.StatusUploading
	if p, err := s.progress.Get(ctx, session.ProgressID); err == nil {
		status = p.Status
	}
	resp := mapper.SessionToStatusDTO(session, status)
	return &resp, nil
}

func (s *uploadService) Cancel(ctx context.Context, userID string, req *dto.CancelUploadRequestDTO) (*dto.CancelResponse, error) {
	unlock := s.lock(req.UploadID)
	defer unlock()

	session, err := s.ownedSession(ctx, userID, req.UploadID)
	if err != nil {
		return nil, err
	}
	s.discardSession(ctx, session)
	if err := s.progress.Cancel(ctx, session.ProgressID); err != nil && !stderrors.Is(err, repositories.ErrNotActive) {
		return nil, errors.ErrInternal(err)
	}
	s.appendLog(ctx, session.ProgressID, "Upload cancelled")
	s.log.Info("upload cancelled", "upload_id", session.ID)

	return &dto.CancelResponse{Status: consts.StatusCancelled, Message: "Upload cancelled"}, nil
}

func (s *uploadService) DiscardForProgress(ctx context.Context, progressID string) error {
	session, err := s.sessions.GetByProgress(ctx, progressID)
	if stderrors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	unlock := s.lock(session.ID)
	defer unlock()

	s.discardSession(ctx, session)
	s.log.Info("upload discarded", "upload_id", session.ID, "progress_id", progressID)
	return nil
}

func (s *uploadService) appendLog(ctx context.Context, progressID, line string) {
	if err := s.progress.AppendLog(ctx, progressID, line); err != nil {
		s.log.Warn("progress log append failed", "progress_id", progressID, "error", err)
	}
}

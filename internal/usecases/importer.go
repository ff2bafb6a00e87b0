package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chat-importer/internal/domain/dto"
	"chat-importer/internal/domain/entities"
	"chat-importer/internal/domain/mapper"
	"chat-importer/internal/domain/repositories"
	"chat-importer/internal/infrastructure/archive"
	"chat-importer/internal/parser"
	"chat-importer/internal/pkg/config"
	"chat-importer/internal/pkg/fileutils"
	"chat-importer/internal/pkg/logger"
	consts "chat-importer/pkg/constants"
	"chat-importer/pkg/errors"
	"chat-importer/pkg/helper"
)

const defaultChatName = "Imported chat"

type Stager interface {
	Stage(ctx context.Context, sourcePath string) (*archive.Staged, error)
}

// BatchReport is the per-record outcome of one committed batch.
type BatchReport struct {
	Inserted int
	Skipped  int
	Failed   int
	Errors   []*errors.RecordError
}

// UploadDiscarder drops the chunks of an import whose upload never finished.
type UploadDiscarder interface {
	DiscardForProgress(ctx context.Context, progressID string) error
}

type ImportService interface {
	// Process runs an import under the retry policy. It returns nil for
	// completed and cancelled imports.
	Process(ctx context.Context, progressID string) error
	// Run is a single attempt.
	Run(ctx context.Context, progressID string) error
	GetProgress(ctx context.Context, userID, progressID string) (*dto.ImportProgressResponse, error)
	CancelImport(ctx context.Context, userID, progressID string) (*dto.CancelResponse, error)
	ListMedia(ctx context.Context, userID, progressID string) (*dto.MediaListResponse, error)
}

type importService struct {
	progress repositories.ImportProgressRepository
	chats    repositories.ChatStore
	stager   Stager
	media    MediaService
	uploads  UploadDiscarder
	cfg      config.ImportConfig
	log      *logger.Logger

	// testlerde beklemeyi kısaltmak için değiştirilebilir
	sleep func(ctx context.Context, d time.Duration) error
}

func NewImportService(
	progress repositories.ImportProgressRepository,
	chats repositories.ChatStore,
	stager Stager,
	media MediaService,
	uploads UploadDiscarder,
	cfg config.ImportConfig,
	log *logger.Logger,
) ImportService {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 500
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.LogEveryBatches < 1 {
		cfg.LogEveryBatches = 1
	}
	return &importService{
		progress: progress,
		chats:    chats,
		stager:   stager,
		media:    media,
		uploads:  uploads,
		cfg:      cfg,
		log:      log.With("component", "import_service"),
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *importService) Process(parent context.Context, progressID string) error {
	log := s.log.With("progress_id", progressID)

	ctx := parent
	if s.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, s.cfg.JobTimeout)
		defer cancel()
	}

	p, err := s.progress.Get(ctx, progressID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrNotFound) {
			log.Warn("import job for unknown progress dropped")
			return nil
		}
		return err
	}
	if p.IsTerminal() {
		// at-least-once teslimat: aynı iş ikinci kez gelebilir
		log.Info("import already finished, skipping", "status", p.Status)
		if p.Status == consts.StatusCancelled {
			s.removeSource(p.SourcePath, log)
		}
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		n, err := s.progress.StartAttempt(ctx, progressID)
		if err != nil {
			if stderrors.Is(err, repositories.ErrNotFound) {
				return nil
			}
			lastErr = err
			break
		}
		log.Info("import attempt started", "attempt", n)

		lastErr = s.runSafe(ctx, progressID)
		if lastErr == nil {
			s.removeSource(p.SourcePath, log)
			return nil
		}
		if stderrors.Is(lastErr, errors.ErrCancelled) {
			s.finishCancelled(progressID, p.SourcePath, lastErr, log)
			return nil
		}
		if parent.Err() != nil {
			// kapanış: iş kuyrukta kalır, durum değiştirilmez
			log.Warn("import interrupted by shutdown", "error", lastErr)
			return parent.Err()
		}
		if ctx.Err() != nil {
			lastErr = fmt.Errorf("import timed out after %s: %w", s.cfg.JobTimeout, lastErr)
			break
		}

		log.Warn("import attempt failed", "attempt", attempt, "error", lastErr)
		s.appendLog(ctx, progressID, fmt.Sprintf("Attempt %d/%d failed: %v", attempt, s.cfg.MaxAttempts, lastErr))
		if attempt < s.cfg.MaxAttempts {
			if err := s.sleep(ctx, s.cfg.RetryDelay); err != nil {
				if parent.Err() != nil {
					return parent.Err()
				}
				break
			}
		}
	}

	s.finishFailed(progressID, p.SourcePath, lastErr, log)
	return lastErr
}

// runSafe turns a panic inside an attempt into an error.
func (s *importService) runSafe(ctx context.Context, progressID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewImportError("run", errors.CodePanic, fmt.Errorf("%v", r))
		}
	}()
	return s.Run(ctx, progressID)
}

// detached is used for terminal writes that must survive a timed out job context.
func detached() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func (s *importService) finishCancelled(progressID, source string, cause error, log *logger.Logger) {
	ctx, cancel := detached()
	defer cancel()
	if err := s.progress.Cancel(ctx, progressID); err != nil {
		log.Error("mark cancelled failed", "error", err)
	}
	s.appendLog(ctx, progressID, fmt.Sprintf("Import cancelled (%v); already imported messages are kept", cause))
	s.removeSource(source, log)
	log.Info("import cancelled")
}

func (s *importService) finishFailed(progressID, source string, cause error, log *logger.Logger) {
	ctx, cancel := detached()
	defer cancel()
	msg := "import failed"
	if cause != nil {
		msg = cause.Error()
	}
	if err := s.progress.Fail(ctx, progressID, msg); err != nil {
		log.Error("mark failed failed", "error", err)
	}
	s.appendLog(ctx, progressID, "Import failed: "+msg)
	s.removeSource(source, log)
	log.Error("import failed", "error", cause)
}

func (s *importService) removeSource(source string, log *logger.Logger) {
	if source == "" || !s.cfg.DeleteSourceFile {
		return
	}
	if err := os.Remove(source); err != nil && !os.IsNotExist(err) {
		log.Warn("source cleanup failed", "path", source, "error", err)
	}
	// UPLOADS_DIR/<progress_id> boşsa o da gider
	_ = os.Remove(filepath.Dir(source))
}

func (s *importService) Run(ctx context.Context, progressID string) error {
	log := s.log.With("progress_id", progressID)
	started := time.Now()

	p, err := s.progress.Get(ctx, progressID)
	if err != nil {
		return errors.NewImportError(consts.StatusPending, errors.CodeStore, err)
	}
	if _, err := os.Stat(p.SourcePath); err != nil {
		return errors.NewImportError(consts.StatusPending, errors.CodeSourceMissing, err)
	}

	var counters entities.ImportCounters

	// extracting
	isZip, err := archive.IsZip(p.SourcePath)
	if err != nil {
		return errors.NewImportError(consts.StatusExtracting, errors.CodeArchiveOpen, err)
	}
	if isZip {
		if err := s.checkpoint(ctx, progressID, consts.StatusExtracting); err != nil {
			return err
		}
	}
	staged, err := s.stager.Stage(ctx, p.SourcePath)
	if err != nil {
		code := errors.CodeArchiveExtract
		if stderrors.Is(err, errors.ErrNoTranscript) {
			code = errors.CodeNoTranscript
		}
		return errors.NewImportError(consts.StatusExtracting, code, err)
	}
	// çıkarma dizini her denemenin sonunda silinir
	defer fileutils.RemoveQuiet(staged.Dir)
	if staged.Archive {
		s.appendLog(ctx, progressID, fmt.Sprintf("Extracted %d files (%s)", staged.FileCount, helper.HumanBytes(staged.TotalBytes)))
	}

	// parsing
	if err := s.checkpoint(ctx, progressID, consts.StatusParsing); err != nil {
		return err
	}
	records, err := s.parse(ctx, progressID, staged.TranscriptPath)
	if err != nil {
		return err
	}
	counters.TotalMessages = len(records)
	if err := s.progress.UpdateCounters(ctx, progressID, counters); err != nil {
		return errors.NewImportError(consts.StatusParsing, errors.CodeStore, err)
	}

	// creating_chat
	if err := s.checkpoint(ctx, progressID, consts.StatusCreatingChat); err != nil {
		return err
	}
	chatID, err := s.ensureChat(ctx, p, log)
	if err != nil {
		return err
	}

	// importing_messages
	if err := s.checkpoint(ctx, progressID, consts.StatusImportingMessages); err != nil {
		return err
	}
	participants := make(map[string]string)
	if err := s.importMessages(ctx, progressID, chatID, records, participants, &counters); err != nil {
		return err
	}

	// processing_media
	var mediaReport *MediaReport
	if staged.HasMedia() {
		if err := s.checkpoint(ctx, progressID, consts.StatusProcessingMedia); err != nil {
			return err
		}
		mediaReport, err = s.media.Match(ctx, chatID, staged.Dir, staged.TranscriptPath)
		if err != nil {
			return errors.NewImportError(consts.StatusProcessingMedia, errors.CodeStore, err)
		}
		mediaReport.counters(&counters)
		if err := s.progress.UpdateCounters(ctx, progressID, counters); err != nil {
			return errors.NewImportError(consts.StatusProcessingMedia, errors.CodeStore, err)
		}
		s.appendLog(ctx, progressID, fmt.Sprintf(
			"Media processed: %d of %d (image %d, video %d, audio %d, document %d), %d unmatched, %d failed",
			mediaReport.Processed, mediaReport.Total, counters.ImageCount, counters.VideoCount,
			counters.AudioCount, counters.DocumentCount, mediaReport.Unmatched, mediaReport.Failed))
	}

	// completed
	summary := s.summary(ctx, p, chatID, counters, mediaReport, time.Since(started))
	raw, err := json.Marshal(summary)
	if err != nil {
		return errors.NewImportError(consts.StatusCompleted, errors.CodeStore, err)
	}
	if err := s.progress.Complete(ctx, progressID, raw); err != nil {
		return errors.NewImportError(consts.StatusCompleted, errors.CodeStore, err)
	}
	s.appendLog(ctx, progressID, fmt.Sprintf("Import completed: %d inserted, %d skipped, %d failed in %s",
		summary.InsertedMessages, summary.SkippedMessages, summary.FailedMessages, time.Since(started).Round(time.Millisecond)))
	log.Info("import completed", "chat_id", chatID, "messages", summary.InsertedMessages, "skipped", summary.SkippedMessages)
	return nil
}

// checkpoint is the cancellation safe point at the start of a stage.
func (s *importService) checkpoint(ctx context.Context, progressID, status string) error {
	if err := s.checkCancelled(ctx, progressID, status); err != nil {
		return err
	}
	if err := s.progress.SetStatus(ctx, progressID, status); err != nil {
		return errors.NewImportError(status, errors.CodeStore, err)
	}
	return nil
}

func (s *importService) checkCancelled(ctx context.Context, progressID, stage string) error {
	cancelled, err := s.progress.IsCancelRequested(ctx, progressID)
	if err != nil {
		return errors.NewImportError(stage, errors.CodeStore, err)
	}
	if cancelled {
		return fmt.Errorf("before %s: %w", stage, errors.ErrCancelled)
	}
	return nil
}

func (s *importService) parse(ctx context.Context, progressID, path string) ([]parser.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewImportError(consts.StatusParsing, errors.CodeSourceMissing, err)
	}
	defer f.Close()

	start := time.Now()
	records, stats, err := parser.ParseWithStats(f)
	if err != nil {
		return nil, errors.NewImportError(consts.StatusParsing, errors.CodeSourceMissing, err)
	}
	if len(records) == 0 {
		return nil, errors.NewImportError(consts.StatusParsing, errors.CodeNoMessages, nil)
	}
	elapsed := time.Since(start)
	var rate float64
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(len(records)) / secs
	}
	s.appendLog(ctx, progressID, fmt.Sprintf("Parsed %d messages from %d lines in %s (%.0f msg/s)",
		len(records), stats.Lines, elapsed.Round(time.Millisecond), rate))
	return records, nil
}

// ensureChat reuses the chat of an earlier attempt so retries keep
// deduplicating against the same chat.
func (s *importService) ensureChat(ctx context.Context, p *entities.ImportProgress, log *logger.Logger) (string, error) {
	if p.ChatID != nil && *p.ChatID != "" {
		chat, err := s.chats.GetChat(ctx, *p.ChatID)
		if err == nil {
			s.appendLog(ctx, p.ID, "Reusing chat "+chat.Name)
			return chat.ID, nil
		}
		if !stderrors.Is(err, repositories.ErrNotFound) {
			return "", errors.NewImportError(consts.StatusCreatingChat, errors.CodeStore, err)
		}
		log.Warn("chat of previous attempt is gone, creating a new one", "chat_id", *p.ChatID)
	}

	name := p.ChatName
	if name == "" {
		name = defaultChatName
	}
	chat := &entities.Chat{Name: name, Description: p.ChatDescription, OwnerID: p.UserID}
	if err := s.chats.CreateChat(ctx, chat, consts.ChatRoleOwner); err != nil {
		return "", errors.NewImportError(consts.StatusCreatingChat, errors.CodeStore, err)
	}
	if err := s.progress.SetChatID(ctx, p.ID, chat.ID); err != nil {
		return "", errors.NewImportError(consts.StatusCreatingChat, errors.CodeStore, err)
	}
	s.appendLog(ctx, p.ID, "Created chat "+name)
	return chat.ID, nil
}

func (s *importService) importMessages(
	ctx context.Context,
	progressID, chatID string,
	records []parser.Record,
	participants map[string]string,
	counters *entities.ImportCounters,
) error {
	total := len(records)
	batches := 0
	for start := 0; start < total; start += s.cfg.BatchSize {
		if start > 0 {
			if err := s.checkCancelled(ctx, progressID, consts.StatusImportingMessages); err != nil {
				return err
			}
		}
		end := start + s.cfg.BatchSize
		if end > total {
			end = total
		}

		report, err := s.importBatch(ctx, chatID, records[start:end], start, participants)
		if err != nil {
			return errors.NewImportError(consts.StatusImportingMessages, errors.CodeStore, err)
		}
		batches++

		counters.ProcessedMessages += report.Inserted + report.Skipped
		counters.SkippedMessages += report.Skipped
		counters.FailedMessages += report.Failed
		if err := s.progress.UpdateCounters(ctx, progressID, *counters); err != nil {
			return errors.NewImportError(consts.StatusImportingMessages, errors.CodeStore, err)
		}

		for _, recErr := range report.Errors {
			s.log.Warn("message not imported", "progress_id", progressID, "index", recErr.Index, "error", recErr.Err)
		}
		if report.Failed > 0 {
			s.appendLog(ctx, progressID, fmt.Sprintf("%d messages in batch %d could not be stored, first error: %v",
				report.Failed, batches, report.Errors[0]))
		}
		if batches%s.cfg.LogEveryBatches == 0 || end == total {
			s.appendLog(ctx, progressID, fmt.Sprintf("Imported %d/%d messages (%d%%), %d skipped, %d failed",
				counters.ProcessedMessages, total, helper.Percent(counters.ProcessedMessages, total),
				counters.SkippedMessages, counters.FailedMessages))
		}
	}
	return nil
}

// importBatch stores one batch in a single transaction. Each message runs in
// its own savepoint so a failing record is rolled back alone.
func (s *importService) importBatch(
	ctx context.Context,
	chatID string,
	records []parser.Record,
	offset int,
	participants map[string]string,
) (*BatchReport, error) {
	var report *BatchReport
	// batch geri alınırsa yeni katılımcılar önbelleğe yazılmamalı
	created := make(map[string]string)

	err := s.chats.WithinTransaction(ctx, func(tx repositories.ChatTx) error {
		report = &BatchReport{}
		for i := range records {
			rec := &records[i]

			participantID, err := resolveParticipant(tx, chatID, rec.Sender, participants, created)
			if err != nil {
				report.Failed++
				report.Errors = append(report.Errors, &errors.RecordError{Index: offset + i, Err: err})
				continue
			}

			msg := buildMessage(chatID, rec, participantID)
			var skipped bool
			err = tx.Nested(func(tx repositories.ChatTx) error {
				exists, err := tx.MessageExists(msg.DedupHash)
				if err != nil {
					return err
				}
				if exists {
					skipped = true
					return nil
				}
				return tx.InsertMessage(msg)
			})
			switch {
			case err == nil && skipped:
				report.Skipped++
			case err == nil:
				report.Inserted++
			case stderrors.Is(err, repositories.ErrDuplicate):
				report.Skipped++
			default:
				report.Failed++
				report.Errors = append(report.Errors, &errors.RecordError{Index: offset + i, Err: err})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for name, id := range created {
		participants[name] = id
	}
	return report, nil
}

func resolveParticipant(tx repositories.ChatTx, chatID, name string, cache, created map[string]string) (*string, error) {
	if name == "" {
		return nil, nil
	}
	if id, ok := cache[name]; ok {
		return &id, nil
	}
	if id, ok := created[name]; ok {
		return &id, nil
	}
	var id string
	err := tx.Nested(func(tx repositories.ChatTx) error {
		var err error
		id, err = tx.FindOrCreateParticipant(chatID, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("participant %q: %w", name, err)
	}
	created[name] = id
	return &id, nil
}

func buildMessage(chatID string, rec *parser.Record, participantID *string) *entities.Message {
	return &entities.Message{
		ChatID:          chatID,
		ParticipantID:   participantID,
		Timestamp:       rec.Timestamp.UTC(),
		Content:         rec.Content,
		IsSystemMessage: rec.IsSystem,
		HasMedia:        rec.HasMedia,
		MediaType:       rec.MediaType,
		MediaFilename:   rec.MediaFilename,
		DedupHash:       DedupHash(chatID, rec.Timestamp, rec.Sender, rec.Content),
	}
}

// DedupHash fingerprints a message; identical tuples always collide.
func DedupHash(chatID string, ts time.Time, participant, content string) string {
	h := sha256.New()
	h.Write([]byte(chatID))
	h.Write([]byte{0x1f})
	h.Write([]byte(ts.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte{0x1f})
	h.Write([]byte(participant))
	h.Write([]byte{0x1f})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

func (s *importService) summary(
	ctx context.Context,
	p *entities.ImportProgress,
	chatID string,
	c entities.ImportCounters,
	media *MediaReport,
	elapsed time.Duration,
) entities.ImportSummary {
	out := entities.ImportSummary{
		ChatID:           chatID,
		TotalMessages:    c.TotalMessages,
		InsertedMessages: c.ProcessedMessages - c.SkippedMessages,
		SkippedMessages:  c.SkippedMessages,
		FailedMessages:   c.FailedMessages,
		ProcessedMedia:   c.ProcessedMedia,
		UnmatchedMedia:   c.UnmatchedMedia,
		Attempts:         p.Attempts,
		DurationSeconds:  elapsed.Seconds(),
	}
	if media != nil {
		out.FailedMedia = media.Failed
	}
	if n, err := s.chats.CountParticipants(ctx, chatID); err == nil {
		out.Participants = int(n)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		out.MessagesPerSecond = float64(out.InsertedMessages+out.SkippedMessages) / secs
	}
	return out
}

func (s *importService) appendLog(ctx context.Context, progressID, line string) {
	if err := s.progress.AppendLog(ctx, progressID, line); err != nil {
		s.log.Warn("progress log append failed", "progress_id", progressID, "error", err)
	}
}

// ownedProgress loads the progress row and checks the caller owns it.
func (s *importService) ownedProgress(ctx context.Context, userID, progressID string) (*entities.ImportProgress, error) {
	p, err := s.progress.Get(ctx, progressID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrNotFound) {
			return nil, errors.ErrNotFound(err)
		}
		return nil, errors.ErrInternal(err)
	}
	if p.UserID != userID {
		return nil, errors.ErrUnauthorized(nil)
	}
	return p, nil
}

func (s *importService) GetProgress(ctx context.Context, userID, progressID string) (*dto.ImportProgressResponse, error) {
	p, err := s.ownedProgress(ctx, userID, progressID)
	if err != nil {
		return nil, err
	}
	resp := mapper.ProgressToDTO(p)
	return &resp, nil
}

// CancelImport sets the cancellation flag. An import whose upload has not
// been finalized yet is cancelled at once; a running one stops at its next
// safe point.
func (s *importService) CancelImport(ctx context.Context, userID, progressID string) (*dto.CancelResponse, error) {
	p, err := s.ownedProgress(ctx, userID, progressID)
	if err != nil {
		return nil, err
	}
	if p.IsTerminal() {
		return nil, errors.ErrAlreadyFinished(fmt.Errorf("status is %s", p.Status))
	}
	if err := s.progress.RequestCancel(ctx, progressID); err != nil {
		return nil, cancelErr(err)
	}
	if p.Status == consts.StatusUploading {
		if err := s.progress.Cancel(ctx, progressID); err != nil {
			return nil, cancelErr(err)
		}
		if s.uploads != nil {
			if err := s.uploads.DiscardForProgress(ctx, progressID); err != nil {
				s.log.Warn("upload discard failed", "progress_id", progressID, "error", err)
			}
		}
		s.appendLog(ctx, progressID, "Import cancelled before upload finished")
		return &dto.CancelResponse{Status: consts.StatusCancelled, Message: "Import cancelled"}, nil
	}
	s.appendLog(ctx, progressID, "Cancellation requested")
	s.log.Info("import cancel requested", "progress_id", progressID, "status", p.Status)
	return &dto.CancelResponse{Status: consts.StatusCancelRequested, Message: "Import will stop at the next safe point"}, nil
}

// cancelErr maps a lost race with the worker to already_finished.
func cancelErr(err error) error {
	if stderrors.Is(err, repositories.ErrNotActive) {
		return errors.ErrAlreadyFinished(err)
	}
	return errors.ErrInternal(err)
}

// ListMedia returns the media stored for the chat of an import.
func (s *importService) ListMedia(ctx context.Context, userID, progressID string) (*dto.MediaListResponse, error) {
	p, err := s.ownedProgress(ctx, userID, progressID)
	if err != nil {
		return nil, err
	}
	out := &dto.MediaListResponse{Items: []dto.MediaResponse{}}
	if p.ChatID == nil {
		return out, nil
	}
	out.ChatID = *p.ChatID
	media, err := s.chats.ListMedia(ctx, *p.ChatID)
	if err != nil {
		return nil, errors.ErrInternal(err)
	}
	for i := range media {
		out.Items = append(out.Items, mapper.MediaToDTO(&media[i]))
	}
	return out, nil
}

var _ Stager = (*archive.Stager)(nil)

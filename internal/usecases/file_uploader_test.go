package usecases

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"chat-importer/internal/domain/dto"
	"chat-importer/internal/domain/repositories"
	consts "chat-importer/pkg/constants"
	fe "chat-importer/pkg/errors"
)

func uploadCode(t *testing.T, err error) string {
	t.Helper()
	var ue *fe.UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	return ue.Code
}

func initiate(t *testing.T, env *testEnv, chunks int) *dto.InitiateUploadResponse {
	t.Helper()
	resp, err := env.uploads.Initiate(context.Background(), "alice", &dto.InitiateUploadRequest{
		Filename:    "export.zip",
		TotalChunks: chunks,
		FileSize:    int64(chunks * 4),
		ChatName:    "Family",
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	return resp
}

func sendChunk(t *testing.T, env *testEnv, uploadID string, idx int, body string) *dto.UploadChunkResponse {
	t.Helper()
	resp, err := env.uploads.UploadChunk(context.Background(), "alice",
		&dto.UploadChunkRequestDTO{UploadID: uploadID, ChunkIndex: strconv.Itoa(idx)}, strings.NewReader(body))
	if err != nil {
		t.Fatalf("chunk %d: %v", idx, err)
	}
	return resp
}

func TestInitiateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.uploads.Initiate(ctx, "alice", &dto.InitiateUploadRequest{Filename: "a.zip", TotalChunks: 0})
	if code := uploadCode(t, err); code != fe.CodeInvalidChunkCount {
		t.Fatalf("code = %s", code)
	}
	_, err = env.uploads.Initiate(ctx, "alice", &dto.InitiateUploadRequest{Filename: "", TotalChunks: 1})
	if code := uploadCode(t, err); code != fe.CodeInvalidRequest {
		t.Fatalf("code = %s", code)
	}

	resp := initiate(t, env, 3)
	p, err := env.progress.Get(ctx, resp.ProgressID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != consts.StatusUploading || p.UserID != "alice" {
		t.Fatalf("progress = %+v", p)
	}
	if !env.chunks.WorkDirExists(resp.UploadID) {
		t.Fatal("work dir not created")
	}
}

func TestUploadChunkIdempotent(t *testing.T) {
	env := newTestEnv(t)
	resp := initiate(t, env, 3)

	first := sendChunk(t, env, resp.UploadID, 1, "bbbb")
	if first.UploadedChunks != 1 || first.Skipped {
		t.Fatalf("first = %+v", first)
	}
	again := sendChunk(t, env, resp.UploadID, 1, "XXXX")
	if again.UploadedChunks != 1 || !again.Skipped {
		t.Fatalf("retry = %+v", again)
	}
}

func TestUploadChunkConcurrentSameIndexCountsOnce(t *testing.T) {
	env := newTestEnv(t)
	resp := initiate(t, env, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.uploads.UploadChunk(context.Background(), "alice",
				&dto.UploadChunkRequestDTO{UploadID: resp.UploadID, ChunkIndex: "0"}, strings.NewReader("aaaa"))
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	status, err := env.uploads.Status(context.Background(), "alice", &dto.UploadStatusRequestDTO{UploadID: resp.UploadID})
	if err != nil {
		t.Fatal(err)
	}
	if status.UploadedChunks != 1 || status.TotalChunks != 2 || status.Status != consts.StatusUploading {
		t.Fatalf("status = %+v", status)
	}
}

func TestUploadChunkErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resp := initiate(t, env, 2)

	cases := []struct {
		name    string
		user    string
		req     dto.UploadChunkRequestDTO
		nilBody bool
		code    string
	}{
		{"bad index", "alice", dto.UploadChunkRequestDTO{UploadID: resp.UploadID, ChunkIndex: "x"}, false, fe.CodeInvalidChunk},
		{"out of range", "alice", dto.UploadChunkRequestDTO{UploadID: resp.UploadID, ChunkIndex: "2"}, false, fe.CodeInvalidChunk},
		{"negative", "alice", dto.UploadChunkRequestDTO{UploadID: resp.UploadID, ChunkIndex: "-1"}, false, fe.CodeInvalidChunk},
		{"no payload", "alice", dto.UploadChunkRequestDTO{UploadID: resp.UploadID, ChunkIndex: "0"}, true, fe.CodeInvalidChunk},
		{"unknown session", "alice", dto.UploadChunkRequestDTO{UploadID: "missing", ChunkIndex: "0"}, false, fe.CodeSessionNotFound},
		{"not owner", "mallory", dto.UploadChunkRequestDTO{UploadID: resp.UploadID, ChunkIndex: "0"}, false, fe.CodeUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			var err error
			if tc.nilBody {
				_, err = env.uploads.UploadChunk(ctx, tc.user, &req, nil)
			} else {
				_, err = env.uploads.UploadChunk(ctx, tc.user, &req, strings.NewReader("data"))
			}
			if code := uploadCode(t, err); code != tc.code {
				t.Fatalf("code = %s, want %s", code, tc.code)
			}
		})
	}

	// çalışma dizini silinirse oturum bulunamaz
	os.RemoveAll(env.chunks.TempDir())
	_, err := env.uploads.UploadChunk(ctx, "alice",
		&dto.UploadChunkRequestDTO{UploadID: resp.UploadID, ChunkIndex: "0"}, strings.NewReader("data"))
	if code := uploadCode(t, err); code != fe.CodeSessionNotFound {
		t.Fatalf("code = %s", code)
	}
}

func TestFinalizeIncomplete(t *testing.T) {
	env := newTestEnv(t)
	resp := initiate(t, env, 3)
	sendChunk(t, env, resp.UploadID, 0, "aaaa")
	sendChunk(t, env, resp.UploadID, 2, "cccc")

	_, err := env.uploads.Finalize(context.Background(), "alice", &dto.FinalizeUploadRequest{UploadID: resp.UploadID})
	var ue *fe.UploadError
	if !errors.As(err, &ue) || ue.Code != fe.CodeIncompleteUpload {
		t.Fatalf("expected incomplete upload, got %v", err)
	}
	if ue.Data["expected"] != 3 || ue.Data["received"] != 2 {
		t.Fatalf("data = %v", ue.Data)
	}
	if len(env.queue.ids) != 0 {
		t.Fatal("import enqueued for incomplete upload")
	}
}

func TestFinalizeAssemblesInIndexOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resp := initiate(t, env, 3)

	// ters sırada yükle
	sendChunk(t, env, resp.UploadID, 2, "cccc")
	sendChunk(t, env, resp.UploadID, 0, "aaaa")
	last := sendChunk(t, env, resp.UploadID, 1, "bbbb")
	if last.UploadedChunks != 3 {
		t.Fatalf("uploaded = %d", last.UploadedChunks)
	}

	out, err := env.uploads.Finalize(ctx, "alice", &dto.FinalizeUploadRequest{
		UploadID: resp.UploadID,
		ChatName: "Renamed",
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !out.Success || out.ProgressID != resp.ProgressID || out.RedirectURL != "/imports/"+resp.ProgressID {
		t.Fatalf("finalize response = %+v", out)
	}

	p, err := env.progress.Get(ctx, resp.ProgressID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != consts.StatusPending || p.ChatName != "Renamed" {
		t.Fatalf("progress = %+v", p)
	}
	data, err := os.ReadFile(p.SourcePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "aaaabbbbcccc" {
		t.Fatalf("assembled = %q", data)
	}
	if env.chunks.WorkDirExists(resp.UploadID) {
		t.Fatal("work dir not removed")
	}
	if len(env.queue.ids) != 1 || env.queue.ids[0] != resp.ProgressID {
		t.Fatalf("enqueued = %v", env.queue.ids)
	}
	if !strings.Contains(p.Log, "Received chunk 1/3") || !strings.Contains(p.Log, "Received chunk 3/3 (100%)") {
		t.Fatalf("log = %q", p.Log)
	}

	_, err = env.uploads.Status(ctx, "alice", &dto.UploadStatusRequestDTO{UploadID: resp.UploadID})
	if code := uploadCode(t, err); code != fe.CodeSessionNotFound {
		t.Fatalf("status after finalize: %s", code)
	}
}

func TestFinalizeChecksum(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sum := sha256.Sum256([]byte("hello"))
	good, err := env.uploads.Initiate(ctx, "alice", &dto.InitiateUploadRequest{
		Filename: "chat.txt", TotalChunks: 1, Checksum: hex.EncodeToString(sum[:]),
	})
	if err != nil {
		t.Fatal(err)
	}
	sendChunk(t, env, good.UploadID, 0, "hello")
	if _, err := env.uploads.Finalize(ctx, "alice", &dto.FinalizeUploadRequest{UploadID: good.UploadID}); err != nil {
		t.Fatalf("finalize with valid checksum: %v", err)
	}

	bad, _ := env.uploads.Initiate(ctx, "alice", &dto.InitiateUploadRequest{
		Filename: "chat.txt", TotalChunks: 1, Checksum: hex.EncodeToString(sum[:]),
	})
	sendChunk(t, env, bad.UploadID, 0, "tampered")
	_, err = env.uploads.Finalize(ctx, "alice", &dto.FinalizeUploadRequest{UploadID: bad.UploadID})
	if code := uploadCode(t, err); code != fe.CodeChecksumMismatch {
		t.Fatalf("code = %s", code)
	}
	p, _ := env.progress.Get(ctx, bad.ProgressID)
	if p.Status != consts.StatusFailed {
		t.Fatalf("status = %s", p.Status)
	}
}

func TestFinalizeEnqueueFailure(t *testing.T) {
	env := newTestEnv(t)
	env.queue.err = errors.New("redis down")
	resp := initiate(t, env, 1)
	sendChunk(t, env, resp.UploadID, 0, "data")

	_, err := env.uploads.Finalize(context.Background(), "alice", &dto.FinalizeUploadRequest{UploadID: resp.UploadID})
	if code := uploadCode(t, err); code != fe.CodeInternal {
		t.Fatalf("code = %s", code)
	}
}

func TestCancelUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resp := initiate(t, env, 2)
	sendChunk(t, env, resp.UploadID, 0, "aaaa")

	if _, err := env.uploads.Cancel(ctx, "mallory", &dto.CancelUploadRequestDTO{UploadID: resp.UploadID}); uploadCode(t, err) != fe.CodeUnauthorized {
		t.Fatal("non-owner could cancel")
	}

	out, err := env.uploads.Cancel(ctx, "alice", &dto.CancelUploadRequestDTO{UploadID: resp.UploadID})
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != consts.StatusCancelled {
		t.Fatalf("cancel = %+v", out)
	}
	if env.chunks.WorkDirExists(resp.UploadID) {
		t.Fatal("work dir survived cancel")
	}
	p, _ := env.progress.Get(ctx, resp.ProgressID)
	if p.Status != consts.StatusCancelled {
		t.Fatalf("progress status = %s", p.Status)
	}
	_, err = env.uploads.UploadChunk(ctx, "alice",
		&dto.UploadChunkRequestDTO{UploadID: resp.UploadID, ChunkIndex: "1"}, bytes.NewReader([]byte("x")))
	if code := uploadCode(t, err); code != fe.CodeSessionNotFound {
		t.Fatalf("code = %s", code)
	}
}

func TestCancelImportWhileUploadingDropsSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resp := initiate(t, env, 2)
	sendChunk(t, env, resp.UploadID, 0, "aaaa")
	sendChunk(t, env, resp.UploadID, 1, "bbbb")

	out, err := env.importer.CancelImport(ctx, "alice", resp.ProgressID)
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != consts.StatusCancelled {
		t.Fatalf("cancel = %+v", out)
	}
	if _, err := env.sessions.Get(ctx, resp.UploadID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("session survived cancel: %v", err)
	}
	if env.chunks.WorkDirExists(resp.UploadID) {
		t.Fatal("work dir survived cancel")
	}

	_, err = env.uploads.Finalize(ctx, "alice", &dto.FinalizeUploadRequest{UploadID: resp.UploadID})
	if code := uploadCode(t, err); code != fe.CodeSessionNotFound {
		t.Fatalf("code = %s", code)
	}
	if len(env.queue.ids) != 0 {
		t.Fatalf("cancelled import was enqueued: %v", env.queue.ids)
	}
}

func TestFinalizeRefusesTerminalImport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	resp := initiate(t, env, 2)
	sendChunk(t, env, resp.UploadID, 0, "aaaa")
	sendChunk(t, env, resp.UploadID, 1, "bbbb")

	// the session row is still there, only the import went terminal
	if err := env.progress.Cancel(ctx, resp.ProgressID); err != nil {
		t.Fatal(err)
	}

	_, err := env.uploads.Finalize(ctx, "alice", &dto.FinalizeUploadRequest{UploadID: resp.UploadID})
	if code := uploadCode(t, err); code != fe.CodeAlreadyFinished {
		t.Fatalf("code = %s", code)
	}
	if len(env.queue.ids) != 0 {
		t.Fatalf("cancelled import was enqueued: %v", env.queue.ids)
	}
	if _, err := os.Stat(filepath.Join(env.chunks.UploadsDir(), resp.ProgressID)); !os.IsNotExist(err) {
		t.Fatalf("assembled file left behind: %v", err)
	}
	if _, err := env.sessions.Get(ctx, resp.UploadID); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("session survived: %v", err)
	}
	p := mustProgress(t, env, resp.ProgressID)
	if p.Status != consts.StatusCancelled || p.SourcePath != "" {
		t.Fatalf("progress = %s %q", p.Status, p.SourcePath)
	}
}

func TestUploadLockSerializesAndForgets(t *testing.T) {
	env := newTestEnv(t)
	svc := env.uploads.(*uploadService)

	var holders, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := svc.lock("u1")
			n := atomic.AddInt32(&holders, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			runtime.Gosched()
			atomic.AddInt32(&holders, -1)
			unlock()
		}()
	}
	wg.Wait()

	if peak != 1 {
		t.Fatalf("%d goroutines held the lock at once", peak)
	}
	svc.locksMu.Lock()
	defer svc.locksMu.Unlock()
	if len(svc.locks) != 0 {
		t.Fatalf("locks leaked: %d", len(svc.locks))
	}
}

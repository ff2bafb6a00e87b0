package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"chat-importer/internal/domain/dto"
	"chat-importer/pkg/file"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type UploadProgress struct {
	mu          sync.RWMutex
	totalChunks int
	uploaded    int
	skipped     int
	startTime   time.Time
}

func (up *UploadProgress) Done(skipped bool) {
	up.mu.Lock()
	defer up.mu.Unlock()
	up.uploaded++
	if skipped {
		up.skipped++
	}
}

func (up *UploadProgress) GetProgress() (uploaded, skipped, total int) {
	up.mu.RLock()
	defer up.mu.RUnlock()
	return up.uploaded, up.skipped, up.totalChunks
}

type uploadOptions struct {
	chunkSize   int64
	parallel    int
	retries     int
	chatName    string
	description string
	checksum    bool
	wait        bool
}

func newUploadCmd(opts *clientOptions) *cobra.Command {
	uo := &uploadOptions{}
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an export archive or transcript in chunks and start its import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			return runUpload(cmd.Context(), client, args[0], uo)
		},
	}
	cmd.Flags().Int64Var(&uo.chunkSize, "chunk-size", 10*1024*1024, "Chunk size in bytes")
	cmd.Flags().IntVar(&uo.parallel, "parallel", 5, "Concurrent chunk uploads")
	cmd.Flags().IntVar(&uo.retries, "retries", 3, "Attempts per chunk")
	cmd.Flags().StringVar(&uo.chatName, "chat-name", "", "Name of the chat to create")
	cmd.Flags().StringVar(&uo.description, "description", "", "Description of the chat to create")
	cmd.Flags().BoolVar(&uo.checksum, "checksum", true, "Send the file's SHA-256 so the server verifies the assembled file")
	cmd.Flags().BoolVar(&uo.wait, "wait", false, "Follow the import until it finishes")
	return cmd
}

func runUpload(ctx context.Context, client *apiClient, path string, uo *uploadOptions) error {
	if uo.chunkSize <= 0 {
		return fmt.Errorf("chunk-size > 0 olmalı")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dosya açılamadı: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return err
	}
	totalChunks := int((stat.Size() + uo.chunkSize - 1) / uo.chunkSize)
	if totalChunks == 0 {
		totalChunks = 1
	}

	initReq := dto.InitiateUploadRequest{
		Filename:        filepath.Base(path),
		TotalChunks:     totalChunks,
		FileSize:        stat.Size(),
		ChatName:        uo.chatName,
		ChatDescription: uo.description,
	}
	if uo.checksum {
		if initReq.Checksum, err = file.CalculateFileHash(path); err != nil {
			return err
		}
	}

	var session dto.InitiateUploadResponse
	if err := client.postJSON(ctx, "/upload/init", initReq, &session); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	fmt.Printf("Dosya: %s (%d bytes), %d chunk\n", initReq.Filename, stat.Size(), totalChunks)
	fmt.Printf("Upload ID: %s | Progress ID: %s\n", session.UploadID, session.ProgressID)

	progress := &UploadProgress{totalChunks: totalChunks, startTime: time.Now()}
	stopTicker := startProgressTicker(progress)
	err = sendChunks(ctx, client, f, stat.Size(), session.UploadID, uo, progress)
	stopTicker()

	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nUpload iptal ediliyor...")
			cancelCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			var resp dto.CancelResponse
			if cerr := client.postJSON(cancelCtx, "/upload/cancel", dto.CancelUploadRequestDTO{UploadID: session.UploadID}, &resp); cerr != nil {
				return fmt.Errorf("iptal isteği gönderilemedi: %w", cerr)
			}
			return fmt.Errorf("upload cancelled")
		}
		return err
	}

	uploaded, skipped, _ := progress.GetProgress()
	fmt.Printf("\n%d chunk gönderildi (%d zaten vardı), %s\n", uploaded, skipped, time.Since(progress.startTime).Round(time.Millisecond))

	var fin dto.FinalizeUploadResponse
	if err := client.postJSON(ctx, "/upload/finalize", dto.FinalizeUploadRequest{UploadID: session.UploadID}, &fin); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	fmt.Printf("Import kuyruğa alındı: %s\n", fin.RedirectURL)

	if !uo.wait {
		return nil
	}
	return waitForImport(ctx, client, fin.ProgressID)
}

func sendChunks(ctx context.Context, client *apiClient, f io.ReaderAt, size int64, uploadID string, uo *uploadOptions, progress *UploadProgress) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(uo.parallel, 1))

	for i := 0; i < progress.totalChunks; i++ {
		index := i
		g.Go(func() error {
			start := int64(index) * uo.chunkSize
			end := min(start+uo.chunkSize, size)
			buf := make([]byte, end-start)
			if _, err := f.ReadAt(buf, start); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("chunk %d okunamadı: %w", index, err)
			}
			resp, err := uploadWithRetry(gctx, client, uploadID, index, buf, uo.retries)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", index, err)
			}
			progress.Done(resp.Skipped)
			return nil
		})
	}
	return g.Wait()
}

func uploadWithRetry(ctx context.Context, client *apiClient, uploadID string, index int, data []byte, attempts int) (*dto.UploadChunkResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= max(attempts, 1); attempt++ {
		resp, err := client.uploadChunk(ctx, uploadID, index, data)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func startProgressTicker(progress *UploadProgress) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				uploaded, _, total := progress.GetProgress()
				fmt.Printf("\rİlerleme: %d/%d chunk", uploaded, total)
			}
		}
	}()
	return func() { close(done) }
}

package repositories

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"chat-importer/internal/domain/repositories"
	"chat-importer/internal/pkg/fileutils"
	fl "chat-importer/pkg/file"
)

const mergeBufferSize = 64 * 1024

// FileUploadRepository stores chunk files under tempDir/<uploadID>.
type FileUploadRepository struct {
	tempDir    string
	uploadsDir string
	activeOps  map[string]int
	opsMutex   sync.Mutex
}

func NewFileUploadRepository(tempDir, uploadsDir string) *FileUploadRepository {
	return &FileUploadRepository{
		tempDir:    tempDir,
		uploadsDir: uploadsDir,
		activeOps:  make(map[string]int),
	}
}

func (r *FileUploadRepository) TempDir() string    { return r.tempDir }
func (r *FileUploadRepository) UploadsDir() string { return r.uploadsDir }

func (r *FileUploadRepository) workDir(uploadID string) string {
	return filepath.Join(r.tempDir, uploadID)
}

func (r *FileUploadRepository) incrementActiveOps(uploadID string) {
	r.opsMutex.Lock()
	defer r.opsMutex.Unlock()
	r.activeOps[uploadID]++
}

func (r *FileUploadRepository) decrementActiveOps(uploadID string) {
	r.opsMutex.Lock()
	defer r.opsMutex.Unlock()
	r.activeOps[uploadID]--
	if r.activeOps[uploadID] <= 0 {
		delete(r.activeOps, uploadID)
	}
}

// HasActiveOps reports whether a chunk write or merge is running for uploadID.
func (r *FileUploadRepository) HasActiveOps(uploadID string) bool {
	r.opsMutex.Lock()
	defer r.opsMutex.Unlock()
	return r.activeOps[uploadID] > 0
}

func (r *FileUploadRepository) CreateWorkDir(uploadID string) (string, error) {
	dir := r.workDir(uploadID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	return dir, nil
}

func (r *FileUploadRepository) WorkDirExists(uploadID string) bool {
	info, err := os.Stat(r.workDir(uploadID))
	return err == nil && info.IsDir()
}

func (r *FileUploadRepository) chunkPath(uploadID string, chunkIndex int) string {
	return filepath.Join(r.workDir(uploadID), fl.ChunkName(chunkIndex))
}

func (r *FileUploadRepository) ChunkExists(uploadID string, chunkIndex int) bool {
	_, err := os.Stat(r.chunkPath(uploadID, chunkIndex))
	return err == nil
}

// SaveChunk writes to a temp file first and then places it with
// create-if-absent semantics, so concurrent writers of one index create it once.
func (r *FileUploadRepository) SaveChunk(uploadID string, chunkIndex int, src io.Reader) (bool, error) {
	r.incrementActiveOps(uploadID)
	defer r.decrementActiveOps(uploadID)

	if !r.WorkDirExists(uploadID) {
		return false, repositories.ErrNotFound
	}
	finalPath := r.chunkPath(uploadID, chunkIndex)
	if r.ChunkExists(uploadID, chunkIndex) {
		return false, nil
	}

	tmpFile, err := os.CreateTemp(r.workDir(uploadID), fmt.Sprintf(".%s.tmp-*", fl.ChunkName(chunkIndex)))
	if err != nil {
		return false, fmt.Errorf("create temp chunk: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := io.Copy(tmpFile, src); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("write chunk: %w", err)
	}
	// rename öncesi kapat
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("close chunk: %w", err)
	}

	created, err := fileutils.PlaceExclusive(tmpPath, finalPath)
	if err != nil {
		return false, fmt.Errorf("place chunk: %w", err)
	}
	return created, nil
}

func (r *FileUploadRepository) ListChunks(uploadID string) ([]int, error) {
	entries, err := os.ReadDir(r.workDir(uploadID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}

	indexes := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if idx, ok := fl.ParseChunkName(e.Name()); ok {
			indexes = append(indexes, idx)
		}
	}
	sort.Ints(indexes)
	return indexes, nil
}

// MergeChunks streams the chunks in the given order into dst with a fixed
// buffer and deletes each chunk right after it is appended.
func (r *FileUploadRepository) MergeChunks(uploadID string, indexes []int, dst string) (int64, error) {
	r.incrementActiveOps(uploadID)
	defer r.decrementActiveOps(uploadID)

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("create upload dir: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("create final file: %w", err)
	}

	buf := make([]byte, mergeBufferSize)
	var total int64
	for _, idx := range indexes {
		n, err := r.appendChunk(out, buf, r.chunkPath(uploadID, idx))
		if err != nil {
			out.Close()
			os.Remove(dst)
			return 0, fmt.Errorf("chunk %d: %w", idx, err)
		}
		total += n
	}

	if err := out.Sync(); err != nil {
		out.Close()
		return 0, err
	}
	return total, out.Close()
}

func (r *FileUploadRepository) appendChunk(out io.Writer, buf []byte, partPath string) (int64, error) {
	part, err := os.Open(partPath)
	if err != nil {
		return 0, err
	}
	n, err := io.CopyBuffer(out, part, buf)
	part.Close()
	if err != nil {
		return 0, err
	}
	if err := os.Remove(partPath); err != nil {
		return 0, err
	}
	return n, nil
}

// CleanupTempFiles waits briefly for in-flight writes and removes the work dir.
func (r *FileUploadRepository) CleanupTempFiles(uploadID string) error {
	for i := 0; i < 50 && r.HasActiveOps(uploadID); i++ {
		time.Sleep(100 * time.Millisecond)
	}

	dir := r.workDir(uploadID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	// Retry ile silme
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt*100) * time.Millisecond)
		}
		if err := os.RemoveAll(dir); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("cleanup failed after 3 attempts: %w", lastErr)
}

var _ repositories.ChunkStore = (*FileUploadRepository)(nil)

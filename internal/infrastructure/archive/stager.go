// Package archive stages uploaded exports: ZIP archives are extracted into a
// private working directory, plain transcripts are used in place.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"chat-importer/internal/pkg/fileutils"
	"chat-importer/internal/pkg/logger"
	fe "chat-importer/pkg/errors"

	"github.com/klauspost/compress/zip"
)

var zipMagic = []byte("PK\x03\x04")

const transcriptExt = ".txt"

// Staged is the result of staging one upload.
type Staged struct {
	TranscriptPath string
	Dir            string // extraction directory, empty for plain transcripts
	FileCount      int
	TotalBytes     int64
	Archive        bool
}

// HasMedia reports whether the extraction produced files besides the transcript.
func (s *Staged) HasMedia() bool {
	return s.Archive && s.FileCount > 1
}

type Stager struct {
	workDir string
	log     *logger.Logger
}

func NewStager(workDir string, log *logger.Logger) *Stager {
	return &Stager{workDir: workDir, log: log.With("component", "archive_stager")}
}

func (s *Stager) Stage(ctx context.Context, sourcePath string) (*Staged, error) {
	isZip, err := IsZip(sourcePath)
	if err != nil {
		return nil, &fe.ArchiveError{Op: "open", Path: sourcePath, Err: err}
	}
	if !isZip {
		info, err := os.Stat(sourcePath)
		if err != nil {
			return nil, &fe.ArchiveError{Op: "open", Path: sourcePath, Err: err}
		}
		return &Staged{TranscriptPath: sourcePath, FileCount: 1, TotalBytes: info.Size()}, nil
	}

	dir, err := os.MkdirTemp(s.workDir, "import-*")
	if err != nil {
		return nil, &fe.ArchiveError{Op: "mkdir", Path: s.workDir, Err: err}
	}

	staged, err := s.extract(ctx, sourcePath, dir)
	if err != nil {
		// başarısız olursa kendi dizinini temizler
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return staged, nil
}

// IsZip sniffs the local file header magic; the .zip extension is the
// fallback for files too short to carry one.
func IsZip(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(zipMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	if n == len(zipMagic) {
		return bytes.Equal(head, zipMagic), nil
	}
	return strings.EqualFold(filepath.Ext(path), ".zip"), nil
}

func (s *Stager) extract(ctx context.Context, sourcePath, dir string) (*Staged, error) {
	zr, err := zip.OpenReader(sourcePath)
	if err != nil {
		return nil, &fe.ArchiveError{Op: "open", Path: sourcePath, Err: err}
	}
	defer zr.Close()

	staged := &Staged{Dir: dir, Archive: true}
	var candidates []candidate

	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := filepath.FromSlash(entry.Name)
		if skipEntry(entry.Name) {
			continue
		}

		target := filepath.Join(dir, name)
		if !withinDir(dir, target) {
			return nil, &fe.ArchiveError{Op: "extract", Path: entry.Name, Err: fmt.Errorf("entry escapes extraction directory")}
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, &fe.ArchiveError{Op: "extract", Path: entry.Name, Err: err}
			}
			continue
		}
		if !entry.Mode().IsRegular() {
			s.log.Debug("skipping non-regular entry", "entry", entry.Name)
			continue
		}

		written, err := extractFile(entry, target)
		if err != nil {
			return nil, &fe.ArchiveError{Op: "extract", Path: entry.Name, Err: err}
		}

		if strings.EqualFold(filepath.Ext(target), transcriptExt) {
			candidates = append(candidates, candidate{path: target, size: written})
		}
	}

	if len(candidates) == 0 {
		return nil, &fe.ArchiveError{Op: "scan", Path: sourcePath, Err: fe.ErrNoTranscript}
	}

	// aynı isimli girdiler üzerine yazılır, sayım diskten yapılır
	staged.FileCount, staged.TotalBytes, err = fileutils.DirStats(dir)
	if err != nil {
		return nil, &fe.ArchiveError{Op: "scan", Path: dir, Err: err}
	}
	s.log.Debug("archive extracted", "files", staged.FileCount, "bytes", staged.TotalBytes)
	if len(candidates) > 1 {
		s.log.Warn("multiple transcript candidates", "count", len(candidates))
	}
	staged.TranscriptPath = pickTranscript(candidates)
	return staged, nil
}

func skipEntry(name string) bool {
	return strings.HasPrefix(name, "__MACOSX/") || strings.Contains(name, "/__MACOSX/") ||
		filepath.Base(name) == ".DS_Store"
}

func withinDir(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func extractFile(entry *zip.File, target string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, err
	}
	rc, err := entry.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, rc)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

type candidate struct {
	path string
	size int64
}

// pickTranscript prefers the names WhatsApp uses for its export, then the
// largest file, then the lexically first path.
func pickTranscript(cands []candidate) string {
	sort.Slice(cands, func(i, j int) bool {
		pi, pj := isExportName(cands[i].path), isExportName(cands[j].path)
		if pi != pj {
			return pi
		}
		if cands[i].size != cands[j].size {
			return cands[i].size > cands[j].size
		}
		return cands[i].path < cands[j].path
	})
	return cands[0].path
}

func isExportName(path string) bool {
	base := filepath.Base(path)
	return strings.EqualFold(base, "_chat.txt") || strings.HasPrefix(base, "WhatsApp Chat")
}

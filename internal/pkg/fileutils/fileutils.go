package fileutils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// PlaceExclusive moves src to dst only if dst does not exist yet. It reports
// false when another writer already placed dst; src is removed either way.
func PlaceExclusive(src, dst string) (bool, error) {
	defer os.Remove(src)

	err := os.Link(src, dst)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}

	// hard link desteklenmiyorsa O_EXCL ile kopyala
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, err
	}
	in, err := os.Open(src)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return false, err
	}
	defer in.Close()
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return false, err
	}
	return true, out.Close()
}

// DirStats counts regular files below dir and their total size.
func DirStats(dir string) (files int, size int64, err error) {
	err = filepath.WalkDir(dir, func(_ string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		size += info.Size()
		return nil
	})
	return files, size, err
}

// RemoveQuiet deletes path, ignoring errors. Empty paths are skipped.
func RemoveQuiet(path string) {
	if path == "" {
		return
	}
	_ = os.RemoveAll(path)
}

package helper

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SanitizeFilename strips directories and characters that are unsafe in a
// path component. Returns "" when nothing usable remains.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case strings.ContainsRune(`<>:"|?*`, r):
			return '_'
		}
		return r
	}, name)
}

func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// HumanBytes formats n using binary units, e.g. 1.5 MiB.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return done * 100 / total
}

package file

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const hashBufferSize = 64 * 1024

// Dosya hash hesaplama
func CalculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, file, make([]byte, hashBufferSize)); err != nil {
		return "", fmt.Errorf("hash %s: %w", filePath, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

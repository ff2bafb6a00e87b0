package file

import (
	"errors"
	"fmt"
	"strings"
)

var ErrHashMismatch = errors.New("file hash mismatch")

// Hash doğrulama. An empty expected hash disables the check.
func ValidateFileHash(filePath, expectedHash string) error {
	expectedHash = strings.TrimSpace(expectedHash)
	if expectedHash == "" {
		return nil
	}

	calculatedHash, err := CalculateFileHash(filePath)
	if err != nil {
		return err
	}

	if !strings.EqualFold(calculatedHash, expectedHash) {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, expectedHash, calculatedHash)
	}

	return nil
}

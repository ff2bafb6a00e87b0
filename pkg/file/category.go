package file

import (
	"fmt"
	"strings"

	consts "chat-importer/pkg/constants"

	"github.com/gabriel-vasile/mimetype"
)

// DetectCategory sniffs the file content and maps the MIME type to a media
// category. Unknown types are documents.
func DetectCategory(filePath string) (category, mimeType string, err error) {
	mt, err := mimetype.DetectFile(filePath)
	if err != nil {
		return "", "", fmt.Errorf("detect mime %s: %w", filePath, err)
	}
	return CategoryFromMIME(mt.String()), mt.String(), nil
}

func CategoryFromMIME(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return consts.MediaImage
	case strings.HasPrefix(mimeType, "video/"):
		return consts.MediaVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return consts.MediaAudio
	default:
		return consts.MediaDocument
	}
}

// IsDecodableImage reports whether imaging can decode the MIME type.
func IsDecodableImage(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/bmp", "image/tiff":
		return true
	}
	return false
}

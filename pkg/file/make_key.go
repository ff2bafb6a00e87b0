package file

import (
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

const chunkPrefix = "chunk_"

// MediaKey is the blob key of an extracted media file inside a chat.
func MediaKey(chatID, filename string) string {
	return path.Join("chats", chatID, "media", filepath.Base(filename))
}

// ThumbnailKey is the blob key of the JPEG thumbnail generated for a media file.
func ThumbnailKey(chatID, filename string) string {
	return path.Join("chats", chatID, "thumbs", filepath.Base(filename)+".jpg")
}

func ChunkName(index int) string {
	return chunkPrefix + strconv.Itoa(index)
}

// ParseChunkName returns the index encoded in a chunk file name.
func ParseChunkName(name string) (int, bool) {
	if !strings.HasPrefix(name, chunkPrefix) {
		return 0, false
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(name, chunkPrefix))
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

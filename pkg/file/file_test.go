package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	consts "chat-importer/pkg/constants"
)

func TestChunkNameRoundTrip(t *testing.T) {
	idx, ok := ParseChunkName(ChunkName(42))
	if !ok || idx != 42 {
		t.Fatalf("ParseChunkName = %d, %v", idx, ok)
	}
	if _, ok := ParseChunkName("chunk_x"); ok {
		t.Fatal("non-numeric chunk name accepted")
	}
	if _, ok := ParseChunkName("part_1"); ok {
		t.Fatal("foreign file accepted")
	}
}

func TestMediaKeys(t *testing.T) {
	if got := MediaKey("c1", "../x/photo.jpg"); got != "chats/c1/media/photo.jpg" {
		t.Fatalf("MediaKey = %s", got)
	}
	if got := ThumbnailKey("c1", "photo.jpg"); got != "chats/c1/thumbs/photo.jpg.jpg" {
		t.Fatalf("ThumbnailKey = %s", got)
	}
}

func TestCategoryFromMIME(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":      consts.MediaImage,
		"video/mp4":       consts.MediaVideo,
		"audio/ogg":       consts.MediaAudio,
		"application/pdf": consts.MediaDocument,
		"text/plain":      consts.MediaDocument,
	}
	for mimeType, want := range cases {
		if got := CategoryFromMIME(mimeType); got != want {
			t.Errorf("CategoryFromMIME(%s) = %s, want %s", mimeType, got, want)
		}
	}
}

func TestDetectCategoryPNG(t *testing.T) {
	p := filepath.Join(t.TempDir(), "noext")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if err := os.WriteFile(p, png, 0o644); err != nil {
		t.Fatal(err)
	}
	cat, mt, err := DetectCategory(p)
	if err != nil {
		t.Fatalf("DetectCategory: %v", err)
	}
	if cat != consts.MediaImage || mt != "image/png" {
		t.Fatalf("got %s %s", cat, mt)
	}
}

func TestValidateFileHash(t *testing.T) {
	p := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(p, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	const sum = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if err := ValidateFileHash(p, sum); err != nil {
		t.Fatalf("valid hash rejected: %v", err)
	}
	if err := ValidateFileHash(p, ""); err != nil {
		t.Fatalf("empty hash should skip: %v", err)
	}
	if err := ValidateFileHash(p, "deadbeef"); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch, got %v", err)
	}
}

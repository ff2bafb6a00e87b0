package storage

import (
	"context"
	"os"
	"strings"
	"testing"

	appconfig "chat-importer/internal/pkg/config"
)

func TestLocalStoragePutDelete(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir())

	path, err := s.Put(ctx, "chats/c1/media/photo.jpg", strings.NewReader("img"), 3, "image/jpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "img" {
		t.Fatalf("stored %q, err %v", data, err)
	}
	if loc, size, ok := s.Stat(ctx, "chats/c1/media/photo.jpg"); !ok || loc != path || size != 3 {
		t.Fatalf("Stat = %q %d %v", loc, size, ok)
	}
	if err := s.Delete(ctx, "chats/c1/media/photo.jpg"); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := s.Stat(ctx, "chats/c1/media/photo.jpg"); ok {
		t.Fatal("file still exists")
	}
	if err := s.Delete(ctx, "chats/c1/media/photo.jpg"); err != nil {
		t.Fatalf("deleting a missing key should succeed: %v", err)
	}
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	if _, err := s.Put(context.Background(), "../outside", strings.NewReader("x"), 1, ""); err == nil {
		t.Fatal("expected error for escaping key")
	}
}

func TestNewSelectsDriver(t *testing.T) {
	store, err := New(context.Background(), appconfig.StorageConfig{Driver: "local", BasePath: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*LocalStorage); !ok {
		t.Fatalf("got %T", store)
	}
	if _, err := New(context.Background(), appconfig.StorageConfig{Driver: "s3"}); err == nil {
		t.Fatal("s3 without bucket should fail")
	}
	if _, err := New(context.Background(), appconfig.StorageConfig{Driver: "ftp"}); err == nil {
		t.Fatal("unknown driver should fail")
	}
}

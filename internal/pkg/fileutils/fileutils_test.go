package fileutils

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestPlaceExclusiveOnlyOnce(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "chunk_0")

	var wg sync.WaitGroup
	results := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := filepath.Join(dir, "tmp"+string(rune('a'+i)))
			if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
				t.Error(err)
				return
			}
			created, err := PlaceExclusive(src, dst)
			if err != nil {
				t.Error(err)
				return
			}
			results <- created
		}(i)
	}
	wg.Wait()
	close(results)

	created := 0
	for ok := range results {
		if ok {
			created++
		}
	}
	if created != 1 {
		t.Fatalf("created %d times, want 1", created)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestDirStats(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "sub"), 0o755)
	os.WriteFile(filepath.Join(dir, "a"), make([]byte, 10), 0o644)
	os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 5), 0o644)

	files, size, err := DirStats(dir)
	if err != nil {
		t.Fatal(err)
	}
	if files != 2 || size != 15 {
		t.Fatalf("got %d files %d bytes", files, size)
	}
}

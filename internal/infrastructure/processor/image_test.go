package processor

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestMakeThumbnail(t *testing.T) {
	src := imaging.New(800, 400, color.NRGBA{R: 200, A: 255})
	p := filepath.Join(t.TempDir(), "photo.png")
	if err := imaging.Save(src, p); err != nil {
		t.Fatal(err)
	}

	thumb, err := MakeThumbnail(p, ThumbnailOption{Size: 100, Quality: 70})
	if err != nil {
		t.Fatalf("MakeThumbnail: %v", err)
	}
	if thumb.Width != 800 || thumb.Height != 400 {
		t.Fatalf("source size = %dx%d", thumb.Width, thumb.Height)
	}

	decoded, _, err := image.Decode(thumb.Data)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("thumbnail size = %dx%d", b.Dx(), b.Dy())
	}
}

func TestMakeThumbnailRejectsNonImage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(p, []byte("plain text"), 0o644)
	if _, err := MakeThumbnail(p, ThumbnailOption{}); err == nil {
		t.Fatal("expected error for non-image input")
	}
}

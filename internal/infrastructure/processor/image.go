package processor

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

type ThumbnailOption struct {
	Size    int // bounding box, pixels
	Quality int // 1-100
}

// Thumbnail is a JPEG preview plus the dimensions of the source image.
type Thumbnail struct {
	Data   *bytes.Buffer
	Width  int
	Height int
}

// MakeThumbnail decodes the image at inputPath, fits it into a Size x Size box
// and encodes the result as JPEG.
func MakeThumbnail(inputPath string, opt ThumbnailOption) (*Thumbnail, error) {
	if opt.Size <= 0 {
		opt.Size = 320
	}
	if opt.Quality <= 0 || opt.Quality > 100 {
		opt.Quality = 80
	}

	img, err := imaging.Open(inputPath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("görsel açılamadı: %w", err)
	}
	bounds := img.Bounds()

	thumb := imaging.Fit(img, opt.Size, opt.Size, imaging.Lanczos)
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, thumb, imaging.JPEG, imaging.JPEGQuality(opt.Quality)); err != nil {
		return nil, fmt.Errorf("thumbnail encode: %w", err)
	}

	return &Thumbnail{Data: buf, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

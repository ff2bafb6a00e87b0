package repositories

import (
	"context"
	"io"
)

// BlobStore is permanent storage for media files. Put streams r and returns
// the stored location. Stat reports the location and size of a stored key.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Stat(ctx context.Context, key string) (location string, size int64, ok bool)
}

package port

import (
	"context"
	"io"
	"time"
)

// UploadInput describes one object to store.
type UploadInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage stores uploaded documents in a single bucket.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited GET URL. A non-positive expiry uses
	// the configured default.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

package storage

import (
	"context"
)

// FileStorage defines the interface for object storage operations. The
// pipeline uses it as a best-effort archive for raw generation payloads.
type FileStorage interface {
	// PutObject uploads an object under the given key.
	PutObject(ctx context.Context, objectKey string, contentType string, body []byte) error

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

package storage

import (
	"context"

	"docsummarizer/internal/domain"
)

// ObjectInfo represents metadata for a stored object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the S3-compatible operations the pipeline needs.
type ObjectStorage interface {
	GetObject(ctx context.Context, ref domain.ObjectRef) ([]byte, error)
	PutObject(ctx context.Context, ref domain.ObjectRef, body []byte, contentType string) error
	ListObjects(ctx context.Context, bucket string, prefix string) ([]ObjectInfo, error)
}

package storage

import (
	"context"
	"fmt"
	"io"

	"prdapi/internal/config"
)

// Package storage contains object store backends for PRD files (S3-compatible).
// Implementations stream from the supplied reader and never touch local disk.

// ContentTypeBinary is the only content type objects are written with.
const ContentTypeBinary = "application/octet-stream"

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a written object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
}

// Storage is the object store capability the upload pipeline consumes.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3(ctx, cfg)
	case "minio":
		return NewMinIO(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func contentTypeOrDefault(ct string) string {
	if ct == "" {
		return ContentTypeBinary
	}
	return ct
}

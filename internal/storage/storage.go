// Package storage contains content storage abstractions for exhibit files.
// The MinIO driver streams to an S3-compatible backend; the local driver writes under a root directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"conclusio/internal/config"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the content store behind exhibits. Keys are relative slash-separated paths.
type Storage interface {
	// Put writes the content under key, replacing any previous content.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get returns a streaming reader for the content. ErrNotFound when absent.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes the content. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Driver names accepted by New.
const (
	DriverMinIO = "minio"
	DriverLocal = "local"
)

// New builds the storage selected by cfg.Driver.
func New(cfg config.StorageConfig, minioCfg config.MinIOConfig) (Storage, error) {
	switch cfg.Driver {
	case DriverMinIO, "":
		return NewMinIO(minioCfg)
	case DriverLocal:
		return NewLocal(cfg.LocalRoot)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

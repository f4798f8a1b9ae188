// Package storage persists the service's JSON documents either on the local
// filesystem or in an S3 bucket, selected by configuration.
package storage

import (
	"context"
	"errors"
	"fmt"

	"credocarbon/config"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Store reads and writes whole named JSON documents.
type Store interface {
	ReadDocument(ctx context.Context, name string) ([]byte, error)
	WriteDocument(ctx context.Context, name string, data []byte) error
}

// New creates the Store selected by STORAGE_BACKEND.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case "s3":
		return NewS3Store(cfg.S3Bucket, cfg.S3Region)
	case "local":
		return NewLocalStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

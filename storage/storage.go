// Package storage holds the artifacts the engine produces: generated test
// scripts and failure screenshots.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrFileNotFound is returned when no artifact exists at the path.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidPath is returned for empty paths or path traversal attempts.
	ErrInvalidPath = errors.New("invalid path")
)

// BlobStorage stores and retrieves binary artifacts by path.
type BlobStorage interface {
	Upload(ctx context.Context, path string, reader io.Reader) error
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// Config selects and parameterizes a BlobStorage implementation.
type Config struct {
	Type     string // "local" or "s3"
	BaseDir  string // local: root directory for artifacts
	S3Bucket string
	S3Region string
}

// New creates a BlobStorage implementation from configuration.
func New(cfg Config) (BlobStorage, error) {
	switch strings.ToLower(cfg.Type) {
	case "local":
		return NewLocalStorage(cfg.BaseDir)
	case "s3":
		return NewS3Storage(cfg.S3Bucket, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// validatePath rejects empty keys and anything trying to escape the root.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("%w: path must not contain '..'", ErrInvalidPath)
	}
	return nil
}

// Package storage keeps attachment blobs on the local disk or in an S3
// compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/diewo77/go-printshop/internal/config"
	"github.com/google/uuid"
)

// ErrNotFound is returned by Open for an unknown key.
var ErrNotFound = errors.New("blob not found")

// Store saves and serves blobs by key.
type Store interface {
	// Put stores r under a fresh key derived from filename and returns the key.
	Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes the blob; removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.UploadConfig) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.Dir)
	case "s3", "minio":
		return NewMinIO(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// NewKey returns a unique key keeping the file's lowercase extension.
func NewKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// validKey rejects anything that is not a bare file name.
func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, `/\`)
}

// Package storage provides the object-store operations the extraction
// pipeline needs: listing, downloading, and deleting staged objects
// under a bucket and key prefix.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrListFailed     = errors.New("list failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStore abstracts the three object-store operations the pipeline
// contracts for. Implementations include S3 and a local filesystem
// store used in tests.
type ObjectStore interface {
	// ListObjects returns all object keys under the given prefix.
	// An empty result is a valid terminal state, not an error.
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)

	// Download copies one object to the local filesystem.
	Download(ctx context.Context, bucket, key, localPath string) error

	// DeleteObjects removes the given objects. Deleting a key that no
	// longer exists is not an error.
	DeleteObjects(ctx context.Context, bucket string, keys []string) error
}

// internal/storage/storage.go
package storage

import "context"

// ObjectStorage fetches input extracts from an S3-compatible bucket into the
// local data directory before a run.
type ObjectStorage interface {
	// List returns object keys under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Fetch downloads one object to a local path.
	Fetch(ctx context.Context, key, localPath string) error
	// FetchAll downloads every object under the prefix into dir and returns
	// the local paths.
	FetchAll(ctx context.Context, prefix, dir string) ([]string, error)
}

// internal/storage/minio.go
package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/tj309c/supply-signals/internal/config"
)

type minioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioStorage connects to the configured S3-compatible endpoint.
func NewMinioStorage(cfg config.StorageConfig) (ObjectStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}
	return &minioStorage{client: client, bucket: cfg.Bucket}, nil
}

func (s *minioStorage) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", s.bucket, prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (s *minioStorage) Fetch(ctx context.Context, key, localPath string) error {
	if err := s.client.FGetObject(ctx, s.bucket, key, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("fetch %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *minioStorage) FetchAll(ctx context.Context, prefix, dir string) ([]string, error) {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, key := range keys {
		localPath := filepath.Join(dir, path.Base(key))
		if err := s.Fetch(ctx, key, localPath); err != nil {
			return nil, err
		}
		paths = append(paths, localPath)
	}
	log.Info().Int("objects", len(paths)).Str("prefix", prefix).Msg("input extracts fetched")
	return paths, nil
}

package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"watermark-camera/internal/config"
	repo "watermark-camera/internal/repository/photo"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// FileRepository stores capture artifacts as objects in one bucket, keyed by
// the logical artifact paths (staging/, private/original/, gallery/...).
type FileRepository struct {
	client  *minio.Client
	bucket  string
	retries retry.Strategy
	logger  *zlog.Zerolog
}

func NewMinIORepository(cfg *config.Config, retries retry.Strategy, logger *zlog.Zerolog) (*FileRepository, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	r := &FileRepository{
		client:  client,
		bucket:  cfg.Minio.Bucket,
		retries: retries,
		logger:  logger,
	}

	if err := r.ensureBucket(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepository) ensureBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", r.bucket, err)
	}
	if exists {
		return nil
	}
	if err := r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
	}
	r.logger.Info().Str("bucket", r.bucket).Msg("Created storage bucket")
	return nil
}

// SaveObject writes one artifact. The payload is buffered so the write can
// be retried from the start.
func (r *FileRepository) SaveObject(ctx context.Context, path string, data io.Reader, size int64, contentType string) error {
	payload, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("%w: failed to read payload for %s: %v", repo.ErrStorage, path, err)
	}

	err = retry.Do(func() error {
		_, putErr := r.client.PutObject(ctx, r.bucket, path, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
			ContentType: contentType,
		})
		return putErr
	}, r.retries)
	if err != nil {
		return fmt.Errorf("%w: failed to put %s: %v", repo.ErrStorage, path, err)
	}
	return nil
}

// GetObject returns a reader over one stored artifact.
func (r *FileRepository) GetObject(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := r.client.GetObject(ctx, r.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get %s: %v", repo.ErrStorage, path, err)
	}
	// GetObject is lazy; stat now so a missing key surfaces here.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, repo.ErrObjectNotFound
		}
		return nil, fmt.Errorf("%w: failed to stat %s: %v", repo.ErrStorage, path, err)
	}
	return obj, nil
}

// RemoveObject deletes one artifact, used to clean the staging area after a
// capture reaches a terminal state.
func (r *FileRepository) RemoveObject(ctx context.Context, path string) error {
	if err := r.client.RemoveObject(ctx, r.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: failed to remove %s: %v", repo.ErrStorage, path, err)
	}
	return nil
}

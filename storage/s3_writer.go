package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ramen-dashboard/models"
	"ramen-dashboard/utils"
)

// S3Options configures the S3-compatible run archive.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// S3Writer archives each run as one JSON object in an S3-compatible bucket.
type S3Writer struct {
	client *minio.Client
	bucket string
	logger *utils.Logger
}

// NewS3Writer connects to the endpoint and makes sure the bucket exists.
func NewS3Writer(ctx context.Context, opts S3Options, logger *utils.Logger) (*S3Writer, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errors.New("s3: endpoint, access key and secret key are required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	w := &S3Writer{client: client, bucket: opts.Bucket, logger: logger}
	if err := w.ensureBucket(ctx); err != nil {
		return nil, err
	}
	logger.Info("[s3] Connected to %s, bucket %q", opts.Endpoint, opts.Bucket)
	return w, nil
}

func (w *S3Writer) ensureBucket(ctx context.Context) error {
	exists, err := w.client.BucketExists(ctx, w.bucket)
	if err != nil {
		return fmt.Errorf("s3: check bucket %q: %w", w.bucket, err)
	}
	if exists {
		return nil
	}
	if err := w.client.MakeBucket(ctx, w.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("s3: make bucket %q: %w", w.bucket, err)
	}
	return nil
}

// Write stores run under runs/<date>/<run id>.json.
func (w *S3Writer) Write(ctx context.Context, run *models.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("s3: marshal run: %w", err)
	}

	key := RunObjectKey(run)
	_, err = w.client.PutObject(ctx, w.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("s3: put %q: %w", key, err)
	}

	w.logger.Info("[s3] Stored run %s as %s/%s", run.ID, w.bucket, key)
	return nil
}

// Close is a no-op; the minio client holds no long-lived connection.
func (w *S3Writer) Close() error {
	return nil
}

// RunObjectKey is the object key a run is archived under.
func RunObjectKey(run *models.Run) string {
	return fmt.Sprintf("runs/%s/%s.json", run.FetchedAt.UTC().Format("2006-01-02"), run.ID)
}

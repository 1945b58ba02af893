// Package archive stores generated fleet reports in S3-compatible object
// storage and hands out presigned download links.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/pkg/log"
	"github.com/fleetrics-io/fleetrics/pkg/options"
)

const reportContentType = "text/csv"

// MinioArchive implements core.ReportArchive against any S3-compatible
// endpoint.
type MinioArchive struct {
	client *minio.Client
	bucket string
	region string
	logger log.Logger
}

var _ core.ReportArchive = (*MinioArchive)(nil)

func NewMinioArchive(opts *options.S3Options, logger log.Logger) (*MinioArchive, error) {
	logger = log.OrStd(logger)
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: connecting to %s: %w", opts.Endpoint, err)
	}
	return &MinioArchive{
		client: client,
		bucket: opts.BucketName,
		region: opts.Region,
		logger: logger.WithName("archive"),
	}, nil
}

// EnsureBucket creates the report bucket when it does not exist yet.
func (a *MinioArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("archive: checking bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
		return fmt.Errorf("archive: creating bucket %s: %w", a.bucket, err)
	}
	a.logger.Info("report bucket created", "bucket", a.bucket)
	return nil
}

// StoreReport uploads the report and returns a presigned download URL.
func (a *MinioArchive) StoreReport(ctx context.Context, objectKey string, data []byte, expiry time.Duration) (string, error) {
	_, err := a.client.PutObject(ctx, a.bucket, objectKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: reportContentType})
	if err != nil {
		return "", fmt.Errorf("archive: uploading %s: %w", objectKey, err)
	}

	params := make(url.Values)
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", objectKey))
	u, err := a.client.PresignedGetObject(ctx, a.bucket, objectKey, expiry, params)
	if err != nil {
		return "", fmt.Errorf("archive: presigning %s: %w", objectKey, err)
	}

	a.logger.Info("report archived", "object", objectKey, "bytes", len(data))
	return u.String(), nil
}

package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Store reads job output from Amazon S3.
type S3Store struct {
	client S3API
	logger *slog.Logger
}

// Compile-time check that S3Store implements Store.
var _ Store = (*S3Store)(nil)

// NewS3Store wraps an S3 client.
func NewS3Store(client S3API, logger *slog.Logger) *S3Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Store{client: client, logger: logger}
}

// NewS3Client builds an S3 client from AWS config. A non-empty endpoint
// switches to path-style addressing against that endpoint (LocalStack, MinIO).
func NewS3Client(cfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

// GetObject returns the object body. An empty body is reported as not found.
func (s *S3Store) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", wrapAPIError(err, bucket, key))
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: s3://%s/%s has an empty body", models.ErrNotFound, bucket, key)
	}

	s.logger.Debug("object fetched", "bucket", bucket, "key", key, "bytes", len(body))
	return body, nil
}

// ListKeys returns every key under prefix that ends in suffix.
func (s *S3Store) ListKeys(ctx context.Context, bucket, prefix, suffix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", wrapAPIError(err, bucket, prefix))
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, suffix) {
				keys = append(keys, key)
			}
		}
	}

	s.logger.Debug("objects listed", "bucket", bucket, "prefix", prefix, "suffix", suffix, "count", len(keys))
	return keys, nil
}

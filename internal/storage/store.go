// Package storage provides read access to job output in object storage.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// Store reads objects and lists keys. Implementations return errors wrapping
// models.ErrNotFound for missing objects and empty bodies.
type Store interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	ListKeys(ctx context.Context, bucket, prefix, suffix string) ([]string, error)
}

// notFoundCodes are the S3 error codes that mean the object is absent.
var notFoundCodes = map[string]bool{
	"NoSuchKey":    true,
	"NotFound":     true,
	"NoSuchBucket": true,
}

// wrapAPIError maps S3 "absent" API errors onto models.ErrNotFound.
// Returns the original error for anything else.
func wrapAPIError(err error, bucket, key string) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && notFoundCodes[apiErr.ErrorCode()] {
		return fmt.Errorf("%w: s3://%s/%s (%s)", models.ErrNotFound, bucket, key, apiErr.ErrorCode())
	}
	return err
}

package pico

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// ObjectReader fetches raw objects from object storage.
type ObjectReader interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// ReadResult fetches and decodes one per-document result object.
func ReadResult(ctx context.Context, r ObjectReader, loc models.ObjectLocation) ([]models.Entity, error) {
	body, err := r.GetObject(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}

	var result models.ExtractionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", models.ErrValidation, loc, err)
	}
	if result.Entities == nil {
		return nil, fmt.Errorf("%w: %s has no Entities field", models.ErrValidation, loc)
	}
	return result.Entities, nil
}

// ReadBundle fetches the three result objects of one document concurrently.
func ReadBundle(ctx context.Context, r ObjectReader, paths models.BundlePaths) (models.EntityBundle, error) {
	var bundle models.EntityBundle
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		bundle.Entities, err = ReadResult(ctx, r, paths.Entities)
		return err
	})
	g.Go(func() (err error) {
		bundle.ID10CMs, err = ReadResult(ctx, r, paths.ICD10CM)
		return err
	})
	g.Go(func() (err error) {
		bundle.RxNorms, err = ReadResult(ctx, r, paths.RxNorm)
		return err
	})

	if err := g.Wait(); err != nil {
		return models.EntityBundle{}, err
	}
	return bundle, nil
}

// CalculateProximityFromPathsQuestion reads a document and a reference
// segment from object storage and scores them against each other.
func CalculateProximityFromPathsQuestion(ctx context.Context, r ObjectReader, doc, ref models.BundlePaths) (models.PicoProximityAverage, error) {
	docBundle, err := ReadBundle(ctx, r, doc)
	if err != nil {
		return models.PicoProximityAverage{}, fmt.Errorf("read document bundle: %w", err)
	}
	refBundle, err := ReadBundle(ctx, r, ref)
	if err != nil {
		return models.PicoProximityAverage{}, fmt.Errorf("read reference bundle: %w", err)
	}
	return CalculateProximityFromEntitiesQuestion(docBundle, refBundle), nil
}

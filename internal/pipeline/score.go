package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/picoscreen/internal/metrics"
	"github.com/raphaelgruber/picoscreen/internal/models"
	"github.com/raphaelgruber/picoscreen/internal/pico"
)

// Score computes one document's proximity to the question (Stage D).
func (o *Orchestrator) Score(ctx context.Context, in models.ScoreInput) (models.PicoProximityAverage, error) {
	if in.DocumentIdentifier == "" {
		return models.PicoProximityAverage{}, validationErrorf("documentIdentifier is required")
	}
	for _, t := range models.JobTypes {
		if in.Context.DocumentJobContext.Get(t).Bucket == "" {
			return models.PicoProximityAverage{}, validationErrorf("document %s output location is missing", t)
		}
	}

	var avg models.PicoProximityAverage
	err := o.metrics.Time(metrics.OpScoreDocument, func() error {
		paths := o.bundlePaths(in.Context.DocumentJobContext, in.DocumentIdentifier)
		doc, err := pico.ReadBundle(ctx, o.store, paths)
		if err != nil {
			return fmt.Errorf("read document %s: %w", in.DocumentIdentifier, err)
		}
		q := in.Context.QuestionResult
		avg = pico.CalculateProximityFromEntitiesPico(doc, q.P, q.I, q.C, q.O)
		avg.DocumentID = in.DocumentIdentifier
		return nil
	})
	if err != nil {
		return models.PicoProximityAverage{}, err
	}

	o.logger.Debug("document scored", "document", avg.DocumentID, "total", avg.Total)
	return avg, nil
}

// ScoreAll scores every document of a Stage C output with bounded
// concurrency. Documents are independent: one that cannot be read is listed
// under Failures and the rest are still scored. Only cancellation aborts the
// batch.
func (o *Orchestrator) ScoreAll(ctx context.Context, combined models.CombineOutput) (models.ScoreAllOutput, error) {
	for _, t := range models.JobTypes {
		if combined.DocumentJobContext.Get(t).Bucket == "" {
			return models.ScoreAllOutput{}, validationErrorf("document %s output location is missing", t)
		}
	}

	results := make([]models.PicoProximityAverage, len(combined.DocumentIdentifiers))
	errs := make([]error, len(combined.DocumentIdentifiers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.ScoreConcurrency)
	for i, id := range combined.DocumentIdentifiers {
		g.Go(func() error {
			results[i], errs[i] = o.Score(gctx, models.ScoreInput{DocumentIdentifier: id, Context: combined})
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return models.ScoreAllOutput{}, err
	}

	out := models.ScoreAllOutput{Results: make([]models.PicoProximityAverage, 0, len(results))}
	for i, id := range combined.DocumentIdentifiers {
		if errs[i] != nil {
			o.logger.Warn("document not scored", "document", id, "error", errs[i])
			out.Failures = append(out.Failures, models.ScoreFailure{DocumentID: id, Error: errs[i].Error()})
			continue
		}
		out.Results = append(out.Results, results[i])
	}
	o.logger.Info("documents scored", "count", len(out.Results), "failed", len(out.Failures))
	return out, nil
}

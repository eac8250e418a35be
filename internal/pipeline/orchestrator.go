// Package pipeline implements the four externally driven stages that take a
// corpus from submission to per-document PICO scores.
//
// Every stage is a single stateless call over serializable inputs and
// outputs. Nothing here retries, sleeps or schedules; re-polling and
// abandoning a pipeline are the caller's decisions.
package pipeline

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/raphaelgruber/picoscreen/internal/comprehend"
	"github.com/raphaelgruber/picoscreen/internal/config"
	"github.com/raphaelgruber/picoscreen/internal/metrics"
	"github.com/raphaelgruber/picoscreen/internal/models"
	"github.com/raphaelgruber/picoscreen/internal/storage"
)

// JobService submits and describes extraction jobs.
type JobService interface {
	StartJob(ctx context.Context, t models.JobType, req comprehend.StartJobRequest) (string, error)
	DescribeJob(ctx context.Context, t models.JobType, jobID string) (comprehend.JobInfo, error)
}

// Orchestrator runs the pipeline stages against a job service and an object store.
type Orchestrator struct {
	jobs    JobService
	store   storage.Store
	cfg     config.Config
	metrics *metrics.Collector
	logger  *slog.Logger
}

// New creates an orchestrator. collector and logger may be nil.
func New(jobs JobService, store storage.Store, cfg config.Config, collector *metrics.Collector, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ScoreConcurrency <= 0 {
		cfg.ScoreConcurrency = 4
	}
	return &Orchestrator{
		jobs:    &timedJobs{next: jobs, metrics: collector},
		store:   &timedStore{next: store, metrics: collector},
		cfg:     cfg,
		metrics: collector,
		logger:  logger,
	}
}

// dirPrefix normalizes an object key prefix to end in exactly one slash.
func dirPrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

// identifierOf turns an output key into a document identifier: the key
// relative to the job's output path, without the output suffix.
func identifierOf(key, prefix, suffix string) string {
	rel := strings.TrimPrefix(key, dirPrefix(prefix))
	return strings.TrimSuffix(rel, suffix)
}

// resultKey is the inverse of identifierOf.
func resultKey(prefix, identifier, suffix string) string {
	return path.Join(prefix, identifier+suffix)
}

// bundlePaths addresses the three result objects of one identifier.
func (o *Orchestrator) bundlePaths(jc models.JobContext, identifier string) models.BundlePaths {
	loc := func(t models.JobType) models.ObjectLocation {
		out := jc.Get(t)
		return models.ObjectLocation{
			Bucket: out.Bucket,
			Key:    resultKey(out.Path, identifier, o.cfg.OutputSuffix),
		}
	}
	return models.BundlePaths{
		Entities: loc(models.JobTypeEntities),
		ICD10CM:  loc(models.JobTypeICD10CM),
		RxNorm:   loc(models.JobTypeRxNorm),
	}
}

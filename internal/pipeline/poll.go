package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// Poll reports the combined status of a corpus's three jobs (Stage B).
//
// It returns COMPLETED once every job has completed and IN_PROGRESS while
// any is still running. A job that ended FAILED or STOPPED aborts the
// pipeline with a *JobFailedError carrying all three ids.
func (o *Orchestrator) Poll(ctx context.Context, ids models.JobIDs) (models.PollOutput, error) {
	for _, t := range models.JobTypes {
		if ids.Get(t) == "" {
			return models.PollOutput{}, validationErrorf("%s job id is required", t)
		}
	}

	statuses := make([]models.JobStatus, len(models.JobTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range models.JobTypes {
		g.Go(func() error {
			info, err := o.jobs.DescribeJob(gctx, t, ids.Get(t))
			if err != nil {
				return fmt.Errorf("describe %s job %s: %w", t, ids.Get(t), err)
			}
			if info.Status == models.JobStatusFailed || info.Status == models.JobStatusStopped {
				status := info.RawStatus
				if status == "" {
					status = string(info.Status)
				}
				return &JobFailedError{
					JobIDs:  ids,
					JobType: t,
					JobID:   ids.Get(t),
					Status:  status,
					Message: info.Message,
				}
			}
			statuses[i] = info.Status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var failed *JobFailedError
		if errors.As(err, &failed) {
			o.logger.Error("extraction job failed",
				"job_type", failed.JobType,
				"job_id", failed.JobID,
				"status", failed.Status,
				"message", failed.Message,
				"jobs", ids.String())
		}
		return models.PollOutput{}, err
	}

	out := models.PollOutput{
		Status:   models.JobStatusCompleted,
		JobIDs:   ids,
		Statuses: make(map[models.JobType]models.JobStatus, len(statuses)),
	}
	for i, s := range statuses {
		out.Statuses[models.JobTypes[i]] = s
		if s != models.JobStatusCompleted {
			out.Status = models.JobStatusInProgress
		}
	}
	o.logger.Debug("jobs polled", "jobs", ids.String(), "status", out.Status)
	return out, nil
}

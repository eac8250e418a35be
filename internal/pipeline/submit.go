package pipeline

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/raphaelgruber/picoscreen/internal/comprehend"
	"github.com/raphaelgruber/picoscreen/internal/models"
)

// Submit starts the three extraction jobs over one corpus (Stage A).
//
// Submission is not idempotent: every call creates three new jobs. When a
// later submission fails, the ids already issued are logged so the caller
// can stop them.
func (o *Orchestrator) Submit(ctx context.Context, in models.SubmitInput) (models.SubmitOutput, error) {
	if strings.TrimSpace(in.ScreeningID) == "" {
		return models.SubmitOutput{}, validationErrorf("screeningId is required")
	}
	corpus, err := models.ParseS3URI(in.CorpusLocation)
	if err != nil {
		return models.SubmitOutput{}, validationErrorf("corpusLocation: %v", err)
	}
	if o.cfg.OutputBucket == "" {
		return models.SubmitOutput{}, validationErrorf("output bucket is not configured")
	}

	var out models.SubmitOutput
	for _, t := range models.JobTypes {
		req := comprehend.StartJobRequest{
			ScreeningID: in.ScreeningID,
			Input:       corpus,
			Output: models.ObjectLocation{
				Bucket: o.cfg.OutputBucket,
				Key:    dirPrefix(path.Join(o.cfg.OutputPrefix, in.ScreeningID, string(t))),
			},
			DataAccessRoleARN: o.cfg.DataAccessRoleARN,
			KMSKey:            o.cfg.KMSKey,
		}
		id, err := o.jobs.StartJob(ctx, t, req)
		if err != nil {
			o.logger.Error("job submission failed",
				"screening_id", in.ScreeningID,
				"job_type", t,
				"submitted", out.JobIDs.String(),
				"error", err)
			return models.SubmitOutput{}, fmt.Errorf("submit %s job: %w", t, err)
		}
		out.JobIDs.Set(t, id)
	}

	o.logger.Info("jobs submitted",
		"screening_id", in.ScreeningID,
		"corpus", corpus.String(),
		"jobs", out.JobIDs.String())
	return out, nil
}

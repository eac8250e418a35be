package pipeline

import (
	"fmt"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// JobFailedError reports an extraction job that ended FAILED or STOPPED.
// It unwraps to models.ErrExternalService.
type JobFailedError struct {
	JobIDs  models.JobIDs
	JobType models.JobType
	JobID   string
	Status  string
	Message string
}

func (e *JobFailedError) Error() string {
	msg := fmt.Sprintf("%s job %s ended %s", e.JobType, e.JobID, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg + " (jobs: " + e.JobIDs.String() + ")"
}

func (e *JobFailedError) Unwrap() error {
	return models.ErrExternalService
}

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{models.ErrValidation}, args...)...)
}

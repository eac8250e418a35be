// Package comprehend drives the asynchronous Comprehend Medical batch jobs
// behind the three extraction job types.
package comprehend

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehendmedical"
	"github.com/aws/aws-sdk-go-v2/service/comprehendmedical/types"
	"github.com/google/uuid"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// maxJobNameLen is the service limit on job names.
const maxJobNameLen = 256

var jobNameDisallowed = regexp.MustCompile(`[^\p{L}\p{Z}\p{N}_.:/=+\-%@]`)

// API is the subset of the Comprehend Medical client used here.
type API interface {
	StartEntitiesDetectionV2Job(ctx context.Context, params *comprehendmedical.StartEntitiesDetectionV2JobInput, optFns ...func(*comprehendmedical.Options)) (*comprehendmedical.StartEntitiesDetectionV2JobOutput, error)
	StartICD10CMInferenceJob(ctx context.Context, params *comprehendmedical.StartICD10CMInferenceJobInput, optFns ...func(*comprehendmedical.Options)) (*comprehendmedical.StartICD10CMInferenceJobOutput, error)
	StartRxNormInferenceJob(ctx context.Context, params *comprehendmedical.StartRxNormInferenceJobInput, optFns ...func(*comprehendmedical.Options)) (*comprehendmedical.StartRxNormInferenceJobOutput, error)
	DescribeEntitiesDetectionV2Job(ctx context.Context, params *comprehendmedical.DescribeEntitiesDetectionV2JobInput, optFns ...func(*comprehendmedical.Options)) (*comprehendmedical.DescribeEntitiesDetectionV2JobOutput, error)
	DescribeICD10CMInferenceJob(ctx context.Context, params *comprehendmedical.DescribeICD10CMInferenceJobInput, optFns ...func(*comprehendmedical.Options)) (*comprehendmedical.DescribeICD10CMInferenceJobOutput, error)
	DescribeRxNormInferenceJob(ctx context.Context, params *comprehendmedical.DescribeRxNormInferenceJobInput, optFns ...func(*comprehendmedical.Options)) (*comprehendmedical.DescribeRxNormInferenceJobOutput, error)
}

// StartJobRequest describes one batch job submission.
type StartJobRequest struct {
	ScreeningID       string
	Input             models.ObjectLocation
	Output            models.ObjectLocation
	DataAccessRoleARN string
	KMSKey            string
}

// JobInfo is the service's view of a submitted job.
type JobInfo struct {
	ID        string
	Status    models.JobStatus
	RawStatus string
	Message   string
	// Output is the folder the job writes results and its manifest into.
	Output models.ObjectLocation
}

// Client submits and describes extraction jobs.
type Client struct {
	api    API
	logger *slog.Logger
}

// New wraps a Comprehend Medical client.
func New(api API, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, logger: logger}
}

// NewFromConfig builds a Client from AWS config.
func NewFromConfig(cfg aws.Config, logger *slog.Logger) *Client {
	return New(comprehendmedical.NewFromConfig(cfg), logger)
}

// JobName builds a service-safe job name for a screening and job type.
func JobName(screeningID string, t models.JobType) string {
	name := fmt.Sprintf("%s-%s-%s", screeningID, t, uuid.NewString()[:8])
	name = jobNameDisallowed.ReplaceAllString(name, "-")
	if len(name) > maxJobNameLen {
		cut := len(name) - maxJobNameLen
		for cut < len(name) && !utf8.RuneStart(name[cut]) {
			cut++
		}
		name = name[cut:]
	}
	return name
}

// StartJob submits one job and returns its id. Every call creates a new job.
func (c *Client) StartJob(ctx context.Context, t models.JobType, req StartJobRequest) (string, error) {
	input := types.InputDataConfig{
		S3Bucket: aws.String(req.Input.Bucket),
		S3Key:    aws.String(req.Input.Key),
	}
	output := types.OutputDataConfig{
		S3Bucket: aws.String(req.Output.Bucket),
		S3Key:    aws.String(req.Output.Key),
	}
	name := aws.String(JobName(req.ScreeningID, t))
	token := aws.String(uuid.NewString())
	var kms *string
	if req.KMSKey != "" {
		kms = aws.String(req.KMSKey)
	}

	var jobID *string
	switch t {
	case models.JobTypeEntities:
		out, err := c.api.StartEntitiesDetectionV2Job(ctx, &comprehendmedical.StartEntitiesDetectionV2JobInput{
			InputDataConfig:    &input,
			OutputDataConfig:   &output,
			DataAccessRoleArn:  aws.String(req.DataAccessRoleARN),
			LanguageCode:       types.LanguageCodeEn,
			JobName:            name,
			ClientRequestToken: token,
			KMSKey:             kms,
		})
		if err != nil {
			return "", fmt.Errorf("start entities detection job: %w", err)
		}
		jobID = out.JobId

	case models.JobTypeICD10CM:
		out, err := c.api.StartICD10CMInferenceJob(ctx, &comprehendmedical.StartICD10CMInferenceJobInput{
			InputDataConfig:    &input,
			OutputDataConfig:   &output,
			DataAccessRoleArn:  aws.String(req.DataAccessRoleARN),
			LanguageCode:       types.LanguageCodeEn,
			JobName:            name,
			ClientRequestToken: token,
			KMSKey:             kms,
		})
		if err != nil {
			return "", fmt.Errorf("start icd10cm inference job: %w", err)
		}
		jobID = out.JobId

	case models.JobTypeRxNorm:
		out, err := c.api.StartRxNormInferenceJob(ctx, &comprehendmedical.StartRxNormInferenceJobInput{
			InputDataConfig:    &input,
			OutputDataConfig:   &output,
			DataAccessRoleArn:  aws.String(req.DataAccessRoleARN),
			LanguageCode:       types.LanguageCodeEn,
			JobName:            name,
			ClientRequestToken: token,
			KMSKey:             kms,
		})
		if err != nil {
			return "", fmt.Errorf("start rxnorm inference job: %w", err)
		}
		jobID = out.JobId

	default:
		return "", fmt.Errorf("%w: unknown job type %q", models.ErrValidation, t)
	}

	if aws.ToString(jobID) == "" {
		return "", fmt.Errorf("%w: %s job submitted without a job id", models.ErrValidation, t)
	}

	c.logger.Info("job submitted", "job_type", t, "job_id", *jobID, "job_name", *name)
	return *jobID, nil
}

// DescribeJob returns the current status and output folder of a job.
func (c *Client) DescribeJob(ctx context.Context, t models.JobType, jobID string) (JobInfo, error) {
	var props *types.ComprehendMedicalAsyncJobProperties

	switch t {
	case models.JobTypeEntities:
		out, err := c.api.DescribeEntitiesDetectionV2Job(ctx, &comprehendmedical.DescribeEntitiesDetectionV2JobInput{JobId: aws.String(jobID)})
		if err != nil {
			return JobInfo{}, fmt.Errorf("describe entities detection job %s: %w", jobID, err)
		}
		props = out.ComprehendMedicalAsyncJobProperties

	case models.JobTypeICD10CM:
		out, err := c.api.DescribeICD10CMInferenceJob(ctx, &comprehendmedical.DescribeICD10CMInferenceJobInput{JobId: aws.String(jobID)})
		if err != nil {
			return JobInfo{}, fmt.Errorf("describe icd10cm inference job %s: %w", jobID, err)
		}
		props = out.ComprehendMedicalAsyncJobProperties

	case models.JobTypeRxNorm:
		out, err := c.api.DescribeRxNormInferenceJob(ctx, &comprehendmedical.DescribeRxNormInferenceJobInput{JobId: aws.String(jobID)})
		if err != nil {
			return JobInfo{}, fmt.Errorf("describe rxnorm inference job %s: %w", jobID, err)
		}
		props = out.ComprehendMedicalAsyncJobProperties

	default:
		return JobInfo{}, fmt.Errorf("%w: unknown job type %q", models.ErrValidation, t)
	}

	if props == nil {
		return JobInfo{}, fmt.Errorf("%w: %s job %s has no properties", models.ErrValidation, t, jobID)
	}

	info := JobInfo{
		ID:        jobID,
		Status:    normalizeStatus(props.JobStatus),
		RawStatus: string(props.JobStatus),
		Message:   aws.ToString(props.Message),
	}
	if props.OutputDataConfig != nil {
		info.Output = models.ObjectLocation{
			Bucket: aws.ToString(props.OutputDataConfig.S3Bucket),
			Key:    aws.ToString(props.OutputDataConfig.S3Key),
		}
	}

	c.logger.Debug("job described", "job_type", t, "job_id", jobID, "status", info.RawStatus)
	return info, nil
}

// normalizeStatus folds the service's statuses onto the pipeline's state
// machine. PARTIAL_SUCCESS has produced output and is treated as completed;
// STOP_REQUESTED has not reached STOPPED yet.
func normalizeStatus(s types.JobStatus) models.JobStatus {
	switch s {
	case types.JobStatusSubmitted:
		return models.JobStatusSubmitted
	case types.JobStatusCompleted, types.JobStatusPartialSuccess:
		return models.JobStatusCompleted
	case types.JobStatusFailed:
		return models.JobStatusFailed
	case types.JobStatusStopped:
		return models.JobStatusStopped
	default:
		return models.JobStatusInProgress
	}
}

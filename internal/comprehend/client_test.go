package comprehend

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehendmedical"
	"github.com/aws/aws-sdk-go-v2/service/comprehendmedical/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

// fakeAPI records submissions and answers describes from a status table.
type fakeAPI struct {
	entitiesIn *comprehendmedical.StartEntitiesDetectionV2JobInput
	icdIn      *comprehendmedical.StartICD10CMInferenceJobInput
	rxIn       *comprehendmedical.StartRxNormInferenceJobInput
	status     map[string]types.JobStatus
	startErr   error
}

func (f *fakeAPI) StartEntitiesDetectionV2Job(_ context.Context, in *comprehendmedical.StartEntitiesDetectionV2JobInput, _ ...func(*comprehendmedical.Options)) (*comprehendmedical.StartEntitiesDetectionV2JobOutput, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.entitiesIn = in
	return &comprehendmedical.StartEntitiesDetectionV2JobOutput{JobId: aws.String("ent-1")}, nil
}

func (f *fakeAPI) StartICD10CMInferenceJob(_ context.Context, in *comprehendmedical.StartICD10CMInferenceJobInput, _ ...func(*comprehendmedical.Options)) (*comprehendmedical.StartICD10CMInferenceJobOutput, error) {
	f.icdIn = in
	return &comprehendmedical.StartICD10CMInferenceJobOutput{JobId: aws.String("icd-1")}, nil
}

func (f *fakeAPI) StartRxNormInferenceJob(_ context.Context, in *comprehendmedical.StartRxNormInferenceJobInput, _ ...func(*comprehendmedical.Options)) (*comprehendmedical.StartRxNormInferenceJobOutput, error) {
	f.rxIn = in
	return &comprehendmedical.StartRxNormInferenceJobOutput{}, nil
}

func (f *fakeAPI) props(id string) *types.ComprehendMedicalAsyncJobProperties {
	return &types.ComprehendMedicalAsyncJobProperties{
		JobId:     aws.String(id),
		JobStatus: f.status[id],
		Message:   aws.String("msg " + id),
		OutputDataConfig: &types.OutputDataConfig{
			S3Bucket: aws.String("out"),
			S3Key:    aws.String("screenings/42/" + id),
		},
	}
}

func (f *fakeAPI) DescribeEntitiesDetectionV2Job(_ context.Context, in *comprehendmedical.DescribeEntitiesDetectionV2JobInput, _ ...func(*comprehendmedical.Options)) (*comprehendmedical.DescribeEntitiesDetectionV2JobOutput, error) {
	return &comprehendmedical.DescribeEntitiesDetectionV2JobOutput{ComprehendMedicalAsyncJobProperties: f.props(aws.ToString(in.JobId))}, nil
}

func (f *fakeAPI) DescribeICD10CMInferenceJob(_ context.Context, in *comprehendmedical.DescribeICD10CMInferenceJobInput, _ ...func(*comprehendmedical.Options)) (*comprehendmedical.DescribeICD10CMInferenceJobOutput, error) {
	return &comprehendmedical.DescribeICD10CMInferenceJobOutput{ComprehendMedicalAsyncJobProperties: f.props(aws.ToString(in.JobId))}, nil
}

func (f *fakeAPI) DescribeRxNormInferenceJob(_ context.Context, in *comprehendmedical.DescribeRxNormInferenceJobInput, _ ...func(*comprehendmedical.Options)) (*comprehendmedical.DescribeRxNormInferenceJobOutput, error) {
	return &comprehendmedical.DescribeRxNormInferenceJobOutput{}, nil
}

func request() StartJobRequest {
	return StartJobRequest{
		ScreeningID:       "screening 42",
		Input:             models.ObjectLocation{Bucket: "corpus", Key: "screenings/42/documents/"},
		Output:            models.ObjectLocation{Bucket: "out", Key: "screenings/42"},
		DataAccessRoleARN: "arn:aws:iam::123456789012:role/cm",
	}
}

func TestStartJob(t *testing.T) {
	api := &fakeAPI{}
	client := New(api, nil)
	ctx := context.Background()

	id, err := client.StartJob(ctx, models.JobTypeEntities, request())
	require.NoError(t, err)
	assert.Equal(t, "ent-1", id)
	require.NotNil(t, api.entitiesIn)
	assert.Equal(t, "corpus", aws.ToString(api.entitiesIn.InputDataConfig.S3Bucket))
	assert.Equal(t, "screenings/42/documents/", aws.ToString(api.entitiesIn.InputDataConfig.S3Key))
	assert.Equal(t, "out", aws.ToString(api.entitiesIn.OutputDataConfig.S3Bucket))
	assert.Equal(t, types.LanguageCodeEn, api.entitiesIn.LanguageCode)
	assert.Nil(t, api.entitiesIn.KMSKey)
	assert.NotEmpty(t, aws.ToString(api.entitiesIn.ClientRequestToken))
	assert.True(t, strings.HasPrefix(aws.ToString(api.entitiesIn.JobName), "screening 42-entities-"))

	req := request()
	req.KMSKey = "alias/cm"
	id, err = client.StartJob(ctx, models.JobTypeICD10CM, req)
	require.NoError(t, err)
	assert.Equal(t, "icd-1", id)
	assert.Equal(t, "alias/cm", aws.ToString(api.icdIn.KMSKey))

	_, err = client.StartJob(ctx, models.JobTypeRxNorm, request())
	assert.ErrorIs(t, err, models.ErrValidation, "missing job id")

	_, err = client.StartJob(ctx, "bogus", request())
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestStartJobPropagatesServiceError(t *testing.T) {
	boom := errors.New("throttled")
	client := New(&fakeAPI{startErr: boom}, nil)

	_, err := client.StartJob(context.Background(), models.JobTypeEntities, request())
	assert.ErrorIs(t, err, boom)
}

func TestDescribeJob(t *testing.T) {
	api := &fakeAPI{status: map[string]types.JobStatus{
		"ent-1": types.JobStatusInProgress,
		"icd-1": types.JobStatusPartialSuccess,
	}}
	client := New(api, nil)
	ctx := context.Background()

	info, err := client.DescribeJob(ctx, models.JobTypeEntities, "ent-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, info.Status)
	assert.Equal(t, "msg ent-1", info.Message)
	assert.Equal(t, models.ObjectLocation{Bucket: "out", Key: "screenings/42/ent-1"}, info.Output)

	info, err = client.DescribeJob(ctx, models.JobTypeICD10CM, "icd-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, info.Status)
	assert.Equal(t, "PARTIAL_SUCCESS", info.RawStatus)

	_, err = client.DescribeJob(ctx, models.JobTypeRxNorm, "rx-1")
	assert.ErrorIs(t, err, models.ErrValidation, "missing properties")
}

func TestNormalizeStatus(t *testing.T) {
	tests := map[types.JobStatus]models.JobStatus{
		types.JobStatusSubmitted:      models.JobStatusSubmitted,
		types.JobStatusInProgress:     models.JobStatusInProgress,
		types.JobStatusCompleted:      models.JobStatusCompleted,
		types.JobStatusPartialSuccess: models.JobStatusCompleted,
		types.JobStatusFailed:         models.JobStatusFailed,
		types.JobStatusStopRequested:  models.JobStatusInProgress,
		types.JobStatusStopped:        models.JobStatusStopped,
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeStatus(in), string(in))
	}
}

func TestJobName(t *testing.T) {
	name := JobName("rev#7 (draft)", models.JobTypeRxNorm)
	assert.True(t, strings.HasPrefix(name, "rev-7 -draft--rxNorm-"), name)

	long := JobName(strings.Repeat("a", 400), models.JobTypeEntities)
	assert.Len(t, long, maxJobNameLen)
}

func TestJobNameKeepsRunesWhole(t *testing.T) {
	// The trailing "a" moves the byte cut into the middle of a 2-byte rune.
	name := JobName(strings.Repeat("é", 200)+"a", models.JobTypeRxNorm)
	assert.True(t, utf8.ValidString(name), name)
	assert.Len(t, name, maxJobNameLen-1)
	assert.True(t, strings.HasPrefix(name, "é"), name)
	assert.Contains(t, name, "a-rxNorm-")
}

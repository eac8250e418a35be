package pipeline

import (
	"context"

	"github.com/raphaelgruber/picoscreen/internal/comprehend"
	"github.com/raphaelgruber/picoscreen/internal/metrics"
	"github.com/raphaelgruber/picoscreen/internal/models"
	"github.com/raphaelgruber/picoscreen/internal/storage"
)

// timedJobs records the latency of every job service call.
type timedJobs struct {
	next    JobService
	metrics *metrics.Collector
}

func (t *timedJobs) StartJob(ctx context.Context, jt models.JobType, req comprehend.StartJobRequest) (id string, err error) {
	err = t.metrics.Time(metrics.OpStartJob, func() error {
		id, err = t.next.StartJob(ctx, jt, req)
		return err
	})
	return id, err
}

func (t *timedJobs) DescribeJob(ctx context.Context, jt models.JobType, jobID string) (info comprehend.JobInfo, err error) {
	err = t.metrics.Time(metrics.OpDescribeJob, func() error {
		info, err = t.next.DescribeJob(ctx, jt, jobID)
		return err
	})
	return info, err
}

// timedStore records the latency of every object storage call.
type timedStore struct {
	next    storage.Store
	metrics *metrics.Collector
}

func (t *timedStore) GetObject(ctx context.Context, bucket, key string) (body []byte, err error) {
	err = t.metrics.Time(metrics.OpGetObject, func() error {
		body, err = t.next.GetObject(ctx, bucket, key)
		return err
	})
	return body, err
}

func (t *timedStore) ListKeys(ctx context.Context, bucket, prefix, suffix string) (keys []string, err error) {
	err = t.metrics.Time(metrics.OpListObjects, func() error {
		keys, err = t.next.ListKeys(ctx, bucket, prefix, suffix)
		return err
	})
	return keys, err
}

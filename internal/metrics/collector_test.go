package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpGetObject, 10*time.Millisecond, nil)
	c.RecordTiming(OpGetObject, 30*time.Millisecond, errors.New("boom"))
	c.RecordTiming(OpListObjects, 5*time.Millisecond, nil)

	snap := c.Snapshot()
	require.Contains(t, snap.Operations, OpGetObject)

	get := snap.Operations[OpGetObject]
	assert.Equal(t, int64(2), get.Count)
	assert.Equal(t, int64(1), get.Errors)
	assert.Equal(t, int64(40), get.TotalTimeMs)
	assert.Equal(t, 20.0, get.AvgTimeMs)
	assert.Equal(t, int64(10), get.MinTimeMs)
	assert.Equal(t, int64(30), get.MaxTimeMs)

	assert.Equal(t, int64(1), snap.Operations[OpListObjects].Count)
	assert.NotContains(t, snap.Operations, OpStartJob)
}

func TestTime(t *testing.T) {
	c := NewCollector()
	boom := errors.New("boom")

	err := c.Time(OpDescribeJob, func() error { return boom })
	assert.Equal(t, boom, err)
	assert.NoError(t, c.Time(OpDescribeJob, func() error { return nil }))

	op := c.Snapshot().Operations[OpDescribeJob]
	assert.Equal(t, int64(2), op.Count)
	assert.Equal(t, int64(1), op.Errors)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.RecordTiming(OpScoreDocument, time.Second, nil)
	assert.NoError(t, c.Time(OpScoreDocument, func() error { return nil }))
	assert.Empty(t, c.Snapshot().Operations)
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordTiming(OpScoreDocument, time.Millisecond, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), c.Snapshot().Operations[OpScoreDocument].Count)
}

func TestLogAttrs(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpStartJob, 2*time.Millisecond, nil)
	c.RecordTiming(OpDescribeJob, 4*time.Millisecond, nil)

	attrs := c.Snapshot().LogAttrs()
	require.Len(t, attrs, 2+2*8)
	assert.Equal(t, "uptime_s", attrs[0])
	assert.Equal(t, "describe_job_count", attrs[2])
	assert.Equal(t, "start_job_count", attrs[10])
}

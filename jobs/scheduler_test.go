package jobs

import (
	"sync/atomic"
	"testing"
	"time"

	"HospitalMS/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler(logger.Nop())
	var runs int32
	require.NoError(t, s.Add(Job{Name: "tick", Spec: "@every 1s", Run: func() { atomic.AddInt32(&runs, 1) }}))
	assert.Equal(t, 1, s.Len())

	s.Start()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(logger.Nop())
	assert.Error(t, s.Add(Job{Name: "bad", Spec: "every now and then", Run: func() {}}))
	assert.Equal(t, 0, s.Len())
}

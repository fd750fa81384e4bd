package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testJob struct {
	executed *int32
}

func (j *testJob) Process(ctx context.Context) error {
	atomic.AddInt32(j.executed, 1)
	return nil
}

func TestPool(t *testing.T) {
	var executed int32
	pool := NewPool(2, 10)
	pool.Start()

	job := &testJob{executed: &executed}
	pool.Enqueue(job)
	pool.Enqueue(job)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&executed) == 2
	}, time.Second, 5*time.Millisecond)

	pool.Stop()
	pool.Stop()
}

func TestPool_JobsGetDeadline(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	got := make(chan bool, 1)
	pool.Enqueue(JobFunc(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		got <- ok
		return errors.New("logged, not fatal")
	}))

	select {
	case ok := <-got:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
}

func TestPool_TryEnqueueWhenFull(t *testing.T) {
	// Not started: nothing drains the queue
	pool := NewPool(1, 1)

	noop := JobFunc(func(context.Context) error { return nil })
	require.True(t, pool.TryEnqueue(noop))
	assert.False(t, pool.TryEnqueue(noop))

	pool.Stop()
	// Enqueue on a stopped pool returns instead of blocking
	pool.Enqueue(noop)
}

package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testJob struct {
	executed *int32
	block    chan struct{}
}

func (j *testJob) Process(ctx context.Context) error {
	if j.block != nil {
		<-j.block
	}
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

	time.Sleep(50 * time.Millisecond)
	pool.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&executed))
}

func TestPoolTryEnqueue(t *testing.T) {
	var executed int32
	block := make(chan struct{})

	// One worker, queue of one: the first job occupies the worker, the
	// second fills the queue, the third must be dropped.
	pool := NewPool(1, 1)
	pool.Start()

	running := &testJob{executed: &executed, block: block}
	queued := &testJob{executed: &executed, block: block}

	pool.Enqueue(running)
	time.Sleep(10 * time.Millisecond)

	assert.True(t, pool.TryEnqueue(queued))
	assert.False(t, pool.TryEnqueue(&testJob{executed: &executed}))

	close(block)
	time.Sleep(50 * time.Millisecond)
	pool.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&executed))
}

package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/pkg/queue"
)

// ─── Job types ────────────────────────────────────────────────────────────────

var (
	echoed   atomic.Int32
	failures atomic.Int32
)

type echoJob struct {
	Val string `json:"val"`
}

func (echoJob) JobName() string { return "test.echo" }

func (j *echoJob) Handle(context.Context) error {
	if j.Val == "" {
		return errors.New("payload lost")
	}
	echoed.Add(1)
	return nil
}

type failJob struct{}

func (failJob) JobName() string { return "test.fail" }

func (failJob) Handle(context.Context) error {
	failures.Add(1)
	return errors.New("always fails")
}

func init() {
	queue.Register("test.echo", func() queue.Job { return &echoJob{} })
	queue.Register("test.fail", func() queue.Job { return &failJob{} })
}

func startWorkers(t *testing.T, n int) {
	t.Helper()
	queue.SetDriver(queue.NewMemoryDriver(100))
	ctx, cancel := context.WithCancel(context.Background())
	wg := queue.StartWorkers(ctx, n)
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestDispatchAndProcess(t *testing.T) {
	startWorkers(t, 2)
	before := echoed.Load()

	require.NoError(t, queue.Dispatch(&echoJob{Val: "hello"}))

	assert.Eventually(t, func() bool { return echoed.Load() == before+1 },
		2*time.Second, 10*time.Millisecond)
}

func TestFailedJobRetry(t *testing.T) {
	startWorkers(t, 1)
	queue.SetMaxRetry(2)
	queue.SetBackoff(10 * time.Millisecond)
	t.Cleanup(func() {
		queue.SetMaxRetry(3)
		queue.SetBackoff(time.Second)
	})
	before := len(queue.FailedJobs())
	attempts := failures.Load()

	require.NoError(t, queue.Dispatch(failJob{}))

	require.Eventually(t, func() bool { return len(queue.FailedJobs()) == before+1 },
		2*time.Second, 10*time.Millisecond)
	assert.Equal(t, attempts+2, failures.Load())

	last := queue.FailedJobs()[before]
	assert.Equal(t, "test.fail", last.Type)
	assert.Equal(t, 2, last.Attempts)
}

func TestDispatchAfter(t *testing.T) {
	startWorkers(t, 1)
	before := echoed.Load()

	require.NoError(t, queue.DispatchAfter(&echoJob{Val: "later"}, 50*time.Millisecond))
	assert.Equal(t, before, echoed.Load())

	assert.Eventually(t, func() bool { return echoed.Load() == before+1 },
		2*time.Second, 10*time.Millisecond)
}

func TestDispatchConcurrent(t *testing.T) {
	startWorkers(t, 4)
	before := echoed.Load()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, queue.Dispatch(&echoJob{Val: "c"}))
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return echoed.Load() == before+20 },
		2*time.Second, 10*time.Millisecond)
}

func TestMemoryDriverFull(t *testing.T) {
	d := queue.NewMemoryDriver(1)
	require.NoError(t, d.Push([]byte("a")))
	assert.ErrorIs(t, d.Push([]byte("b")), queue.ErrQueueFull)
	assert.Equal(t, 1, d.Len())
}

// Package queue provides background job processing.
//
// Usage:
//
//	type SendOrderConfirmation struct{ OrderID uint }
//	func (SendOrderConfirmation) JobName() string { return "orders.confirmation" }
//	func (j *SendOrderConfirmation) Handle(ctx context.Context) error { ... }
//
//	queue.Register("orders.confirmation", func() queue.Job { return &SendOrderConfirmation{} })
//	queue.Dispatch(&SendOrderConfirmation{OrderID: 7})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cupcakery/storefront/pkg/logger"
	"github.com/cupcakery/storefront/pkg/metrics"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	Handle(ctx context.Context) error
}

// Named jobs choose their registry name; others are keyed by their Go type.
type Named interface {
	JobName() string
}

// FailedJob holds information about a job that exhausted its retries.
type FailedJob struct {
	Type     string
	Job      Job
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// DelayedDriver is implemented by drivers that can schedule jobs natively.
type DelayedDriver interface {
	PushDelayed(payload []byte, delay time.Duration) error
}

// ------------------- Manager -------------------

type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	maxRetry int
	backoff  time.Duration
}

var defaultManager = &Manager{
	registry: map[string]func() Job{},
	maxRetry: 3,
	backoff:  time.Second,
	driver:   NewMemoryDriver(1000),
}

// SetDriver swaps the underlying queue driver (e.g. Redis).
func SetDriver(d Driver) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.driver = d
}

// SetMaxRetry sets how many attempts a job gets before it is marked failed.
func SetMaxRetry(n int) {
	defaultManager.mu.Lock()
	defaultManager.maxRetry = n
	defaultManager.mu.Unlock()
}

// SetBackoff sets the base delay between attempts; attempt n waits n×base.
func SetBackoff(d time.Duration) {
	defaultManager.mu.Lock()
	defaultManager.backoff = d
	defaultManager.mu.Unlock()
}

// Register makes a job type available for deserialization by name.
func Register(name string, factory func() Job) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.registry[name] = factory
}

// ------------------- Dispatch -------------------

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func typeName(job Job) string {
	if n, ok := job.(Named); ok {
		return n.JobName()
	}
	return fmt.Sprintf("%T", job)
}

// Dispatch pushes job onto the queue immediately.
func Dispatch(job Job) error {
	raw, err := encode(job)
	if err != nil {
		return err
	}
	return defaultManager.currentDriver().Push(raw)
}

// DispatchAfter schedules job after delay, natively when the driver supports
// it and with a timer otherwise.
func DispatchAfter(job Job, delay time.Duration) error {
	raw, err := encode(job)
	if err != nil {
		return err
	}
	d := defaultManager.currentDriver()
	if dd, ok := d.(DelayedDriver); ok {
		return dd.PushDelayed(raw, delay)
	}
	time.AfterFunc(delay, func() {
		if err := d.Push(raw); err != nil {
			logger.Error("queue: delayed dispatch failed", "error", err)
		}
	})
	return nil
}

func encode(job Job) ([]byte, error) {
	name := typeName(job)
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal job %s: %w", name, err)
	}
	env, err := json.Marshal(envelope{Type: name, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return env, nil
}

func (m *Manager) currentDriver() Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.driver
}

// ------------------- Worker -------------------

// StartWorkers launches n workers that run until ctx is cancelled. The
// returned WaitGroup completes once every worker has exited.
func StartWorkers(ctx context.Context, n int) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defaultManager.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	return &wg
}

func (m *Manager) work(ctx context.Context) {
	for ctx.Err() == nil {
		raw, err := m.currentDriver().Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}
		m.process(ctx, raw)
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()

	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	m.runWithRetry(ctx, job, env.Type)
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, name string) {
	m.mu.RLock()
	maxRetry, backoff := m.maxRetry, m.backoff
	m.mu.RUnlock()

	var lastErr error
	for attempt := 1; attempt <= maxRetry; attempt++ {
		start := time.Now()
		err := job.Handle(ctx)
		if err == nil {
			metrics.RecordQueueJob(name, "success", start)
			logger.Info("queue: job processed", "type", name)
			return
		}
		lastErr = err
		metrics.RecordQueueJob(name, "failed", start)
		logger.Warn("queue: job failed", "type", name, "attempt", attempt, "error", err)

		if attempt < maxRetry {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * backoff):
			}
		}
	}

	m.persistFailed(job, name, lastErr, maxRetry)
	logger.Error("queue: job exhausted retries", "type", name, "error", lastErr)
}

// FailedJobs returns a snapshot of jobs that exhausted their retries.
func FailedJobs() []FailedJob {
	defaultManager.mu.RLock()
	defer defaultManager.mu.RUnlock()
	out := make([]FailedJob, len(defaultManager.failed))
	copy(out, defaultManager.failed)
	return out
}

package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Default writer settings
const (
	DefaultQueueSize    = 64
	DefaultWriteTimeout = 30 * time.Second
)

// MetricsRecorder observes completed writes
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) Observe(context.Context, string, bool, time.Duration) {}

// stoppedMessage is the failure text for writes the writer never ran
const stoppedMessage = "writer stopped"

// job is one queued write
type job struct {
	op       *Operation
	run      func(ctx context.Context) (int64, error)
	failure  func(err error) string
	onCommit func(id int64)
}

// Writer executes writes one at a time on a background goroutine, so
// callers never block on storage and writes never interleave.
type Writer struct {
	jobs    chan *job
	timeout time.Duration
	metrics MetricsRecorder

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewWriter creates a writer with a bounded queue. Each write is given at
// most timeout to finish.
func NewWriter(queueSize int, timeout time.Duration) *Writer {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Writer{
		jobs:    make(chan *job, queueSize),
		timeout: timeout,
		metrics: noopRecorder{},
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetMetrics installs a recorder. Call before Start.
func (w *Writer) SetMetrics(m MetricsRecorder) {
	if m == nil {
		m = noopRecorder{}
	}
	w.metrics = m
}

// Start launches the worker goroutine
func (w *Writer) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for j := range w.jobs {
			w.execute(j)
		}
	}()
	log.Printf("Write worker started (queue: %d, timeout: %s)", cap(w.jobs), w.timeout)
}

// Submit queues a write and returns its pending operation. When the queue
// is full Submit waits for room; after Close the operation fails at once.
func (w *Writer) Submit(name string, run func(ctx context.Context) (int64, error), failure func(err error) string, onCommit func(id int64)) *Operation {
	op := newOperation(name)
	j := &job{op: op, run: run, failure: failure, onCommit: onCommit}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		op.fail(stoppedMessage, fmt.Errorf("%s: %s", name, stoppedMessage))
		return op
	}

	select {
	case w.jobs <- j:
	case <-w.ctx.Done():
		op.fail(stoppedMessage, fmt.Errorf("%s: %s", name, stoppedMessage))
	}
	return op
}

// Reject returns an operation that has already failed, for writes refused
// before reaching the queue
func (w *Writer) Reject(name, message string, err error) *Operation {
	log.Printf("Write %s rejected: %v", name, err)
	w.metrics.Observe(context.Background(), name, false, 0)

	op := newOperation(name)
	op.fail(message, err)
	return op
}

// Close stops the worker. The running write is cancelled and every write
// still queued fails, so no operation stays pending.
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		w.cancel()

		w.mu.Lock()
		w.closed = true
		close(w.jobs)
		w.mu.Unlock()

		w.wg.Wait()

		// Only reached with jobs left when Start was never called
		for j := range w.jobs {
			j.op.fail(stoppedMessage, fmt.Errorf("%s: %s", j.op.Name(), stoppedMessage))
		}
		log.Println("Write worker stopped")
	})
}

func (w *Writer) execute(j *job) {
	name := j.op.Name()
	if w.ctx.Err() != nil {
		j.op.fail(stoppedMessage, fmt.Errorf("%s: %s", name, stoppedMessage))
		return
	}

	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	defer cancel()

	start := time.Now()
	id, err := w.run(ctx, j)
	w.metrics.Observe(ctx, name, err == nil, time.Since(start))

	if err != nil {
		log.Printf("Write %s failed: %v", name, err)
		j.op.fail(j.failure(err), err)
		return
	}

	if j.onCommit != nil {
		j.onCommit(id)
	}
	j.op.succeed(id)
}

// run calls the job, turning a panic into an error
func (w *Writer) run(ctx context.Context, j *job) (id int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", j.op.Name(), r)
		}
	}()
	return j.run(ctx)
}

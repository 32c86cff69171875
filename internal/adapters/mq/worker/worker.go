// Package worker drains the batch job queue. A single worker runs jobs one
// at a time, so training and aggregation never overlap inside a process.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/metrics"
)

// Job is what the worker reads off the queue.
type Job = model.Job

// Handler executes one job.
type Handler interface {
	Handle(ctx context.Context, job Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job Job) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, job Job) error {
	return f(ctx, job)
}

// Queue defines how the worker receives jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, Shutdown is called
	// or the queue is closed.
	Run(ctx context.Context)

	// Shutdown stops taking new jobs and waits for the running one.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue      Queue
	handler    Handler
	name       string
	jobTimeout time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, handler Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		handler:  handler,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "job failed",
					logger.String("job_id", job.ID),
					logger.String("kind", string(job.Kind)),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// process runs one job on a context detached from ctx's cancellation, so a
// shutdown never interrupts a training run halfway through a write.
func (w *InMemoryWorker) process(ctx context.Context, job Job) (err error) {
	start := time.Now()
	jobCtx := context.WithoutCancel(ctx)
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, w.jobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
		status := model.JobSucceeded
		if err != nil {
			status = model.JobFailed
			metrics.RecordErrorByComponent("worker", string(job.Kind))
		}
		metrics.RecordJob(string(job.Kind), string(status))
		w.logger.Info(ctx, "job finished",
			logger.String("job_id", job.ID),
			logger.String("kind", string(job.Kind)),
			logger.String("status", string(status)),
			logger.Duration("elapsed", time.Since(start)),
		)
	}()

	w.logger.Info(ctx, "job started",
		logger.String("job_id", job.ID),
		logger.String("kind", string(job.Kind)),
	)
	metrics.RecordJob(string(job.Kind), string(model.JobRunning))
	return w.handler.Handle(jobCtx, job)
}

package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"astro-highpass/internal/domain"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// TaskFunc produces the residual for one job.
type TaskFunc func(ctx context.Context, job domain.Job) (*mat.Dense, error)

// Handle is the pending result of a submitted job.
type Handle struct {
	job    domain.Job
	done   chan struct{}
	result domain.JobResult
}

func (h *Handle) Job() domain.Job {
	return h.job
}

// Wait blocks until the job is resolved or ctx ends. A job that failed
// returns its result together with the error.
func (h *Handle) Wait(ctx context.Context) (*domain.JobResult, error) {
	select {
	case <-h.done:
		return &h.result, h.result.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type task struct {
	ctx    context.Context
	fn     TaskFunc
	handle *Handle
}

// Pool runs submitted jobs on a fixed number of workers.
type Pool struct {
	logger      *zap.Logger
	workerCount int
	tasks       chan task
	timeout     time.Duration
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewPool starts workers goroutines fed by a queue holding up to queueSize
// pending jobs. A positive timeout bounds every job.
func NewPool(logger *zap.Logger, workers, queueSize int, timeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	p := &Pool{
		logger:      logger,
		workerCount: workers,
		tasks:       make(chan task, queueSize),
		timeout:     timeout,
	}

	// Запускаем воркеры
	for i := range workers {
		p.wg.Add(1)
		go p.worker(i)
	}

	logger.Debug("Worker pool started",
		zap.Int("workers", workers),
		zap.Int("queue", queueSize))
	return p
}

func (p *Pool) Workers() int {
	return p.workerCount
}

// Submit queues job and returns its handle. It only blocks when the queue is
// full. Submitting after Close panics.
func (p *Pool) Submit(ctx context.Context, job domain.Job, fn TaskFunc) *Handle {
	h := &Handle{
		job:  job,
		done: make(chan struct{}),
		result: domain.JobResult{
			JobID:  job.ID,
			Index:  job.Index,
			Status: domain.StatusPending,
		},
	}
	p.tasks <- task{ctx: ctx, fn: fn, handle: h}
	return h
}

// Close stops accepting jobs and waits for queued ones to drain.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
		p.wg.Wait()
		p.logger.Debug("Worker pool stopped")
	})
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for t := range p.tasks {
		p.logger.Debug("Processing job",
			zap.Int("worker", id),
			zap.Int("index", t.handle.job.Index),
			zap.Stringer("job", t.handle.job.ID))

		p.run(t)
	}
}

func (p *Pool) run(t task) {
	h := t.handle
	defer close(h.done)

	h.result.Status = domain.StatusRunning
	start := time.Now()

	residual, err := p.call(t)

	h.result.Elapsed = time.Since(start)
	if err != nil {
		h.result.Status = domain.StatusFailed
		h.result.Err = err
		return
	}

	h.result.Status = domain.StatusComplete
	h.result.Residual = residual
	h.result.Rows, h.result.Cols = residual.Dims()
}

func (p *Pool) call(t task) (residual *mat.Dense, err error) {
	ctx := t.ctx
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			residual = nil
			err = fmt.Errorf("%w: %v", domain.ErrWorkerPanic, r)
		}
	}()

	residual, err = t.fn(ctx, t.handle.job)
	if err == nil && residual == nil {
		err = fmt.Errorf("job %d produced no result", t.handle.job.Index)
	}
	return residual, err
}

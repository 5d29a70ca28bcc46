package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"astro-highpass/internal/domain"
	"astro-highpass/pkg/filter"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// BatchRunner applies the high-pass filter to a set of images on a worker pool.
type BatchRunner struct {
	logger *zap.Logger
	config *domain.Config
	reader domain.ImageReader
	writer domain.ImageWriter
	sink   domain.ResultSink
}

// Option configures optional collaborators of a BatchRunner.
type Option func(*BatchRunner)

// WithWriter persists every residual to config.OutputPath.
func WithWriter(w domain.ImageWriter) Option {
	return func(r *BatchRunner) { r.writer = w }
}

// WithSink publishes every resolved job.
func WithSink(s domain.ResultSink) Option {
	return func(r *BatchRunner) { r.sink = s }
}

func NewBatchRunner(logger *zap.Logger, config *domain.Config, reader domain.ImageReader, opts ...Option) *BatchRunner {
	r := &BatchRunner{
		logger: logger,
		config: config,
		reader: reader,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProcessImage loads, filters and optionally stores one image. It is the
// unit of work executed by the pool.
func (r *BatchRunner) ProcessImage(ctx context.Context, job domain.Job) (*mat.Dense, error) {
	frame, err := r.reader.ReadImage(ctx, job.Path)
	if err != nil {
		return nil, err
	}

	rows, cols := frame.Dims()
	if r.config.NY > 0 && r.config.NX > 0 && (rows != r.config.NY || cols != r.config.NX) {
		return nil, fmt.Errorf("%w: %s is %dx%d, want %dx%d",
			domain.ErrShapeMismatch, job.Path, rows, cols, r.config.NY, r.config.NX)
	}

	residual, err := filter.HighPassContext(ctx, frame, r.config.FilterSize)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", job.Path, err)
	}
	if !domain.SameShape(frame, residual) {
		return nil, fmt.Errorf("%w: residual of %s", domain.ErrShapeMismatch, job.Path)
	}

	if r.writer != nil && r.config.OutputDir != "" {
		if err := os.MkdirAll(r.config.OutputDir, 0o755); err != nil {
			return nil, err
		}
		out := r.config.OutputPath(job.Index)
		if err := r.writer.WriteImage(out, residual); err != nil {
			return nil, fmt.Errorf("write %s: %w", out, err)
		}
	}

	return residual, nil
}

// RunSingle processes one image on the calling goroutine.
func (r *BatchRunner) RunSingle(ctx context.Context, index int) (*domain.JobResult, error) {
	job := domain.NewJob(index, r.config.ImagePath(index))
	start := time.Now()

	result := domain.JobResult{JobID: job.ID, Index: index, Status: domain.StatusRunning}
	residual, err := r.ProcessImage(ctx, job)
	result.Elapsed = time.Since(start)
	if err != nil {
		result.Status = domain.StatusFailed
		result.Err = err
	} else {
		result.Status = domain.StatusComplete
		result.Residual = residual
		result.Rows, result.Cols = residual.Dims()
	}

	r.finish(ctx, &result)
	if !r.config.KeepResiduals {
		result.Residual = nil
	}
	return &result, result.Err
}

// Run submits one job per index, then waits for every handle in submission
// order. Elapsed covers first submission to last retrieval.
//
// Without FailFast every job runs and the returned error aggregates all
// failures. With FailFast the first job to fail cancels the outstanding jobs
// at once, whatever its place in the batch, and is returned on its own.
func (r *BatchRunner) Run(ctx context.Context, indices []int) (*domain.BatchReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := NewPool(r.logger, r.config.Workers, len(indices), r.config.JobTimeout)
	defer pool.Close()

	report := &domain.BatchReport{
		Images:  len(indices),
		Workers: pool.Workers(),
		Results: make([]domain.JobResult, 0, len(indices)),
	}

	r.logger.Info("Starting batch",
		zap.Int("images", len(indices)),
		zap.Int("workers", pool.Workers()),
		zap.Int("filter_size", r.config.FilterSize),
		zap.Bool("fail_fast", r.config.FailFast))

	task := r.ProcessImage
	var (
		firstOnce   sync.Once
		firstFailed uuid.UUID
	)
	if r.config.FailFast {
		task = func(ctx context.Context, job domain.Job) (*mat.Dense, error) {
			residual, err := r.ProcessImage(ctx, job)
			if err != nil {
				firstOnce.Do(func() {
					firstFailed = job.ID
					cancel()
				})
			}
			return residual, err
		}
	}

	start := time.Now()

	// Отправляем задачи
	handles := make([]*Handle, 0, len(indices))
	for _, index := range indices {
		job := domain.NewJob(index, r.config.ImagePath(index))
		handles = append(handles, pool.Submit(ctx, job, task))
	}

	// Собираем результаты
	var errs, first error
	for _, h := range handles {
		// Handles are waited on without ctx: cancellation reaches the jobs
		// themselves, and every handle resolves once its worker returns.
		result, err := h.Wait(context.Background())
		r.finish(ctx, result)

		if err != nil {
			failure := domain.JobFailure{Index: result.Index, JobID: result.JobID, Err: err}
			report.Failures = append(report.Failures, failure)
			errs = multierr.Append(errs, failure)
			if first == nil {
				first = failure
			}
		}

		if !r.config.KeepResiduals {
			result.Residual = nil
		}
		report.Results = append(report.Results, *result)
	}

	report.Elapsed = time.Since(start)

	r.logger.Info("Batch finished",
		zap.Int("images", report.Images),
		zap.Int("completed", report.Completed()),
		zap.Int("failed", len(report.Failures)),
		zap.Duration("elapsed", report.Elapsed))

	if !r.config.FailFast || errs == nil {
		return report, errs
	}
	// Every handle has resolved, so firstFailed is settled.
	for _, f := range report.Failures {
		if f.JobID == firstFailed {
			return report, f
		}
	}
	return report, first
}

// finish summarizes a resolved job and hands it to the sink.
func (r *BatchRunner) finish(ctx context.Context, result *domain.JobResult) {
	if result.Err == nil {
		summary, err := domain.Summarize(result.Residual)
		if err != nil {
			r.logger.Warn("Failed to summarize residual", zap.Int("index", result.Index), zap.Error(err))
		}
		result.Summary = summary

		r.logger.Debug("Image filtered",
			zap.Int("index", result.Index),
			zap.Duration("elapsed", result.Elapsed),
			zap.Float64("residual_std", summary.StdDev))
	} else if !errors.Is(result.Err, context.Canceled) {
		r.logger.Error("Image failed",
			zap.Int("index", result.Index),
			zap.Stringer("job", result.JobID),
			zap.Error(result.Err))
	}

	if r.sink == nil {
		return
	}
	// A cancelled batch still reports what happened to each job.
	if err := r.sink.Publish(context.WithoutCancel(ctx), result); err != nil {
		r.logger.Warn("Failed to publish result", zap.Int("index", result.Index), zap.Error(err))
	}
}

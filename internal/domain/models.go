package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Config представляет конфигурацию пакетной обработки
type Config struct {
	ImageDir      string          `yaml:"image_dir"`
	FileFormat    string          `yaml:"file_format"`
	Format        string          `yaml:"format"`
	NY            int             `yaml:"ny"`
	NX            int             `yaml:"nx"`
	NImages       int             `yaml:"n_images"`
	FilterSize    int             `yaml:"filter_size"`
	Workers       int             `yaml:"workers"`
	JobTimeout    time.Duration   `yaml:"job_timeout"`
	FailFast      bool            `yaml:"fail_fast"`
	KeepResiduals bool            `yaml:"keep_residuals"`
	OutputDir     string          `yaml:"output_dir"`
	Decimals      int             `yaml:"decimals"`
	LogLevel      string          `yaml:"log_level"`
	LogFile       string          `yaml:"log_file"`
	Redis         RedisConfig     `yaml:"redis"`
	Generator     GeneratorConfig `yaml:"generator"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

// GeneratorConfig описывает синтетические изображения
type GeneratorConfig struct {
	Seed       uint64  `yaml:"seed"`
	Background float64 `yaml:"background"`
	Gradient   float64 `yaml:"gradient"`
	Noise      float64 `yaml:"noise"`
	Sources    int     `yaml:"sources"`
	Flux       float64 `yaml:"flux"`
	FWHM       float64 `yaml:"fwhm"`
}

// ImageName resolves an image index to its file name.
func (c *Config) ImageName(index int) string {
	return fmt.Sprintf(c.FileFormat, c.NY, c.NX, index)
}

// ImagePath resolves an image index to its location under ImageDir.
func (c *Config) ImagePath(index int) string {
	return filepath.Join(c.ImageDir, c.ImageName(index))
}

// OutputPath is where the residual for index is written when OutputDir is set.
func (c *Config) OutputPath(index int) string {
	name := c.ImageName(index)
	ext := filepath.Ext(name)
	return filepath.Join(c.OutputDir, name[:len(name)-len(ext)]+"_highpass"+ext)
}

// Indices returns the image identifiers 0..NImages-1.
func (c *Config) Indices() []int {
	indices := make([]int, c.NImages)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// JobStatus отражает жизненный цикл задачи
type JobStatus string

const (
	StatusPending  JobStatus = "pending"
	StatusRunning  JobStatus = "running"
	StatusComplete JobStatus = "complete"
	StatusFailed   JobStatus = "failed"
)

// Job is one filtering task: a single image identifier.
type Job struct {
	ID    uuid.UUID
	Index int
	Path  string
}

func NewJob(index int, path string) Job {
	return Job{ID: uuid.New(), Index: index, Path: path}
}

// JobResult is the resolved value of a job's handle.
type JobResult struct {
	JobID      uuid.UUID
	Index      int
	Status     JobStatus
	Rows, Cols int
	Summary    GridSummary
	Residual   *mat.Dense
	Elapsed    time.Duration
	Err        error
}

// JobFailure pairs an image index with the error its job produced.
type JobFailure struct {
	Index int
	JobID uuid.UUID
	Err   error
}

func (f JobFailure) Error() string {
	return fmt.Sprintf("image %d (job %s): %v", f.Index, f.JobID, f.Err)
}

func (f JobFailure) Unwrap() error {
	return f.Err
}

// BatchReport is the aggregate outcome of a batch run.
type BatchReport struct {
	Images   int
	Workers  int
	Elapsed  time.Duration
	Results  []JobResult
	Failures []JobFailure
}

// Completed counts jobs that finished without error.
func (r *BatchReport) Completed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == StatusComplete {
			n++
		}
	}
	return n
}

var (
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrImageNotFound     = errors.New("image not found")
	ErrNotImage2D        = errors.New("image is not two-dimensional")
	ErrShapeMismatch     = errors.New("image shape mismatch")
	ErrWorkerPanic       = errors.New("worker panicked")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

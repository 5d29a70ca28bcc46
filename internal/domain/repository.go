package domain

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// ImageReader интерфейс для чтения изображений
type ImageReader interface {
	ReadImage(ctx context.Context, path string) (*mat.Dense, error)
}

// ImageWriter интерфейс для записи изображений
type ImageWriter interface {
	WriteImage(path string, data mat.Matrix) error
}

// ConfigReader интерфейс для чтения конфигурации
type ConfigReader interface {
	ReadConfig(path string) (*Config, error)
}

// ResultSink получает результаты завершённых задач
type ResultSink interface {
	Publish(ctx context.Context, result *JobResult) error
}

package infrastructure

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"astro-highpass/internal/domain"
	"astro-highpass/pkg/filter"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFileFormat   = "fake_%dx%d_%d.fits"
	DefaultImageSize    = 1000
	DefaultImages       = 25
	DefaultRedisChannel = "highpass:results"
)

type YAMLConfigReader struct {
	logger *zap.Logger
	flags  *flag.FlagSet
}

// NewYAMLConfigReader returns a reader that applies overrides from flags when
// it is not nil. Flags must already be parsed.
func NewYAMLConfigReader(logger *zap.Logger, flags *flag.FlagSet) *YAMLConfigReader {
	return &YAMLConfigReader{logger: logger, flags: flags}
}

// ReadConfig reads path, applies command line overrides and defaults.
// An empty path yields a configuration built from flags and defaults only.
// Zero means "use the default"; negative sizes and counts are rejected with
// domain.ErrInvalidConfig.
func (r *YAMLConfigReader) ReadConfig(path string) (*domain.Config, error) {
	var config domain.Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}

	// Применяем аргументы командной строки
	r.applyCommandLineFlags(&config)

	// Устанавливаем значения по умолчанию
	r.setDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	r.logger.Debug("Configuration loaded",
		zap.String("path", path),
		zap.Int("workers", config.Workers),
		zap.Int("images", config.NImages),
		zap.Int("filter_size", config.FilterSize))

	return &config, nil
}

// RegisterFlags declares the overrides understood by ReadConfig on fs.
func RegisterFlags(fs *flag.FlagSet) {
	fs.Int("workers", 0, "Number of workers")
	fs.Int("n-images", 0, "Number of images to process")
	fs.Int("filter-size", 0, "Median window size")
	fs.String("image-dir", "", "Directory holding the images")
	fs.String("log-level", "", "Log level")
	fs.Bool("fail-fast", false, "Abort the batch on the first failed image")
}

// RegisterGeneratorFlags declares the overrides used only by the image
// generator.
func RegisterGeneratorFlags(fs *flag.FlagSet) {
	fs.Uint64("seed", 0, "Random seed for the generated images")
}

// applyCommandLineFlags overrides only the flags set explicitly.
func (r *YAMLConfigReader) applyCommandLineFlags(config *domain.Config) {
	if r.flags == nil {
		return
	}

	r.flags.Visit(func(f *flag.Flag) {
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		switch f.Name {
		case "workers":
			config.Workers = getter.Get().(int)
		case "n-images":
			config.NImages = getter.Get().(int)
		case "filter-size":
			config.FilterSize = getter.Get().(int)
		case "image-dir":
			config.ImageDir = getter.Get().(string)
		case "log-level":
			config.LogLevel = getter.Get().(string)
		case "fail-fast":
			config.FailFast = getter.Get().(bool)
		case "seed":
			config.Generator.Seed = getter.Get().(uint64)
		}
	})
}

func (r *YAMLConfigReader) setDefaults(config *domain.Config) {
	if config.FileFormat == "" {
		config.FileFormat = DefaultFileFormat
	}
	if config.Format == "" {
		config.Format = "fits"
	}
	if config.NY == 0 {
		config.NY = DefaultImageSize
	}
	if config.NX == 0 {
		config.NX = DefaultImageSize
	}
	if config.NImages == 0 {
		config.NImages = DefaultImages
	}
	if config.FilterSize == 0 {
		config.FilterSize = filter.DefaultSize
	}
	if config.Workers == 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Decimals == 0 {
		config.Decimals = 6
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Redis.Addr != "" && config.Redis.Channel == "" {
		config.Redis.Channel = DefaultRedisChannel
	}

	gen := &config.Generator
	if gen.Background == 0 {
		gen.Background = 1000
	}
	if gen.Gradient == 0 {
		gen.Gradient = 0.5
	}
	if gen.Noise == 0 {
		gen.Noise = 10
	}
	if gen.Sources == 0 {
		gen.Sources = 100
	}
	if gen.Flux == 0 {
		gen.Flux = 500
	}
	if gen.FWHM == 0 {
		gen.FWHM = 3
	}
}

func validate(config *domain.Config) error {
	var errs error
	positive := func(name string, v int) {
		if v <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s must be positive, got %d", domain.ErrInvalidConfig, name, v))
		}
	}
	positive("ny", config.NY)
	positive("nx", config.NX)
	positive("n_images", config.NImages)
	positive("filter_size", config.FilterSize)
	positive("workers", config.Workers)

	if config.Decimals < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: decimals must not be negative, got %d", domain.ErrInvalidConfig, config.Decimals))
	}
	if config.JobTimeout < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: job_timeout must not be negative, got %s", domain.ErrInvalidConfig, config.JobTimeout))
	}
	return errs
}

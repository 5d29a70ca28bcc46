package infrastructure

import (
	"fmt"

	"astro-highpass/internal/domain"

	"go.uber.org/zap"
)

// NewImageIO returns the reader and writer for config.Format.
func NewImageIO(logger *zap.Logger, config *domain.Config) (domain.ImageReader, domain.ImageWriter, error) {
	switch config.Format {
	case "fits":
		return NewFITSFileReader(logger), NewFITSFileWriter(logger), nil
	case "txt":
		return NewTXTFileReader(logger), NewTXTFileWriter(logger, FixedFormat(config.Decimals)), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidFileFormat, config.Format)
	}
}

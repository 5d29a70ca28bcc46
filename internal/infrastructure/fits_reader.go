package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"astro-highpass/internal/domain"

	"github.com/astrogo/fitsio"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// FITSFileReader reads the primary HDU of a FITS file as a 2-D grid.
type FITSFileReader struct {
	logger *zap.Logger
}

func NewFITSFileReader(logger *zap.Logger) *FITSFileReader {
	return &FITSFileReader{logger: logger}
}

func (r *FITSFileReader) ReadImage(ctx context.Context, filename string) (*mat.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrImageNotFound, filename)
		}
		return nil, err
	}
	defer file.Close()

	f, err := fitsio.Open(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidFileFormat, filename, err)
	}
	defer f.Close()

	img, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("%w: %s: primary HDU is not an image", domain.ErrInvalidFileFormat, filename)
	}

	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) != 2 {
		return nil, fmt.Errorf("%w: %s has %d axes", domain.ErrNotImage2D, filename, len(axes))
	}
	// NAXIS1 runs fastest: it is the column count.
	nx, ny := axes[0], axes[1]
	if nx == 0 || ny == 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", domain.ErrNotImage2D, filename, ny, nx)
	}

	data, err := readPixels(img, hdr.Bitpix())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if len(data) != nx*ny {
		return nil, fmt.Errorf("%w: %s: %d pixels for %dx%d", domain.ErrInvalidFileFormat, filename, len(data), ny, nx)
	}

	bscale, bzero, err := scaling(hdr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidFileFormat, filename, err)
	}
	if bscale != 1 || bzero != 0 {
		for i, v := range data {
			data[i] = bzero + bscale*v
		}
	}

	r.logger.Debug("Read FITS image",
		zap.String("file", filename),
		zap.Int("bitpix", hdr.Bitpix()),
		zap.Float64("bscale", bscale),
		zap.Float64("bzero", bzero),
		zap.Int("rows", ny),
		zap.Int("cols", nx))

	return mat.NewDense(ny, nx, data), nil
}

// scaling returns the BSCALE and BZERO keywords, 1 and 0 when absent.
// Physical values are BZERO + BSCALE*stored.
func scaling(hdr *fitsio.Header) (bscale, bzero float64, err error) {
	bscale, err = cardFloat(hdr, "BSCALE", 1)
	if err != nil {
		return 0, 0, err
	}
	bzero, err = cardFloat(hdr, "BZERO", 0)
	if err != nil {
		return 0, 0, err
	}
	return bscale, bzero, nil
}

func cardFloat(hdr *fitsio.Header, name string, def float64) (float64, error) {
	card := hdr.Get(name)
	if card == nil {
		return def, nil
	}
	switch v := card.Value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("%s has non-numeric value %v", name, card.Value)
	}
}

func readPixels(img fitsio.Image, bitpix int) ([]float64, error) {
	switch bitpix {
	case 16:
		var raw []int16
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return toFloat64(raw), nil
	case 32:
		var raw []int32
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return toFloat64(raw), nil
	case 64:
		var raw []int64
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return toFloat64(raw), nil
	case -32:
		var raw []float32
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return toFloat64(raw), nil
	case -64:
		var raw []float64
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: unsupported BITPIX %d", domain.ErrInvalidFileFormat, bitpix)
	}
}

func toFloat64[T int16 | int32 | int64 | float32](raw []T) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out
}

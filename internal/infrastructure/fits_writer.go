package infrastructure

import (
	"os"

	"github.com/astrogo/fitsio"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// FITSFileWriter stores a grid as a single 64-bit float primary image.
type FITSFileWriter struct {
	logger *zap.Logger
}

func NewFITSFileWriter(logger *zap.Logger) *FITSFileWriter {
	return &FITSFileWriter{logger: logger}
}

func (w *FITSFileWriter) WriteImage(filename string, data mat.Matrix) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	f, err := fitsio.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, cols := data.Dims()
	pixels := make([]float64, 0, rows*cols)
	for i := range rows {
		for j := range cols {
			pixels = append(pixels, data.At(i, j))
		}
	}

	img := fitsio.NewImage(-64, []int{cols, rows})
	defer img.Close()

	if err := img.Write(&pixels); err != nil {
		return err
	}
	if err := f.Write(img); err != nil {
		return err
	}

	w.logger.Debug("Wrote FITS image",
		zap.String("file", filename),
		zap.Int("rows", rows),
		zap.Int("cols", cols))
	return nil
}

package infrastructure

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"astro-highpass/internal/domain"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// TXTFileReader reads a grid stored as whitespace separated rows.
// Lines starting with '#' are ignored.
type TXTFileReader struct {
	logger *zap.Logger
}

func NewTXTFileReader(logger *zap.Logger) *TXTFileReader {
	return &TXTFileReader{logger: logger}
}

func (r *TXTFileReader) ReadImage(ctx context.Context, filename string) (*mat.Dense, error) {
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

	var data []float64
	cols := 0
	rows := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if cols == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, fmt.Errorf("%w: %s: row %d has %d values, want %d",
				domain.ErrNotImage2D, filename, rows+1, len(fields), cols)
		}

		for _, field := range fields {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidFileFormat, filename, err)
			}
			data = append(data, value)
		}
		rows++
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if rows == 0 {
		return nil, fmt.Errorf("%w: %s: no data", domain.ErrInvalidFileFormat, filename)
	}

	r.logger.Debug("Read text image",
		zap.String("file", filename),
		zap.Int("rows", rows),
		zap.Int("cols", cols))

	return mat.NewDense(rows, cols, data), nil
}

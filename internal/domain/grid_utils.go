package domain

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrInvalidGrid = errors.New("invalid grid")

// GridSummary holds simple statistics of a grid.
type GridSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
}

// Summarize calculates min, max, mean and standard deviation of all samples.
func Summarize(m mat.Matrix) (GridSummary, error) {
	if m == nil {
		return GridSummary{}, ErrInvalidGrid
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return GridSummary{}, ErrInvalidGrid
	}

	values := make([]float64, 0, rows*cols)
	for i := range rows {
		for j := range cols {
			values = append(values, m.At(i, j))
		}
	}

	mean, std := stat.MeanStdDev(values, nil)
	return GridSummary{
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   mean,
		StdDev: std,
	}, nil
}

// SameShape reports whether two grids have identical dimensions.
func SameShape(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}

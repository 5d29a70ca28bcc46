// Package filter implements the spatial filters applied to image frames.
package filter

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// DefaultSize is the window side used when no filter size is configured.
// Features smaller than the window are preserved by HighPass.
const DefaultSize = 50

// HighPass removes the low spatial frequencies from frame by subtracting its
// windowed median. The result has the same shape as frame.
func HighPass(frame mat.Matrix, size int) (*mat.Dense, error) {
	return HighPassContext(context.Background(), frame, size)
}

// HighPassContext is HighPass with cancellation checked once per row.
func HighPassContext(ctx context.Context, frame mat.Matrix, size int) (*mat.Dense, error) {
	smooth, err := Median(ctx, frame, size)
	if err != nil {
		return nil, err
	}

	var residual mat.Dense
	residual.Sub(frame, smooth)
	return &residual, nil
}

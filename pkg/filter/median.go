package filter

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyFrame = errors.New("frame has an empty dimension")
	ErrFilterSize = errors.New("invalid filter size")
)

// Median replaces every sample with the median of the size×size window
// around it.
//
// The window spans offsets [-size/2, size-size/2-1] on both axes, samples
// outside the frame are mirrored with the edge sample repeated
// (d c b a | a b c d | d c b a), and for an even count the upper of the two
// middle values is taken. This matches scipy.ndimage.median_filter with its
// default mode and origin.
func Median(ctx context.Context, frame mat.Matrix, size int) (*mat.Dense, error) {
	rows, cols, err := checkFrame(frame, size)
	if err != nil {
		return nil, err
	}

	src := mat.DenseCopyOf(frame)
	raw := src.RawMatrix()
	smooth := mat.NewDense(rows, cols, nil)

	rowIdx := reflectIndex(rows, size)
	colIdx := reflectIndex(cols, size)

	n := size * size
	window := make([]float64, n)
	rank := n / 2

	for i := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := range cols {
			k := 0
			for _, r := range rowIdx[i : i+size] {
				line := raw.Data[r*raw.Stride : r*raw.Stride+cols]
				for _, c := range colIdx[j : j+size] {
					window[k] = line[c]
					k++
				}
			}
			smooth.Set(i, j, selectKth(window, rank))
		}
	}

	return smooth, nil
}

func checkFrame(frame mat.Matrix, size int) (int, int, error) {
	if frame == nil {
		return 0, 0, ErrEmptyFrame
	}
	rows, cols := frame.Dims()
	if rows == 0 || cols == 0 {
		return 0, 0, ErrEmptyFrame
	}
	if size <= 0 || size > rows || size > cols {
		return 0, 0, fmt.Errorf("%w: %d for a %dx%d frame", ErrFilterSize, size, rows, cols)
	}
	return rows, cols, nil
}

// reflectIndex maps window position p (0..n+size-2) to a source index.
// Position p corresponds to coordinate p-size/2.
func reflectIndex(n, size int) []int {
	idx := make([]int, n+size-1)
	origin := size / 2
	period := 2 * n
	for p := range idx {
		x := (p - origin) % period
		if x < 0 {
			x += period
		}
		if x >= n {
			x = period - 1 - x
		}
		idx[p] = x
	}
	return idx
}

// selectKth returns the k-th smallest value of a, reordering a in place.
func selectKth(a []float64, k int) float64 {
	lo, hi := 0, len(a)-1
	for lo < hi {
		mid := lo + (hi-lo)/2
		// median of three as pivot
		if a[mid] < a[lo] {
			a[mid], a[lo] = a[lo], a[mid]
		}
		if a[hi] < a[lo] {
			a[hi], a[lo] = a[lo], a[hi]
		}
		if a[hi] < a[mid] {
			a[hi], a[mid] = a[mid], a[hi]
		}
		pivot := a[mid]

		i, j := lo, hi
		for i <= j {
			for a[i] < pivot {
				i++
			}
			for a[j] > pivot {
				j--
			}
			if i <= j {
				a[i], a[j] = a[j], a[i]
				i++
				j--
			}
		}
		switch {
		case k <= j:
			hi = j
		case k >= i:
			lo = i
		default:
			return a[k]
		}
	}
	return a[k]
}

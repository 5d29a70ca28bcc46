package filter

import (
	"context"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// bruteMedian is a slow reference: sort the mirrored window, take rank n/2.
func bruteMedian(frame *mat.Dense, size int) *mat.Dense {
	rows, cols := frame.Dims()
	out := mat.NewDense(rows, cols, nil)
	mirror := func(x, n int) int {
		for x < 0 || x >= n {
			if x < 0 {
				x = -x - 1
			}
			if x >= n {
				x = 2*n - 1 - x
			}
		}
		return x
	}
	for i := range rows {
		for j := range cols {
			var window []float64
			for di := -size / 2; di < size-size/2; di++ {
				for dj := -size / 2; dj < size-size/2; dj++ {
					window = append(window, frame.At(mirror(i+di, rows), mirror(j+dj, cols)))
				}
			}
			slices.Sort(window)
			out.Set(i, j, window[len(window)/2])
		}
	}
	return out
}

func randomFrame(rows, cols int, seed int64) *mat.Dense {
	rnd := rand.New(rand.NewSource(seed))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rnd.NormFloat64() * 10
	}
	return mat.NewDense(rows, cols, data)
}

func TestMedianReferenceValues(t *testing.T) {
	frame := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})

	got, err := Median(context.Background(), frame, 3)
	require.NoError(t, err)

	want := mat.NewDense(3, 3, []float64{
		2, 3, 3,
		4, 5, 6,
		7, 7, 8,
	})
	assert.True(t, mat.Equal(want, got), "got %v", mat.Formatted(got))
}

func TestMedianEvenWindowTakesUpperMiddle(t *testing.T) {
	frame := mat.NewDense(2, 2, []float64{
		1, 2,
		3, 4,
	})

	got, err := Median(context.Background(), frame, 2)
	require.NoError(t, err)

	want := mat.NewDense(2, 2, []float64{
		1, 2,
		3, 3,
	})
	assert.True(t, mat.Equal(want, got), "got %v", mat.Formatted(got))
}

func TestMedianMatchesBruteForce(t *testing.T) {
	for _, tc := range []struct {
		rows, cols, size int
	}{
		{1, 1, 1},
		{5, 7, 1},
		{5, 7, 2},
		{5, 7, 5},
		{16, 9, 4},
		{20, 20, 7},
		{12, 30, 12},
	} {
		frame := randomFrame(tc.rows, tc.cols, int64(tc.rows*100+tc.size))
		got, err := Median(context.Background(), frame, tc.size)
		require.NoError(t, err)
		assert.True(t, mat.Equal(bruteMedian(frame, tc.size), got),
			"rows=%d cols=%d size=%d", tc.rows, tc.cols, tc.size)
	}
}

func TestMedianDoesNotModifyInput(t *testing.T) {
	frame := randomFrame(8, 8, 3)
	orig := mat.DenseCopyOf(frame)

	_, err := Median(context.Background(), frame, 3)
	require.NoError(t, err)
	assert.True(t, mat.Equal(orig, frame))
}

func TestMedianRejectsBadArguments(t *testing.T) {
	frame := mat.NewDense(4, 6, nil)

	for _, size := range []int{0, -1, 5, 7} {
		_, err := Median(context.Background(), frame, size)
		assert.ErrorIs(t, err, ErrFilterSize, "size=%d", size)
	}

	_, err := Median(context.Background(), &mat.Dense{}, 1)
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = Median(context.Background(), nil, 1)
	assert.ErrorIs(t, err, ErrEmptyFrame)
}

func TestMedianCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Median(ctx, randomFrame(4, 4, 1), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelectKth(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for n := 1; n < 60; n++ {
		values := make([]float64, n)
		for i := range values {
			// small range to force duplicates
			values[i] = float64(rnd.Intn(5))
		}
		sorted := slices.Clone(values)
		slices.Sort(sorted)
		for k := range n {
			work := slices.Clone(values)
			assert.Equal(t, sorted[k], selectKth(work, k), "n=%d k=%d", n, k)
		}
	}
}

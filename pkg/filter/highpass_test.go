package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func constantFrame(rows, cols int, v float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(rows, cols, data)
}

func TestHighPassConstantFrameIsZero(t *testing.T) {
	got, err := HighPass(constantFrame(4, 4, 5), 2)
	require.NoError(t, err)

	assert.True(t, mat.Equal(mat.NewDense(4, 4, nil), got), "got %v", mat.Formatted(got))
}

func TestHighPassConstantFrameAnySize(t *testing.T) {
	frame := constantFrame(9, 13, -2.5)
	for size := 1; size <= 9; size++ {
		got, err := HighPass(frame, size)
		require.NoError(t, err)
		assert.Zero(t, mat.Norm(got, 1), "size=%d", size)
	}
}

func TestHighPassPreservesShape(t *testing.T) {
	for _, tc := range []struct {
		rows, cols, size int
	}{
		{1, 1, 1},
		{1, 50, 1},
		{30, 7, 7},
		{64, 64, 50},
	} {
		got, err := HighPass(randomFrame(tc.rows, tc.cols, 7), tc.size)
		require.NoError(t, err)
		r, c := got.Dims()
		assert.Equal(t, tc.rows, r)
		assert.Equal(t, tc.cols, c)
	}
}

func TestHighPassReferenceValues(t *testing.T) {
	frame := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})

	got, err := HighPass(frame, 3)
	require.NoError(t, err)

	want := mat.NewDense(3, 3, []float64{
		-1, -1, 0,
		0, 0, 0,
		0, 1, 1,
	})
	assert.True(t, mat.Equal(want, got), "got %v", mat.Formatted(got))
}

func TestHighPassDeterministic(t *testing.T) {
	frame := randomFrame(25, 31, 11)
	for _, size := range []int{1, 2, 5, 25} {
		first, err := HighPass(frame, size)
		require.NoError(t, err)
		second, err := HighPass(frame, size)
		require.NoError(t, err)
		assert.True(t, mat.Equal(first, second), "size=%d", size)
	}
}

func TestHighPassKeepsPointSource(t *testing.T) {
	frame := constantFrame(21, 21, 100)
	frame.Set(10, 10, 150)

	got, err := HighPass(frame, 5)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.At(10, 10))
	assert.Equal(t, 0.0, got.At(0, 0))
}

func TestHighPassContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := HighPassContext(ctx, constantFrame(3, 3, 1), 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHighPassRejectsOversizedWindow(t *testing.T) {
	_, err := HighPass(constantFrame(10, 40, 1), DefaultSize)
	assert.ErrorIs(t, err, ErrFilterSize)
}

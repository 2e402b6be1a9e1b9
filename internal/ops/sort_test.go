package ops

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

func TestSortRows(t *testing.T) {
	q := queue.NewDefault()
	src := fromSlice(t, q, []int32{3, 1, 2, 9, -1, 5}, 2, 3)

	dst := zeros(t, q, tensor.Int32, 2, 3)
	reuse, compute, err := Sort(q, src, dst, 1, false, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []int32{1, 2, 3, -1, 5, 9}, values[int32](t, dst))

	// Both axes flattened, in place.
	reuse, compute, err = Sort(q, src, src, 2, true, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []int32{9, 5, 3, 2, 1, -1}, values[int32](t, src))
}

func TestSortNaN(t *testing.T) {
	q := queue.NewDefault()
	nan := math.NaN()
	src := fromSlice(t, q, []float64{2, nan, -1, 0})

	dst := zeros(t, q, tensor.Float64, 4)
	reuse, compute, err := Sort(q, src, dst, 1, false, nil)
	done(t, reuse, compute, err)
	got := values[float64](t, dst)
	assert.Equal(t, []float64{-1, 0, 2}, got[:3])
	assert.True(t, math.IsNaN(got[3]))

	reuse, compute, err = Sort(q, src, dst, 1, true, nil)
	done(t, reuse, compute, err)
	got = values[float64](t, dst)
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, []float64{2, 0, -1}, got[1:])
}

func TestSortValidation(t *testing.T) {
	q := queue.NewDefault()
	src := arange(q, t, 2, 3)
	srcT, err := src.Permute()
	require.NoError(t, err)

	_, _, err = Sort(q, srcT, zeros(t, q, tensor.Int32, 3, 2), 1, false, nil)
	assert.True(t, errors.Is(err, tensor.ErrShape), "non-contiguous source")

	_, _, err = Sort(q, src, zeros(t, q, tensor.Int32, 2, 3), 3, false, nil)
	assert.True(t, errors.Is(err, tensor.ErrShape), "too many trailing axes")

	head, err := src.Slice(0, 0, 1, 1)
	require.NoError(t, err)
	tail, err := src.Reshape(tensor.Shape{6})
	require.NoError(t, err)
	tail, err = tail.Slice(0, 2, 5, 1)
	require.NoError(t, err)
	head, err = head.Reshape(tensor.Shape{3})
	require.NoError(t, err)
	_, _, err = Sort(q, head, tail, 1, false, nil)
	assert.True(t, errors.Is(err, tensor.ErrAliasing))
}

package ops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

func fromSlice[T tensor.Element](t *testing.T, q *queue.Queue, data []T, shape ...int) *tensor.RawTensor {
	t.Helper()
	if shape == nil {
		shape = []int{len(data)}
	}
	r, err := tensor.FromSlice(q, data, tensor.Shape(shape))
	require.NoError(t, err)
	return r
}

func zeros(t *testing.T, q *queue.Queue, dt tensor.DataType, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.Zeros(q, tensor.Shape(shape), dt)
	require.NoError(t, err)
	return r
}

func values[T tensor.Element](t *testing.T, r *tensor.RawTensor) []T {
	t.Helper()
	out, err := tensor.ToSlice[T](r)
	require.NoError(t, err)
	return out
}

// done waits for both events of a call.
func done(t *testing.T, reuse, compute *queue.Event, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NoError(t, compute.Wait())
	require.NoError(t, reuse.Wait())
}

package tensor

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dispatch/internal/queue"
)

func TestNewRaw(t *testing.T) {
	q := queue.NewDefault()
	raw, err := NewRaw(q, Shape{3, 2}, Int64)
	require.NoError(t, err)

	assert.Equal(t, Shape{3, 2}, raw.Shape())
	assert.Equal(t, []int{2, 1}, raw.Strides())
	assert.Equal(t, 48, raw.Allocation().Size())
	assert.Same(t, q.Context(), raw.Context())
	assert.True(t, raw.IsWritable())
	assert.True(t, raw.IsCContiguous())
	assert.Equal(t, 6, raw.Capacity())
}

func TestNewRaw_EmptyAndInvalid(t *testing.T) {
	q := queue.NewDefault()

	raw, err := NewRaw(q, Shape{0, 4}, Float32)
	require.NoError(t, err)
	assert.Equal(t, 0, raw.NumElements())

	_, err = NewRaw(q, Shape{-1}, Float32)
	assert.True(t, errors.Is(err, ErrShape))

	_, err = NewRaw(q, Shape{2}, DataType(99))
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestNewView(t *testing.T) {
	ctx := queue.NewContext()
	alloc, err := ctx.MallocDevice(10 * 4)
	require.NoError(t, err)

	v, err := NewView(alloc, Int32, Shape{5}, []int{2}, 0)
	require.NoError(t, err)
	lo, hi := v.ElementSpan()
	assert.Equal(t, 0, lo)
	assert.Equal(t, 9, hi)

	_, err = NewView(alloc, Int32, Shape{5}, []int{2}, 2)
	assert.True(t, errors.Is(err, ErrInsufficientCapacity))

	_, err = NewView(alloc, Int32, Shape{5}, []int{1, 1}, 0)
	assert.True(t, errors.Is(err, ErrShape), "rank of shape and strides must agree")

	// Negative strides address elements below the offset.
	rev, err := NewView(alloc, Int32, Shape{10}, []int{-1}, 9)
	require.NoError(t, err)
	lo, hi = rev.ByteSpan()
	assert.Equal(t, 0, lo)
	assert.Equal(t, 40, hi)

	_, err = NewView(alloc, Int32, Shape{10}, []int{-1}, 8)
	assert.Error(t, err)
}

func TestSameLogicalTensor(t *testing.T) {
	q := queue.NewDefault()
	a, err := NewRaw(q, Shape{2, 1, 3}, Float32)
	require.NoError(t, err)

	b, err := NewView(a.Allocation(), Float32, Shape{2, 1, 3}, []int{3, 42, 1}, 0)
	require.NoError(t, err)
	assert.True(t, a.SameLogicalTensor(b))

	c, err := a.Slice(2, 1, 3, 1)
	require.NoError(t, err)
	assert.False(t, a.SameLogicalTensor(c))
}

func TestReadOnly(t *testing.T) {
	q := queue.NewDefault()
	a, err := NewRaw(q, Shape{4}, Uint8)
	require.NoError(t, err)

	ro := a.ReadOnly()
	assert.False(t, ro.IsWritable())
	assert.True(t, a.IsWritable())
	assert.True(t, a.SameLogicalTensor(ro))
}

func TestRawTensorLogValue(t *testing.T) {
	q := queue.NewDefault()
	a, err := NewRaw(q, Shape{2, 2}, Float64)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("tensor", "src", a)

	out := buf.String()
	assert.Contains(t, out, "src.dtype=float64")
	assert.Contains(t, out, "src.shape=\"[2 2]\"")
	assert.Contains(t, out, "src.offset=0")
}

func TestView(t *testing.T) {
	ctx := queue.NewContext()
	alloc, err := ctx.MallocDevice(17)
	require.NoError(t, err)

	data, err := View[int64](alloc)
	require.NoError(t, err)
	assert.Len(t, data, 2)

	data[1] = 42
	again, err := View[int64](alloc)
	require.NoError(t, err)
	assert.Equal(t, int64(42), again[1], "views share memory")

	require.NoError(t, alloc.Free())
	_, err = View[int64](alloc)
	assert.True(t, errors.Is(err, queue.ErrFreed))
}

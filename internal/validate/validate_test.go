package validate

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

func mustRaw(t *testing.T, q *queue.Queue, shape tensor.Shape, dt tensor.DataType) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(q, shape, dt)
	require.NoError(t, err)
	return r
}

func TestWritable(t *testing.T) {
	q := queue.NewDefault()
	a := mustRaw(t, q, tensor.Shape{3}, tensor.Float32)
	assert.NoError(t, Writable("op", a))
	assert.True(t, errors.Is(Writable("op", a.ReadOnly()), tensor.ErrNotWritable))
}

func TestSameTypeAndShape(t *testing.T) {
	q := queue.NewDefault()
	a := mustRaw(t, q, tensor.Shape{3}, tensor.Int32)
	b := mustRaw(t, q, tensor.Shape{3}, tensor.Int64)

	assert.NoError(t, SameType("op", tensor.Int32, a))
	assert.True(t, errors.Is(SameType("op", tensor.Int32, a, b), tensor.ErrTypeMismatch))

	assert.NoError(t, SameShape("op", tensor.Shape{3}, a, b))
	assert.True(t, errors.Is(SameShape("op", tensor.Shape{4}, a), tensor.ErrShape))
}

func TestContextsCompatible(t *testing.T) {
	q := queue.NewDefault()
	other := queue.NewDefault()
	a := mustRaw(t, q, tensor.Shape{2}, tensor.Bool)
	b := mustRaw(t, other, tensor.Shape{2}, tensor.Bool)

	assert.NoError(t, ContextsCompatible("op", q, a))
	err := ContextsCompatible("op", q, a, b)
	assert.True(t, errors.Is(err, tensor.ErrContextMismatch))

	// A second queue over the same context is compatible.
	q2 := queue.New(q.Context(), queue.DefaultConfig())
	assert.NoError(t, ContextsCompatible("op", q2, a))
}

func TestOverlap(t *testing.T) {
	q := queue.NewDefault()
	base := mustRaw(t, q, tensor.Shape{10}, tensor.Int16)

	lo, err := base.Slice(0, 0, 5, 1)
	require.NoError(t, err)
	hi, err := base.Slice(0, 5, 10, 1)
	require.NoError(t, err)
	mid, err := base.Slice(0, 3, 8, 1)
	require.NoError(t, err)
	empty, err := base.Slice(0, 4, 4, 1)
	require.NoError(t, err)

	assert.False(t, Overlap(lo, hi), "adjacent halves do not overlap")
	assert.True(t, Overlap(lo, mid))
	assert.True(t, Overlap(mid, hi))
	assert.False(t, Overlap(empty, base))
	assert.False(t, Overlap(base, mustRaw(t, q, tensor.Shape{10}, tensor.Int16)))

	assert.NoError(t, NoOverlap("op", hi, lo))
	assert.True(t, errors.Is(NoOverlap("op", mid, lo, hi), tensor.ErrAliasing))
	assert.True(t, errors.Is(NoOverlap("op", base, base), tensor.ErrAliasing))
	assert.NoError(t, NoOverlapExceptIdentical("op", base, base))
	assert.True(t, errors.Is(NoOverlapExceptIdentical("op", base, mid), tensor.ErrAliasing))
}

func TestOverlap_InterleavedSpansAreConservative(t *testing.T) {
	q := queue.NewDefault()
	base := mustRaw(t, q, tensor.Shape{8}, tensor.Uint8)
	even, err := base.Slice(0, 0, 8, 2)
	require.NoError(t, err)
	odd, err := base.Slice(0, 1, 8, 2)
	require.NoError(t, err)

	// Element sets are disjoint but the spans intersect.
	assert.True(t, Overlap(even, odd))
}

func TestAmpleMemory(t *testing.T) {
	q := queue.NewDefault()
	a := mustRaw(t, q, tensor.Shape{6}, tensor.Float64)
	tail, err := a.Slice(0, 4, 6, 1)
	require.NoError(t, err)

	assert.NoError(t, AmpleMemory("op", a, 6))
	assert.NoError(t, AmpleMemory("op", tail, 2))
	assert.True(t, errors.Is(AmpleMemory("op", tail, 3), tensor.ErrInsufficientCapacity))

	rev, err := a.Flip(0)
	require.NoError(t, err)
	assert.NoError(t, AmpleMemory("op", rev, 6))
}

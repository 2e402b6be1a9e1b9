package ops

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

func TestUnaryAllSupportedTypes(t *testing.T) {
	q := queue.NewDefault()
	for _, op := range []*UnaryOp{Abs, Negative, Exp2, IsFinite, LogicalNot} {
		for _, dt := range tensor.AllTypes() {
			out, err := op.ResultType(dt)
			if err != nil {
				assert.True(t, errors.Is(err, tensor.ErrUnsupportedOperationForType), "%s(%s)", op.Name(), dt)
				continue
			}
			src := zeros(t, q, dt, 2, 3)
			dst := zeros(t, q, out, 2, 3)
			reuse, compute, err := op.Apply(q, src, dst, nil)
			done(t, reuse, compute, err)
		}
	}
}

func TestUnaryValues(t *testing.T) {
	q := queue.NewDefault()
	src := fromSlice(t, q, []int32{-1, 2, -3, 4, -5, 6}, 2, 3)

	dst := zeros(t, q, tensor.Int32, 2, 3)
	reuse, compute, err := Abs.Apply(q, src, dst, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []int32{1, 2, 3, 4, 5, 6}, values[int32](t, dst))

	// Transposed source takes the strided path.
	srcT, err := src.Permute()
	require.NoError(t, err)
	dstT := zeros(t, q, tensor.Int32, 3, 2)
	reuse, compute, err = Negative.Apply(q, srcT, dstT, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []int32{1, -4, -2, 5, 3, -6}, values[int32](t, dstT))

	// In place.
	reuse, compute, err = Negative.Apply(q, src, src, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []int32{1, -2, 3, -4, 5, -6}, values[int32](t, src))
}

func TestUnaryComplexAbsIsReal(t *testing.T) {
	q := queue.NewDefault()
	out, err := Abs.ResultType(tensor.Complex128)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float64, out)

	src := fromSlice(t, q, []complex128{3 + 4i, -5})
	dst := zeros(t, q, tensor.Float64, 2)
	reuse, compute, err := Abs.Apply(q, src, dst, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []float64{5, 5}, values[float64](t, dst))

	// A complex destination is a type mismatch.
	_, _, err = Abs.Apply(q, src, zeros(t, q, tensor.Complex128, 2), nil)
	assert.True(t, errors.Is(err, tensor.ErrTypeMismatch))
}

func TestUnsupportedLeavesNoAllocations(t *testing.T) {
	q := queue.NewDefault()
	src := zeros(t, q, tensor.Int32, 2, 3)
	dst := zeros(t, q, tensor.Int32, 2, 3)
	q.Wait()
	before := q.Context().Stats()

	_, _, err := Exp2.Apply(q, src, dst, nil)
	assert.True(t, errors.Is(err, tensor.ErrUnsupportedOperationForType))
	_, _, err = Add.Apply(q, src, zeros(t, q, tensor.Int64, 2, 3), dst, nil)
	assert.True(t, errors.Is(err, tensor.ErrUnsupportedOperationForType))

	q.Wait()
	after := q.Context().Stats()
	// Only the Int64 operand was allocated.
	before.Allocated[queue.Device]++
	before.LiveBytes += 6 * 8
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("stats changed (-want +got):\n%s", diff)
	}
}

func TestValidationErrors(t *testing.T) {
	q := queue.NewDefault()
	a := zeros(t, q, tensor.Float32, 6)

	_, _, err := Abs.Apply(q, a, a.ReadOnly(), nil)
	assert.True(t, errors.Is(err, tensor.ErrNotWritable))

	_, _, err = Abs.Apply(q, a, zeros(t, q, tensor.Float32, 5), nil)
	assert.True(t, errors.Is(err, tensor.ErrShape))

	other := queue.NewDefault()
	_, _, err = Abs.Apply(q, a, zeros(t, other, tensor.Float32, 6), nil)
	assert.True(t, errors.Is(err, tensor.ErrContextMismatch))
}

func TestOverlap(t *testing.T) {
	q := queue.NewDefault()
	a := fromSlice(t, q, []float32{1, 2, 3, 4, 5, 6})
	head, err := a.Slice(0, 0, 4, 1)
	require.NoError(t, err)
	tail, err := a.Slice(0, 2, 6, 1)
	require.NoError(t, err)

	_, _, err = Abs.Apply(q, head, tail, nil)
	assert.True(t, errors.Is(err, tensor.ErrAliasing))

	lo, err := a.Slice(0, 0, 3, 1)
	require.NoError(t, err)
	hi, err := a.Slice(0, 3, 6, 1)
	require.NoError(t, err)
	reuse, compute, err := Negative.Apply(q, lo, hi, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []float32{1, 2, 3, -1, -2, -3}, values[float32](t, a))
}

func TestZeroSizeIsNoop(t *testing.T) {
	q := queue.NewDefault()
	src := zeros(t, q, tensor.Float64, 0, 3)
	dst := zeros(t, q, tensor.Float64, 0, 3)
	submitted := q.Submitted()

	reuse, compute, err := Exp2.Apply(q, src, dst, nil)
	require.NoError(t, err)
	assert.True(t, reuse.IsComplete())
	assert.True(t, compute.IsComplete())
	assert.Equal(t, submitted, q.Submitted())
}

func TestBinaryBroadcastPaths(t *testing.T) {
	q := queue.NewDefault()
	mat := fromSlice(t, q, []int64{1, 2, 3, 4, 5, 6}, 2, 3)
	row := fromSlice(t, q, []int64{10, 20, 30})
	want := []int64{11, 22, 33, 14, 25, 36}

	dst := zeros(t, q, tensor.Int64, 2, 3)
	reuse, compute, err := Add.Apply(q, mat, row, dst, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, want, values[int64](t, dst))

	dst = zeros(t, q, tensor.Int64, 2, 3)
	reuse, compute, err = Add.Apply(q, row, mat, dst, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, want, values[int64](t, dst))

	col := fromSlice(t, q, []int64{1, 2}, 2, 1)
	dst = zeros(t, q, tensor.Int64, 2, 3)
	reuse, compute, err = Multiply.Apply(q, col, row, dst, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []int64{10, 20, 30, 20, 40, 60}, values[int64](t, dst))

	_, _, err = Add.Apply(q, mat, row, zeros(t, q, tensor.Int64, 3, 3), nil)
	assert.True(t, errors.Is(err, tensor.ErrShape))
}

func TestBinaryMixedAndLogical(t *testing.T) {
	q := queue.NewDefault()

	a := fromSlice(t, q, []int64{-1, 5, 7})
	b := fromSlice(t, q, []uint64{0, 5, 1 << 63})
	out, err := Greater.ResultType(tensor.Int64, tensor.Uint64)
	require.NoError(t, err)
	require.Equal(t, tensor.Bool, out)
	dst := zeros(t, q, tensor.Bool, 3)
	reuse, compute, err := Greater.Apply(q, a, b, dst, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []bool{false, false, false}, values[bool](t, dst))

	x := fromSlice(t, q, []float32{0, 0, 2})
	y := fromSlice(t, q, []int8{0, 3, 0})
	dst = zeros(t, q, tensor.Bool, 3)
	reuse, compute, err = LogicalOr.Apply(q, x, y, dst, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []bool{false, true, true}, values[bool](t, dst))
}

func TestDependenciesOrderWork(t *testing.T) {
	q := queue.NewDefault()
	a := fromSlice(t, q, []float64{1, 2, 3})
	b := zeros(t, q, tensor.Float64, 3)
	c := zeros(t, q, tensor.Float64, 3)

	_, first, err := Negative.Apply(q, a, b, nil)
	require.NoError(t, err)
	reuse, second, err := Add.Apply(q, a, b, c, []*queue.Event{first})
	done(t, reuse, second, err)
	assert.Equal(t, []float64{0, 0, 0}, values[float64](t, c))
}

package ops

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

func arange(q *queue.Queue, t *testing.T, rows, cols int) *tensor.RawTensor {
	t.Helper()
	data := make([]int32, rows*cols)
	for i := range data {
		data[i] = int32(i)
	}
	return fromSlice(t, q, data, rows, cols)
}

func TestTakeAlongAxis(t *testing.T) {
	q := queue.NewDefault()
	src := arange(q, t, 4, 5)
	ind := fromSlice(t, q, []int64{0, 5, -1})

	dst := zeros(t, q, tensor.Int32, 4, 3)
	reuse, compute, err := Take(q, src, []*tensor.RawTensor{ind}, dst, 1, Wrap, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []int32{0, 0, 4, 5, 5, 9, 10, 10, 14, 15, 15, 19}, values[int32](t, dst))

	// The destination must have shape (4, 3).
	_, _, err = Take(q, src, []*tensor.RawTensor{ind}, zeros(t, q, tensor.Int32, 4, 5), 1, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrShape))
}

func TestTakeModes(t *testing.T) {
	q := queue.NewDefault()
	src := fromSlice(t, q, []float64{10, 11, 12, 13, 14})

	tests := []struct {
		name string
		mode Mode
		ind  []int32
		want []float64
	}{
		{"wrap length is zero", Wrap, []int32{5, 0}, []float64{10, 10}},
		{"wrap negative", Wrap, []int32{-1, -6, 12}, []float64{14, 14, 12}},
		{"clip beyond upper bound", Clip, []int32{7, 4, 100}, []float64{14, 14, 14}},
		{"clip negative", Clip, []int32{-1, -9}, []float64{14, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := fromSlice(t, q, tt.ind)
			dst := zeros(t, q, tensor.Float64, len(tt.ind))
			reuse, compute, err := Take(q, src, []*tensor.RawTensor{ind}, dst, 0, tt.mode, nil)
			done(t, reuse, compute, err)
			assert.Equal(t, tt.want, values[float64](t, dst))
		})
	}
}

func TestTakeLargeUnsignedIndices(t *testing.T) {
	q := queue.NewDefault()
	src := fromSlice(t, q, []float64{10, 11, 12, 13, 14})
	ind := fromSlice(t, q, []uint64{math.MaxUint64, 1<<63 + 3})

	dst := zeros(t, q, tensor.Float64, 2)
	reuse, compute, err := Take(q, src, []*tensor.RawTensor{ind}, dst, 0, Wrap, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []float64{10, 11}, values[float64](t, dst))

	reuse, compute, err = Take(q, src, []*tensor.RawTensor{ind}, dst, 0, Clip, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []float64{14, 14}, values[float64](t, dst))
}

func TestTakeMultipleIndexArrays(t *testing.T) {
	q := queue.NewDefault()
	src := arange(q, t, 3, 4)
	rows := fromSlice(t, q, []uint8{0, 2, 1, 1}, 2, 2)
	cols := fromSlice(t, q, []uint8{1, 3, 0, 2}, 2, 2)

	dst := zeros(t, q, tensor.Int32, 2, 2)
	reuse, compute, err := Take(q, src, []*tensor.RawTensor{rows, cols}, dst, 0, Wrap, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []int32{1, 11, 4, 6}, values[int32](t, dst))
}

func TestTakeFromScalar(t *testing.T) {
	q := queue.NewDefault()
	src := fromSlice(t, q, []int16{7}, []int{}...)
	require.Equal(t, 0, src.NDim())
	ind := fromSlice(t, q, []int64{0, 3, -2})

	dst := zeros(t, q, tensor.Int16, 3)
	reuse, compute, err := Take(q, src, []*tensor.RawTensor{ind}, dst, 0, Clip, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []int16{7, 7, 7}, values[int16](t, dst))
}

func TestPutTakeRoundTrip(t *testing.T) {
	q := queue.NewDefault()
	dst := zeros(t, q, tensor.Int32, 4, 5)
	ind := fromSlice(t, q, []int64{3, -4})
	val := fromSlice(t, q, []int32{1, 2, 3, 4, 5, 6, 7, 8}, 4, 2)

	_, put, err := Put(q, dst, []*tensor.RawTensor{ind}, val, 1, Wrap, nil)
	require.NoError(t, err)

	back := zeros(t, q, tensor.Int32, 4, 2)
	reuse, compute, err := Take(q, dst, []*tensor.RawTensor{ind}, back, 1, Wrap, []*queue.Event{put})
	done(t, reuse, compute, err)
	assert.Equal(t, values[int32](t, val), values[int32](t, back))
	assert.Equal(t, []int32{
		0, 2, 0, 1, 0,
		0, 4, 0, 3, 0,
		0, 6, 0, 5, 0,
		0, 8, 0, 7, 0,
	}, values[int32](t, dst))
}

func TestPutDuplicatesAndBroadcast(t *testing.T) {
	q := queue.NewDefault()
	dst := zeros(t, q, tensor.Float32, 5)

	ind := fromSlice(t, q, []int32{1, 1, 3})
	val := fromSlice(t, q, []float32{10, 20, 30})
	reuse, compute, err := Put(q, dst, []*tensor.RawTensor{ind}, val, 0, Clip, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []float32{0, 20, 0, 30, 0}, values[float32](t, dst))

	scalar := fromSlice(t, q, []float32{-1}, []int{}...)
	ind = fromSlice(t, q, []int32{0, 9})
	reuse, compute, err = Put(q, dst, []*tensor.RawTensor{ind}, scalar, 0, Clip, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []float32{-1, 20, 0, 30, -1}, values[float32](t, dst))
}

func TestIndexValidation(t *testing.T) {
	q := queue.NewDefault()
	src := arange(q, t, 3, 4)
	i3 := fromSlice(t, q, []int64{0, 1, 2})
	i2 := fromSlice(t, q, []int64{0, 1})
	i32 := fromSlice(t, q, []int32{0, 1, 2})
	dst := zeros(t, q, tensor.Int32, 3)

	_, _, err := Take(q, src, []*tensor.RawTensor{i3, i2}, dst, 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrShape), "index shapes differ")

	_, _, err = Take(q, src, []*tensor.RawTensor{i3, i32}, dst, 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrTypeMismatch), "index types differ")

	fi := fromSlice(t, q, []float32{0, 1, 2})
	_, _, err = Take(q, src, []*tensor.RawTensor{fi}, zeros(t, q, tensor.Int32, 3, 4), 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrUnsupportedOperationForType), "float indices")

	_, _, err = Take(q, src, nil, dst, 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrShape), "no index arrays")

	_, _, err = Take(q, src, []*tensor.RawTensor{i3}, dst, 2, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrShape), "axis out of range")

	_, _, err = Take(q, src, []*tensor.RawTensor{i3}, zeros(t, q, tensor.Int32, 3, 4), 0, Mode(7), nil)
	assert.True(t, errors.Is(err, ErrInvalidMode))

	_, _, err = Take(q, src, []*tensor.RawTensor{i3}, zeros(t, q, tensor.Int64, 3, 4), 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrTypeMismatch), "destination type")

	_, _, err = Put(q, src.ReadOnly(), []*tensor.RawTensor{i3}, zeros(t, q, tensor.Int32, 3, 4), 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrNotWritable))
}

func TestIndexChecksDestinationBeforeIndexType(t *testing.T) {
	q := queue.NewDefault()
	src := arange(q, t, 3, 4)
	fi := fromSlice(t, q, []float32{0, 1, 2})

	_, _, err := Take(q, src, []*tensor.RawTensor{fi}, zeros(t, q, tensor.Int64, 3, 4), 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrTypeMismatch), "take destination type")
	_, _, err = Take(q, src, []*tensor.RawTensor{fi}, zeros(t, q, tensor.Int32, 4, 4), 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrShape), "take destination shape")

	_, _, err = Put(q, src, []*tensor.RawTensor{fi}, zeros(t, q, tensor.Int64, 3, 4), 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrTypeMismatch), "put value type")
	_, _, err = Put(q, src, []*tensor.RawTensor{fi}, zeros(t, q, tensor.Int32, 2, 4), 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrShape), "put value shape")
}

func TestIndexDegenerateCases(t *testing.T) {
	q := queue.NewDefault()

	// Nothing to gather: out-of-range indices are never looked at.
	src := zeros(t, q, tensor.Int32, 0, 5)
	ind := fromSlice(t, q, []int64{100})
	submitted := q.Submitted()
	reuse, compute, err := Take(q, src, []*tensor.RawTensor{ind}, zeros(t, q, tensor.Int32, 0, 1), 1, Wrap, nil)
	require.NoError(t, err)
	assert.True(t, reuse.IsComplete())
	assert.True(t, compute.IsComplete())
	assert.Equal(t, submitted, q.Submitted())

	empty := zeros(t, q, tensor.Int64, 0)
	_, _, err = Put(q, zeros(t, q, tensor.Int32, 4, 5), []*tensor.RawTensor{empty}, zeros(t, q, tensor.Int32, 4, 0), 1, Clip, nil)
	require.NoError(t, err)

	// Gathering from an empty axis has no valid index.
	_, _, err = Take(q, zeros(t, q, tensor.Int32, 4, 0), []*tensor.RawTensor{ind}, zeros(t, q, tensor.Int32, 4, 1), 1, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrShape))
}

func TestIndexOverlap(t *testing.T) {
	q := queue.NewDefault()
	a := fromSlice(t, q, []int64{0, 1, 2, 3, 4, 5})
	src, err := a.Slice(0, 0, 3, 1)
	require.NoError(t, err)
	dst, err := a.Slice(0, 3, 6, 1)
	require.NoError(t, err)

	// Index arrays may share memory with the source, never with the destination.
	reuse, compute, err := Take(q, src, []*tensor.RawTensor{a}, zeros(t, q, tensor.Int64, 6), 0, Wrap, nil)
	done(t, reuse, compute, err)
	_, _, err = Take(q, src, []*tensor.RawTensor{src}, src, 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrAliasing))
	_, _, err = Take(q, src, []*tensor.RawTensor{dst}, dst, 0, Wrap, nil)
	assert.True(t, errors.Is(err, tensor.ErrAliasing))

	// Disjoint halves of one allocation.
	ind := fromSlice(t, q, []int64{2, 1, 0})
	reuse, compute, err = Take(q, src, []*tensor.RawTensor{ind}, dst, 0, Wrap, nil)
	done(t, reuse, compute, err)
	assert.Equal(t, []int64{0, 1, 2, 2, 1, 0}, values[int64](t, a))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("clip")
	require.NoError(t, err)
	assert.Equal(t, Clip, m)
	m, err = ParseMode("wrap")
	require.NoError(t, err)
	assert.Equal(t, Wrap, m)
	_, err = ParseMode("raise")
	assert.True(t, errors.Is(err, ErrInvalidMode))
}

func TestConcurrentIndexingReleasesScratch(t *testing.T) {
	const (
		workers = 16
		chains  = 20
	)
	q := queue.NewDefault()
	q.Wait()
	base := q.Context().Stats()

	outs := make([]*tensor.RawTensor, workers)
	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			data := make([]int32, 20)
			for i := range data {
				data[i] = int32(100*w + i)
			}
			src, err := tensor.FromSlice(q, data, tensor.Shape{4, 5})
			if err != nil {
				return err
			}
			ind, err := tensor.FromSlice(q, []int64{0, 5, -1}, tensor.Shape{3})
			if err != nil {
				return err
			}
			mid, err := tensor.Zeros(q, tensor.Shape{4, 3}, tensor.Int32)
			if err != nil {
				return err
			}
			out, err := tensor.Zeros(q, tensor.Shape{4, 5}, tensor.Int32)
			if err != nil {
				return err
			}
			outs[w] = out
			inds := []*tensor.RawTensor{ind}
			for range chains {
				_, taken, err := Take(q, src, inds, mid, 1, Wrap, nil)
				if err != nil {
					return err
				}
				reuse, put, err := Put(q, out, inds, mid, 1, Wrap, []*queue.Event{taken})
				if err != nil {
					return err
				}
				if err := queue.WaitAll(put, reuse); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	q.Wait()

	for w, out := range outs {
		r := int32(100 * w)
		assert.Equal(t, []int32{
			r, 0, 0, 0, r + 4,
			r + 5, 0, 0, 0, r + 9,
			r + 10, 0, 0, 0, r + 14,
			r + 15, 0, 0, 0, r + 19,
		}, values[int32](t, out), "worker %d", w)
	}

	s := q.Context().Stats()
	assert.Equal(t, int64(0), s.Live(queue.Host), "host staging")
	assert.Equal(t, int64(0), s.Live(queue.Shared))
	// Four tensors per worker: src, ind, mid and out.
	assert.Equal(t, base.Live(queue.Device)+4*workers, s.Live(queue.Device))
	assert.Equal(t, base.LiveBytes+workers*(80+24+48+80), s.LiveBytes)
	assert.Greater(t, s.Allocated[queue.Host], base.Allocated[queue.Host], "staging was used")
}

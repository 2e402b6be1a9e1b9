package kernels

import (
	"cmp"
	"math"
	"slices"

	"github.com/x448/float16"

	"github.com/born-ml/dispatch/internal/parallel"
	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

// SortFn stably sorts iterN contiguous rows of sortN elements from src into dst.
// src and dst may be the same memory.
type SortFn func(q *queue.Queue, iterN, sortN int, src, dst *queue.Allocation, srcOff, dstOff int,
	deps []*queue.Event) *queue.Event

// compareFloat orders NaN after every other value.
func compareFloat[T float32 | float64](a, b T) int {
	an, bn := math.IsNaN(float64(a)), math.IsNaN(float64(b))
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	return cmp.Compare(a, b)
}

func compareComplex[T complex64 | complex128](a, b T) int {
	x, y := complex128(a), complex128(b)
	if c := compareFloat(real(x), real(y)); c != 0 {
		return c
	}
	return compareFloat(imag(x), imag(y))
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case b:
		return -1
	}
	return 1
}

// ascending returns the ascending order of T, NaN last.
func ascending[T tensor.Element]() func(a, b T) int {
	var zero T
	var f any
	switch any(zero).(type) {
	case bool:
		f = compareBool
	case int8:
		f = cmp.Compare[int8]
	case uint8:
		f = cmp.Compare[uint8]
	case int16:
		f = cmp.Compare[int16]
	case uint16:
		f = cmp.Compare[uint16]
	case int32:
		f = cmp.Compare[int32]
	case uint32:
		f = cmp.Compare[uint32]
	case int64:
		f = cmp.Compare[int64]
	case uint64:
		f = cmp.Compare[uint64]
	case float16.Float16:
		f = func(a, b float16.Float16) int { return compareFloat(a.Float32(), b.Float32()) }
	case float32:
		f = compareFloat[float32]
	case float64:
		f = compareFloat[float64]
	case complex64:
		f = compareComplex[complex64]
	case complex128:
		f = compareComplex[complex128]
	}
	return f.(func(a, b T) int)
}

func sortRows[T tensor.Element](descending bool) SortFn {
	name := "sort_ascending"
	order := ascending[T]()
	if descending {
		name = "sort_descending"
		asc := order
		order = func(a, b T) int { return asc(b, a) }
	}
	return func(q *queue.Queue, iterN, sortN int, src, dst *queue.Allocation, srcOff, dstOff int,
		deps []*queue.Event) *queue.Event {
		return q.Submit(name, deps, func() error {
			in, err := tensor.View[T](src)
			if err != nil {
				return err
			}
			out, err := tensor.View[T](dst)
			if err != nil {
				return err
			}
			n := iterN * sortN
			in, out = in[srcOff:srcOff+n], out[dstOff:dstOff+n]
			parallel.ForRange(iterN, func(start, end int) {
				for r := start; r < end; r++ {
					row := out[r*sortN : (r+1)*sortN]
					copy(row, in[r*sortN:(r+1)*sortN])
					slices.SortStableFunc(row, order)
				}
			}, q.Parallel())
			return nil
		})
	}
}

func sortFactory(descending bool) func(dt tensor.DataType) (SortFn, bool) {
	return func(dt tensor.DataType) (SortFn, bool) {
		switch dt {
		case tensor.Bool:
			return sortRows[bool](descending), true
		case tensor.Int8:
			return sortRows[int8](descending), true
		case tensor.Uint8:
			return sortRows[uint8](descending), true
		case tensor.Int16:
			return sortRows[int16](descending), true
		case tensor.Uint16:
			return sortRows[uint16](descending), true
		case tensor.Int32:
			return sortRows[int32](descending), true
		case tensor.Uint32:
			return sortRows[uint32](descending), true
		case tensor.Int64:
			return sortRows[int64](descending), true
		case tensor.Uint64:
			return sortRows[uint64](descending), true
		case tensor.Float16:
			return sortRows[float16.Float16](descending), true
		case tensor.Float32:
			return sortRows[float32](descending), true
		case tensor.Float64:
			return sortRows[float64](descending), true
		case tensor.Complex64:
			return sortRows[complex64](descending), true
		case tensor.Complex128:
			return sortRows[complex128](descending), true
		}
		return nil, false
	}
}

// SortAscendingFactory selects the ascending sort for every type.
func SortAscendingFactory(dt tensor.DataType) (SortFn, bool) { return sortFactory(false)(dt) }

// SortDescendingFactory selects the descending sort for every type.
func SortDescendingFactory(dt tensor.DataType) (SortFn, bool) { return sortFactory(true)(dt) }

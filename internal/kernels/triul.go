package kernels

import (
	"github.com/x448/float16"

	"github.com/born-ml/dispatch/internal/parallel"
	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

// TriulFn copies the upper or lower triangle of every trailing matrix of an
// nd-dimensional source, packed as [shape, src strides, dst strides], and
// zeroes the rest. Element (r, c) is kept by triu when c-r >= k and by tril
// when c-r <= k.
type TriulFn func(q *queue.Queue, n, nd int, shapeStrides, src, dst *queue.Allocation, srcOff, dstOff, k int,
	deps []*queue.Event) *queue.Event

func triul[T tensor.Element](upper bool) TriulFn {
	name := "tril"
	if upper {
		name = "triu"
	}
	return func(q *queue.Queue, n, nd int, shapeStrides, src, dst *queue.Allocation, srcOff, dstOff, k int,
		deps []*queue.Event) *queue.Event {
		return q.Submit(name, deps, func() error {
			p, err := packedView(shapeStrides)
			if err != nil {
				return err
			}
			in, err := tensor.View[T](src)
			if err != nil {
				return err
			}
			out, err := tensor.View[T](dst)
			if err != nil {
				return err
			}
			ix := NewIndexer(p, nd, 2)
			rows, cols := int(p[nd-2]), int(p[nd-1])
			var zero T
			parallel.ForRange(n, func(start, end int) {
				offs := make([]int, 2)
				for i := start; i < end; i++ {
					c := i % cols
					r := (i / cols) % rows
					ix.Offsets(i, offs)
					keep := c-r <= k
					if upper {
						keep = c-r >= k
					}
					if keep {
						out[dstOff+offs[1]] = in[srcOff+offs[0]]
					} else {
						out[dstOff+offs[1]] = zero
					}
				}
			}, q.Parallel())
			return nil
		})
	}
}

func triulFactory(upper bool) func(dt tensor.DataType) (TriulFn, bool) {
	return func(dt tensor.DataType) (TriulFn, bool) {
		switch dt {
		case tensor.Bool:
			return triul[bool](upper), true
		case tensor.Int8:
			return triul[int8](upper), true
		case tensor.Uint8:
			return triul[uint8](upper), true
		case tensor.Int16:
			return triul[int16](upper), true
		case tensor.Uint16:
			return triul[uint16](upper), true
		case tensor.Int32:
			return triul[int32](upper), true
		case tensor.Uint32:
			return triul[uint32](upper), true
		case tensor.Int64:
			return triul[int64](upper), true
		case tensor.Uint64:
			return triul[uint64](upper), true
		case tensor.Float16:
			return triul[float16.Float16](upper), true
		case tensor.Float32:
			return triul[float32](upper), true
		case tensor.Float64:
			return triul[float64](upper), true
		case tensor.Complex64:
			return triul[complex64](upper), true
		case tensor.Complex128:
			return triul[complex128](upper), true
		}
		return nil, false
	}
}

// TriuFactory selects triu for every type.
func TriuFactory(dt tensor.DataType) (TriulFn, bool) { return triulFactory(true)(dt) }

// TrilFactory selects tril for every type.
func TrilFactory(dt tensor.DataType) (TriulFn, bool) { return triulFactory(false)(dt) }

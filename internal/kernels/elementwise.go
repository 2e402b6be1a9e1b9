package kernels

import (
	"github.com/born-ml/dispatch/internal/parallel"
	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

// UnaryContigFn applies a function to n contiguous elements.
type UnaryContigFn func(q *queue.Queue, n int, src, dst *queue.Allocation, srcOff, dstOff int,
	deps []*queue.Event) *queue.Event

// UnaryStridedFn applies a function over an nd-dimensional strided space packed
// as [shape, src strides, dst strides].
type UnaryStridedFn func(q *queue.Queue, n, nd int, shapeStrides, src, dst *queue.Allocation,
	srcOff, dstOff int, deps []*queue.Event) *queue.Event

// Unary is the dispatch entry of an elementwise unary function.
type Unary struct {
	Out     tensor.DataType
	Contig  UnaryContigFn
	Strided UnaryStridedFn
}

// NewUnary builds the contiguous and strided kernels of f.
func NewUnary[In, Out tensor.Element](name string, f func(In) Out) Unary {
	return Unary{
		Out:     tensor.DataTypeOf[Out](),
		Contig:  unaryContig(name, f),
		Strided: unaryStrided(name+"_strided", f),
	}
}

func unaryContig[In, Out tensor.Element](name string, f func(In) Out) UnaryContigFn {
	return func(q *queue.Queue, n int, src, dst *queue.Allocation, srcOff, dstOff int, deps []*queue.Event) *queue.Event {
		return q.Submit(name, deps, func() error {
			in, err := tensor.View[In](src)
			if err != nil {
				return err
			}
			out, err := tensor.View[Out](dst)
			if err != nil {
				return err
			}
			in, out = in[srcOff:srcOff+n], out[dstOff:dstOff+n]
			parallel.ForRange(n, func(start, end int) {
				for i := start; i < end; i++ {
					out[i] = f(in[i])
				}
			}, q.Parallel())
			return nil
		})
	}
}

func unaryStrided[In, Out tensor.Element](name string, f func(In) Out) UnaryStridedFn {
	return func(q *queue.Queue, n, nd int, shapeStrides, src, dst *queue.Allocation, srcOff, dstOff int,
		deps []*queue.Event) *queue.Event {
		return q.Submit(name, deps, func() error {
			p, err := packedView(shapeStrides)
			if err != nil {
				return err
			}
			in, err := tensor.View[In](src)
			if err != nil {
				return err
			}
			out, err := tensor.View[Out](dst)
			if err != nil {
				return err
			}
			ix := NewIndexer(p, nd, 2)
			parallel.ForRange(n, func(start, end int) {
				offs := make([]int, 2)
				for i := start; i < end; i++ {
					ix.Offsets(i, offs)
					out[dstOff+offs[1]] = f(in[srcOff+offs[0]])
				}
			}, q.Parallel())
			return nil
		})
	}
}

// BinaryContigFn applies a function to n contiguous element pairs.
type BinaryContigFn func(q *queue.Queue, n int, src1, src2, dst *queue.Allocation, off1, off2, dstOff int,
	deps []*queue.Event) *queue.Event

// BinaryStridedFn applies a function over an nd-dimensional strided space
// packed as [shape, src1 strides, src2 strides, dst strides].
type BinaryStridedFn func(q *queue.Queue, n, nd int, shapeStrides, src1, src2, dst *queue.Allocation,
	off1, off2, dstOff int, deps []*queue.Event) *queue.Event

// BinaryRowFn combines a C-contiguous rows x cols matrix with a contiguous
// row of cols elements broadcast over every row.
type BinaryRowFn func(q *queue.Queue, rows, cols int, mat, row, dst *queue.Allocation, matOff, rowOff, dstOff int,
	deps []*queue.Event) *queue.Event

// Binary is the dispatch entry of an elementwise binary function. MatrixRow
// computes f(matrix, row) and RowMatrix f(row, matrix); both may be nil.
type Binary struct {
	Out       tensor.DataType
	Contig    BinaryContigFn
	Strided   BinaryStridedFn
	MatrixRow BinaryRowFn
	RowMatrix BinaryRowFn
}

// NewBinary builds the contiguous and strided kernels of f.
func NewBinary[In1, In2, Out tensor.Element](name string, f func(In1, In2) Out) Binary {
	return Binary{
		Out:     tensor.DataTypeOf[Out](),
		Contig:  binaryContig(name, f),
		Strided: binaryStrided(name+"_strided", f),
	}
}

// NewBinaryWithRows is NewBinary plus the row broadcast fast paths.
func NewBinaryWithRows[T, Out tensor.Element](name string, f func(T, T) Out) Binary {
	b := NewBinary(name, f)
	b.MatrixRow = binaryRow(name+"_matrix_row", f, false)
	b.RowMatrix = binaryRow(name+"_row_matrix", f, true)
	return b
}

func binaryContig[In1, In2, Out tensor.Element](name string, f func(In1, In2) Out) BinaryContigFn {
	return func(q *queue.Queue, n int, src1, src2, dst *queue.Allocation, off1, off2, dstOff int,
		deps []*queue.Event) *queue.Event {
		return q.Submit(name, deps, func() error {
			a, err := tensor.View[In1](src1)
			if err != nil {
				return err
			}
			b, err := tensor.View[In2](src2)
			if err != nil {
				return err
			}
			out, err := tensor.View[Out](dst)
			if err != nil {
				return err
			}
			a, b, out = a[off1:off1+n], b[off2:off2+n], out[dstOff:dstOff+n]
			parallel.ForRange(n, func(start, end int) {
				for i := start; i < end; i++ {
					out[i] = f(a[i], b[i])
				}
			}, q.Parallel())
			return nil
		})
	}
}

func binaryStrided[In1, In2, Out tensor.Element](name string, f func(In1, In2) Out) BinaryStridedFn {
	return func(q *queue.Queue, n, nd int, shapeStrides, src1, src2, dst *queue.Allocation, off1, off2, dstOff int,
		deps []*queue.Event) *queue.Event {
		return q.Submit(name, deps, func() error {
			p, err := packedView(shapeStrides)
			if err != nil {
				return err
			}
			a, err := tensor.View[In1](src1)
			if err != nil {
				return err
			}
			b, err := tensor.View[In2](src2)
			if err != nil {
				return err
			}
			out, err := tensor.View[Out](dst)
			if err != nil {
				return err
			}
			ix := NewIndexer(p, nd, 3)
			parallel.ForRange(n, func(start, end int) {
				offs := make([]int, 3)
				for i := start; i < end; i++ {
					ix.Offsets(i, offs)
					out[dstOff+offs[2]] = f(a[off1+offs[0]], b[off2+offs[1]])
				}
			}, q.Parallel())
			return nil
		})
	}
}

func binaryRow[T, Out tensor.Element](name string, f func(T, T) Out, rowFirst bool) BinaryRowFn {
	return func(q *queue.Queue, rows, cols int, mat, row, dst *queue.Allocation, matOff, rowOff, dstOff int,
		deps []*queue.Event) *queue.Event {
		return q.Submit(name, deps, func() error {
			m, err := tensor.View[T](mat)
			if err != nil {
				return err
			}
			r, err := tensor.View[T](row)
			if err != nil {
				return err
			}
			out, err := tensor.View[Out](dst)
			if err != nil {
				return err
			}
			n := rows * cols
			m, r, out = m[matOff:matOff+n], r[rowOff:rowOff+cols], out[dstOff:dstOff+n]
			parallel.ForBatch(rows, cols, func(i, j int) {
				k := i*cols + j
				if rowFirst {
					out[k] = f(r[j], m[k])
				} else {
					out[k] = f(m[k], r[j])
				}
			}, q.Parallel())
			return nil
		})
	}
}

// WhereContigFn selects between n contiguous elements of x1 and x2.
type WhereContigFn func(q *queue.Queue, n int, cond, x1, x2, dst *queue.Allocation,
	condOff, x1Off, x2Off, dstOff int, deps []*queue.Event) *queue.Event

// WhereStridedFn selects over a strided space packed as
// [shape, cond strides, x1 strides, x2 strides, dst strides].
type WhereStridedFn func(q *queue.Queue, n, nd int, shapeStrides, cond, x1, x2, dst *queue.Allocation,
	condOff, x1Off, x2Off, dstOff int, deps []*queue.Event) *queue.Event

// Where is the dispatch entry of the selection routine.
type Where struct {
	Contig  WhereContigFn
	Strided WhereStridedFn
}

// NewWhere builds the selection kernels for values of type T and conditions of type C.
func NewWhere[T, C tensor.Element]() Where {
	truth := Nonzero[C]()
	contig := func(q *queue.Queue, n int, cond, x1, x2, dst *queue.Allocation, condOff, x1Off, x2Off, dstOff int,
		deps []*queue.Event) *queue.Event {
		return q.Submit("where", deps, func() error {
			c, a, b, out, err := whereViews[T, C](cond, x1, x2, dst)
			if err != nil {
				return err
			}
			c, a, b, out = c[condOff:condOff+n], a[x1Off:x1Off+n], b[x2Off:x2Off+n], out[dstOff:dstOff+n]
			parallel.ForRange(n, func(start, end int) {
				for i := start; i < end; i++ {
					if truth(c[i]) {
						out[i] = a[i]
					} else {
						out[i] = b[i]
					}
				}
			}, q.Parallel())
			return nil
		})
	}
	strided := func(q *queue.Queue, n, nd int, shapeStrides, cond, x1, x2, dst *queue.Allocation,
		condOff, x1Off, x2Off, dstOff int, deps []*queue.Event) *queue.Event {
		return q.Submit("where_strided", deps, func() error {
			p, err := packedView(shapeStrides)
			if err != nil {
				return err
			}
			c, a, b, out, err := whereViews[T, C](cond, x1, x2, dst)
			if err != nil {
				return err
			}
			ix := NewIndexer(p, nd, 4)
			parallel.ForRange(n, func(start, end int) {
				offs := make([]int, 4)
				for i := start; i < end; i++ {
					ix.Offsets(i, offs)
					if truth(c[condOff+offs[0]]) {
						out[dstOff+offs[3]] = a[x1Off+offs[1]]
					} else {
						out[dstOff+offs[3]] = b[x2Off+offs[2]]
					}
				}
			}, q.Parallel())
			return nil
		})
	}
	return Where{Contig: contig, Strided: strided}
}

func whereViews[T, C tensor.Element](cond, x1, x2, dst *queue.Allocation) (c []C, a, b, out []T, err error) {
	if c, err = tensor.View[C](cond); err != nil {
		return
	}
	if a, err = tensor.View[T](x1); err != nil {
		return
	}
	if b, err = tensor.View[T](x2); err != nil {
		return
	}
	out, err = tensor.View[T](dst)
	return
}

package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/dispatch"
	"github.com/born-ml/dispatch/internal/kernels"
	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
	"github.com/born-ml/dispatch/internal/validate"
)

// UnaryOp is an elementwise function of one operand.
type UnaryOp struct {
	vector *dispatch.Vector[kernels.Unary]
}

// Unary operations.
var (
	Abs        = &UnaryOp{vector: absVector}
	Negative   = &UnaryOp{vector: negativeVector}
	Exp2       = &UnaryOp{vector: exp2Vector}
	IsFinite   = &UnaryOp{vector: isFiniteVector}
	LogicalNot = &UnaryOp{vector: logicalNotVector}
)

// Name returns the operation name.
func (op *UnaryOp) Name() string { return op.vector.Name() }

// Arity returns 1.
func (op *UnaryOp) Arity() int { return 1 }

// ResultType returns the output type for an input of type types[0].
func (op *UnaryOp) ResultType(types ...tensor.DataType) (tensor.DataType, error) {
	if err := checkArity(op.Name(), 1, types); err != nil {
		return tensor.Invalid, err
	}
	entry, err := op.vector.Lookup(types[0])
	if err != nil {
		return tensor.Invalid, err
	}
	return entry.Out, nil
}

// Apply computes dst = op(src) once deps complete. src and dst must have the
// same shape; dst may be src itself.
func (op *UnaryOp) Apply(q *queue.Queue, src, dst *tensor.RawTensor, deps []*queue.Event) (*queue.Event, *queue.Event, error) {
	name := op.Name()
	if err := validate.Writable(name, dst); err != nil {
		return nil, nil, err
	}
	entry, err := op.vector.Lookup(src.DType())
	if err != nil {
		return nil, nil, err
	}
	if err := validate.SameType(name, entry.Out, dst); err != nil {
		return nil, nil, err
	}
	if err := validate.SameShape(name, src.Shape(), dst); err != nil {
		return nil, nil, err
	}
	n := dst.NumElements()
	if n == 0 {
		return noop(q, name)
	}
	if err := validate.ContextsCompatible(name, q, src, dst); err != nil {
		return nil, nil, err
	}
	if err := validate.NoOverlapExceptIdentical(name, dst, src); err != nil {
		return nil, nil, err
	}
	if err := validate.AmpleMemory(name, dst, n); err != nil {
		return nil, nil, err
	}

	if sameLayoutContiguous(src, dst) {
		q.Logger().Debug("dispatch", "op", name, "path", "contig", "src", src, "dst", dst)
		compute := entry.Contig(q, n, src.Allocation(), dst.Allocation(), src.Offset(), dst.Offset(), deps)
		return finish(q, compute, src, dst)
	}
	shape, strides := tensor.SimplifyIterationSpace(src.Shape(), src.Strides(), dst.Strides())
	if contiguousAfterSimplify(shape, strides) {
		q.Logger().Debug("dispatch", "op", name, "path", "contig", "src", src, "dst", dst)
		compute := entry.Contig(q, n, src.Allocation(), dst.Allocation(), src.Offset(), dst.Offset(), deps)
		return finish(q, compute, src, dst)
	}
	q.Logger().Debug("dispatch", "op", name, "path", "strided", "nd", len(shape), "src", src, "dst", dst)
	return launchPacked(q, deps, shapeStridesParts(shape, strides), func(packed *queue.Allocation, deps []*queue.Event) *queue.Event {
		return entry.Strided(q, n, len(shape), packed, src.Allocation(), dst.Allocation(), src.Offset(), dst.Offset(), deps)
	}, src, dst)
}

// BinaryOp is an elementwise function of two operands.
type BinaryOp struct {
	table *dispatch.Table[kernels.Binary]
}

// Binary operations.
var (
	Add       = &BinaryOp{table: addTable}
	Multiply  = &BinaryOp{table: multiplyTable}
	Greater   = &BinaryOp{table: greaterTable}
	LogicalOr = &BinaryOp{table: logicalOrTable}
)

// Name returns the operation name.
func (op *BinaryOp) Name() string { return op.table.Name() }

// Arity returns 2.
func (op *BinaryOp) Arity() int { return 2 }

// ResultType returns the output type for operands of types types[0] and types[1].
func (op *BinaryOp) ResultType(types ...tensor.DataType) (tensor.DataType, error) {
	if err := checkArity(op.Name(), 2, types); err != nil {
		return tensor.Invalid, err
	}
	entry, err := op.table.Lookup(types[0], types[1])
	if err != nil {
		return tensor.Invalid, err
	}
	return entry.Out, nil
}

// broadcastOperands returns views of srcs broadcast to shape.
func broadcastOperands(name string, shape tensor.Shape, srcs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	views := make([]*tensor.RawTensor, len(srcs))
	for i, s := range srcs {
		v, err := s.BroadcastTo(shape)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: operand %d", name, i)
		}
		views[i] = v
	}
	return views, nil
}

// Apply computes dst = op(src1, src2) once deps complete. The operands are
// broadcast to the shape of dst; dst may be one of them.
func (op *BinaryOp) Apply(q *queue.Queue, src1, src2, dst *tensor.RawTensor, deps []*queue.Event) (*queue.Event, *queue.Event, error) {
	name := op.Name()
	if err := validate.Writable(name, dst); err != nil {
		return nil, nil, err
	}
	entry, err := op.table.Lookup(src1.DType(), src2.DType())
	if err != nil {
		return nil, nil, err
	}
	if err := validate.SameType(name, entry.Out, dst); err != nil {
		return nil, nil, err
	}
	shape, _, err := tensor.BroadcastShapes(src1.Shape(), src2.Shape())
	if err != nil {
		return nil, nil, errors.Wrap(err, name)
	}
	if err := validate.SameShape(name, shape, dst); err != nil {
		return nil, nil, err
	}
	views, err := broadcastOperands(name, dst.Shape(), src1, src2)
	if err != nil {
		return nil, nil, err
	}
	a, b := views[0], views[1]
	n := dst.NumElements()
	if n == 0 {
		return noop(q, name)
	}
	if err := validate.ContextsCompatible(name, q, src1, src2, dst); err != nil {
		return nil, nil, err
	}
	if err := validate.NoOverlapExceptIdentical(name, dst, a, b); err != nil {
		return nil, nil, err
	}
	if err := validate.AmpleMemory(name, dst, n); err != nil {
		return nil, nil, err
	}

	contig := func() (*queue.Event, *queue.Event, error) {
		q.Logger().Debug("dispatch", "op", name, "path", "contig", "src1", a, "src2", b, "dst", dst)
		compute := entry.Contig(q, n, a.Allocation(), b.Allocation(), dst.Allocation(), a.Offset(), b.Offset(), dst.Offset(), deps)
		return finish(q, compute, src1, src2, dst)
	}
	if sameLayoutContiguous(a, b, dst) {
		return contig()
	}
	simple, strides := tensor.SimplifyIterationSpace(dst.Shape(), a.Strides(), b.Strides(), dst.Strides())
	if contiguousAfterSimplify(simple, strides) {
		return contig()
	}
	if len(simple) == 2 && strides[2][0] == simple[1] && strides[2][1] == 1 {
		rows, cols := simple[0], simple[1]
		s1, s2 := strides[0], strides[1]
		switch {
		case entry.MatrixRow != nil && s1[0] == cols && s1[1] == 1 && s2[0] == 0 && s2[1] == 1:
			q.Logger().Debug("dispatch", "op", name, "path", "matrix_row", "rows", rows, "cols", cols)
			compute := entry.MatrixRow(q, rows, cols, a.Allocation(), b.Allocation(), dst.Allocation(),
				a.Offset(), b.Offset(), dst.Offset(), deps)
			return finish(q, compute, src1, src2, dst)
		case entry.RowMatrix != nil && s1[0] == 0 && s1[1] == 1 && s2[0] == cols && s2[1] == 1:
			q.Logger().Debug("dispatch", "op", name, "path", "row_matrix", "rows", rows, "cols", cols)
			compute := entry.RowMatrix(q, rows, cols, b.Allocation(), a.Allocation(), dst.Allocation(),
				b.Offset(), a.Offset(), dst.Offset(), deps)
			return finish(q, compute, src1, src2, dst)
		}
	}
	q.Logger().Debug("dispatch", "op", name, "path", "strided", "nd", len(simple), "src1", a, "src2", b, "dst", dst)
	return launchPacked(q, deps, shapeStridesParts(simple, strides), func(packed *queue.Allocation, deps []*queue.Event) *queue.Event {
		return entry.Strided(q, n, len(simple), packed, a.Allocation(), b.Allocation(), dst.Allocation(),
			a.Offset(), b.Offset(), dst.Offset(), deps)
	}, src1, src2, dst)
}

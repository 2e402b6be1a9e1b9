// Package validate implements the pre-flight checks every operation runs
// before submitting work. Each failing check returns an error wrapping one of
// the tensor error sentinels.
package validate

import (
	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

// Writable fails with tensor.ErrNotWritable unless dst may be written.
func Writable(op string, dst *tensor.RawTensor) error {
	if !dst.IsWritable() {
		return errors.Wrapf(tensor.ErrNotWritable, "%s: destination %v", op, dst.Shape())
	}
	return nil
}

// SameType fails with tensor.ErrTypeMismatch unless every tensor has type want.
func SameType(op string, want tensor.DataType, ts ...*tensor.RawTensor) error {
	for i, t := range ts {
		if t.DType() != want {
			return errors.Wrapf(tensor.ErrTypeMismatch, "%s: operand %d is %s, expected %s", op, i, t.DType(), want)
		}
	}
	return nil
}

// SameShape fails with tensor.ErrShape unless every tensor has shape want.
func SameShape(op string, want tensor.Shape, ts ...*tensor.RawTensor) error {
	for i, t := range ts {
		if !t.Shape().Equal(want) {
			return errors.Wrapf(tensor.ErrShape, "%s: operand %d has shape %v, expected %v", op, i, t.Shape(), want)
		}
	}
	return nil
}

// ContextsCompatible fails with tensor.ErrContextMismatch unless every tensor
// lives in the allocation context of q.
func ContextsCompatible(op string, q *queue.Queue, ts ...*tensor.RawTensor) error {
	for i, t := range ts {
		if t.Context() != q.Context() {
			return errors.Wrapf(tensor.ErrContextMismatch, "%s: operand %d allocated in context %s, queue uses %s",
				op, i, t.Context().ID(), q.Context().ID())
		}
	}
	return nil
}

// Overlap reports whether the byte ranges addressed by a and b intersect.
// Tensors in different allocations never overlap; empty tensors overlap nothing.
func Overlap(a, b *tensor.RawTensor) bool {
	if a.Allocation() != b.Allocation() || a.NumElements() == 0 || b.NumElements() == 0 {
		return false
	}
	alo, ahi := a.ByteSpan()
	blo, bhi := b.ByteSpan()
	return alo < bhi && blo < ahi
}

// NoOverlap fails with tensor.ErrAliasing if dst overlaps any source.
func NoOverlap(op string, dst *tensor.RawTensor, srcs ...*tensor.RawTensor) error {
	for i, src := range srcs {
		if Overlap(dst, src) {
			return errors.Wrapf(tensor.ErrAliasing, "%s: destination overlaps operand %d", op, i)
		}
	}
	return nil
}

// NoOverlapExceptIdentical is NoOverlap with in-place use allowed: a source
// describing exactly the same elements as dst is not a conflict.
func NoOverlapExceptIdentical(op string, dst *tensor.RawTensor, srcs ...*tensor.RawTensor) error {
	for i, src := range srcs {
		if Overlap(dst, src) && !dst.SameLogicalTensor(src) {
			return errors.Wrapf(tensor.ErrAliasing, "%s: destination overlaps operand %d", op, i)
		}
	}
	return nil
}

// AmpleMemory fails with tensor.ErrInsufficientCapacity unless the memory
// dst addresses lies inside its allocation and spans at least n elements.
func AmpleMemory(op string, dst *tensor.RawTensor, n int) error {
	lo, hi := dst.ElementSpan()
	if lo < 0 || hi*dst.ItemSize() > dst.Allocation().Size() || hi-lo < n {
		return errors.Wrapf(tensor.ErrInsufficientCapacity, "%s: destination spans elements [%d, %d), %d required",
			op, lo, hi, n)
	}
	return nil
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/dispatch/internal/ops"
	"github.com/born-ml/dispatch/internal/queue"
)

// Signature answers feasibility queries for an operation without running it.
type Signature = ops.Signature

// Operations returns the signature of every operation, sorted by name.
func Operations() []Signature {
	return ops.Operations()
}

// Find returns the signature of the named operation.
//
// Example:
//
//	sig, _ := tensor.Find("add")
//	out, err := sig.ResultType(tensor.Int32, tensor.Int32) // Int32
func Find(name string) (Signature, error) {
	return ops.Find(name)
}

// Mode selects how Take and Put remap out-of-range indices.
type Mode = ops.Mode

// Index modes.
const (
	// Wrap reduces an index modulo the axis length.
	Wrap = ops.Wrap
	// Clip saturates an index to the valid range.
	Clip = ops.Clip
)

// ErrInvalidMode is returned for a mode other than Wrap or Clip.
var ErrInvalidMode = ops.ErrInvalidMode

// ParseMode maps "wrap" or "clip" to a Mode.
func ParseMode(s string) (Mode, error) {
	return ops.ParseMode(s)
}

// Elementwise unary operations. dst must have the shape of src and the
// result type of the operation; dst may be src itself.

// Abs computes the absolute value. Complex inputs produce the real magnitude.
func Abs(q *queue.Queue, src, dst *RawTensor, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Abs.Apply(q, src, dst, deps)
}

// Negative computes -x. Not defined for bool.
func Negative(q *queue.Queue, src, dst *RawTensor, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Negative.Apply(q, src, dst, deps)
}

// Exp2 computes 2**x for floating and complex types.
func Exp2(q *queue.Queue, src, dst *RawTensor, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Exp2.Apply(q, src, dst, deps)
}

// IsFinite reports whether each element is neither infinite nor NaN.
func IsFinite(q *queue.Queue, src, dst *RawTensor, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.IsFinite.Apply(q, src, dst, deps)
}

// LogicalNot reports whether each element is zero.
func LogicalNot(q *queue.Queue, src, dst *RawTensor, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.LogicalNot.Apply(q, src, dst, deps)
}

// Elementwise binary operations. The operands are broadcast to the shape of
// dst, which must be their broadcast shape.

// Add computes x1 + x2 for operands of one type. For bool it is logical or.
func Add(q *queue.Queue, x1, x2, dst *RawTensor, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Add.Apply(q, x1, x2, dst, deps)
}

// Multiply computes x1 * x2 for operands of one type. For bool it is logical and.
func Multiply(q *queue.Queue, x1, x2, dst *RawTensor, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Multiply.Apply(q, x1, x2, dst, deps)
}

// Greater computes x1 > x2 into a bool dst.
func Greater(q *queue.Queue, x1, x2, dst *RawTensor, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Greater.Apply(q, x1, x2, dst, deps)
}

// LogicalOr computes x1 != 0 || x2 != 0 into a bool dst, for any pair of types.
func LogicalOr(q *queue.Queue, x1, x2, dst *RawTensor, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.LogicalOr.Apply(q, x1, x2, dst, deps)
}

// Where computes dst = cond ? x1 : x2.
func Where(q *queue.Queue, cond, x1, x2, dst *RawTensor, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Where(q, cond, x1, x2, dst, deps)
}

// Astype copies src into dst converting to dst's type.
func Astype(q *queue.Queue, src, dst *RawTensor, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Astype(q, src, dst, deps)
}

// Take gathers from src along axes [axisStart, axisStart+len(inds)).
//
// Example:
//
//	// src (4, 5), ind (3,) -> dst (4, 3)
//	_, done, err := tensor.Take(q, src, []*tensor.RawTensor{ind}, dst, 1, tensor.Wrap, nil)
func Take(q *queue.Queue, src *RawTensor, inds []*RawTensor, dst *RawTensor, axisStart int, mode Mode,
	deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Take(q, src, inds, dst, axisStart, mode, deps)
}

// Put scatters val into dst along axes [axisStart, axisStart+len(inds)).
func Put(q *queue.Queue, dst *RawTensor, inds []*RawTensor, val *RawTensor, axisStart int, mode Mode,
	deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Put(q, dst, inds, val, axisStart, mode, deps)
}

// Triu keeps the elements on and above diagonal k of every trailing matrix.
func Triu(q *queue.Queue, src, dst *RawTensor, k int, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Triu(q, src, dst, k, deps)
}

// Tril keeps the elements on and below diagonal k of every trailing matrix.
func Tril(q *queue.Queue, src, dst *RawTensor, k int, deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Tril(q, src, dst, k, deps)
}

// Sort stably sorts the last trailing axes of a C-contiguous src into dst.
func Sort(q *queue.Queue, src, dst *RawTensor, trailing int, descending bool,
	deps []*queue.Event) (reuse, compute *queue.Event, err error) {
	return ops.Sort(q, src, dst, trailing, descending, deps)
}

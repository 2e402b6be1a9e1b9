// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

// RawTensor is a logical view over an allocation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), Strides(), DType(), Offset()
//   - View operations via Slice(), Flip(), Select(), Permute(), BroadcastTo(), Reshape()
//   - Memory span queries via ElementSpan(), ByteSpan()
//
// Example:
//
//	raw, _ := tensor.NewRaw(q, tensor.Shape{2, 3}, tensor.Float32)
//	col, _ := raw.Select(1, 0) // first column, shape [2]
type RawTensor = tensor.RawTensor

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// NewRaw allocates a zero-filled C-contiguous tensor in q's context.
func NewRaw(q *queue.Queue, shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(q, shape, dtype)
}

// NewView describes an existing allocation. Every addressable element must
// lie inside the allocation.
func NewView(alloc *queue.Allocation, dtype DataType, shape Shape, strides []int, offset int) (*RawTensor, error) {
	return tensor.NewView(alloc, dtype, shape, strides, offset)
}

// BroadcastShapes returns the NumPy broadcast of a and b.
func BroadcastShapes(a, b Shape) (Shape, error) {
	s, _, err := tensor.BroadcastShapes(a, b)
	return s, err
}

// Zeros allocates a tensor filled with zeros.
//
// Example:
//
//	x, err := tensor.Zeros(q, tensor.Shape{2, 3}, tensor.Int64)
func Zeros(q *queue.Queue, shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.Zeros(q, shape, dtype)
}

// Full allocates a tensor filled with value.
//
// Example:
//
//	x, err := tensor.Full[float32](q, tensor.Shape{2, 3}, 3.14)
func Full[T Element](q *queue.Queue, shape Shape, value T) (*RawTensor, error) {
	return tensor.Full(q, shape, value)
}

// FromSlice allocates a C-contiguous tensor holding a copy of data.
//
// Example:
//
//	x, err := tensor.FromSlice(q, []int32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
func FromSlice[T Element](q *queue.Queue, data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(q, data, shape)
}

// ToSlice copies the elements of r in row-major order. Wait for every
// producer of r before calling it.
func ToSlice[T Element](r *RawTensor) ([]T, error) {
	return tensor.ToSlice[T](r)
}

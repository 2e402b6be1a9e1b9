package tensor

import (
	"github.com/pkg/errors"
)

// Shape represents the dimensions of a tensor. Zero extents are allowed.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1 // Scalar has 1 element
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that no dimension is negative.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return errors.Wrapf(ErrShape, "invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides (in elements) for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * max(s[i+1], 1)
	}
	return strides
}

// ComputeFStrides calculates column-major strides (in elements) for the shape.
func (s Shape) ComputeFStrides() []int {
	strides := make([]int, len(s))
	acc := 1
	for i := range s {
		strides[i] = acc
		acc *= max(s[i], 1)
	}
	return strides
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if:
//   - They are equal, OR
//   - One of them is 1
//
// 3. Missing dimensions are treated as 1
//
// Returns the broadcasted shape, a flag indicating if broadcasting is needed, and an error if incompatible.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(1, 5) + (3, 5) → (3, 5), true, nil
//	(3, 5) + (3, 5) → (3, 5), false, nil
//	(3, 4) + (3, 5) → nil, false, ErrShape
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := len(a) != len(b)

	for i := 0; i < maxLen; i++ {
		aIdx := len(a) - 1 - i
		bIdx := len(b) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = a[aIdx]
		}

		bDim := 1
		if bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, errors.Wrapf(ErrShape, "shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}

// IsCContiguous reports whether strides describe a row-major dense layout of shape.
// Strides of unit or empty axes are ignored.
func IsCContiguous(shape Shape, strides []int) bool {
	if shape.NumElements() == 0 {
		return true
	}
	expected := 1
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] == 1 {
			continue
		}
		if strides[i] != expected {
			return false
		}
		expected *= shape[i]
	}
	return true
}

// IsFContiguous reports whether strides describe a column-major dense layout of shape.
func IsFContiguous(shape Shape, strides []int) bool {
	if shape.NumElements() == 0 {
		return true
	}
	expected := 1
	for i := range shape {
		if shape[i] == 1 {
			continue
		}
		if strides[i] != expected {
			return false
		}
		expected *= shape[i]
	}
	return true
}

// SimplifyIterationSpace drops unit axes and merges adjacent axes that are
// contiguous with respect to each other in every strides array. The returned
// shape and strides describe the same element-to-offset mapping with fewer
// dimensions. Iteration order of the merged space is row-major.
func SimplifyIterationSpace(shape Shape, strides ...[]int) (Shape, [][]int) {
	if shape.NumElements() == 0 {
		out := make([][]int, len(strides))
		for j := range strides {
			out[j] = append([]int(nil), strides[j]...)
		}
		return shape.Clone(), out
	}

	simple := make(Shape, 0, len(shape))
	out := make([][]int, len(strides))
	for j := range out {
		out[j] = make([]int, 0, len(shape))
	}
	for i := range shape {
		if shape[i] == 1 {
			continue
		}
		simple = append(simple, shape[i])
		for j := range strides {
			out[j] = append(out[j], strides[j][i])
		}
	}

	// Merge from the innermost axis outwards.
	for i := len(simple) - 2; i >= 0; i-- {
		mergeable := true
		for j := range out {
			if out[j][i] != out[j][i+1]*simple[i+1] {
				mergeable = false
				break
			}
		}
		if !mergeable {
			continue
		}
		simple[i] *= simple[i+1]
		simple = append(simple[:i+1], simple[i+2:]...)
		for j := range out {
			out[j][i] = out[j][i+1]
			out[j] = append(out[j][:i+1], out[j][i+2:]...)
		}
	}
	return simple, out
}

// NormalizeAxis maps a possibly negative axis into [0, ndim).
func NormalizeAxis(axis, ndim int) (int, error) {
	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		return 0, errors.Wrapf(ErrShape, "axis %d out of range for %d dimensions", axis, ndim)
	}
	return axis, nil
}

package kernels

import (
	"cmp"

	"github.com/x448/float16"

	"github.com/born-ml/dispatch/internal/tensor"
)

func add[T number](a, b T) T { return a + b }

func mul[T number](a, b T) T { return a * b }

func addFloat16(a, b float16.Float16) float16.Float16 {
	return float16.Fromfloat32(a.Float32() + b.Float32())
}

func mulFloat16(a, b float16.Float16) float16.Float16 {
	return float16.Fromfloat32(a.Float32() * b.Float32())
}

// AddFactory selects add for pairs of identical types. Boolean addition is
// logical or.
func AddFactory(t1, t2 tensor.DataType) (Binary, bool) {
	if t1 != t2 {
		return Binary{}, false
	}
	const name = "add"
	switch t1 {
	case tensor.Bool:
		return NewBinaryWithRows(name, func(a, b bool) bool { return a || b }), true
	case tensor.Int8:
		return NewBinaryWithRows(name, add[int8]), true
	case tensor.Uint8:
		return NewBinaryWithRows(name, add[uint8]), true
	case tensor.Int16:
		return NewBinaryWithRows(name, add[int16]), true
	case tensor.Uint16:
		return NewBinaryWithRows(name, add[uint16]), true
	case tensor.Int32:
		return NewBinaryWithRows(name, add[int32]), true
	case tensor.Uint32:
		return NewBinaryWithRows(name, add[uint32]), true
	case tensor.Int64:
		return NewBinaryWithRows(name, add[int64]), true
	case tensor.Uint64:
		return NewBinaryWithRows(name, add[uint64]), true
	case tensor.Float16:
		return NewBinaryWithRows(name, addFloat16), true
	case tensor.Float32:
		return NewBinaryWithRows(name, add[float32]), true
	case tensor.Float64:
		return NewBinaryWithRows(name, add[float64]), true
	case tensor.Complex64:
		return NewBinaryWithRows(name, add[complex64]), true
	case tensor.Complex128:
		return NewBinaryWithRows(name, add[complex128]), true
	}
	return Binary{}, false
}

// MultiplyFactory selects multiply for pairs of identical types. Boolean
// multiplication is logical and.
func MultiplyFactory(t1, t2 tensor.DataType) (Binary, bool) {
	if t1 != t2 {
		return Binary{}, false
	}
	const name = "multiply"
	switch t1 {
	case tensor.Bool:
		return NewBinaryWithRows(name, func(a, b bool) bool { return a && b }), true
	case tensor.Int8:
		return NewBinaryWithRows(name, mul[int8]), true
	case tensor.Uint8:
		return NewBinaryWithRows(name, mul[uint8]), true
	case tensor.Int16:
		return NewBinaryWithRows(name, mul[int16]), true
	case tensor.Uint16:
		return NewBinaryWithRows(name, mul[uint16]), true
	case tensor.Int32:
		return NewBinaryWithRows(name, mul[int32]), true
	case tensor.Uint32:
		return NewBinaryWithRows(name, mul[uint32]), true
	case tensor.Int64:
		return NewBinaryWithRows(name, mul[int64]), true
	case tensor.Uint64:
		return NewBinaryWithRows(name, mul[uint64]), true
	case tensor.Float16:
		return NewBinaryWithRows(name, mulFloat16), true
	case tensor.Float32:
		return NewBinaryWithRows(name, mul[float32]), true
	case tensor.Float64:
		return NewBinaryWithRows(name, mul[float64]), true
	case tensor.Complex64:
		return NewBinaryWithRows(name, mul[complex64]), true
	case tensor.Complex128:
		return NewBinaryWithRows(name, mul[complex128]), true
	}
	return Binary{}, false
}

func greater[T cmp.Ordered](a, b T) bool { return a > b }

// greaterComplex orders complex values lexicographically by real then imaginary part.
func greaterComplex[T complex64 | complex128](a, b T) bool {
	x, y := complex128(a), complex128(b)
	if real(x) == real(y) {
		return imag(x) > imag(y)
	}
	return real(x) > real(y)
}

// GreaterFactory selects greater for identical types and for mixed signed
// and unsigned 64-bit integers, which compare by value.
func GreaterFactory(t1, t2 tensor.DataType) (Binary, bool) {
	const name = "greater"
	switch {
	case t1 == tensor.Int64 && t2 == tensor.Uint64:
		return NewBinary(name, func(a int64, b uint64) bool { return a >= 0 && uint64(a) > b }), true
	case t1 == tensor.Uint64 && t2 == tensor.Int64:
		return NewBinary(name, func(a uint64, b int64) bool { return b < 0 || a > uint64(b) }), true
	case t1 != t2:
		return Binary{}, false
	}
	switch t1 {
	case tensor.Bool:
		return NewBinary(name, func(a, b bool) bool { return a && !b }), true
	case tensor.Int8:
		return NewBinary(name, greater[int8]), true
	case tensor.Uint8:
		return NewBinary(name, greater[uint8]), true
	case tensor.Int16:
		return NewBinary(name, greater[int16]), true
	case tensor.Uint16:
		return NewBinary(name, greater[uint16]), true
	case tensor.Int32:
		return NewBinary(name, greater[int32]), true
	case tensor.Uint32:
		return NewBinary(name, greater[uint32]), true
	case tensor.Int64:
		return NewBinary(name, greater[int64]), true
	case tensor.Uint64:
		return NewBinary(name, greater[uint64]), true
	case tensor.Float16:
		return NewBinary(name, func(a, b float16.Float16) bool { return a.Float32() > b.Float32() }), true
	case tensor.Float32:
		return NewBinary(name, greater[float32]), true
	case tensor.Float64:
		return NewBinary(name, greater[float64]), true
	case tensor.Complex64:
		return NewBinary(name, greaterComplex[complex64]), true
	case tensor.Complex128:
		return NewBinary(name, greaterComplex[complex128]), true
	}
	return Binary{}, false
}

func logicalOr[A, B tensor.Element]() Binary {
	ta, tb := Nonzero[A](), Nonzero[B]()
	return NewBinary("logical_or", func(a A, b B) bool { return ta(a) || tb(b) })
}

func logicalOrWith[A tensor.Element](t2 tensor.DataType) (Binary, bool) {
	switch t2 {
	case tensor.Bool:
		return logicalOr[A, bool](), true
	case tensor.Int8:
		return logicalOr[A, int8](), true
	case tensor.Uint8:
		return logicalOr[A, uint8](), true
	case tensor.Int16:
		return logicalOr[A, int16](), true
	case tensor.Uint16:
		return logicalOr[A, uint16](), true
	case tensor.Int32:
		return logicalOr[A, int32](), true
	case tensor.Uint32:
		return logicalOr[A, uint32](), true
	case tensor.Int64:
		return logicalOr[A, int64](), true
	case tensor.Uint64:
		return logicalOr[A, uint64](), true
	case tensor.Float16:
		return logicalOr[A, float16.Float16](), true
	case tensor.Float32:
		return logicalOr[A, float32](), true
	case tensor.Float64:
		return logicalOr[A, float64](), true
	case tensor.Complex64:
		return logicalOr[A, complex64](), true
	case tensor.Complex128:
		return logicalOr[A, complex128](), true
	}
	return Binary{}, false
}

// LogicalOrFactory selects logical_or for every pair of types.
func LogicalOrFactory(t1, t2 tensor.DataType) (Binary, bool) {
	switch t1 {
	case tensor.Bool:
		return logicalOrWith[bool](t2)
	case tensor.Int8:
		return logicalOrWith[int8](t2)
	case tensor.Uint8:
		return logicalOrWith[uint8](t2)
	case tensor.Int16:
		return logicalOrWith[int16](t2)
	case tensor.Uint16:
		return logicalOrWith[uint16](t2)
	case tensor.Int32:
		return logicalOrWith[int32](t2)
	case tensor.Uint32:
		return logicalOrWith[uint32](t2)
	case tensor.Int64:
		return logicalOrWith[int64](t2)
	case tensor.Uint64:
		return logicalOrWith[uint64](t2)
	case tensor.Float16:
		return logicalOrWith[float16.Float16](t2)
	case tensor.Float32:
		return logicalOrWith[float32](t2)
	case tensor.Float64:
		return logicalOrWith[float64](t2)
	case tensor.Complex64:
		return logicalOrWith[complex64](t2)
	case tensor.Complex128:
		return logicalOrWith[complex128](t2)
	}
	return Binary{}, false
}

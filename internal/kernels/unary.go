package kernels

import (
	"math"
	"math/cmplx"

	"github.com/x448/float16"
	"golang.org/x/exp/constraints"

	"github.com/born-ml/dispatch/internal/tensor"
)

func identity[T tensor.Element](v T) T { return v }

func absSigned[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

func absFloat[T constraints.Float](v T) T { return T(math.Abs(float64(v))) }

func absFloat16(v float16.Float16) float16.Float16 { return float16.Frombits(v.Bits() &^ 0x8000) }

// AbsFactory selects abs. Complex inputs produce the real magnitude.
func AbsFactory(dt tensor.DataType) (Unary, bool) {
	const name = "abs"
	switch dt {
	case tensor.Bool:
		return NewUnary(name, identity[bool]), true
	case tensor.Int8:
		return NewUnary(name, absSigned[int8]), true
	case tensor.Uint8:
		return NewUnary(name, identity[uint8]), true
	case tensor.Int16:
		return NewUnary(name, absSigned[int16]), true
	case tensor.Uint16:
		return NewUnary(name, identity[uint16]), true
	case tensor.Int32:
		return NewUnary(name, absSigned[int32]), true
	case tensor.Uint32:
		return NewUnary(name, identity[uint32]), true
	case tensor.Int64:
		return NewUnary(name, absSigned[int64]), true
	case tensor.Uint64:
		return NewUnary(name, identity[uint64]), true
	case tensor.Float16:
		return NewUnary(name, absFloat16), true
	case tensor.Float32:
		return NewUnary(name, absFloat[float32]), true
	case tensor.Float64:
		return NewUnary(name, absFloat[float64]), true
	case tensor.Complex64:
		return NewUnary(name, func(v complex64) float32 { return float32(cmplx.Abs(complex128(v))) }), true
	case tensor.Complex128:
		return NewUnary(name, cmplx.Abs), true
	}
	return Unary{}, false
}

func negate[T number](v T) T { return -v }

// NegativeFactory selects negative. Booleans are unsupported; unsigned
// integers wrap around.
func NegativeFactory(dt tensor.DataType) (Unary, bool) {
	const name = "negative"
	switch dt {
	case tensor.Int8:
		return NewUnary(name, negate[int8]), true
	case tensor.Uint8:
		return NewUnary(name, negate[uint8]), true
	case tensor.Int16:
		return NewUnary(name, negate[int16]), true
	case tensor.Uint16:
		return NewUnary(name, negate[uint16]), true
	case tensor.Int32:
		return NewUnary(name, negate[int32]), true
	case tensor.Uint32:
		return NewUnary(name, negate[uint32]), true
	case tensor.Int64:
		return NewUnary(name, negate[int64]), true
	case tensor.Uint64:
		return NewUnary(name, negate[uint64]), true
	case tensor.Float16:
		return NewUnary(name, func(v float16.Float16) float16.Float16 { return float16.Frombits(v.Bits() ^ 0x8000) }), true
	case tensor.Float32:
		return NewUnary(name, negate[float32]), true
	case tensor.Float64:
		return NewUnary(name, negate[float64]), true
	case tensor.Complex64:
		return NewUnary(name, negate[complex64]), true
	case tensor.Complex128:
		return NewUnary(name, negate[complex128]), true
	}
	return Unary{}, false
}

func exp2Complex(z complex128) complex128 { return cmplx.Exp(z * math.Ln2) }

// Exp2Factory selects exp2, defined for floating and complex types only.
func Exp2Factory(dt tensor.DataType) (Unary, bool) {
	const name = "exp2"
	switch dt {
	case tensor.Float16:
		return NewUnary(name, func(v float16.Float16) float16.Float16 {
			return float16.Fromfloat32(float32(math.Exp2(float64(v.Float32()))))
		}), true
	case tensor.Float32:
		return NewUnary(name, func(v float32) float32 { return float32(math.Exp2(float64(v))) }), true
	case tensor.Float64:
		return NewUnary(name, math.Exp2), true
	case tensor.Complex64:
		return NewUnary(name, func(v complex64) complex64 { return complex64(exp2Complex(complex128(v))) }), true
	case tensor.Complex128:
		return NewUnary(name, exp2Complex), true
	}
	return Unary{}, false
}

func alwaysTrue[T tensor.Element](T) bool { return true }

func finite(f float64) bool { return !math.IsInf(f, 0) && !math.IsNaN(f) }

// IsFiniteFactory selects isfinite. Booleans and integers are always finite.
func IsFiniteFactory(dt tensor.DataType) (Unary, bool) {
	const name = "isfinite"
	switch dt {
	case tensor.Bool:
		return NewUnary(name, alwaysTrue[bool]), true
	case tensor.Int8:
		return NewUnary(name, alwaysTrue[int8]), true
	case tensor.Uint8:
		return NewUnary(name, alwaysTrue[uint8]), true
	case tensor.Int16:
		return NewUnary(name, alwaysTrue[int16]), true
	case tensor.Uint16:
		return NewUnary(name, alwaysTrue[uint16]), true
	case tensor.Int32:
		return NewUnary(name, alwaysTrue[int32]), true
	case tensor.Uint32:
		return NewUnary(name, alwaysTrue[uint32]), true
	case tensor.Int64:
		return NewUnary(name, alwaysTrue[int64]), true
	case tensor.Uint64:
		return NewUnary(name, alwaysTrue[uint64]), true
	case tensor.Float16:
		return NewUnary(name, float16.Float16.IsFinite), true
	case tensor.Float32:
		return NewUnary(name, func(v float32) bool { return finite(float64(v)) }), true
	case tensor.Float64:
		return NewUnary(name, finite), true
	case tensor.Complex64:
		return NewUnary(name, func(v complex64) bool { return finite(float64(real(v))) && finite(float64(imag(v))) }), true
	case tensor.Complex128:
		return NewUnary(name, func(v complex128) bool { return finite(real(v)) && finite(imag(v)) }), true
	}
	return Unary{}, false
}

func logicalNot[T tensor.Element]() Unary {
	truth := Nonzero[T]()
	return NewUnary("logical_not", func(v T) bool { return !truth(v) })
}

// LogicalNotFactory selects logical_not for every type.
func LogicalNotFactory(dt tensor.DataType) (Unary, bool) {
	switch dt {
	case tensor.Bool:
		return logicalNot[bool](), true
	case tensor.Int8:
		return logicalNot[int8](), true
	case tensor.Uint8:
		return logicalNot[uint8](), true
	case tensor.Int16:
		return logicalNot[int16](), true
	case tensor.Uint16:
		return logicalNot[uint16](), true
	case tensor.Int32:
		return logicalNot[int32](), true
	case tensor.Uint32:
		return logicalNot[uint32](), true
	case tensor.Int64:
		return logicalNot[int64](), true
	case tensor.Uint64:
		return logicalNot[uint64](), true
	case tensor.Float16:
		return logicalNot[float16.Float16](), true
	case tensor.Float32:
		return logicalNot[float32](), true
	case tensor.Float64:
		return logicalNot[float64](), true
	case tensor.Complex64:
		return logicalNot[complex64](), true
	case tensor.Complex128:
		return logicalNot[complex128](), true
	}
	return Unary{}, false
}

package kernels

import (
	"math"

	"github.com/x448/float16"
	"golang.org/x/exp/constraints"

	"github.com/born-ml/dispatch/internal/tensor"
)

type number interface {
	constraints.Integer | constraints.Float | constraints.Complex
}

func isNonzero[T number](v T) bool { return v != 0 }

// Nonzero returns the truth test of T: false for zero values, true otherwise.
// NaN is true.
func Nonzero[T tensor.Element]() func(T) bool {
	var zero T
	var f any
	switch any(zero).(type) {
	case bool:
		f = func(v bool) bool { return v }
	case int8:
		f = isNonzero[int8]
	case uint8:
		f = isNonzero[uint8]
	case int16:
		f = isNonzero[int16]
	case uint16:
		f = isNonzero[uint16]
	case int32:
		f = isNonzero[int32]
	case uint32:
		f = isNonzero[uint32]
	case int64:
		f = isNonzero[int64]
	case uint64:
		f = isNonzero[uint64]
	case float16.Float16:
		f = func(v float16.Float16) bool { return v.Bits()&0x7fff != 0 }
	case float32:
		f = isNonzero[float32]
	case float64:
		f = isNonzero[float64]
	case complex64:
		f = isNonzero[complex64]
	case complex128:
		f = isNonzero[complex128]
	}
	return f.(func(T) bool)
}

type valueKind uint8

const (
	kindBool valueKind = iota
	kindInt
	kindUint
	kindFloat
	kindComplex
)

// value is the intermediate of a cast. Only the field of its kind is set.
type value struct {
	kind valueKind
	i    int64
	u    uint64
	f    float64
	c    complex128
}

func (v value) int64() int64 {
	switch v.kind {
	case kindInt:
		return v.i
	case kindBool, kindUint:
		return int64(v.u)
	case kindFloat:
		return floatToInt64(v.f)
	default:
		return floatToInt64(real(v.c))
	}
}

func (v value) uint64() uint64 {
	switch v.kind {
	case kindInt:
		return uint64(v.i)
	case kindBool, kindUint:
		return v.u
	case kindFloat:
		return floatToUint64(v.f)
	default:
		return floatToUint64(real(v.c))
	}
}

func (v value) float64() float64 {
	switch v.kind {
	case kindInt:
		return float64(v.i)
	case kindBool, kindUint:
		return float64(v.u)
	case kindFloat:
		return v.f
	default:
		return real(v.c)
	}
}

func (v value) complex128() complex128 {
	if v.kind == kindComplex {
		return v.c
	}
	return complex(v.float64(), 0)
}

func (v value) bool() bool {
	switch v.kind {
	case kindInt:
		return v.i != 0
	case kindBool, kindUint:
		return v.u != 0
	case kindFloat:
		return v.f != 0 || math.IsNaN(v.f)
	default:
		return v.c != 0
	}
}

// floatToInt64 truncates toward zero. NaN maps to 0 and out of range values saturate.
func floatToInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func floatToUint64(f float64) uint64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f < 0:
		// Negative values wrap like a signed conversion followed by reinterpretation.
		return uint64(floatToInt64(f))
	case f >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(f)
}

// load returns the accessor converting T to the cast intermediate.
func load[T tensor.Element]() func(T) value {
	var zero T
	var f any
	switch any(zero).(type) {
	case bool:
		f = func(v bool) value {
			if v {
				return value{kind: kindBool, u: 1}
			}
			return value{kind: kindBool}
		}
	case int8:
		f = loadInt[int8]
	case int16:
		f = loadInt[int16]
	case int32:
		f = loadInt[int32]
	case int64:
		f = loadInt[int64]
	case uint8:
		f = loadUint[uint8]
	case uint16:
		f = loadUint[uint16]
	case uint32:
		f = loadUint[uint32]
	case uint64:
		f = loadUint[uint64]
	case float16.Float16:
		f = func(v float16.Float16) value { return value{kind: kindFloat, f: float64(v.Float32())} }
	case float32:
		f = loadFloat[float32]
	case float64:
		f = loadFloat[float64]
	case complex64:
		f = func(v complex64) value { return value{kind: kindComplex, c: complex128(v)} }
	case complex128:
		f = func(v complex128) value { return value{kind: kindComplex, c: v} }
	}
	return f.(func(T) value)
}

func loadInt[T constraints.Signed](v T) value     { return value{kind: kindInt, i: int64(v)} }
func loadUint[T constraints.Unsigned](v T) value  { return value{kind: kindUint, u: uint64(v)} }
func loadFloat[T constraints.Float](v T) value    { return value{kind: kindFloat, f: float64(v)} }
func storeInt[T constraints.Signed](v value) T    { return T(v.int64()) }
func storeUint[T constraints.Unsigned](v value) T { return T(v.uint64()) }

// store returns the accessor converting the cast intermediate to T.
func store[T tensor.Element]() func(value) T {
	var zero T
	var f any
	switch any(zero).(type) {
	case bool:
		f = value.bool
	case int8:
		f = storeInt[int8]
	case int16:
		f = storeInt[int16]
	case int32:
		f = storeInt[int32]
	case int64:
		f = storeInt[int64]
	case uint8:
		f = storeUint[uint8]
	case uint16:
		f = storeUint[uint16]
	case uint32:
		f = storeUint[uint32]
	case uint64:
		f = storeUint[uint64]
	case float16.Float16:
		f = func(v value) float16.Float16 { return float16.Fromfloat32(float32(v.float64())) }
	case float32:
		f = func(v value) float32 { return float32(v.float64()) }
	case float64:
		f = value.float64
	case complex64:
		f = func(v value) complex64 { return complex64(v.complex128()) }
	case complex128:
		f = value.complex128
	}
	return f.(func(value) T)
}

// Convert returns the element conversion from S to D used by casts.
// Complex values lose their imaginary part when cast to real types and float
// values are truncated toward zero when cast to integers.
func Convert[S, D tensor.Element]() func(S) D {
	ld, st := load[S](), store[D]()
	return func(s S) D { return st(ld(s)) }
}

package kernels

import (
	"github.com/x448/float16"

	"github.com/born-ml/dispatch/internal/tensor"
)

func whereFor[T tensor.Element](cond tensor.DataType) (Where, bool) {
	switch cond {
	case tensor.Bool:
		return NewWhere[T, bool](), true
	case tensor.Int8:
		return NewWhere[T, int8](), true
	case tensor.Uint8:
		return NewWhere[T, uint8](), true
	case tensor.Int16:
		return NewWhere[T, int16](), true
	case tensor.Uint16:
		return NewWhere[T, uint16](), true
	case tensor.Int32:
		return NewWhere[T, int32](), true
	case tensor.Uint32:
		return NewWhere[T, uint32](), true
	case tensor.Int64:
		return NewWhere[T, int64](), true
	case tensor.Uint64:
		return NewWhere[T, uint64](), true
	case tensor.Float16:
		return NewWhere[T, float16.Float16](), true
	case tensor.Float32:
		return NewWhere[T, float32](), true
	case tensor.Float64:
		return NewWhere[T, float64](), true
	case tensor.Complex64:
		return NewWhere[T, complex64](), true
	case tensor.Complex128:
		return NewWhere[T, complex128](), true
	}
	return Where{}, false
}

// WhereFactory selects where for values of type x and conditions of type cond.
// Every pair is supported.
func WhereFactory(x, cond tensor.DataType) (Where, bool) {
	switch x {
	case tensor.Bool:
		return whereFor[bool](cond)
	case tensor.Int8:
		return whereFor[int8](cond)
	case tensor.Uint8:
		return whereFor[uint8](cond)
	case tensor.Int16:
		return whereFor[int16](cond)
	case tensor.Uint16:
		return whereFor[uint16](cond)
	case tensor.Int32:
		return whereFor[int32](cond)
	case tensor.Uint32:
		return whereFor[uint32](cond)
	case tensor.Int64:
		return whereFor[int64](cond)
	case tensor.Uint64:
		return whereFor[uint64](cond)
	case tensor.Float16:
		return whereFor[float16.Float16](cond)
	case tensor.Float32:
		return whereFor[float32](cond)
	case tensor.Float64:
		return whereFor[float64](cond)
	case tensor.Complex64:
		return whereFor[complex64](cond)
	case tensor.Complex128:
		return whereFor[complex128](cond)
	}
	return Where{}, false
}

package kernels

import (
	"github.com/x448/float16"

	"github.com/born-ml/dispatch/internal/tensor"
)

// Cast is the dispatch entry of a copy-and-cast from one type to another.
// It reuses the unary kernel shapes.
type Cast struct {
	Contig  UnaryContigFn
	Strided UnaryStridedFn
}

func newCast[S, D tensor.Element]() Cast {
	u := NewUnary("astype", Convert[S, D]())
	return Cast{Contig: u.Contig, Strided: u.Strided}
}

func castTo[S tensor.Element](dst tensor.DataType) (Cast, bool) {
	switch dst {
	case tensor.Bool:
		return newCast[S, bool](), true
	case tensor.Int8:
		return newCast[S, int8](), true
	case tensor.Uint8:
		return newCast[S, uint8](), true
	case tensor.Int16:
		return newCast[S, int16](), true
	case tensor.Uint16:
		return newCast[S, uint16](), true
	case tensor.Int32:
		return newCast[S, int32](), true
	case tensor.Uint32:
		return newCast[S, uint32](), true
	case tensor.Int64:
		return newCast[S, int64](), true
	case tensor.Uint64:
		return newCast[S, uint64](), true
	case tensor.Float16:
		return newCast[S, float16.Float16](), true
	case tensor.Float32:
		return newCast[S, float32](), true
	case tensor.Float64:
		return newCast[S, float64](), true
	case tensor.Complex64:
		return newCast[S, complex64](), true
	case tensor.Complex128:
		return newCast[S, complex128](), true
	}
	return Cast{}, false
}

// CastFactory selects the cast from src to dst. Every pair is supported.
func CastFactory(src, dst tensor.DataType) (Cast, bool) {
	switch src {
	case tensor.Bool:
		return castTo[bool](dst)
	case tensor.Int8:
		return castTo[int8](dst)
	case tensor.Uint8:
		return castTo[uint8](dst)
	case tensor.Int16:
		return castTo[int16](dst)
	case tensor.Uint16:
		return castTo[uint16](dst)
	case tensor.Int32:
		return castTo[int32](dst)
	case tensor.Uint32:
		return castTo[uint32](dst)
	case tensor.Int64:
		return castTo[int64](dst)
	case tensor.Uint64:
		return castTo[uint64](dst)
	case tensor.Float16:
		return castTo[float16.Float16](dst)
	case tensor.Float32:
		return castTo[float32](dst)
	case tensor.Float64:
		return castTo[float64](dst)
	case tensor.Complex64:
		return castTo[complex64](dst)
	case tensor.Complex128:
		return castTo[complex128](dst)
	}
	return Cast{}, false
}

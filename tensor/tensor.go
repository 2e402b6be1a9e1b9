// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/dispatch/internal/dispatch"
	"github.com/born-ml/dispatch/internal/tensor"
)

// Type aliases for public API

// Element is the constraint satisfied by every supported element type.
type Element = tensor.Element

// DataType identifies an element type. Values are dense, starting at 0.
type DataType = tensor.DataType

// Data type constants.
const (
	Invalid    DataType = tensor.Invalid
	Bool       DataType = tensor.Bool
	Int8       DataType = tensor.Int8
	Uint8      DataType = tensor.Uint8
	Int16      DataType = tensor.Int16
	Uint16     DataType = tensor.Uint16
	Int32      DataType = tensor.Int32
	Uint32     DataType = tensor.Uint32
	Int64      DataType = tensor.Int64
	Uint64     DataType = tensor.Uint64
	Float16    DataType = tensor.Float16
	Float32    DataType = tensor.Float32
	Float64    DataType = tensor.Float64
	Complex64  DataType = tensor.Complex64
	Complex128 DataType = tensor.Complex128

	NumTypes = tensor.NumTypes
)

// Typenum is an external type number following the NumPy numbering.
type Typenum = tensor.Typenum

// AllTypes returns every supported data type in id order.
func AllTypes() []DataType {
	return tensor.AllTypes()
}

// ParseDataType returns the data type with the given name, such as "float32".
func ParseDataType(name string) (DataType, error) {
	return tensor.ParseDataType(name)
}

// DataTypeOf returns the data type of the Go type T.
func DataTypeOf[T Element]() DataType {
	return tensor.DataTypeOf[T]()
}

// LookupID maps an external typenum to a data type.
func LookupID(tn Typenum) (DataType, error) {
	return tensor.LookupID(tn)
}

// Errors returned by validation. Test for them with errors.Is.
var (
	ErrUnsupportedType             = tensor.ErrUnsupportedType
	ErrTypeMismatch                = tensor.ErrTypeMismatch
	ErrShape                       = tensor.ErrShape
	ErrNotWritable                 = tensor.ErrNotWritable
	ErrContextMismatch             = tensor.ErrContextMismatch
	ErrAliasing                    = tensor.ErrAliasing
	ErrInsufficientCapacity        = tensor.ErrInsufficientCapacity
	ErrUnsupportedOperationForType = tensor.ErrUnsupportedOperationForType
	ErrNotPopulated                = dispatch.ErrNotPopulated
)

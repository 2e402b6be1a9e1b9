// Package tensor provides the element type registry, shape algebra and buffer
// descriptors shared by the dispatch core.
package tensor

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// DataType is the dense type id of an element kind. It is used directly as an
// index into dispatch vectors and tables.
type DataType int

// Supported data types, in dispatch order.
const (
	Bool DataType = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float16
	Float32
	Float64
	Complex64
	Complex128

	// NumTypes is the number of supported data types.
	NumTypes = int(Complex128) + 1

	// Invalid marks the absence of a data type.
	Invalid DataType = -1
)

// Element lists the Go types backing each DataType.
type Element interface {
	bool | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 |
		float16.Float16 | float32 | float64 | complex64 | complex128
}

var typeNames = [NumTypes]string{
	"bool", "int8", "uint8", "int16", "uint16", "int32", "uint32",
	"int64", "uint64", "float16", "float32", "float64", "complex64", "complex128",
}

var typeSizes = [NumTypes]int{1, 1, 1, 2, 2, 4, 4, 8, 8, 2, 4, 8, 8, 16}

// AllTypes returns every supported data type in dispatch order.
func AllTypes() []DataType {
	types := make([]DataType, NumTypes)
	for i := range types {
		types[i] = DataType(i)
	}
	return types
}

// Valid reports whether dt is a supported data type.
func (dt DataType) Valid() bool {
	return dt >= 0 && int(dt) < NumTypes
}

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	if !dt.Valid() {
		panic("unknown data type")
	}
	return typeSizes[dt]
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	if !dt.Valid() {
		return "unknown"
	}
	return typeNames[dt]
}

// IsBool reports whether dt is the boolean type.
func (dt DataType) IsBool() bool { return dt == Bool }

// IsSigned reports whether dt is a signed integer type.
func (dt DataType) IsSigned() bool {
	return dt == Int8 || dt == Int16 || dt == Int32 || dt == Int64
}

// IsUnsigned reports whether dt is an unsigned integer type.
func (dt DataType) IsUnsigned() bool {
	return dt == Uint8 || dt == Uint16 || dt == Uint32 || dt == Uint64
}

// IsInteger reports whether dt is a signed or unsigned integer type.
func (dt DataType) IsInteger() bool { return dt.IsSigned() || dt.IsUnsigned() }

// IsFloat reports whether dt is a real floating point type.
func (dt DataType) IsFloat() bool {
	return dt == Float16 || dt == Float32 || dt == Float64
}

// IsComplex reports whether dt is a complex type.
func (dt DataType) IsComplex() bool { return dt == Complex64 || dt == Complex128 }

// ParseDataType returns the data type with the given name ("float32", "int64", ...).
func ParseDataType(name string) (DataType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range typeNames {
		if n == name {
			return DataType(i), nil
		}
	}
	return Invalid, errors.Wrapf(ErrUnsupportedType, "data type %q", name)
}

// DataTypeOf returns the DataType of the Go type T.
func DataTypeOf[T Element]() DataType {
	var zero T
	switch any(zero).(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case uint8:
		return Uint8
	case int16:
		return Int16
	case uint16:
		return Uint16
	case int32:
		return Int32
	case uint32:
		return Uint32
	case int64:
		return Int64
	case uint64:
		return Uint64
	case float16.Float16:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	case complex64:
		return Complex64
	case complex128:
		return Complex128
	default:
		panic("unsupported type")
	}
}

// Typenum is an external type number following the NumPy numbering.
type Typenum int

// Typenums understood by LookupID.
const (
	TypenumBool       Typenum = 0
	TypenumByte       Typenum = 1
	TypenumUByte      Typenum = 2
	TypenumShort      Typenum = 3
	TypenumUShort     Typenum = 4
	TypenumInt        Typenum = 5
	TypenumUInt       Typenum = 6
	TypenumLong       Typenum = 7
	TypenumULong      Typenum = 8
	TypenumLongLong   Typenum = 9
	TypenumULongLong  Typenum = 10
	TypenumFloat      Typenum = 11
	TypenumDouble     Typenum = 12
	TypenumLongDouble Typenum = 13
	TypenumCFloat     Typenum = 14
	TypenumCDouble    Typenum = 15
	TypenumHalf       Typenum = 23

	numTypenums = 24
)

// lookupIDs maps a typenum to its dense id; Invalid marks unsupported typenums.
var lookupIDs = func() [numTypenums]DataType {
	var ids [numTypenums]DataType
	for i := range ids {
		ids[i] = Invalid
	}
	ids[TypenumBool] = Bool
	ids[TypenumByte] = Int8
	ids[TypenumUByte] = Uint8
	ids[TypenumShort] = Int16
	ids[TypenumUShort] = Uint16
	ids[TypenumInt] = Int32
	ids[TypenumUInt] = Uint32
	ids[TypenumLong] = Int64
	ids[TypenumULong] = Uint64
	ids[TypenumLongLong] = Int64
	ids[TypenumULongLong] = Uint64
	ids[TypenumHalf] = Float16
	ids[TypenumFloat] = Float32
	ids[TypenumDouble] = Float64
	ids[TypenumCFloat] = Complex64
	ids[TypenumCDouble] = Complex128
	return ids
}()

var typenums = [NumTypes]Typenum{
	TypenumBool, TypenumByte, TypenumUByte, TypenumShort, TypenumUShort, TypenumInt, TypenumUInt,
	TypenumLong, TypenumULong, TypenumHalf, TypenumFloat, TypenumDouble, TypenumCFloat, TypenumCDouble,
}

// LookupID maps a typenum to its dense type id.
func LookupID(tn Typenum) (DataType, error) {
	if tn < 0 || tn >= numTypenums || lookupIDs[tn] == Invalid {
		return Invalid, errors.Wrapf(ErrUnsupportedType, "typenum %d", tn)
	}
	return lookupIDs[tn], nil
}

// Typenum returns the canonical typenum of dt.
func (dt DataType) Typenum() Typenum {
	if !dt.Valid() {
		return -1
	}
	return typenums[dt]
}

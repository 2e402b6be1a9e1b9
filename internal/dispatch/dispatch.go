// Package dispatch holds fixed-size dispatch structures indexed by dense type
// ids. Entries are filled once by per-type factories and read without locks.
package dispatch

import (
	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/tensor"
)

// ErrNotPopulated is returned by lookups on a structure that was never populated.
var ErrNotPopulated = errors.New("dispatch structure not populated")

// Factory returns the routine for one type, or false if the type is unsupported.
type Factory[F any] func(dt tensor.DataType) (F, bool)

// PairFactory returns the routine for a pair of types, or false if unsupported.
type PairFactory[F any] func(dt1, dt2 tensor.DataType) (F, bool)

// Vector is a 1-D dispatch structure with one entry per type.
type Vector[F any] struct {
	name      string
	entries   [tensor.NumTypes]F
	supported [tensor.NumTypes]bool
	populated bool
}

// NewVector builds a vector named name and populates it with factory.
func NewVector[F any](name string, factory Factory[F]) *Vector[F] {
	v := &Vector[F]{name: name}
	v.Populate(factory)
	return v
}

// Populate fills every entry from factory. Repeated calls overwrite the
// previous entries. It must not run concurrently with lookups.
func (v *Vector[F]) Populate(factory Factory[F]) {
	var zero F
	for i := range v.entries {
		fn, ok := factory(tensor.DataType(i))
		if !ok {
			fn = zero
		}
		v.entries[i] = fn
		v.supported[i] = ok
	}
	v.populated = true
}

// Name returns the operation name.
func (v *Vector[F]) Name() string {
	return v.name
}

// Populated reports whether Populate has been called.
func (v *Vector[F]) Populated() bool {
	return v.populated
}

// Supports reports whether dt has a routine.
func (v *Vector[F]) Supports(dt tensor.DataType) bool {
	return v.populated && dt.Valid() && v.supported[dt]
}

// Lookup returns the routine for dt.
func (v *Vector[F]) Lookup(dt tensor.DataType) (F, error) {
	var zero F
	switch {
	case !v.populated:
		return zero, errors.Wrapf(ErrNotPopulated, "%s", v.name)
	case !dt.Valid():
		return zero, errors.Wrapf(tensor.ErrUnsupportedType, "%s: type id %d", v.name, dt)
	case !v.supported[dt]:
		return zero, errors.Wrapf(tensor.ErrUnsupportedOperationForType, "%s(%s)", v.name, dt)
	}
	return v.entries[dt], nil
}

// Table is a 2-D dispatch structure with one entry per ordered type pair.
type Table[F any] struct {
	name      string
	entries   [tensor.NumTypes][tensor.NumTypes]F
	supported [tensor.NumTypes][tensor.NumTypes]bool
	populated bool
}

// NewTable builds a table named name and populates it with factory.
func NewTable[F any](name string, factory PairFactory[F]) *Table[F] {
	t := &Table[F]{name: name}
	t.Populate(factory)
	return t
}

// Populate fills every entry from factory. Repeated calls overwrite the
// previous entries. It must not run concurrently with lookups.
func (t *Table[F]) Populate(factory PairFactory[F]) {
	var zero F
	for i := range t.entries {
		for j := range t.entries[i] {
			fn, ok := factory(tensor.DataType(i), tensor.DataType(j))
			if !ok {
				fn = zero
			}
			t.entries[i][j] = fn
			t.supported[i][j] = ok
		}
	}
	t.populated = true
}

// Name returns the operation name.
func (t *Table[F]) Name() string {
	return t.name
}

// Populated reports whether Populate has been called.
func (t *Table[F]) Populated() bool {
	return t.populated
}

// Supports reports whether the pair (dt1, dt2) has a routine.
func (t *Table[F]) Supports(dt1, dt2 tensor.DataType) bool {
	return t.populated && dt1.Valid() && dt2.Valid() && t.supported[dt1][dt2]
}

// Lookup returns the routine for (dt1, dt2).
func (t *Table[F]) Lookup(dt1, dt2 tensor.DataType) (F, error) {
	var zero F
	switch {
	case !t.populated:
		return zero, errors.Wrapf(ErrNotPopulated, "%s", t.name)
	case !dt1.Valid() || !dt2.Valid():
		return zero, errors.Wrapf(tensor.ErrUnsupportedType, "%s: type ids (%d, %d)", t.name, dt1, dt2)
	case !t.supported[dt1][dt2]:
		return zero, errors.Wrapf(tensor.ErrUnsupportedOperationForType, "%s(%s, %s)", t.name, dt1, dt2)
	}
	return t.entries[dt1][dt2], nil
}

// SupportMatrix returns the supported flags of the table, row-major by first type.
func (t *Table[F]) SupportMatrix() [tensor.NumTypes][tensor.NumTypes]bool {
	return t.supported
}

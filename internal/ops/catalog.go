// Package ops implements the operation orchestrators. Each operation
// validates its arguments, selects a kernel from a dispatch structure built
// at package initialization, packs per-call metadata when needed and submits
// the work, returning a reuse event and a compute event.
package ops

import (
	"cmp"
	"slices"

	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/dispatch"
	"github.com/born-ml/dispatch/internal/kernels"
	"github.com/born-ml/dispatch/internal/tensor"
)

// Dispatch structures. They are populated during package initialization and
// only read afterwards.
var (
	absVector        = dispatch.NewVector("abs", kernels.AbsFactory)
	negativeVector   = dispatch.NewVector("negative", kernels.NegativeFactory)
	exp2Vector       = dispatch.NewVector("exp2", kernels.Exp2Factory)
	isFiniteVector   = dispatch.NewVector("isfinite", kernels.IsFiniteFactory)
	logicalNotVector = dispatch.NewVector("logical_not", kernels.LogicalNotFactory)

	addTable       = dispatch.NewTable("add", kernels.AddFactory)
	multiplyTable  = dispatch.NewTable("multiply", kernels.MultiplyFactory)
	greaterTable   = dispatch.NewTable("greater", kernels.GreaterFactory)
	logicalOrTable = dispatch.NewTable("logical_or", kernels.LogicalOrFactory)

	whereTable = dispatch.NewTable("where", kernels.WhereFactory)
	castTable  = dispatch.NewTable("astype", kernels.CastFactory)

	triuVector = dispatch.NewVector("triu", kernels.TriuFactory)
	trilVector = dispatch.NewVector("tril", kernels.TrilFactory)

	sortAscendingVector  = dispatch.NewVector("sort", kernels.SortAscendingFactory)
	sortDescendingVector = dispatch.NewVector("sort_descending", kernels.SortDescendingFactory)

	takeTables = [kernels.NumModes]*dispatch.Table[kernels.IndexFn]{
		kernels.Wrap: dispatch.NewTable("take", kernels.TakeFactory(kernels.Wrap)),
		kernels.Clip: dispatch.NewTable("take", kernels.TakeFactory(kernels.Clip)),
	}
	putTables = [kernels.NumModes]*dispatch.Table[kernels.IndexFn]{
		kernels.Wrap: dispatch.NewTable("put", kernels.PutFactory(kernels.Wrap)),
		kernels.Clip: dispatch.NewTable("put", kernels.PutFactory(kernels.Clip)),
	}
)

// Signature answers feasibility queries for an operation without executing it.
type Signature interface {
	// Name returns the operation name.
	Name() string
	// Arity returns the number of type ids ResultType expects.
	Arity() int
	// ResultType returns the element type of the result for the given input
	// types, or an error wrapping tensor.ErrUnsupportedOperationForType.
	ResultType(types ...tensor.DataType) (tensor.DataType, error)
}

func checkArity(name string, want int, types []tensor.DataType) error {
	if len(types) != want {
		return errors.Errorf("%s: expected %d type ids, got %d", name, want, len(types))
	}
	return nil
}

// vectorSignature adapts a dispatch vector to Signature.
type vectorSignature[F any] struct {
	v   *dispatch.Vector[F]
	out func(F, tensor.DataType) tensor.DataType
}

func (s vectorSignature[F]) Name() string { return s.v.Name() }

func (s vectorSignature[F]) Arity() int { return 1 }

func (s vectorSignature[F]) ResultType(types ...tensor.DataType) (tensor.DataType, error) {
	if err := checkArity(s.v.Name(), 1, types); err != nil {
		return tensor.Invalid, err
	}
	fn, err := s.v.Lookup(types[0])
	if err != nil {
		return tensor.Invalid, err
	}
	return s.out(fn, types[0]), nil
}

// tableSignature adapts a dispatch table to Signature.
type tableSignature[F any] struct {
	t   *dispatch.Table[F]
	out func(F, tensor.DataType, tensor.DataType) tensor.DataType
}

func (s tableSignature[F]) Name() string { return s.t.Name() }

func (s tableSignature[F]) Arity() int { return 2 }

func (s tableSignature[F]) ResultType(types ...tensor.DataType) (tensor.DataType, error) {
	if err := checkArity(s.t.Name(), 2, types); err != nil {
		return tensor.Invalid, err
	}
	fn, err := s.t.Lookup(types[0], types[1])
	if err != nil {
		return tensor.Invalid, err
	}
	return s.out(fn, types[0], types[1]), nil
}

func sameAsFirst[F any](_ F, dt tensor.DataType) tensor.DataType { return dt }

func firstOfPair[F any](_ F, dt, _ tensor.DataType) tensor.DataType { return dt }

var signatures = []Signature{
	Abs, Negative, Exp2, IsFinite, LogicalNot,
	Add, Multiply, Greater, LogicalOr,
	tableSignature[kernels.Where]{t: whereTable, out: firstOfPair[kernels.Where]},
	tableSignature[kernels.Cast]{t: castTable, out: func(_ kernels.Cast, _, dst tensor.DataType) tensor.DataType { return dst }},
	vectorSignature[kernels.TriulFn]{v: triuVector, out: sameAsFirst[kernels.TriulFn]},
	vectorSignature[kernels.TriulFn]{v: trilVector, out: sameAsFirst[kernels.TriulFn]},
	vectorSignature[kernels.SortFn]{v: sortAscendingVector, out: sameAsFirst[kernels.SortFn]},
	tableSignature[kernels.IndexFn]{t: takeTables[kernels.Wrap], out: firstOfPair[kernels.IndexFn]},
	tableSignature[kernels.IndexFn]{t: putTables[kernels.Wrap], out: firstOfPair[kernels.IndexFn]},
}

// Operations returns the signature of every operation, sorted by name.
func Operations() []Signature {
	out := slices.Clone(signatures)
	slices.SortFunc(out, func(a, b Signature) int { return cmp.Compare(a.Name(), b.Name()) })
	return out
}

// Find returns the signature of the named operation.
func Find(name string) (Signature, error) {
	for _, s := range signatures {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, errors.Errorf("unknown operation %q", name)
}

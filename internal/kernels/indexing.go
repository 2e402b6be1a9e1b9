package kernels

import (
	"math"

	"github.com/x448/float16"

	"github.com/born-ml/dispatch/internal/parallel"
	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

// Mode selects how out-of-range indices are remapped.
type Mode int

// Index modes.
const (
	// Wrap reduces an index modulo the axis length; -1 addresses the last element.
	Wrap Mode = iota
	// Clip saturates an index to [-n, n-1] and then maps negatives to n+i.
	Clip

	NumModes = 2
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Wrap:
		return "wrap"
	case Clip:
		return "clip"
	default:
		return "unknown"
	}
}

// WrapIndex maps i into [0, n) by Euclidean modulo. n must be positive.
func WrapIndex(i, n int64) int64 {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}

// ClipIndex maps i into [0, n) by saturation. n must be positive.
func ClipIndex(i, n int64) int64 {
	i = max(-n, min(i, n-1))
	if i < 0 {
		i += n
	}
	return i
}

// IndexArgs describes one take or put call. X is the array addressed through
// the index arrays, Y the array laid out along the index shape: the
// destination of a take, the values of a put. OrthNd and IndNd are the packed
// widths, at least 1.
type IndexArgs struct {
	OrthN, IndN   int
	OrthNd, IndNd int
	K             int

	// ShapesStrides holds the orthogonal block (3*OrthNd values) followed by
	// the along-axis block (2*(K+IndNd) values).
	ShapesStrides *queue.Allocation
	// IndShapesStrides holds the index shape followed by the strides of each index array.
	IndShapesStrides *queue.Allocation
	// IndPtrs holds the allocation id of each index array.
	IndPtrs *queue.Allocation
	// IndOffsets holds the element offset of each index array.
	IndOffsets *queue.Allocation

	X, Y       *queue.Allocation
	XOff, YOff int
}

// IndexFn is a take or put routine.
type IndexFn func(q *queue.Queue, a IndexArgs, deps []*queue.Event) *queue.Event

// indexInt lists the element types accepted as indices.
type indexInt interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64
}

// toInt64 converts an index, saturating unsigned values above MaxInt64.
func toInt64[I indexInt](v I) int64 {
	if v > 0 && uint64(v) > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// remapper returns the index remapping of mode for index type I. Unsigned
// indices wrap by unsigned modulo so that values above MaxInt64 keep their
// residue; clip saturates them like any other large index.
func remapper[I indexInt](mode Mode) func(v I, n int64) int64 {
	if mode == Clip {
		return func(v I, n int64) int64 { return ClipIndex(toInt64(v), n) }
	}
	var zero I
	if ^zero > 0 {
		return func(v I, n int64) int64 { return int64(uint64(v) % uint64(n)) }
	}
	return func(v I, n int64) int64 { return WrapIndex(int64(v), n) }
}

type indexPlan[V tensor.Element, I indexInt] struct {
	a          IndexArgs
	x, y       []V
	inds       [][]I
	indOffsets []int64
	orth       Indexer
	ind        Indexer
	yAlong     Indexer
	xShape     []int64
	xStrides   []int64
	remap      func(v I, n int64) int64
}

func newIndexPlan[V tensor.Element, I indexInt](q *queue.Queue, a IndexArgs, mode Mode) (*indexPlan[V, I], error) {
	ss, err := packedView(a.ShapesStrides)
	if err != nil {
		return nil, err
	}
	indSS, err := packedView(a.IndShapesStrides)
	if err != nil {
		return nil, err
	}
	ptrs, err := packedView(a.IndPtrs)
	if err != nil {
		return nil, err
	}
	offsets, err := packedView(a.IndOffsets)
	if err != nil {
		return nil, err
	}
	x, err := tensor.View[V](a.X)
	if err != nil {
		return nil, err
	}
	y, err := tensor.View[V](a.Y)
	if err != nil {
		return nil, err
	}

	inds := make([][]I, a.K)
	for j := range inds {
		alloc, err := q.Context().Lookup(uint64(ptrs[j]))
		if err != nil {
			return nil, err
		}
		if inds[j], err = tensor.View[I](alloc); err != nil {
			return nil, err
		}
	}

	along := ss[3*a.OrthNd:]
	p := &indexPlan[V, I]{
		a:          a,
		x:          x,
		y:          y,
		inds:       inds,
		indOffsets: offsets,
		orth:       NewIndexer(ss, a.OrthNd, 2),
		ind:        NewIndexer(indSS, a.IndNd, a.K),
		yAlong:     NewIndexer(along[2*a.K:], a.IndNd, 1),
		xShape:     along[:a.K],
		xStrides:   along[a.K : 2*a.K],
		remap:      remapper[I](mode),
	}
	return p, nil
}

// xOffset returns the element of X addressed by index element j.
func (p *indexPlan[V, I]) xOffset(j int, indOffs []int) int {
	p.ind.Offsets(j, indOffs)
	off := 0
	for m, ind := range p.inds {
		i := ind[int(p.indOffsets[m])+indOffs[m]]
		off += int(p.remap(i, p.xShape[m]) * p.xStrides[m])
	}
	return off
}

func take[V tensor.Element, I indexInt](mode Mode) IndexFn {
	return func(q *queue.Queue, a IndexArgs, deps []*queue.Event) *queue.Event {
		return q.Submit("take_"+mode.String(), deps, func() error {
			p, err := newIndexPlan[V, I](q, a, mode)
			if err != nil {
				return err
			}
			parallel.ForRange(a.OrthN*a.IndN, func(start, end int) {
				orthOffs := make([]int, 2)
				indOffs := make([]int, a.K)
				for t := start; t < end; t++ {
					i, j := t/a.IndN, t%a.IndN
					p.orth.Offsets(i, orthOffs)
					xo := a.XOff + orthOffs[0] + p.xOffset(j, indOffs)
					yo := a.YOff + orthOffs[1] + p.yAlong.Offset(j, 0)
					p.y[yo] = p.x[xo]
				}
			}, q.Parallel())
			return nil
		})
	}
}

// put writes index elements of one orthogonal position in order, so that the
// last of several duplicate indices wins.
func put[V tensor.Element, I indexInt](mode Mode) IndexFn {
	return func(q *queue.Queue, a IndexArgs, deps []*queue.Event) *queue.Event {
		return q.Submit("put_"+mode.String(), deps, func() error {
			p, err := newIndexPlan[V, I](q, a, mode)
			if err != nil {
				return err
			}
			parallel.ForRange(a.OrthN, func(start, end int) {
				orthOffs := make([]int, 2)
				indOffs := make([]int, a.K)
				for i := start; i < end; i++ {
					p.orth.Offsets(i, orthOffs)
					for j := 0; j < a.IndN; j++ {
						xo := a.XOff + orthOffs[0] + p.xOffset(j, indOffs)
						yo := a.YOff + orthOffs[1] + p.yAlong.Offset(j, 0)
						p.x[xo] = p.y[yo]
					}
				}
			}, q.Parallel())
			return nil
		})
	}
}

func indexFn[V tensor.Element, I indexInt](mode Mode, isPut bool) IndexFn {
	if isPut {
		return put[V, I](mode)
	}
	return take[V, I](mode)
}

func indexFnFor[V tensor.Element](it tensor.DataType, mode Mode, isPut bool) (IndexFn, bool) {
	switch it {
	case tensor.Int8:
		return indexFn[V, int8](mode, isPut), true
	case tensor.Uint8:
		return indexFn[V, uint8](mode, isPut), true
	case tensor.Int16:
		return indexFn[V, int16](mode, isPut), true
	case tensor.Uint16:
		return indexFn[V, uint16](mode, isPut), true
	case tensor.Int32:
		return indexFn[V, int32](mode, isPut), true
	case tensor.Uint32:
		return indexFn[V, uint32](mode, isPut), true
	case tensor.Int64:
		return indexFn[V, int64](mode, isPut), true
	case tensor.Uint64:
		return indexFn[V, uint64](mode, isPut), true
	}
	return nil, false
}

func indexFactory(mode Mode, isPut bool) func(vt, it tensor.DataType) (IndexFn, bool) {
	return func(vt, it tensor.DataType) (IndexFn, bool) {
		switch vt {
		case tensor.Bool:
			return indexFnFor[bool](it, mode, isPut)
		case tensor.Int8:
			return indexFnFor[int8](it, mode, isPut)
		case tensor.Uint8:
			return indexFnFor[uint8](it, mode, isPut)
		case tensor.Int16:
			return indexFnFor[int16](it, mode, isPut)
		case tensor.Uint16:
			return indexFnFor[uint16](it, mode, isPut)
		case tensor.Int32:
			return indexFnFor[int32](it, mode, isPut)
		case tensor.Uint32:
			return indexFnFor[uint32](it, mode, isPut)
		case tensor.Int64:
			return indexFnFor[int64](it, mode, isPut)
		case tensor.Uint64:
			return indexFnFor[uint64](it, mode, isPut)
		case tensor.Float16:
			return indexFnFor[float16.Float16](it, mode, isPut)
		case tensor.Float32:
			return indexFnFor[float32](it, mode, isPut)
		case tensor.Float64:
			return indexFnFor[float64](it, mode, isPut)
		case tensor.Complex64:
			return indexFnFor[complex64](it, mode, isPut)
		case tensor.Complex128:
			return indexFnFor[complex128](it, mode, isPut)
		}
		return nil, false
	}
}

// TakeFactory returns the factory of take routines for mode, indexed by
// (value type, index type). Only integer index types are supported.
func TakeFactory(mode Mode) func(vt, it tensor.DataType) (IndexFn, bool) {
	return indexFactory(mode, false)
}

// PutFactory returns the factory of put routines for mode, indexed by
// (value type, index type). Only integer index types are supported.
func PutFactory(mode Mode) func(vt, it tensor.DataType) (IndexFn, bool) {
	return indexFactory(mode, true)
}

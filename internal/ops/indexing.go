package ops

import (
	"github.com/pkg/errors"

	"github.com/born-ml/dispatch/internal/kernels"
	"github.com/born-ml/dispatch/internal/pack"
	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
	"github.com/born-ml/dispatch/internal/validate"
)

// ErrInvalidMode is returned for an index mode other than wrap or clip.
var ErrInvalidMode = errors.New("invalid index mode")

// Mode selects how take and put remap out-of-range indices.
type Mode = kernels.Mode

// Index modes.
const (
	Wrap = kernels.Wrap
	Clip = kernels.Clip
)

// ParseMode maps "wrap" or "clip" to a Mode.
func ParseMode(s string) (Mode, error) {
	for m := Mode(0); m < kernels.NumModes; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidMode, "%q", s)
}

// indexCall is the validated geometry shared by take and put. x is the array
// addressed through the indices, y the array laid out along the index shape.
type indexCall struct {
	name      string
	x, y      *tensor.RawTensor
	inds      []*tensor.RawTensor
	axisStart int
	k         int
	indNd     int
	orthN     int
	indN      int
}

// checkIndexArgs validates the index list against x and returns the shape y
// must have: x's shape with axes [axisStart, axisStart+k) replaced by the
// index shape.
func checkIndexArgs(name string, x *tensor.RawTensor, inds []*tensor.RawTensor, axisStart int, mode Mode) (tensor.Shape, error) {
	k := len(inds)
	if k == 0 {
		return nil, errors.Wrapf(tensor.ErrShape, "%s: at least one index array is required", name)
	}
	if mode < 0 || mode >= kernels.NumModes {
		return nil, errors.Wrapf(ErrInvalidMode, "%s: mode %d", name, mode)
	}
	xShape := x.Shape()
	if len(xShape) == 0 {
		xShape = tensor.Shape{1}
	}
	if axisStart < 0 || axisStart+k > len(xShape) {
		return nil, errors.Wrapf(tensor.ErrShape, "%s: axes [%d, %d) out of range for %d dimensions",
			name, axisStart, axisStart+k, len(xShape))
	}
	if err := validate.SameType(name, inds[0].DType(), inds[1:]...); err != nil {
		return nil, err
	}
	if err := validate.SameShape(name, inds[0].Shape(), inds[1:]...); err != nil {
		return nil, err
	}
	want := make(tensor.Shape, 0, len(xShape)-k+inds[0].NDim())
	want = append(want, xShape[:axisStart]...)
	want = append(want, inds[0].Shape()...)
	if x.NDim() > 0 {
		want = append(want, xShape[axisStart+k:]...)
	}
	return want, nil
}

func newIndexCall(name string, x, y *tensor.RawTensor, inds []*tensor.RawTensor, axisStart int) *indexCall {
	c := &indexCall{
		name:      name,
		x:         x,
		y:         y,
		inds:      inds,
		axisStart: axisStart,
		k:         len(inds),
		indNd:     inds[0].NDim(),
		indN:      inds[0].NumElements(),
	}
	c.orthN = 1
	for d, dim := range x.Shape() {
		if d < axisStart || d >= axisStart+c.k {
			c.orthN *= dim
		}
	}
	return c
}

// emptyIndexedAxis reports an indexed axis of length zero.
func (c *indexCall) emptyIndexedAxis() error {
	if c.x.NDim() == 0 {
		return nil
	}
	for a := 0; a < c.k; a++ {
		if c.x.Shape()[c.axisStart+a] == 0 {
			return errors.Wrapf(tensor.ErrShape, "%s: cannot index axis %d of length 0", c.name, c.axisStart+a)
		}
	}
	return nil
}

// launch packs the index and axis metadata and submits fn.
func (c *indexCall) launch(q *queue.Queue, fn kernels.IndexFn, deps []*queue.Event, args ...any) (*queue.Event, *queue.Event, error) {
	ip := pack.PopulateIndexParams(c.inds)
	ax := pack.SplitAxes(c.x, c.y, c.axisStart, c.k, c.indNd)

	o := pack.NewOwner(q)
	ptrs, err := o.Pack(nil, ip.Ptrs)
	if err != nil {
		o.Abort()
		return nil, nil, err
	}
	indSS, err := o.Pack(nil, ip.ShapesStrides)
	if err != nil {
		o.Abort()
		return nil, nil, err
	}
	offsets, err := o.Pack(nil, ip.Offsets)
	if err != nil {
		o.Abort()
		return nil, nil, err
	}
	ss, err := o.Pack(nil, ax.Orthog, ax.Along)
	if err != nil {
		o.Abort()
		return nil, nil, err
	}
	o.ReleaseStaging()

	q.Logger().Debug("dispatch", "op", c.name, "orth", c.orthN, "ind", c.indN, "k", c.k, "x", c.x, "y", c.y)
	compute := fn(q, kernels.IndexArgs{
		OrthN:            c.orthN,
		IndN:             c.indN,
		OrthNd:           ax.OrthNd,
		IndNd:            max(c.indNd, 1),
		K:                c.k,
		ShapesStrides:    ss,
		IndShapesStrides: indSS,
		IndPtrs:          ptrs,
		IndOffsets:       offsets,
		X:                c.x.Allocation(),
		Y:                c.y.Allocation(),
		XOff:             c.x.Offset(),
		YOff:             c.y.Offset(),
	}, o.DependsOn(deps))
	o.ReleaseAfter(compute)
	return finish(q, compute, args...)
}

// Take gathers dst = src[..., inds[0], ..., inds[k-1], ...] where the k index
// arrays address axes [axisStart, axisStart+k) of src. dst has src's shape
// with those axes replaced by the common index shape. Out-of-range indices
// are remapped by mode; no index value is ever rejected.
func Take(q *queue.Queue, src *tensor.RawTensor, inds []*tensor.RawTensor, dst *tensor.RawTensor,
	axisStart int, mode Mode, deps []*queue.Event) (*queue.Event, *queue.Event, error) {
	const name = "take"
	if err := validate.Writable(name, dst); err != nil {
		return nil, nil, err
	}
	want, err := checkIndexArgs(name, src, inds, axisStart, mode)
	if err != nil {
		return nil, nil, err
	}
	if err := validate.SameType(name, src.DType(), dst); err != nil {
		return nil, nil, err
	}
	if err := validate.SameShape(name, want, dst); err != nil {
		return nil, nil, err
	}
	fn, err := takeTables[mode].Lookup(src.DType(), inds[0].DType())
	if err != nil {
		return nil, nil, err
	}
	c := newIndexCall(name, src, dst, inds, axisStart)
	if c.orthN == 0 || c.indN == 0 {
		return noop(q, name)
	}
	if err := c.emptyIndexedAxis(); err != nil {
		return nil, nil, err
	}
	all := append([]*tensor.RawTensor{src, dst}, inds...)
	if err := validate.ContextsCompatible(name, q, all...); err != nil {
		return nil, nil, err
	}
	if err := validate.NoOverlap(name, dst, append([]*tensor.RawTensor{src}, inds...)...); err != nil {
		return nil, nil, err
	}
	if err := validate.AmpleMemory(name, dst, c.orthN*c.indN); err != nil {
		return nil, nil, err
	}
	return c.launch(q, fn, deps, src, dst, inds)
}

// Put scatters val into dst[..., inds[0], ..., inds[k-1], ...]. val is
// broadcast to dst's shape with axes [axisStart, axisStart+k) replaced by the
// common index shape. When indices repeat, the value written last in index
// order wins.
func Put(q *queue.Queue, dst *tensor.RawTensor, inds []*tensor.RawTensor, val *tensor.RawTensor,
	axisStart int, mode Mode, deps []*queue.Event) (*queue.Event, *queue.Event, error) {
	const name = "put"
	if err := validate.Writable(name, dst); err != nil {
		return nil, nil, err
	}
	want, err := checkIndexArgs(name, dst, inds, axisStart, mode)
	if err != nil {
		return nil, nil, err
	}
	if err := validate.SameType(name, dst.DType(), val); err != nil {
		return nil, nil, err
	}
	v, err := val.BroadcastTo(want)
	if err != nil {
		return nil, nil, errors.Wrap(err, name)
	}
	fn, err := putTables[mode].Lookup(dst.DType(), inds[0].DType())
	if err != nil {
		return nil, nil, err
	}
	c := newIndexCall(name, dst, v, inds, axisStart)
	if c.orthN == 0 || c.indN == 0 {
		return noop(q, name)
	}
	if err := c.emptyIndexedAxis(); err != nil {
		return nil, nil, err
	}
	all := append([]*tensor.RawTensor{dst, val}, inds...)
	if err := validate.ContextsCompatible(name, q, all...); err != nil {
		return nil, nil, err
	}
	if err := validate.NoOverlap(name, dst, append([]*tensor.RawTensor{v}, inds...)...); err != nil {
		return nil, nil, err
	}
	if err := validate.AmpleMemory(name, dst, dst.NumElements()); err != nil {
		return nil, nil, err
	}
	return c.launch(q, fn, deps, dst, val, inds)
}

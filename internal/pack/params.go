package pack

import (
	"github.com/born-ml/dispatch/internal/tensor"
)

// IndexParams are the host-side arrays describing k index arrays that share
// one shape.
type IndexParams struct {
	// Ptrs holds the allocation id of each index array.
	Ptrs []int64
	// ShapesStrides holds the common shape followed by the strides of each
	// index array, (k+1)*max(nd,1) values. A 0-d shape packs as [1] with stride [0].
	ShapesStrides []int64
	// Offsets holds the element offset of each index array.
	Offsets []int64
}

// PopulateIndexParams fills IndexParams for ind. All index arrays must have
// the shape of ind[0].
func PopulateIndexParams(ind []*tensor.RawTensor) IndexParams {
	k := len(ind)
	nd := 0
	if k > 0 {
		nd = ind[0].NDim()
	}
	w := max(nd, 1)
	p := IndexParams{
		Ptrs:          make([]int64, k),
		ShapesStrides: make([]int64, (k+1)*w),
		Offsets:       make([]int64, k),
	}
	if k == 0 {
		return p
	}
	if nd == 0 {
		p.ShapesStrides[0] = 1
	} else {
		for d, dim := range ind[0].Shape() {
			p.ShapesStrides[d] = int64(dim)
		}
	}
	for i, t := range ind {
		p.Ptrs[i] = int64(t.Allocation().ID())
		p.Offsets[i] = int64(t.Offset())
		for d, s := range t.Strides() {
			p.ShapesStrides[(i+1)*w+d] = int64(s)
		}
	}
	return p
}

// AxesParams are the host-side orthogonal and along-axis blocks of an
// advanced indexing call. X is the array indexed by the k index arrays, Y is
// the array whose axes [axisStart, axisStart+indNd) follow the index shape.
// For take X is the source and Y the destination; for put X is the
// destination and Y the values.
type AxesParams struct {
	// OrthNd is max(number of orthogonal axes, 1).
	OrthNd int
	// OrthN is the number of orthogonal elements.
	OrthN int
	// Orthog holds the orthogonal shape, X strides and Y strides: 3*OrthNd values.
	Orthog []int64
	// Along holds X's k indexed extents and strides followed by Y's index-shaped
	// extents and strides: 2*(k+max(indNd,1)) values.
	Along []int64
}

// SplitAxes computes AxesParams. A 0-d X is treated as a single axis of
// length 1 and stride 0.
func SplitAxes(x, y *tensor.RawTensor, axisStart, k, indNd int) AxesParams {
	xShape, xStrides := x.Shape(), x.Strides()
	if len(xShape) == 0 {
		xShape, xStrides = tensor.Shape{1}, []int{0}
	}
	yShape, yStrides := y.Shape(), y.Strides()

	var orthShape tensor.Shape
	var orthX, orthY []int
	for d := 0; d < axisStart; d++ {
		orthShape = append(orthShape, xShape[d])
		orthX = append(orthX, xStrides[d])
		orthY = append(orthY, yStrides[d])
	}
	for d := axisStart + k; d < len(xShape); d++ {
		orthShape = append(orthShape, xShape[d])
		orthX = append(orthX, xStrides[d])
		orthY = append(orthY, yStrides[d-k+indNd])
	}

	orthNd := max(len(orthShape), 1)
	p := AxesParams{
		OrthNd: orthNd,
		OrthN:  orthShape.NumElements(),
		Orthog: make([]int64, 3*orthNd),
	}
	if len(orthShape) == 0 {
		p.Orthog[0] = 1
	}
	for i := range orthShape {
		p.Orthog[i] = int64(orthShape[i])
		p.Orthog[orthNd+i] = int64(orthX[i])
		p.Orthog[2*orthNd+i] = int64(orthY[i])
	}

	w := max(indNd, 1)
	p.Along = make([]int64, 2*(k+w))
	for a := 0; a < k; a++ {
		p.Along[a] = int64(xShape[axisStart+a])
		p.Along[k+a] = int64(xStrides[axisStart+a])
	}
	if indNd == 0 {
		p.Along[2*k] = 1
	}
	for d := 0; d < indNd; d++ {
		p.Along[2*k+d] = int64(yShape[axisStart+d])
		p.Along[2*k+w+d] = int64(yStrides[axisStart+d])
	}
	return p
}

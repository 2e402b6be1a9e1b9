// Package kernels implements the typed compute routines selected through the
// dispatch structures. Every routine submits one task to a queue and returns
// its completion event; metadata that varies per call is read from packed
// int64 scratch allocations inside the task.
package kernels

import (
	"github.com/born-ml/dispatch/internal/queue"
	"github.com/born-ml/dispatch/internal/tensor"
)

// Indexer maps a flat row-major index of an iteration space to element
// displacements of several arrays that share the space.
type Indexer struct {
	shape   []int64
	strides [][]int64
}

// NewIndexer reads an nd-dimensional iteration space laid out as
// [shape, strides_0, ..., strides_{narrays-1}].
func NewIndexer(p []int64, nd, narrays int) Indexer {
	ix := Indexer{shape: p[:nd], strides: make([][]int64, narrays)}
	for j := range ix.strides {
		ix.strides[j] = p[(j+1)*nd : (j+2)*nd]
	}
	return ix
}

// Offsets stores in offs the displacement of flat index i for every array.
func (ix Indexer) Offsets(i int, offs []int) {
	for j := range offs {
		offs[j] = 0
	}
	r := int64(i)
	for d := len(ix.shape) - 1; d >= 0; d-- {
		dim := ix.shape[d]
		next := r / dim
		c := r - next*dim
		for j := range offs {
			offs[j] += int(c * ix.strides[j][d])
		}
		r = next
	}
}

// Offset returns the displacement of flat index i for array j.
func (ix Indexer) Offset(i, j int) int {
	off := 0
	r := int64(i)
	for d := len(ix.shape) - 1; d >= 0; d-- {
		dim := ix.shape[d]
		next := r / dim
		off += int((r - next*dim) * ix.strides[j][d])
		r = next
	}
	return off
}

func packedView(a *queue.Allocation) ([]int64, error) {
	return tensor.View[int64](a)
}

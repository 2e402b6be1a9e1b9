// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides strided tensor descriptors and the asynchronous
// operations that run on them.
//
// # Overview
//
// A RawTensor describes a view of an allocation: element type, shape,
// strides and offset. Operations never allocate their outputs; the caller
// passes a destination of the right shape and type, and the operation
// validates every argument before any work is submitted.
//
// # Basic Usage
//
//	q := queue.NewDefault()
//
//	x, _ := tensor.FromSlice(q, []float32{1, -2, 3, -4}, tensor.Shape{2, 2})
//	y, _ := tensor.Zeros(q, tensor.Shape{2, 2}, tensor.Float32)
//
//	reuse, compute, err := tensor.Abs(q, x, y, nil)
//	if err != nil {
//	    // errors.Is(err, tensor.ErrUnsupportedOperationForType), ...
//	}
//	_ = compute.Wait() // y holds the result
//	_ = reuse.Wait()   // x and y may be reused or dropped
//
// # Events
//
// Every operation returns two events. The compute event fires when the
// result is ready. The reuse event fires after it, once every argument of the
// call may be reused. Pass events as dependencies to order calls; calls
// without a dependency path between them are unordered.
//
// # Supported Data Types
//
// bool, int8, uint8, int16, uint16, int32, uint32, int64, uint64, float16
// (github.com/x448/float16), float32, float64, complex64 and complex128.
// Which types an operation accepts is answered by its Signature, see Find.
//
// # Errors
//
// Validation failures wrap one of the Err* sentinels of this package. Kernel
// failures surface through the compute event.
package tensor

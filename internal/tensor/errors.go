package tensor

import "github.com/pkg/errors"

// Validation errors. Every error returned before work is submitted wraps
// exactly one of these; test for them with errors.Is.
var (
	ErrUnsupportedType             = errors.New("unsupported type")
	ErrTypeMismatch                = errors.New("type mismatch")
	ErrShape                       = errors.New("shape mismatch")
	ErrNotWritable                 = errors.New("destination is not writable")
	ErrContextMismatch             = errors.New("execution context is not compatible with allocation context")
	ErrAliasing                    = errors.New("array memory overlap")
	ErrInsufficientCapacity        = errors.New("insufficient capacity")
	ErrUnsupportedOperationForType = errors.New("operation not supported for type")
)

package ops

import (
	"slices"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/dispatch/internal/tensor"
)

func TestOperations(t *testing.T) {
	names := make([]string, 0)
	for _, op := range Operations() {
		names = append(names, op.Name())
	}
	assert.True(t, slices.IsSorted(names))
	for _, name := range []string{"abs", "add", "astype", "exp2", "greater", "isfinite", "logical_not",
		"logical_or", "multiply", "negative", "put", "sort", "take", "tril", "triu", "where"} {
		assert.Contains(t, names, name)
	}

	_, err := Find("matmul")
	assert.Error(t, err)
}

func TestResultTypes(t *testing.T) {
	tests := []struct {
		op    string
		types []tensor.DataType
		want  tensor.DataType
	}{
		{"abs", []tensor.DataType{tensor.Complex64}, tensor.Float32},
		{"negative", []tensor.DataType{tensor.Float16}, tensor.Float16},
		{"isfinite", []tensor.DataType{tensor.Float64}, tensor.Bool},
		{"logical_not", []tensor.DataType{tensor.Int32}, tensor.Bool},
		{"add", []tensor.DataType{tensor.Uint16, tensor.Uint16}, tensor.Uint16},
		{"greater", []tensor.DataType{tensor.Uint64, tensor.Int64}, tensor.Bool},
		{"logical_or", []tensor.DataType{tensor.Complex128, tensor.Bool}, tensor.Bool},
		{"where", []tensor.DataType{tensor.Float32, tensor.Int8}, tensor.Float32},
		{"take", []tensor.DataType{tensor.Complex64, tensor.Uint32}, tensor.Complex64},
		{"put", []tensor.DataType{tensor.Bool, tensor.Int64}, tensor.Bool},
		{"triu", []tensor.DataType{tensor.Int8}, tensor.Int8},
		{"sort", []tensor.DataType{tensor.Float16}, tensor.Float16},
	}
	for _, tt := range tests {
		op, err := Find(tt.op)
		require.NoError(t, err)
		got, err := op.ResultType(tt.types...)
		require.NoError(t, err, "%s%v", tt.op, tt.types)
		assert.Equal(t, tt.want, got, "%s%v", tt.op, tt.types)
	}
}

func TestResultTypeUnsupported(t *testing.T) {
	tests := []struct {
		op    string
		types []tensor.DataType
	}{
		{"exp2", []tensor.DataType{tensor.Int64}},
		{"negative", []tensor.DataType{tensor.Bool}},
		{"add", []tensor.DataType{tensor.Int32, tensor.Float32}},
		{"take", []tensor.DataType{tensor.Float32, tensor.Float32}},
	}
	for _, tt := range tests {
		op, err := Find(tt.op)
		require.NoError(t, err)
		_, err = op.ResultType(tt.types...)
		assert.True(t, errors.Is(err, tensor.ErrUnsupportedOperationForType), "%s%v", tt.op, tt.types)
	}

	op, err := Find("add")
	require.NoError(t, err)
	_, err = op.ResultType(tensor.Int32)
	assert.Error(t, err, "wrong arity")
}

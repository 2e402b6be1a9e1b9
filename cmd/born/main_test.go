package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunCommands(t *testing.T) {
	tests := []struct {
		args []string
		code int
		want string
	}{
		{[]string{"version"}, 0, version},
		{[]string{"types"}, 0, "complex128"},
		{[]string{"ops"}, 0, "logical_or"},
		{[]string{"result-type", "-op", "abs", "complex64"}, 0, "float32"},
		{[]string{"result-type", "-op", "exp2", "int8"}, 1, ""},
		{[]string{"table", "-op", "greater"}, 0, "bool"},
		{[]string{"info"}, 0, "CPU features"},
		{[]string{"demo", "-mode", "clip"}, 0, "taken [4 3]"},
		{[]string{"nope"}, 2, ""},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			var out, errOut bytes.Buffer
			code := run(tt.args, &out, &errOut)
			assert.Equal(t, tt.code, code, errOut.String())
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestDemoWrapsIndices(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 0, run([]string{"demo"}, &out, &errOut), errOut.String())
	// Index 5 wraps to 0 and overwrites the first column written by index 0.
	assert.Contains(t, out.String(), "taken [4 3]: [2 2 3 5 5 6 8 8 9 11 11 12]")
}

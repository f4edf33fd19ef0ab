package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// testSignature returns the tensor contract of a small voxel detection
// artifact: two inputs, one output.
func testSignature() Signature {
	return Signature{
		Inputs: []ValueSpec{
			{Name: "voxels", Shape: []int64{4, 2, 4}, DType: Float32},
			{Name: "num_points", Shape: []int64{4}, DType: Int32},
		},
		Outputs: []ValueSpec{
			{Name: "cls_score", Shape: []int64{4, 1}, DType: Float32},
		},
	}
}

// validInputs builds a value set matching testSignature exactly.
func validInputs() []Value {
	return []Value{
		{Name: "voxels", Shape: []int64{4, 2, 4}, Floats: make([]float32, 32)},
		{Name: "num_points", Shape: []int64{4}, Ints: make([]int32, 4)},
	}
}

// TestSignatureValidate covers the signature self-checks.
func TestSignatureValidate(t *testing.T) {
	valid := testSignature()
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Signature)
	}{
		{name: "no inputs", mutate: func(s *Signature) { s.Inputs = nil }},
		{name: "no outputs", mutate: func(s *Signature) { s.Outputs = nil }},
		{name: "unnamed tensor", mutate: func(s *Signature) { s.Inputs[0].Name = "" }},
		{name: "missing shape", mutate: func(s *Signature) { s.Inputs[0].Shape = nil }},
		{name: "non-positive dimension", mutate: func(s *Signature) { s.Inputs[0].Shape = []int64{4, 0, 4} }},
		{name: "unsupported dtype", mutate: func(s *Signature) { s.Outputs[0].DType = "float64" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := testSignature()
			tt.mutate(&sig)
			assert.Error(t, sig.Validate())
		})
	}
}

// TestValidateInputs covers every rejection path of the per-call input check.
func TestValidateInputs(t *testing.T) {
	sig := testSignature()
	assert.NoError(t, sig.ValidateInputs(validInputs()))

	tests := []struct {
		name   string
		mutate func([]Value) []Value
	}{
		{
			name: "missing declared input",
			mutate: func(v []Value) []Value {
				return v[:1]
			},
		},
		{
			name: "duplicate input",
			mutate: func(v []Value) []Value {
				return append(v, v[0])
			},
		},
		{
			name: "undeclared input",
			mutate: func(v []Value) []Value {
				return append(v, Value{Name: "coors", Shape: []int64{4}, Ints: make([]int32, 4)})
			},
		},
		{
			name: "wrong dtype",
			mutate: func(v []Value) []Value {
				v[1].Ints = nil
				v[1].Floats = make([]float32, 4)
				return v
			},
		},
		{
			name: "wrong shape",
			mutate: func(v []Value) []Value {
				v[0].Shape = []int64{4, 4, 2}
				return v
			},
		},
		{
			name: "wrong rank",
			mutate: func(v []Value) []Value {
				v[0].Shape = []int64{32}
				return v
			},
		},
		{
			name: "element count mismatch",
			mutate: func(v []Value) []Value {
				v[0].Floats = make([]float32, 16)
				return v
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, sig.ValidateInputs(tt.mutate(validInputs())))
		})
	}
}

// TestValueDType verifies the dtype inference from the populated slice.
func TestValueDType(t *testing.T) {
	f := Value{Name: "a", Shape: []int64{2}, Floats: []float32{1, 2}}
	assert.Equal(t, Float32, f.DType())

	i := Value{Name: "b", Shape: []int64{2}, Ints: []int32{1, 2}}
	assert.Equal(t, Int32, i.DType())
}

// TestValueNumElements verifies the shape product.
func TestValueNumElements(t *testing.T) {
	v := Value{Shape: []int64{4, 2, 4}}
	assert.Equal(t, int64(32), v.NumElements())
}

// TestErrorChain verifies the uniform backend error wrapper.
func TestErrorChain(t *testing.T) {
	cause := assert.AnError
	err := newError("tensorrt", "run", cause)
	assert.Contains(t, err.Error(), "tensorrt")
	assert.Contains(t, err.Error(), "run")
	assert.ErrorIs(t, err, cause)
}

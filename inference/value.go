// Package inference - Backend-agnostic tensor values and signatures.
package inference

import (
	"github.com/pkg/errors"
)

// DType identifies the element type of a tensor value.
type DType string

const (
	// Float32 is a 32-bit float tensor.
	Float32 DType = "float32"
	// Int32 is a 32-bit integer tensor.
	Int32 DType = "int32"
)

// Value is a named tensor crossing the backend boundary. Exactly one of
// Floats or Ints is populated, matching DType.
type Value struct {
	Name   string
	Shape  []int64
	Floats []float32
	Ints   []int32
}

// DType returns the element type of the value.
func (v *Value) DType() DType {
	if v.Ints != nil {
		return Int32
	}
	return Float32
}

// NumElements returns the element count implied by the shape.
func (v *Value) NumElements() int64 {
	n := int64(1)
	for _, d := range v.Shape {
		n *= d
	}
	return n
}

// ValueSpec declares the name, shape and dtype of one tensor in an
// artifact's signature.
type ValueSpec struct {
	Name  string  `json:"name" koanf:"name" yaml:"name"`
	Shape []int64 `json:"shape" koanf:"shape" yaml:"shape"`
	DType DType   `json:"dtype" koanf:"dtype" yaml:"dtype"`
}

// Signature is the declared input/output tensor contract of a model
// artifact. The runtime validates every call against it before dispatch.
type Signature struct {
	Inputs  []ValueSpec `json:"inputs" koanf:"inputs" yaml:"inputs"`
	Outputs []ValueSpec `json:"outputs" koanf:"outputs" yaml:"outputs"`
}

// Input returns the input spec with the given name.
func (s *Signature) Input(name string) (ValueSpec, bool) {
	for _, spec := range s.Inputs {
		if spec.Name == name {
			return spec, true
		}
	}
	return ValueSpec{}, false
}

// Validate checks the signature itself for completeness.
//
// Returns:
//   - error: An error naming the first malformed spec, nil when valid.
func (s *Signature) Validate() error {
	if len(s.Inputs) == 0 {
		return errors.New("signature declares no inputs")
	}
	if len(s.Outputs) == 0 {
		return errors.New("signature declares no outputs")
	}
	for _, spec := range append(append([]ValueSpec{}, s.Inputs...), s.Outputs...) {
		if spec.Name == "" {
			return errors.New("signature contains an unnamed tensor spec")
		}
		if len(spec.Shape) == 0 {
			return errors.Errorf("tensor %q declares no shape", spec.Name)
		}
		for _, d := range spec.Shape {
			if d < 1 {
				return errors.Errorf("tensor %q has non-positive dimension %d", spec.Name, d)
			}
		}
		if spec.DType != Float32 && spec.DType != Int32 {
			return errors.Errorf("tensor %q has unsupported dtype %q", spec.Name, spec.DType)
		}
	}
	return nil
}

// ValidateInputs checks a set of named values against the signature's
// declared inputs: every declared input must be present exactly once with a
// matching shape and dtype, and no undeclared value may appear.
//
// Arguments:
//   - values: The values offered for one run.
//
// Returns:
//   - error: An error naming the first mismatch, nil when valid.
func (s *Signature) ValidateInputs(values []Value) error {
	seen := make(map[string]bool, len(values))
	for i := range values {
		v := &values[i]
		if seen[v.Name] {
			return errors.Errorf("input %q supplied more than once", v.Name)
		}
		seen[v.Name] = true

		spec, ok := s.Input(v.Name)
		if !ok {
			return errors.Errorf("input %q is not declared by the artifact", v.Name)
		}
		if v.DType() != spec.DType {
			return errors.Errorf("input %q has dtype %s, artifact declares %s", v.Name, v.DType(), spec.DType)
		}
		if err := shapesMatch(spec.Shape, v.Shape); err != nil {
			return errors.Wrapf(err, "input %q", v.Name)
		}
		var length int64
		if v.DType() == Int32 {
			length = int64(len(v.Ints))
		} else {
			length = int64(len(v.Floats))
		}
		if length != v.NumElements() {
			return errors.Errorf(
				"input %q carries %d elements, shape %v requires %d",
				v.Name, length, v.Shape, v.NumElements(),
			)
		}
	}
	for _, spec := range s.Inputs {
		if !seen[spec.Name] {
			return errors.Errorf("input %q declared by the artifact is missing", spec.Name)
		}
	}
	return nil
}

func shapesMatch(want, got []int64) error {
	if len(want) != len(got) {
		return errors.Errorf("shape %v has %d dims, artifact declares %v", got, len(got), want)
	}
	for i := range want {
		if want[i] != got[i] {
			return errors.Errorf("shape %v does not match declared %v", got, want)
		}
	}
	return nil
}

// Package detector - Tagged pipeline errors.
package detector

import "fmt"

// ConfigError reports invalid pipeline configuration: range, voxel size,
// thresholds, or tensor naming.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error { return e.Err }

// PreprocessError reports a voxelization failure on a degenerate point
// cloud. An empty cloud is NOT a PreprocessError: it maps to an empty
// result.
type PreprocessError struct {
	Err error
}

func (e *PreprocessError) Error() string {
	return fmt.Sprintf("preprocess: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *PreprocessError) Unwrap() error { return e.Err }

// InferenceError reports a backend load, validation, or run failure. The
// backend name travels with the error; no backend-native error type escapes
// unwrapped.
type InferenceError struct {
	Backend string
	Err     error
}

func (e *InferenceError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("inference (backend %s): %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("inference: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *InferenceError) Unwrap() error { return e.Err }

// DecodeError reports malformed raw-output shapes or inconsistent anchor
// metadata.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error { return e.Err }

// Package providers - Execution providers for the inference runtime.
package providers

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// ProviderBackend identifies an execution backend. The set is closed: the
// backends reachable through the runtime are known at build time and selected
// at session construction.
type ProviderBackend string

// ProviderOptions is a marker interface for provider-specific config.
type ProviderOptions interface {
	isProviderOptions()
}

// ExecutionProvider represents the contract that all execution providers must
// implement. Apply wires the provider into the runtime's session options; it
// is called once during session construction.
type ExecutionProvider interface {
	Backend() ProviderBackend
	Options() ProviderOptions
	Apply(options *ort.SessionOptions) error
}

// NewProvider creates a new provider based on the supplied options type.
//
// Arguments:
//   - options: The options for the provider. The concrete type selects the
//     backend.
//
// Returns:
//   - ExecutionProvider: The new provider.
//   - error: An error if the options type names no known backend.
func NewProvider(options ProviderOptions) (ExecutionProvider, error) {
	switch opts := options.(type) {
	case CPUOptions:
		return NewCPUProvider(opts), nil
	case CUDAOptions:
		return NewCUDAProvider(opts), nil
	case TensorRTOptions:
		return NewTensorRTProvider(opts), nil
	case OpenVINOOptions:
		return NewOpenVINOProvider(opts), nil
	case CoreMLOptions:
		return NewCoreMLProvider(opts), nil
	case DirectMLOptions:
		return NewDirectMLProvider(opts), nil
	default:
		return nil, fmt.Errorf("unsupported provider options type: %T", opts)
	}
}

// NewProviderForBackend creates a provider for a backend name with default
// options. Used when configuration names the backend but carries no
// provider-specific tuning.
//
// Arguments:
//   - backend: The backend name.
//
// Returns:
//   - ExecutionProvider: The new provider.
//   - error: An error if the backend name is unknown.
func NewProviderForBackend(backend ProviderBackend) (ExecutionProvider, error) {
	switch backend {
	case CPUProviderBackend:
		return NewCPUProvider(CPUOptions{}), nil
	case CUDAProviderBackend:
		return NewCUDAProvider(CUDAOptions{DoCopyInDefaultStream: true}), nil
	case TensorRTProviderBackend:
		return NewTensorRTProvider(TensorRTOptions{}), nil
	case OpenVINOProviderBackend:
		return NewOpenVINOProvider(OpenVINOOptions{DeviceType: "CPU", NumOfThreads: 8}), nil
	case CoreMLProviderBackend:
		return NewCoreMLProvider(CoreMLOptions{}), nil
	case DirectMLProviderBackend:
		return NewDirectMLProvider(DirectMLOptions{}), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %q", backend)
	}
}

// Package providers - CPU based execution provider.
package providers

import (
	ort "github.com/yalue/onnxruntime_go"
)

const (
	// CPUProviderBackend uses the runtime's default CPU kernels.
	CPUProviderBackend ProviderBackend = "cpu"
)

// CPUProvider implements the ExecutionProvider interface.
type CPUProvider struct {
	options CPUOptions
}

// CPUOptions contains arguments for the CPU provider.
type CPUOptions struct {
	// IntraOpNumThreads parallelizes execution within graph nodes.
	// A value of 0 uses the runtime default.
	IntraOpNumThreads int `json:"intraOpNumThreads" yaml:"intraOpNumThreads"`
	// InterOpNumThreads parallelizes execution across independent graph
	// nodes. A value of 0 uses the runtime default.
	InterOpNumThreads int `json:"interOpNumThreads" yaml:"interOpNumThreads"`
}

// isProviderOptions is a marker function to ensure the options are valid.
func (CPUOptions) isProviderOptions() {}

// Backend returns the backend of the CPU provider.
func (p *CPUProvider) Backend() ProviderBackend {
	return CPUProviderBackend
}

// Options returns the options of the CPU provider.
func (p *CPUProvider) Options() ProviderOptions {
	return p.options
}

// Apply configures the session options for CPU execution. The CPU provider
// is the runtime default, so only the threading knobs are set.
func (p *CPUProvider) Apply(options *ort.SessionOptions) error {
	if err := options.SetIntraOpNumThreads(p.options.IntraOpNumThreads); err != nil {
		return err
	}
	return options.SetInterOpNumThreads(p.options.InterOpNumThreads)
}

// NewCPUProvider creates a new CPU provider.
func NewCPUProvider(options CPUOptions) *CPUProvider {
	return &CPUProvider{options: options}
}

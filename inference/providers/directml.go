// Package providers - DirectML based execution provider.
package providers

import (
	ort "github.com/yalue/onnxruntime_go"
)

const (
	// DirectMLProviderBackend uses DirectML for GPU acceleration on Windows.
	DirectMLProviderBackend ProviderBackend = "directml"
)

// DirectMLProvider implements the ExecutionProvider interface.
type DirectMLProvider struct {
	options DirectMLOptions
}

// DirectMLOptions contains arguments for the DirectML provider.
type DirectMLOptions struct {
	// The device ID.
	DeviceID int `json:"deviceID" yaml:"deviceID"`
}

// isProviderOptions is a marker function to ensure the options are valid.
func (DirectMLOptions) isProviderOptions() {}

// Backend returns the backend of the DirectML provider.
func (p *DirectMLProvider) Backend() ProviderBackend {
	return DirectMLProviderBackend
}

// Options returns the options of the DirectML provider.
func (p *DirectMLProvider) Options() ProviderOptions {
	return p.options
}

// Apply appends the DirectML execution provider to the session options.
func (p *DirectMLProvider) Apply(options *ort.SessionOptions) error {
	return options.AppendExecutionProviderDirectML(p.options.DeviceID)
}

// NewDirectMLProvider creates a new DirectML provider.
func NewDirectMLProvider(options DirectMLOptions) *DirectMLProvider {
	return &DirectMLProvider{options: options}
}

// Package providers - OpenVINO based execution provider.
package providers

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	// OpenVINOProviderBackend uses Intel OpenVINO for inference optimization.
	OpenVINOProviderBackend ProviderBackend = "openvino"
)

// OpenVINOProvider implements the ExecutionProvider interface.
type OpenVINOProvider struct {
	options OpenVINOOptions
}

// OpenVINOOptions contains arguments for the OpenVINO provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html#summary-of-options
type OpenVINOOptions struct {
	DeviceID string `json:"deviceID"             yaml:"deviceID"`
	// Overrides the accelerator hardware type with these values at runtime.
	// If this option is not explicitly set, default hardware specified during
	// build is used.
	DeviceType string `json:"deviceType"           yaml:"deviceType"`
	// Supported precisions per device: {CPU: FP32, GPU: [FP32, FP16,
	// ACCURACY], NPU: FP16}. To execute the model with the default input
	// precision, select ACCURACY.
	Precision string `json:"precision"            yaml:"precision"`
	// Overrides the accelerator default value of number of threads with this
	// value at runtime.
	NumOfThreads int `json:"numOfThreads"         yaml:"numOfThreads"`
	// This option enables rewriting dynamic shaped models to static shape at
	// runtime and execute.
	DisableDynamicShapes bool `json:"disableDynamicShapes" yaml:"disableDynamicShapes"`
}

// isProviderOptions is a marker function to ensure the options are valid.
func (OpenVINOOptions) isProviderOptions() {}

// Backend returns the backend of the OpenVINO provider.
func (p *OpenVINOProvider) Backend() ProviderBackend {
	return OpenVINOProviderBackend
}

// Options returns the options of the OpenVINO provider.
func (p *OpenVINOProvider) Options() ProviderOptions {
	return p.options
}

// Apply appends the OpenVINO execution provider to the session options.
func (p *OpenVINOProvider) Apply(options *ort.SessionOptions) error {
	config := map[string]string{
		"device_type":            p.options.DeviceType,
		"num_of_threads":         fmt.Sprintf("%d", p.options.NumOfThreads),
		"disable_dynamic_shapes": fmt.Sprintf("%t", p.options.DisableDynamicShapes),
	}
	if p.options.DeviceID != "" {
		config["device_id"] = p.options.DeviceID
	}
	if p.options.Precision != "" {
		config["precision"] = p.options.Precision
	}
	return options.AppendExecutionProviderOpenVINO(config)
}

// NewOpenVINOProvider creates a new OpenVINO provider.
func NewOpenVINOProvider(args OpenVINOOptions) *OpenVINOProvider {
	return &OpenVINOProvider{options: args}
}

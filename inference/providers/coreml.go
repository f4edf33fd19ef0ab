// Package providers - CoreML based execution provider.
package providers

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	// CoreMLProviderBackend uses Apple CoreML for macOS/iOS acceleration.
	CoreMLProviderBackend ProviderBackend = "coreml"
)

// CoreMLProvider implements the ExecutionProvider interface.
type CoreMLProvider struct {
	options CoreMLOptions
}

// CoreMLOptions contains arguments for the CoreML provider.
// See: https://onnxruntime.ai/docs/execution-providers/CoreML-ExecutionProvider.html
type CoreMLOptions struct {
	// MLProgram: Create an MLProgram format model. Requires Core ML 5 or
	// later (iOS 15+ or macOS 12+).
	// NeuralNetwork: Create a NeuralNetwork format model. Requires Core ML 3
	// or later (iOS 13+ or macOS 10.15+).
	// Default: NeuralNetwork
	ModelFormat string `json:"modelFormat"              yaml:"modelFormat"`
	// CPUOnly, CPUAndNeuralEngine, CPUAndGPU, or ALL.
	// Default: ALL
	MLComputeUnits string `json:"mlComputeUnits"           yaml:"mlComputeUnits"`
	// Only allow the CoreML EP to take nodes with inputs that have static
	// shapes. Our graphs are fixed shape, so enabling this is safe.
	// Default: 0
	RequireStaticInputShapes int `json:"requireStaticInputShapes" yaml:"requireStaticInputShapes"`
	// The path to the directory where the compiled CoreML model cache is
	// stored. Without a cache the EP recompiles the captured subgraph on
	// every load.
	ModelCacheDirectory string `json:"modelCacheDirectory"      yaml:"modelCacheDirectory"`
}

// isProviderOptions is a marker function to ensure the options are valid.
func (CoreMLOptions) isProviderOptions() {}

// Backend returns the backend of the CoreML provider.
func (p *CoreMLProvider) Backend() ProviderBackend {
	return CoreMLProviderBackend
}

// Options returns the options of the CoreML provider.
func (p *CoreMLProvider) Options() ProviderOptions {
	return p.options
}

// Apply appends the CoreML execution provider to the session options.
func (p *CoreMLProvider) Apply(options *ort.SessionOptions) error {
	config := map[string]string{
		"RequireStaticInputShapes": fmt.Sprintf("%d", p.options.RequireStaticInputShapes),
	}
	if p.options.ModelFormat != "" {
		config["ModelFormat"] = p.options.ModelFormat
	}
	if p.options.MLComputeUnits != "" {
		config["MLComputeUnits"] = p.options.MLComputeUnits
	}
	if p.options.ModelCacheDirectory != "" {
		config["ModelCacheDirectory"] = p.options.ModelCacheDirectory
	}
	return options.AppendExecutionProviderCoreMLV2(config)
}

// NewCoreMLProvider creates a new CoreML provider.
func NewCoreMLProvider(options CoreMLOptions) *CoreMLProvider {
	return &CoreMLProvider{options: options}
}

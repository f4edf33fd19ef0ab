// Package providers - TensorRT based execution provider.
package providers

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	// TensorRTProviderBackend uses NVIDIA TensorRT for compiled-engine
	// inference on NVIDIA GPUs.
	TensorRTProviderBackend ProviderBackend = "tensorrt"
)

// TensorRTProvider implements the ExecutionProvider interface.
type TensorRTProvider struct {
	options TensorRTOptions
}

// TensorRTOptions contains arguments for the TensorRT provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/TensorRT-ExecutionProvider.html#configurations
type TensorRTOptions struct {
	// The device ID.
	DeviceID int `json:"deviceID"           yaml:"deviceID"`
	// The maximum workspace size for TensorRT engine building, in bytes.
	// 0 uses the TensorRT default.
	MaxWorkspaceSize int64 `json:"maxWorkspaceSize"   yaml:"maxWorkspaceSize"`
	// Enable FP16 precision for faster execution on hardware with reduced
	// precision support.
	FP16Enable bool `json:"fp16Enable"         yaml:"fp16Enable"`
	// Enable INT8 precision. Requires a calibration table.
	INT8Enable bool `json:"int8Enable"         yaml:"int8Enable"`
	// Cache built engines so subsequent session loads skip the expensive
	// engine build.
	EngineCacheEnable bool `json:"engineCacheEnable"  yaml:"engineCacheEnable"`
	// Directory for cached engines when EngineCacheEnable is set.
	EngineCachePath string `json:"engineCachePath"    yaml:"engineCachePath"`
}

// ToNativeProviderOptions converts the TensorRT options to the runtime's
// native provider options. Ownership of the returned handle passes to the
// caller.
func (o *TensorRTOptions) ToNativeProviderOptions() (*ort.TensorRTProviderOptions, error) {
	opts, err := ort.NewTensorRTProviderOptions()
	if err != nil {
		return nil, err
	}

	settings := map[string]string{
		"device_id":               fmt.Sprintf("%d", o.DeviceID),
		"trt_fp16_enable":         fmt.Sprintf("%d", boolToInt(o.FP16Enable)),
		"trt_int8_enable":         fmt.Sprintf("%d", boolToInt(o.INT8Enable)),
		"trt_engine_cache_enable": fmt.Sprintf("%d", boolToInt(o.EngineCacheEnable)),
	}
	if o.MaxWorkspaceSize > 0 {
		settings["trt_max_workspace_size"] = fmt.Sprintf("%d", o.MaxWorkspaceSize)
	}
	if o.EngineCachePath != "" {
		settings["trt_engine_cache_path"] = o.EngineCachePath
	}

	if err := opts.Update(settings); err != nil {
		opts.Destroy()
		return nil, err
	}

	return opts, nil
}

// isProviderOptions is a marker function to ensure the options are valid.
func (TensorRTOptions) isProviderOptions() {}

// Backend returns the backend of the TensorRT provider.
func (p *TensorRTProvider) Backend() ProviderBackend {
	return TensorRTProviderBackend
}

// Options returns the options of the TensorRT provider.
func (p *TensorRTProvider) Options() ProviderOptions {
	return p.options
}

// Apply appends the TensorRT execution provider to the session options.
func (p *TensorRTProvider) Apply(options *ort.SessionOptions) error {
	trt, err := p.options.ToNativeProviderOptions()
	if err != nil {
		return fmt.Errorf("error converting TensorRT options: %w", err)
	}
	defer trt.Destroy()
	return options.AppendExecutionProviderTensorRT(trt)
}

// NewTensorRTProvider creates a new TensorRT provider.
func NewTensorRTProvider(args TensorRTOptions) *TensorRTProvider {
	return &TensorRTProvider{options: args}
}

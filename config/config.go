// Package config - File and environment configuration loading.
package config

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-lidar/detector"
	"github.com/nvr-ai/go-lidar/inference"
	"github.com/nvr-ai/go-lidar/inference/providers"
)

// envPrefix namespaces the environment overrides, e.g.
// GOLIDAR_BACKEND=tensorrt overrides the "backend" key.
const envPrefix = "GOLIDAR_"

// AppConfig is the file-level configuration: the pipeline configuration
// plus the artifact location, its signature, and the execution backend.
type AppConfig struct {
	// ModelPath locates the compiled model artifact.
	ModelPath string `json:"modelPath" koanf:"modelpath" yaml:"modelPath"`
	// Backend selects the execution provider.
	Backend string `json:"backend" koanf:"backend" yaml:"backend"`
	// Signature declares the artifact's tensor contract.
	Signature inference.Signature `json:"signature" koanf:"signature" yaml:"signature"`
	// Pipeline configures the three pipeline stages.
	Pipeline detector.Config `json:"pipeline" koanf:"pipeline" yaml:"pipeline"`
}

// defaults are the keys every configuration starts from.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"backend":                          string(providers.CPUProviderBackend),
		"pipeline.voxel.maxpointspervoxel": 32,
		"pipeline.voxel.maxvoxels":         16000,
		"pipeline.voxel.numfeatures":       4,
		"pipeline.decode.scorethreshold":   0.1,
		"pipeline.decode.nmsiouthreshold":  0.5,
		"pipeline.decode.activation":       "sigmoid",
		"pipeline.decode.overlap":          "bev",
	}
}

// Load reads a YAML configuration file and applies GOLIDAR_ environment
// overrides on top (dots in key paths spelled as underscores).
//
// Arguments:
//   - path: The YAML file path.
//
// Returns:
//   - *AppConfig: The assembled configuration.
//   - error: An error if the file cannot be read, parsed, or unmarshalled.
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "loading defaults")
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "loading config file %s", path)
	}
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, "loading environment overrides")
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}
	return &cfg, nil
}

// Provider builds the execution provider the configuration names.
//
// Returns:
//   - providers.ExecutionProvider: The provider.
//   - error: An error if the backend name is unknown.
func (c *AppConfig) Provider() (providers.ExecutionProvider, error) {
	return providers.NewProviderForBackend(providers.ProviderBackend(c.Backend))
}

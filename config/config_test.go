package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-lidar/inference/providers"
)

const sampleYAML = `
modelpath: /models/pointpillars.onnx
backend: tensorrt
signature:
  inputs:
    - name: voxels
      shape: [16000, 32, 4]
      dtype: float32
    - name: num_points
      shape: [16000]
      dtype: int32
    - name: coors
      shape: [16000, 4]
      dtype: int32
  outputs:
    - name: cls_score
      shape: [107136, 3]
      dtype: float32
    - name: bbox_pred
      shape: [107136, 7]
      dtype: float32
pipeline:
  voxel:
    range:
      minx: 0
      miny: -39.68
      minz: -3
      maxx: 69.12
      maxy: 39.68
      maxz: 1
    voxelsizex: 0.16
    voxelsizey: 0.16
    voxelsizez: 4
  anchors:
    gridw: 216
    gridh: 248
    minx: 0
    maxx: 69.12
    miny: -39.68
    maxy: 39.68
    classes:
      - label: car
        w: 1.6
        l: 3.9
        h: 1.56
        zcenter: -1.78
  decode:
    scorethreshold: 0.3
`

// writeConfig drops the YAML into a temp file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad verifies file values, defaults, and their layering.
func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "/models/pointpillars.onnx", cfg.ModelPath)
	assert.Equal(t, "tensorrt", cfg.Backend)

	require.Len(t, cfg.Signature.Inputs, 3)
	assert.Equal(t, "voxels", cfg.Signature.Inputs[0].Name)
	assert.Equal(t, []int64{16000, 32, 4}, cfg.Signature.Inputs[0].Shape)
	require.NoError(t, cfg.Signature.Validate())

	// File values.
	assert.InDelta(t, 0.16, cfg.Pipeline.Voxel.VoxelSizeX, 1e-6)
	assert.InDelta(t, -39.68, cfg.Pipeline.Voxel.Range.MinY, 1e-5)
	assert.Equal(t, 216, cfg.Pipeline.Anchors.GridW)
	assert.InDelta(t, 0.3, cfg.Pipeline.Decode.ScoreThreshold, 1e-6)

	// Defaults fill what the file omits.
	assert.Equal(t, 32, cfg.Pipeline.Voxel.MaxPointsPerVoxel)
	assert.Equal(t, 16000, cfg.Pipeline.Voxel.MaxVoxels)
	assert.Equal(t, 4, cfg.Pipeline.Voxel.NumFeatures)
	assert.InDelta(t, 0.5, cfg.Pipeline.Decode.NMSIoUThreshold, 1e-6)
	assert.Equal(t, "sigmoid", string(cfg.Pipeline.Decode.Activation))
	assert.Equal(t, "bev", string(cfg.Pipeline.Decode.Overlap))

	require.NoError(t, cfg.Pipeline.Validate())
}

// TestLoadEnvOverride verifies that GOLIDAR_ variables win over the file.
func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GOLIDAR_BACKEND", "openvino")
	t.Setenv("GOLIDAR_MODELPATH", "/override/model.onnx")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "openvino", cfg.Backend)
	assert.Equal(t, "/override/model.onnx", cfg.ModelPath)
}

// TestLoadMissingFile verifies the error on an absent config file.
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// TestProvider verifies the backend-name-to-provider mapping.
func TestProvider(t *testing.T) {
	cfg := &AppConfig{Backend: "cpu"}
	p, err := cfg.Provider()
	require.NoError(t, err)
	assert.Equal(t, providers.CPUProviderBackend, p.Backend())

	cfg.Backend = "abacus"
	_, err = cfg.Provider()
	assert.Error(t, err)
}

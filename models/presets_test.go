package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-lidar/postprocess"
)

// TestPresetsAreValid verifies that every preset yields a configuration the
// pipeline accepts and a coherent anchor grid.
func TestPresetsAreValid(t *testing.T) {
	presets := []Preset{
		PresetPointPillarsKITTI,
		PresetPointPillarsKITTICar,
		PresetSECONDKITTI,
	}

	for _, preset := range presets {
		t.Run(string(preset), func(t *testing.T) {
			cfg, err := NewPipelineConfig(preset)
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			set, err := postprocess.GenerateAnchors(cfg.Anchors)
			require.NoError(t, err)
			assert.Positive(t, set.Len())

			sig := DeriveSignature(cfg)
			require.NoError(t, sig.Validate())

			// Output row count must align with the anchor index space.
			assert.Equal(t, int64(set.Len()), sig.Outputs[0].Shape[0])
		})
	}
}

// TestUnknownPreset verifies the closed preset set.
func TestUnknownPreset(t *testing.T) {
	_, err := NewPipelineConfig("centerpoint-waymo")
	assert.Error(t, err)
}

// TestDeriveSignatureDirectionOutput verifies that the direction head is
// declared only when the decoder consumes it.
func TestDeriveSignatureDirectionOutput(t *testing.T) {
	cfg, err := NewPipelineConfig(PresetPointPillarsKITTICar)
	require.NoError(t, err)

	sig := DeriveSignature(cfg)
	require.Len(t, sig.Outputs, 3)
	assert.Equal(t, "dir_cls_pred", sig.Outputs[2].Name)

	cfg.Decode.UseDirectionClassifier = false
	assert.Len(t, DeriveSignature(cfg).Outputs, 2)
}

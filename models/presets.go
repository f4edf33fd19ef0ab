// Package models - Known voxel detection model presets.
package models

import (
	"fmt"

	"github.com/nvr-ai/go-lidar/detector"
	"github.com/nvr-ai/go-lidar/postprocess"
	"github.com/nvr-ai/go-lidar/voxel"
)

// Preset names a known model architecture and training setup.
type Preset string

const (
	// PresetPointPillarsKITTI is PointPillars trained on KITTI, three classes
	// (car, pedestrian, cyclist), 0.16m pillars.
	PresetPointPillarsKITTI Preset = "pointpillars-kitti"
	// PresetPointPillarsKITTICar is the car-only PointPillars variant.
	PresetPointPillarsKITTICar Preset = "pointpillars-kitti-car"
	// PresetSECONDKITTI is SECOND trained on KITTI, three classes, 0.05m
	// voxels.
	PresetSECONDKITTI Preset = "second-kitti"
)

// NewPipelineConfig creates the full pipeline configuration for a known
// preset. The returned configuration matches the export defaults of the
// named architecture; callers tune thresholds afterwards as needed.
//
// Arguments:
//   - preset: The preset name.
//
// Returns:
//   - detector.Config: The pipeline configuration.
//   - error: An error if the preset name is unknown.
func NewPipelineConfig(preset Preset) (detector.Config, error) {
	switch preset {
	case PresetPointPillarsKITTI:
		cfg := pointPillarsBase()
		cfg.Anchors.Classes = []postprocess.AnchorClass{
			{Label: "car", W: 1.6, L: 3.9, H: 1.56, ZCenter: -1.78},
			{Label: "pedestrian", W: 0.6, L: 0.8, H: 1.73, ZCenter: -0.6},
			{Label: "cyclist", W: 0.6, L: 1.76, H: 1.73, ZCenter: -0.6},
		}
		return cfg, nil
	case PresetPointPillarsKITTICar:
		cfg := pointPillarsBase()
		cfg.Anchors.Classes = []postprocess.AnchorClass{
			{Label: "car", W: 1.6, L: 3.9, H: 1.56, ZCenter: -1.78},
		}
		return cfg, nil
	case PresetSECONDKITTI:
		return secondKITTI(), nil
	default:
		return detector.Config{}, fmt.Errorf("unknown model preset: %q", preset)
	}
}

// pointPillarsBase is the shared PointPillars KITTI setup: 0.16m pillars
// over [0, 69.12] x [-39.68, 39.68], head stride 2 over the 432x496 pillar
// grid.
func pointPillarsBase() detector.Config {
	return detector.Config{
		Voxel: voxel.Config{
			Range:             voxel.Range{MinX: 0, MinY: -39.68, MinZ: -3, MaxX: 69.12, MaxY: 39.68, MaxZ: 1},
			VoxelSizeX:        0.16,
			VoxelSizeY:        0.16,
			VoxelSizeZ:        4,
			MaxPointsPerVoxel: 32,
			MaxVoxels:         16000,
			NumFeatures:       4,
		},
		Anchors: postprocess.AnchorConfig{
			GridW: 216,
			GridH: 248,
			MinX:  0, MaxX: 69.12,
			MinY: -39.68, MaxY: 39.68,
		},
		Decode: postprocess.DecodeConfig{
			ScoreThreshold:         0.1,
			NMSIoUThreshold:        0.5,
			Activation:             postprocess.ActivationSigmoid,
			Overlap:                postprocess.OverlapBEV,
			MaxDetections:          50,
			UseDirectionClassifier: true,
			DirOffset:              0.7854,
		},
	}
}

// secondKITTI is the SECOND KITTI setup: 0.05m voxels over [0, 70.4] x
// [-40, 40], head stride 8 over the 1408x1600 voxel grid.
func secondKITTI() detector.Config {
	return detector.Config{
		Voxel: voxel.Config{
			Range:             voxel.Range{MinX: 0, MinY: -40, MinZ: -3, MaxX: 70.4, MaxY: 40, MaxZ: 1},
			VoxelSizeX:        0.05,
			VoxelSizeY:        0.05,
			VoxelSizeZ:        0.1,
			MaxPointsPerVoxel: 5,
			MaxVoxels:         20000,
			NumFeatures:       4,
		},
		Anchors: postprocess.AnchorConfig{
			GridW: 176,
			GridH: 200,
			MinX:  0, MaxX: 70.4,
			MinY: -40, MaxY: 40,
			Classes: []postprocess.AnchorClass{
				{Label: "car", W: 1.6, L: 3.9, H: 1.56, ZCenter: -1.78},
				{Label: "pedestrian", W: 0.6, L: 0.8, H: 1.73, ZCenter: -0.6},
				{Label: "cyclist", W: 0.6, L: 1.76, H: 1.73, ZCenter: -0.6},
			},
		},
		Decode: postprocess.DecodeConfig{
			ScoreThreshold:         0.1,
			NMSIoUThreshold:        0.5,
			Activation:             postprocess.ActivationSigmoid,
			Overlap:                postprocess.OverlapBEV,
			MaxDetections:          50,
			UseDirectionClassifier: true,
			DirOffset:              0.7854,
		},
	}
}

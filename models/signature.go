// Package models - Signature derivation for voxel detection artifacts.
package models

import (
	"github.com/nvr-ai/go-lidar/detector"
	"github.com/nvr-ai/go-lidar/inference"
)

// DeriveSignature computes the tensor contract a voxel detection artifact
// must satisfy for the given pipeline configuration: input shapes follow
// the voxelization caps, output shapes follow the anchor grid. Tensor names
// use the standard export conventions; artifacts with renamed tensors need
// a hand-written signature alongside detector.IONames.
//
// Arguments:
//   - cfg: The pipeline configuration.
//
// Returns:
//   - inference.Signature: The derived signature.
func DeriveSignature(cfg detector.Config) inference.Signature {
	maxVoxels := int64(cfg.Voxel.MaxVoxels)
	maxPoints := int64(cfg.Voxel.MaxPointsPerVoxel)
	features := int64(cfg.Voxel.NumFeatures)

	rotations := len(cfg.Anchors.Rotations)
	if rotations == 0 {
		rotations = 2
	}
	numClasses := int64(len(cfg.Anchors.Classes))
	numAnchors := int64(cfg.Anchors.GridW*cfg.Anchors.GridH*rotations) * numClasses

	sig := inference.Signature{
		Inputs: []inference.ValueSpec{
			{Name: "voxels", Shape: []int64{maxVoxels, maxPoints, features}, DType: inference.Float32},
			{Name: "num_points", Shape: []int64{maxVoxels}, DType: inference.Int32},
			{Name: "coors", Shape: []int64{maxVoxels, 4}, DType: inference.Int32},
		},
		Outputs: []inference.ValueSpec{
			{Name: "cls_score", Shape: []int64{numAnchors, numClasses}, DType: inference.Float32},
			{Name: "bbox_pred", Shape: []int64{numAnchors, 7}, DType: inference.Float32},
		},
	}
	if cfg.Decode.UseDirectionClassifier {
		sig.Outputs = append(sig.Outputs, inference.ValueSpec{
			Name: "dir_cls_pred", Shape: []int64{numAnchors, 2}, DType: inference.Float32,
		})
	}
	return sig
}

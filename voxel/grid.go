// Package voxel - Voxel grid tensors.
package voxel

import (
	"gorgonia.org/tensor"
)

// Grid holds the fixed-shape tensors produced by one voxelization call.
//
// The tensors are index-aligned: row i of Coords names the voxel whose points
// occupy row i of Features and whose occupancy is NumPoints[i]. Rows at index
// NumVoxels and beyond are padding: Features rows are zero, NumPoints entries
// are zero, and Coords rows are -1. A Grid is owned by the call that built it
// and is never reused across calls.
type Grid struct {
	// Features has shape (maxVoxels, maxPointsPerVoxel, numFeatures), float32.
	// Each valid row holds the raw per-point feature rows of one voxel in
	// first-seen order, zero padded past the voxel's occupancy count.
	Features *tensor.Dense
	// Coords has shape (maxVoxels, 4), int32, columns (batch, iz, iy, ix).
	Coords *tensor.Dense
	// NumPoints has shape (maxVoxels), int32.
	NumPoints *tensor.Dense
	// NumVoxels is the count of valid rows.
	NumVoxels int
}

// FeatureData returns the flat float32 backing slice of the feature tensor.
func (g *Grid) FeatureData() []float32 {
	return g.Features.Data().([]float32)
}

// CoordData returns the flat int32 backing slice of the coordinate tensor.
func (g *Grid) CoordData() []int32 {
	return g.Coords.Data().([]int32)
}

// NumPointData returns the flat int32 backing slice of the occupancy tensor.
func (g *Grid) NumPointData() []int32 {
	return g.NumPoints.Data().([]int32)
}

// MeanFeatures computes the per-voxel mean feature vector over the retained
// points of each valid voxel. The fixed-shape Features tensor feeds the
// network as-is; this helper serves callers that need the aggregated form.
//
// Returns:
//   - [][]float32: One mean vector per valid voxel, in coordinate order.
func (g *Grid) MeanFeatures() [][]float32 {
	shape := g.Features.Shape()
	maxPoints, numFeatures := shape[1], shape[2]
	data := g.FeatureData()
	counts := g.NumPointData()

	means := make([][]float32, g.NumVoxels)
	for v := 0; v < g.NumVoxels; v++ {
		mean := make([]float32, numFeatures)
		n := int(counts[v])
		base := v * maxPoints * numFeatures
		for p := 0; p < n; p++ {
			for f := 0; f < numFeatures; f++ {
				mean[f] += data[base+p*numFeatures+f]
			}
		}
		if n > 0 {
			for f := 0; f < numFeatures; f++ {
				mean[f] /= float32(n)
			}
		}
		means[v] = mean
	}
	return means
}

// Package voxel - Point-cloud voxelization for fixed-shape detection graphs.
package voxel

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Range is the axis-aligned spatial extent covered by the voxel grid.
// Points outside the range are discarded before voxelization.
type Range struct {
	MinX float32 `json:"minX" koanf:"minx" yaml:"minX"`
	MinY float32 `json:"minY" koanf:"miny" yaml:"minY"`
	MinZ float32 `json:"minZ" koanf:"minz" yaml:"minZ"`
	MaxX float32 `json:"maxX" koanf:"maxx" yaml:"maxX"`
	MaxY float32 `json:"maxY" koanf:"maxy" yaml:"maxY"`
	MaxZ float32 `json:"maxZ" koanf:"maxz" yaml:"maxZ"`
}

// Config defines the voxelization parameters. The caps exist to produce
// fixed-shape tensors for a fixed-shape inference graph.
type Config struct {
	// Range is the spatial extent of the grid.
	Range Range `json:"range" koanf:"range" yaml:"range"`
	// VoxelSizeX/Y/Z are the edge lengths of one voxel.
	VoxelSizeX float32 `json:"voxelSizeX" koanf:"voxelsizex" yaml:"voxelSizeX"`
	VoxelSizeY float32 `json:"voxelSizeY" koanf:"voxelsizey" yaml:"voxelSizeY"`
	VoxelSizeZ float32 `json:"voxelSizeZ" koanf:"voxelsizez" yaml:"voxelSizeZ"`
	// MaxPointsPerVoxel caps how many points one voxel retains.
	MaxPointsPerVoxel int `json:"maxPointsPerVoxel" koanf:"maxpointspervoxel" yaml:"maxPointsPerVoxel"`
	// MaxVoxels caps how many voxels the grid retains.
	MaxVoxels int `json:"maxVoxels" koanf:"maxvoxels" yaml:"maxVoxels"`
	// NumFeatures is the number of channels per point (3 or 4).
	NumFeatures int `json:"numFeatures" koanf:"numfeatures" yaml:"numFeatures"`
}

// Validate checks the configuration for invalid ranges, sizes, and caps.
//
// Returns:
//   - error: An error describing the first invalid field, nil when valid.
func (c Config) Validate() error {
	if c.Range.MaxX <= c.Range.MinX || c.Range.MaxY <= c.Range.MinY || c.Range.MaxZ <= c.Range.MinZ {
		return errors.Errorf(
			"range must have positive extent on every axis, got [%f %f %f]-[%f %f %f]",
			c.Range.MinX, c.Range.MinY, c.Range.MinZ, c.Range.MaxX, c.Range.MaxY, c.Range.MaxZ,
		)
	}
	if c.VoxelSizeX <= 0 || c.VoxelSizeY <= 0 || c.VoxelSizeZ <= 0 {
		return errors.Errorf(
			"voxel size must be positive on every axis, got (%f, %f, %f)",
			c.VoxelSizeX, c.VoxelSizeY, c.VoxelSizeZ,
		)
	}
	if c.MaxPointsPerVoxel < 1 {
		return errors.Errorf("maxPointsPerVoxel must be at least 1, got %d", c.MaxPointsPerVoxel)
	}
	if c.MaxVoxels < 1 {
		return errors.Errorf("maxVoxels must be at least 1, got %d", c.MaxVoxels)
	}
	if c.NumFeatures != 3 && c.NumFeatures != 4 {
		return errors.Errorf("numFeatures must be 3 or 4, got %d", c.NumFeatures)
	}
	return nil
}

// GridSize returns the number of voxels along x, y and z.
//
// Returns:
//   - int: Cells along x.
//   - int: Cells along y.
//   - int: Cells along z.
func (c Config) GridSize() (int, int, int) {
	nx := int(math32.Floor((c.Range.MaxX - c.Range.MinX) / c.VoxelSizeX))
	ny := int(math32.Floor((c.Range.MaxY - c.Range.MinY) / c.VoxelSizeY))
	nz := int(math32.Floor((c.Range.MaxZ - c.Range.MinZ) / c.VoxelSizeZ))
	return nx, ny, nz
}

// Package voxel - Voxel grid construction.
package voxel

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-lidar/points"
)

// ErrEmptyCloud reports that no point survived the range filter. The caller
// decides whether an empty cloud is a failure; the detection pipeline maps it
// to an empty result instead of invoking inference.
var ErrEmptyCloud = errors.New("no points inside the configured range")

// Builder quantizes point clouds into fixed-shape voxel tensors.
//
// A Builder is stateless across calls: every Build allocates fresh tensors
// and retains nothing, so one Builder may serve many clouds.
type Builder struct {
	config     Config
	nx, ny, nz int
}

// NewBuilder creates a voxel grid builder from a validated configuration.
//
// Arguments:
//   - config: The voxelization parameters.
//
// Returns:
//   - *Builder: The builder.
//   - error: An error if the configuration is invalid.
func NewBuilder(config Config) (*Builder, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid voxelization config")
	}
	b := &Builder{config: config}
	b.nx, b.ny, b.nz = config.GridSize()
	if b.nx < 1 || b.ny < 1 || b.nz < 1 {
		return nil, errors.Errorf(
			"voxel size larger than range extent: grid would be %dx%dx%d cells",
			b.nx, b.ny, b.nz,
		)
	}
	return b, nil
}

// Config returns the builder's configuration.
func (b *Builder) Config() Config {
	return b.config
}

// Build quantizes a point cloud into the feature, coordinate and occupancy
// tensors expected by the fixed-shape inference graph.
//
// Points are visited in input order, which makes the result deterministic:
//   - A point outside the range is discarded. A point exactly on the maximum
//     bound is discarded too, because its cell index falls outside the grid.
//   - The first maxPointsPerVoxel points that land in a voxel are kept in
//     arrival order; later arrivals in that voxel are dropped.
//   - The first maxVoxels distinct voxels are kept; a point whose voxel would
//     be a new one past the cap is dropped. First-seen voxels always win.
//
// Arguments:
//   - pts: The input point cloud.
//
// Returns:
//   - *Grid: The voxel grid tensors. Nil when no point survives the filter.
//   - error: ErrEmptyCloud when no point survives, or a tensor allocation error.
func (b *Builder) Build(pts []points.Point) (*Grid, error) {
	cfg := b.config

	features := make([]float32, cfg.MaxVoxels*cfg.MaxPointsPerVoxel*cfg.NumFeatures)
	coords := make([]int32, cfg.MaxVoxels*4)
	for i := range coords {
		coords[i] = -1
	}
	counts := make([]int32, cfg.MaxVoxels)

	// Voxel key -> row index in the output tensors.
	index := make(map[[3]int32]int, cfg.MaxVoxels)
	numVoxels := 0

	for _, p := range pts {
		ix := int32(math32.Floor((p.X - cfg.Range.MinX) / cfg.VoxelSizeX))
		iy := int32(math32.Floor((p.Y - cfg.Range.MinY) / cfg.VoxelSizeY))
		iz := int32(math32.Floor((p.Z - cfg.Range.MinZ) / cfg.VoxelSizeZ))
		if ix < 0 || iy < 0 || iz < 0 || ix >= int32(b.nx) || iy >= int32(b.ny) || iz >= int32(b.nz) {
			continue
		}

		key := [3]int32{iz, iy, ix}
		row, ok := index[key]
		if !ok {
			if numVoxels >= cfg.MaxVoxels {
				// Overflow policy: first-seen voxels are kept, voxels first
				// occupied past the cap are dropped entirely.
				continue
			}
			row = numVoxels
			numVoxels++
			index[key] = row
			coords[row*4+0] = 0 // batch index
			coords[row*4+1] = iz
			coords[row*4+2] = iy
			coords[row*4+3] = ix
		}

		slot := int(counts[row])
		if slot >= cfg.MaxPointsPerVoxel {
			continue
		}
		base := (row*cfg.MaxPointsPerVoxel + slot) * cfg.NumFeatures
		for f := 0; f < cfg.NumFeatures; f++ {
			features[base+f] = p.Feature(f)
		}
		counts[row] = int32(slot + 1)
	}

	if numVoxels == 0 {
		return nil, ErrEmptyCloud
	}

	return &Grid{
		Features: tensor.New(
			tensor.WithShape(cfg.MaxVoxels, cfg.MaxPointsPerVoxel, cfg.NumFeatures),
			tensor.WithBacking(features),
		),
		Coords: tensor.New(
			tensor.WithShape(cfg.MaxVoxels, 4),
			tensor.WithBacking(coords),
		),
		NumPoints: tensor.New(
			tensor.WithShape(cfg.MaxVoxels),
			tensor.WithBacking(counts),
		),
		NumVoxels: numVoxels,
	}, nil
}

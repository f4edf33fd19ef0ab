package voxel

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-lidar/points"
)

// testConfig returns a small grid configuration shared by the builder tests.
func testConfig() Config {
	return Config{
		Range:             Range{MinX: 0, MinY: 0, MinZ: 0, MaxX: 10, MaxY: 10, MaxZ: 10},
		VoxelSizeX:        1,
		VoxelSizeY:        1,
		VoxelSizeZ:        1,
		MaxPointsPerVoxel: 2,
		MaxVoxels:         5,
		NumFeatures:       4,
	}
}

// TestConfigValidate verifies that degenerate configurations are rejected
// with a descriptive error.
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "inverted range",
			mutate: func(c *Config) { c.Range.MaxX = c.Range.MinX },
		},
		{
			name:   "zero voxel size",
			mutate: func(c *Config) { c.VoxelSizeY = 0 },
		},
		{
			name:   "negative voxel size",
			mutate: func(c *Config) { c.VoxelSizeZ = -1 },
		},
		{
			name:   "zero max points per voxel",
			mutate: func(c *Config) { c.MaxPointsPerVoxel = 0 },
		},
		{
			name:   "zero max voxels",
			mutate: func(c *Config) { c.MaxVoxels = 0 },
		},
		{
			name:   "unsupported feature count",
			mutate: func(c *Config) { c.NumFeatures = 5 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())

			_, err := NewBuilder(cfg)
			assert.Error(t, err, "NewBuilder should reject what Validate rejects")
		})
	}

	assert.NoError(t, testConfig().Validate())
}

// TestBuildRoundTrip verifies the basic quantization contract: three points,
// one per known voxel, produce exactly three occupied voxels with one point
// each.
func TestBuildRoundTrip(t *testing.T) {
	builder, err := NewBuilder(testConfig())
	require.NoError(t, err)

	pts := []points.Point{
		{X: 0.5, Y: 0.5, Z: 0.5, Intensity: 0.1},
		{X: 1.5, Y: 1.5, Z: 1.5, Intensity: 0.2},
		{X: 2.5, Y: 2.5, Z: 2.5, Intensity: 0.3},
	}

	grid, err := builder.Build(pts)
	require.NoError(t, err)
	require.Equal(t, 3, grid.NumVoxels)

	// Tensors keep the configured fixed shapes regardless of occupancy.
	assert.Equal(t, []int{5, 2, 4}, []int(grid.Features.Shape()))
	assert.Equal(t, []int{5, 4}, []int(grid.Coords.Shape()))

	coords := grid.CoordData()
	counts := grid.NumPointData()
	for i := 0; i < 3; i++ {
		c := int32(i)
		assert.Equal(t, []int32{0, c, c, c}, coords[i*4:i*4+4],
			"coords row should be (batch, iz, iy, ix) in arrival order")
		assert.Equal(t, int32(1), counts[i])
	}

	// Padding rows carry the -1 marker.
	assert.Equal(t, []int32{-1, -1, -1, -1}, coords[12:16])
	assert.Equal(t, int32(0), counts[3])

	features := grid.FeatureData()
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.1}, features[0:4])
}

// TestBuildDeterministic verifies that identical inputs yield identical
// tensors across repeated calls.
func TestBuildDeterministic(t *testing.T) {
	builder, err := NewBuilder(testConfig())
	require.NoError(t, err)

	pts := []points.Point{
		{X: 3.1, Y: 4.2, Z: 0.3, Intensity: 1},
		{X: 3.2, Y: 4.1, Z: 0.4, Intensity: 2},
		{X: 7.7, Y: 8.8, Z: 9.9, Intensity: 3},
		{X: 0.01, Y: 0.02, Z: 0.03, Intensity: 4},
	}

	first, err := builder.Build(pts)
	require.NoError(t, err)
	second, err := builder.Build(pts)
	require.NoError(t, err)

	assert.Equal(t, first.NumVoxels, second.NumVoxels)
	assert.Equal(t, first.FeatureData(), second.FeatureData())
	assert.Equal(t, first.CoordData(), second.CoordData())
	assert.Equal(t, first.NumPointData(), second.NumPointData())
}

// TestBuildRangeFilter verifies that points outside the configured range,
// including points exactly on the maximum bound, never reach a voxel.
func TestBuildRangeFilter(t *testing.T) {
	builder, err := NewBuilder(testConfig())
	require.NoError(t, err)

	pts := []points.Point{
		{X: -0.1, Y: 5, Z: 5},    // below min x
		{X: 5, Y: 10, Z: 5},      // exactly on max y
		{X: 5, Y: 5, Z: 11},      // above max z
		{X: 4.5, Y: 4.5, Z: 4.5}, // inside
	}

	grid, err := builder.Build(pts)
	require.NoError(t, err)
	assert.Equal(t, 1, grid.NumVoxels)
	assert.Equal(t, []int32{0, 4, 4, 4}, grid.CoordData()[:4])
}

// TestBuildPerVoxelCap verifies that a voxel keeps its first
// maxPointsPerVoxel points in arrival order and drops the rest.
func TestBuildPerVoxelCap(t *testing.T) {
	builder, err := NewBuilder(testConfig())
	require.NoError(t, err)

	pts := []points.Point{
		{X: 0.1, Y: 0.1, Z: 0.1, Intensity: 1},
		{X: 0.2, Y: 0.2, Z: 0.2, Intensity: 2},
		{X: 0.3, Y: 0.3, Z: 0.3, Intensity: 3}, // over the 2 point cap
	}

	grid, err := builder.Build(pts)
	require.NoError(t, err)
	require.Equal(t, 1, grid.NumVoxels)
	assert.Equal(t, int32(2), grid.NumPointData()[0])

	features := grid.FeatureData()
	assert.Equal(t, float32(1), features[3], "first arrival keeps slot 0")
	assert.Equal(t, float32(2), features[7], "second arrival keeps slot 1")
}

// TestBuildVoxelOverflow verifies the documented overflow policy: when more
// voxels occur than maxVoxels, the first-seen voxels win, the result length
// equals the cap, and repeated runs agree.
func TestBuildVoxelOverflow(t *testing.T) {
	cfg := testConfig()
	cfg.MaxVoxels = 2
	builder, err := NewBuilder(cfg)
	require.NoError(t, err)

	pts := []points.Point{
		{X: 0.5, Y: 0.5, Z: 0.5},
		{X: 1.5, Y: 1.5, Z: 1.5},
		{X: 2.5, Y: 2.5, Z: 2.5}, // third distinct voxel, dropped
		{X: 0.6, Y: 0.6, Z: 0.6}, // lands in the first (kept) voxel
	}

	first, err := builder.Build(pts)
	require.NoError(t, err)
	assert.Equal(t, 2, first.NumVoxels)
	assert.Equal(t, []int32{0, 0, 0, 0}, first.CoordData()[:4])
	assert.Equal(t, []int32{0, 1, 1, 1}, first.CoordData()[4:8])
	assert.Equal(t, int32(2), first.NumPointData()[0],
		"points for kept voxels are retained even after the voxel cap hits")

	second, err := builder.Build(pts)
	require.NoError(t, err)
	assert.Equal(t, first.CoordData(), second.CoordData())
	assert.Equal(t, first.FeatureData(), second.FeatureData())
}

// TestBuildEmptyCloud verifies the explicit empty-result marker: no point
// inside the range yields ErrEmptyCloud, not a grid and not a generic error.
func TestBuildEmptyCloud(t *testing.T) {
	builder, err := NewBuilder(testConfig())
	require.NoError(t, err)

	tests := []struct {
		name string
		pts  []points.Point
	}{
		{name: "no points at all", pts: nil},
		{name: "all points outside range", pts: []points.Point{{X: -5, Y: -5, Z: -5}, {X: 20, Y: 20, Z: 20}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := builder.Build(tt.pts)
			assert.Nil(t, grid)
			assert.True(t, errors.Is(err, ErrEmptyCloud))
		})
	}
}

// TestMeanFeatures verifies the aggregated per-voxel view over the raw
// point rows.
func TestMeanFeatures(t *testing.T) {
	builder, err := NewBuilder(testConfig())
	require.NoError(t, err)

	pts := []points.Point{
		{X: 0.2, Y: 0.4, Z: 0.6, Intensity: 1},
		{X: 0.4, Y: 0.6, Z: 0.8, Intensity: 3},
	}

	grid, err := builder.Build(pts)
	require.NoError(t, err)

	means := grid.MeanFeatures()
	require.Len(t, means, 1)
	assert.InDeltaSlice(t, []float32{0.3, 0.5, 0.7, 2}, means[0], 1e-6)
}

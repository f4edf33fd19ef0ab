package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-lidar/common"
)

// det builds a 2x2x2 detection at the given ground position.
func det(x, y, score float32) Detection {
	return Detection{
		Box:   common.Box3D{X: x, Y: y, Z: 0, W: 2, L: 2, H: 2},
		Score: score,
	}
}

// TestNMSSuppressesOverlap verifies that the highest-scored of two heavily
// overlapping boxes survives.
func TestNMSSuppressesOverlap(t *testing.T) {
	input := []Detection{
		det(0, 0, 0.9),
		det(0.1, 0, 0.8), // near-total overlap with the first
		det(10, 10, 0.7), // far away, kept
	}

	kept := ApplyGreedyNMS(input, 0.5, OverlapBEV)
	require.Len(t, kept, 2)
	assert.InDelta(t, 0.9, kept[0].Score, 1e-6)
	assert.InDelta(t, 0.7, kept[1].Score, 1e-6)
}

// TestNMSKeepsDisjoint verifies that non-overlapping boxes all survive.
func TestNMSKeepsDisjoint(t *testing.T) {
	input := []Detection{
		det(0, 0, 0.9),
		det(5, 0, 0.8),
		det(0, 5, 0.7),
	}
	kept := ApplyGreedyNMS(input, 0.5, OverlapBEV)
	assert.Len(t, kept, 3)
}

// TestNMSIdempotent verifies that re-running suppression on its own output
// is a no-op.
func TestNMSIdempotent(t *testing.T) {
	input := []Detection{
		det(0, 0, 0.9),
		det(0.5, 0, 0.8),
		det(1, 0, 0.7),
		det(8, 8, 0.6),
	}

	once := ApplyGreedyNMS(input, 0.3, OverlapBEV)
	twice := ApplyGreedyNMS(once, 0.3, OverlapBEV)
	assert.Equal(t, once, twice)
}

// TestNMSTieBreak verifies that on exact score ties the earlier candidate
// wins, so the outcome is order-deterministic.
func TestNMSTieBreak(t *testing.T) {
	first := det(0, 0, 0.8)
	second := det(0.2, 0, 0.8)

	kept := ApplyGreedyNMS([]Detection{first, second}, 0.5, OverlapBEV)
	require.Len(t, kept, 1)
	assert.Equal(t, first.Box.X, kept[0].Box.X)
}

// TestNMSThresholdInclusive verifies that overlap exactly at the threshold
// suppresses.
func TestNMSThresholdInclusive(t *testing.T) {
	// 2x2 footprints shifted by 1 have IoU exactly 1/3.
	input := []Detection{det(0, 0, 0.9), det(1, 0, 0.8)}

	kept := ApplyGreedyNMS(input, 1.0/3.0, OverlapBEV)
	assert.Len(t, kept, 1)

	kept = ApplyGreedyNMS(input, 0.34, OverlapBEV)
	assert.Len(t, kept, 2)
}

// TestNMSBEV3DMetric verifies that the volumetric metric keeps boxes whose
// footprints coincide but whose heights do not.
func TestNMSBEV3DMetric(t *testing.T) {
	low := det(0, 0, 0.9)
	high := det(0, 0, 0.8)
	high.Box.Z = 5

	bev := ApplyGreedyNMS([]Detection{low, high}, 0.5, OverlapBEV)
	assert.Len(t, bev, 1, "BEV metric ignores height and suppresses")

	bev3d := ApplyGreedyNMS([]Detection{low, high}, 0.5, OverlapBEV3D)
	assert.Len(t, bev3d, 2, "volumetric metric sees disjoint heights")
}

// TestNMSEmptyInput verifies the empty-in, empty-out contract.
func TestNMSEmptyInput(t *testing.T) {
	kept := ApplyGreedyNMS(nil, 0.5, OverlapBEV)
	assert.NotNil(t, kept)
	assert.Empty(t, kept)
}

// Package postprocess - Non-Maximum Suppression for 3D detections.
package postprocess

import (
	"github.com/nvr-ai/go-lidar/common"
)

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// The input must already be sorted by descending score; on exact score ties
// the earlier candidate wins, so a stable sort upstream pins the tie-break
// to original candidate order. A candidate is kept when its overlap with
// every already-kept detection stays below the threshold. Running the
// function again on its own output returns the same set.
//
// Arguments:
//   - detections: Slice of detections sorted by descending confidence.
//   - iouThreshold: Overlap at or above which a candidate is suppressed.
//   - metric: The overlap measure; defaults to BEV when empty.
//
// Returns:
//   - Filtered slice of detections, still in descending score order.
func ApplyGreedyNMS(detections []Detection, iouThreshold float32, metric OverlapMetric) []Detection {
	n := len(detections)
	if n == 0 {
		return []Detection{}
	}

	overlap := func(a, b *common.Box3D) float32 {
		if metric == OverlapBEV3D {
			return a.IoU3D(b)
		}
		return a.BEVIoU(b)
	}

	filtered := make([]Detection, 0, n)
	for i := 0; i < n; i++ {
		candidate := &detections[i]
		suppressed := false
		for j := range filtered {
			if overlap(&candidate.Box, &filtered[j].Box) >= iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, *candidate)
		}
	}

	return filtered
}

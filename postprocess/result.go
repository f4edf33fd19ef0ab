// Package postprocess - Detection decoding and filtering for voxel models.
package postprocess

import (
	"github.com/nvr-ai/go-lidar/common"
)

// Detection represents a single decoded detection. Immutable once produced;
// this is the externally visible unit of result.
type Detection struct {
	// The oriented 3D bounding box of the detection.
	Box common.Box3D
	// The confidence score of the detection.
	Score float32
	// The predicted class index of the detection.
	Class int
	// The class label, when the decoder was configured with label names.
	Label string
}

// RawOutput is the named set of output tensors produced by one inference
// call, flattened candidate-major and index-aligned with the anchor set.
// Ownership is transient: the decoder consumes it immediately.
type RawOutput struct {
	// ClsScore holds (N, numClasses) raw class scores.
	ClsScore []float32
	// BBoxPred holds (N, 7) regression deltas: dx, dy, dz, dw, dl, dh, dyaw.
	BBoxPred []float32
	// DirClsPred optionally holds (N, 2) direction-bin scores.
	DirClsPred []float32
}

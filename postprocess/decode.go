// Package postprocess - Box regression decoding.
package postprocess

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-lidar/common"
)

// ScoreActivation names the normalization applied to raw class scores. The
// choice must match the artifact's declared output convention; it is a
// configuration decision, never an assumption.
type ScoreActivation string

const (
	// ActivationSigmoid applies per-class sigmoid. This is the convention of
	// anchor heads trained with sigmoid classification, and the default.
	ActivationSigmoid ScoreActivation = "sigmoid"
	// ActivationSoftmax applies softmax across the class dimension.
	ActivationSoftmax ScoreActivation = "softmax"
	// ActivationNone passes raw scores through for artifacts that bake the
	// normalization into the graph.
	ActivationNone ScoreActivation = "none"
)

// OverlapMetric names the box overlap measure used by suppression.
type OverlapMetric string

const (
	// OverlapBEV compares ground-plane projections.
	OverlapBEV OverlapMetric = "bev"
	// OverlapBEV3D extends the BEV overlap with the z extents.
	OverlapBEV3D OverlapMetric = "bev3d"
)

// DecodeConfig defines the decoding and filtering parameters.
type DecodeConfig struct {
	// ScoreThreshold drops candidates before suppression.
	ScoreThreshold float32 `json:"scoreThreshold" koanf:"scorethreshold" yaml:"scoreThreshold"`
	// NMSIoUThreshold suppresses a candidate whose overlap with any kept
	// detection reaches or exceeds this value.
	NMSIoUThreshold float32 `json:"nmsIoUThreshold" koanf:"nmsiouthreshold" yaml:"nmsIoUThreshold"`
	// Activation normalizes the raw class scores.
	Activation ScoreActivation `json:"activation" koanf:"activation" yaml:"activation"`
	// Overlap selects the suppression metric.
	Overlap OverlapMetric `json:"overlap" koanf:"overlap" yaml:"overlap"`
	// MaxDetections caps the result length after suppression. 0 is unlimited.
	MaxDetections int `json:"maxDetections" koanf:"maxdetections" yaml:"maxDetections"`
	// UseDirectionClassifier snaps decoded yaw to the predicted direction
	// bin when the raw output carries direction scores.
	UseDirectionClassifier bool `json:"useDirectionClassifier" koanf:"usedirectionclassifier" yaml:"useDirectionClassifier"`
	// DirOffset and DirLimitOffset parameterize the direction snapping.
	DirOffset      float32 `json:"dirOffset" koanf:"diroffset" yaml:"dirOffset"`
	DirLimitOffset float32 `json:"dirLimitOffset" koanf:"dirlimitoffset" yaml:"dirLimitOffset"`
}

// Validate checks the decode thresholds.
//
// Returns:
//   - error: An error describing the first invalid field, nil when valid.
func (c DecodeConfig) Validate() error {
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return errors.Errorf("scoreThreshold must be in [0, 1], got %f", c.ScoreThreshold)
	}
	if c.NMSIoUThreshold <= 0 || c.NMSIoUThreshold > 1 {
		return errors.Errorf("nmsIoUThreshold must be in (0, 1], got %f", c.NMSIoUThreshold)
	}
	switch c.Activation {
	case "", ActivationSigmoid, ActivationSoftmax, ActivationNone:
	default:
		return errors.Errorf("unknown score activation %q", c.Activation)
	}
	switch c.Overlap {
	case "", OverlapBEV, OverlapBEV3D:
	default:
		return errors.Errorf("unknown overlap metric %q", c.Overlap)
	}
	if c.MaxDetections < 0 {
		return errors.Errorf("maxDetections must not be negative, got %d", c.MaxDetections)
	}
	return nil
}

const pi = float32(3.14159265358979)

// Decode converts raw network outputs into filtered, sorted detections.
//
// The regression deltas are decoded against anchor geometry with the coder
// used at training time:
//
//	d   = sqrt(wa^2 + la^2)
//	x   = dx*d + xa        w = exp(dw)*wa
//	y   = dy*d + ya        l = exp(dl)*la
//	z   = dz*ha + za       h = exp(dh)*ha
//	yaw = dyaw + yawa
//
// When direction scores are present and enabled, yaw is snapped to the
// predicted half circle: rot = limitPeriod(yaw - dirOffset, dirLimitOffset,
// pi); yaw = rot + dirOffset + pi*dirLabel.
//
// Candidates below the score threshold are dropped before suppression, the
// survivors run through greedy NMS, and the result is sorted by descending
// score. An empty candidate set yields an empty result, not an error.
//
// Arguments:
//   - raw: The raw output tensors of one inference call.
//   - anchors: The anchor set index-aligned with the raw outputs.
//   - config: The decode and filtering parameters.
//
// Returns:
//   - []Detection: The filtered detections, highest score first.
//   - error: An error if the raw output shapes are inconsistent with the
//     anchor metadata.
func Decode(raw RawOutput, anchors *AnchorSet, config DecodeConfig) ([]Detection, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	n := anchors.Len()
	numClasses := anchors.NumClasses()
	if n == 0 || numClasses == 0 {
		return nil, errors.New("anchor set is empty")
	}
	if len(raw.ClsScore) != n*numClasses {
		return nil, errors.Errorf(
			"cls_score carries %d values, anchor metadata requires %d (N=%d x classes=%d)",
			len(raw.ClsScore), n*numClasses, n, numClasses,
		)
	}
	if len(raw.BBoxPred) != n*7 {
		return nil, errors.Errorf(
			"bbox_pred carries %d values, anchor metadata requires %d (N=%d x 7)",
			len(raw.BBoxPred), n*7, n,
		)
	}
	useDir := config.UseDirectionClassifier && len(raw.DirClsPred) > 0
	if useDir && len(raw.DirClsPred) != n*2 {
		return nil, errors.Errorf(
			"dir_cls_pred carries %d values, anchor metadata requires %d (N=%d x 2)",
			len(raw.DirClsPred), n*2, n,
		)
	}

	activation := config.Activation
	if activation == "" {
		activation = ActivationSigmoid
	}

	candidates := make([]Detection, 0, 128)
	for i := 0; i < n; i++ {
		class, score := bestClassScore(raw.ClsScore[i*numClasses:(i+1)*numClasses], activation)
		if score < config.ScoreThreshold {
			continue
		}

		anchor := &anchors.Anchors[i].Box
		deltas := raw.BBoxPred[i*7 : (i+1)*7]

		diag := math32.Sqrt(anchor.W*anchor.W + anchor.L*anchor.L)
		box := common.Box3D{
			X:   deltas[0]*diag + anchor.X,
			Y:   deltas[1]*diag + anchor.Y,
			Z:   deltas[2]*anchor.H + anchor.Z,
			W:   math32.Exp(deltas[3]) * anchor.W,
			L:   math32.Exp(deltas[4]) * anchor.L,
			H:   math32.Exp(deltas[5]) * anchor.H,
			Yaw: deltas[6] + anchor.Yaw,
		}

		if useDir {
			dirLabel := float32(0)
			if raw.DirClsPred[i*2+1] > raw.DirClsPred[i*2] {
				dirLabel = 1
			}
			rot := limitPeriod(box.Yaw-config.DirOffset, config.DirLimitOffset, pi)
			box.Yaw = rot + config.DirOffset + pi*dirLabel
		}

		label := ""
		if class < len(anchors.Labels) {
			label = anchors.Labels[class]
		}
		candidates = append(candidates, Detection{
			Box:   box,
			Score: score,
			Class: class,
			Label: label,
		})
	}

	if len(candidates) == 0 {
		return []Detection{}, nil
	}

	// Stable sort keeps original candidate order on exact score ties, which
	// pins the NMS tie-break.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	kept := ApplyGreedyNMS(candidates, config.NMSIoUThreshold, config.Overlap)
	if config.MaxDetections > 0 && len(kept) > config.MaxDetections {
		kept = kept[:config.MaxDetections]
	}
	return kept, nil
}

// bestClassScore normalizes one candidate's class scores and returns the
// winning class and its score.
func bestClassScore(scores []float32, activation ScoreActivation) (int, float32) {
	switch activation {
	case ActivationSoftmax:
		// Subtract the max for numerical stability.
		maxRaw := scores[0]
		for _, s := range scores[1:] {
			if s > maxRaw {
				maxRaw = s
			}
		}
		var sum float32
		best, bestVal := 0, float32(0)
		exps := make([]float32, len(scores))
		for i, s := range scores {
			exps[i] = math32.Exp(s - maxRaw)
			sum += exps[i]
		}
		for i, e := range exps {
			v := e / sum
			if v > bestVal {
				bestVal = v
				best = i
			}
		}
		return best, bestVal
	case ActivationNone:
		best, bestVal := 0, scores[0]
		for i, s := range scores[1:] {
			if s > bestVal {
				bestVal = s
				best = i + 1
			}
		}
		return best, bestVal
	default: // sigmoid
		best, bestVal := 0, sigmoid(scores[0])
		for i, s := range scores[1:] {
			v := sigmoid(s)
			if v > bestVal {
				bestVal = v
				best = i + 1
			}
		}
		return best, bestVal
	}
}

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

// limitPeriod wraps val into [offset*period, (offset+1)*period).
func limitPeriod(val, offset, period float32) float32 {
	return val - math32.Floor(val/period+offset)*period
}

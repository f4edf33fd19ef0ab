// Package detector - The voxel detection pipeline.
//
// The pipeline runs three stages per call: voxelization, backend inference,
// and detection decoding. The exported graphs deliberately exclude the first
// and last stage to stay backend-portable, so Voxelize and PostProcess are
// also callable standalone against externally produced tensors.
package detector

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-lidar/inference"
	"github.com/nvr-ai/go-lidar/points"
	"github.com/nvr-ai/go-lidar/postprocess"
	"github.com/nvr-ai/go-lidar/voxel"
)

// State is the pipeline's current stage. One Detect call walks
// Idle -> Voxelizing -> Inferring -> Decoding -> Idle; calls on one
// Detector are serialized, never interleaved.
type State string

const (
	// StateIdle means no call is in flight.
	StateIdle State = "idle"
	// StateVoxelizing means the builder is quantizing the cloud.
	StateVoxelizing State = "voxelizing"
	// StateInferring means the backend session is running.
	StateInferring State = "inferring"
	// StateDecoding means raw outputs are being decoded.
	StateDecoding State = "decoding"
)

// Option configures a Detector.
type Option func(*Detector)

// WithLogger attaches a structured logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// Detector owns the voxel builder, the backend session, and the decoder,
// and coordinates the data flow between them. It does not own the session's
// lifetime end-to-end: Close releases the session, but a caller that shares
// the session across detectors closes it itself.
type Detector struct {
	config  Config
	builder *voxel.Builder
	session inference.Runner
	anchors *postprocess.AnchorSet
	logger  *zap.Logger

	// cycleMu serializes whole Detect cycles; mu guards the state word.
	cycleMu sync.Mutex
	mu      sync.Mutex
	state   State
}

// New creates a detection pipeline over a loaded backend session.
//
// Arguments:
//   - config: The full pipeline configuration.
//   - session: The backend session to run inference on.
//   - opts: Optional settings.
//
// Returns:
//   - *Detector: The pipeline.
//   - error: A *ConfigError if any stage configuration is invalid.
func New(config Config, session inference.Runner, opts ...Option) (*Detector, error) {
	if session == nil {
		return nil, &ConfigError{Err: errors.New("nil inference session")}
	}
	if err := config.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	config.IO = config.IO.withDefaults()

	builder, err := voxel.NewBuilder(config.Voxel)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	anchors, err := postprocess.GenerateAnchors(config.Anchors)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	d := &Detector{
		config:  config,
		builder: builder,
		session: session,
		anchors: anchors,
		logger:  zap.NewNop(),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// State reports the stage the pipeline is currently in.
func (d *Detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Detector) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// Detect runs the full pipeline on one point cloud.
//
// An empty cloud (no points inside the configured range) is a valid input
// and yields an empty detection list, not an error. Any stage failure
// aborts the remaining stages and surfaces as exactly one of
// *PreprocessError, *InferenceError or *DecodeError.
//
// Arguments:
//   - pts: The input point cloud.
//
// Returns:
//   - []postprocess.Detection: Detections sorted by descending confidence.
//   - error: The tagged stage error, nil on success.
func (d *Detector) Detect(pts []points.Point) ([]postprocess.Detection, error) {
	d.cycleMu.Lock()
	defer d.cycleMu.Unlock()
	defer d.setState(StateIdle)

	start := time.Now()

	d.setState(StateVoxelizing)
	grid, err := d.builder.Build(pts)
	if err != nil {
		if errors.Is(err, voxel.ErrEmptyCloud) {
			d.logger.Debug("empty cloud, skipping inference", zap.Int("points", len(pts)))
			return []postprocess.Detection{}, nil
		}
		return nil, &PreprocessError{Err: err}
	}

	d.setState(StateInferring)
	raw, err := d.infer(grid)
	if err != nil {
		return nil, err
	}

	d.setState(StateDecoding)
	detections, err := postprocess.Decode(raw, d.anchors, d.config.Decode)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	d.logger.Debug("detect cycle complete",
		zap.Int("points", len(pts)),
		zap.Int("voxels", grid.NumVoxels),
		zap.Int("detections", len(detections)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return detections, nil
}

// Voxelize runs only the preprocessing stage, for callers driving an
// inference engine directly.
//
// Arguments:
//   - pts: The input point cloud.
//
// Returns:
//   - *voxel.Grid: The feature, coordinate and occupancy tensors. Nil with
//     voxel.ErrEmptyCloud (wrapped in *PreprocessError) when no point
//     survives the range filter.
//   - error: A *PreprocessError on failure.
func (d *Detector) Voxelize(pts []points.Point) (*voxel.Grid, error) {
	grid, err := d.builder.Build(pts)
	if err != nil {
		return nil, &PreprocessError{Err: err}
	}
	return grid, nil
}

// PostProcess runs only the decoding stage against externally produced raw
// outputs.
//
// Arguments:
//   - raw: The raw output tensors of one inference call.
//
// Returns:
//   - []postprocess.Detection: Detections sorted by descending confidence.
//   - error: A *DecodeError on malformed outputs.
func (d *Detector) PostProcess(raw postprocess.RawOutput) ([]postprocess.Detection, error) {
	detections, err := postprocess.Decode(raw, d.anchors, d.config.Decode)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return detections, nil
}

// Close releases the backend session.
func (d *Detector) Close() error {
	return d.session.Close()
}

// infer adapts the grid tensors to the artifact's named inputs, runs the
// session, and picks the named outputs apart into a RawOutput.
func (d *Detector) infer(grid *voxel.Grid) (postprocess.RawOutput, error) {
	names := d.config.IO

	featShape := grid.Features.Shape()
	coordShape := grid.Coords.Shape()
	inputs := []inference.Value{
		{
			Name:   names.Voxels,
			Shape:  []int64{int64(featShape[0]), int64(featShape[1]), int64(featShape[2])},
			Floats: grid.FeatureData(),
		},
		{
			Name:  names.NumPoints,
			Shape: []int64{int64(featShape[0])},
			Ints:  grid.NumPointData(),
		},
		{
			Name:  names.Coords,
			Shape: []int64{int64(coordShape[0]), int64(coordShape[1])},
			Ints:  grid.CoordData(),
		},
	}

	outputs, err := d.session.Run(inputs)
	if err != nil {
		return postprocess.RawOutput{}, wrapInferenceError(err)
	}

	var raw postprocess.RawOutput
	for i := range outputs {
		out := &outputs[i]
		switch out.Name {
		case names.ClsScore:
			raw.ClsScore = out.Floats
		case names.BBoxPred:
			raw.BBoxPred = out.Floats
		case names.DirCls:
			raw.DirClsPred = out.Floats
		}
	}
	if raw.ClsScore == nil || raw.BBoxPred == nil {
		return postprocess.RawOutput{}, &InferenceError{
			Err: errors.Errorf(
				"artifact outputs missing %q or %q", names.ClsScore, names.BBoxPred,
			),
		}
	}
	return raw, nil
}

// wrapInferenceError maps any session failure to the pipeline's tagged
// InferenceError, carrying the backend name when the session reported one.
func wrapInferenceError(err error) error {
	var backendErr *inference.Error
	if errors.As(err, &backendErr) {
		return &InferenceError{Backend: backendErr.Backend, Err: err}
	}
	return &InferenceError{Err: err}
}

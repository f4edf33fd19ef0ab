// Package detector - Pipeline configuration.
package detector

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-lidar/postprocess"
	"github.com/nvr-ai/go-lidar/voxel"
)

// IONames maps the pipeline's tensors onto the artifact's tensor names.
// The zero value selects the names used by the standard export tooling.
type IONames struct {
	Voxels    string `json:"voxels" koanf:"voxels" yaml:"voxels"`
	NumPoints string `json:"numPoints" koanf:"numpoints" yaml:"numPoints"`
	Coords    string `json:"coords" koanf:"coords" yaml:"coords"`
	ClsScore  string `json:"clsScore" koanf:"clsscore" yaml:"clsScore"`
	BBoxPred  string `json:"bboxPred" koanf:"bboxpred" yaml:"bboxPred"`
	DirCls    string `json:"dirCls" koanf:"dircls" yaml:"dirCls"`
}

// withDefaults fills unset names with the export tooling's conventions.
func (n IONames) withDefaults() IONames {
	if n.Voxels == "" {
		n.Voxels = "voxels"
	}
	if n.NumPoints == "" {
		n.NumPoints = "num_points"
	}
	if n.Coords == "" {
		n.Coords = "coors"
	}
	if n.ClsScore == "" {
		n.ClsScore = "cls_score"
	}
	if n.BBoxPred == "" {
		n.BBoxPred = "bbox_pred"
	}
	if n.DirCls == "" {
		n.DirCls = "dir_cls_pred"
	}
	return n
}

// Config assembles the full pipeline configuration.
type Config struct {
	// Voxel is the voxelization stage configuration.
	Voxel voxel.Config `json:"voxel" koanf:"voxel" yaml:"voxel"`
	// Anchors is the anchor grid the decoder decodes against.
	Anchors postprocess.AnchorConfig `json:"anchors" koanf:"anchors" yaml:"anchors"`
	// Decode is the decoding and filtering stage configuration.
	Decode postprocess.DecodeConfig `json:"decode" koanf:"decode" yaml:"decode"`
	// IO names the artifact's tensors.
	IO IONames `json:"io" koanf:"io" yaml:"io"`
}

// Validate checks the configuration of every stage.
//
// Returns:
//   - error: An error naming the first invalid stage, nil when valid.
func (c Config) Validate() error {
	if err := c.Voxel.Validate(); err != nil {
		return errors.Wrap(err, "voxel")
	}
	if err := c.Decode.Validate(); err != nil {
		return errors.Wrap(err, "decode")
	}
	if len(c.Anchors.Classes) == 0 {
		return errors.New("anchors: no classes configured")
	}
	return nil
}

// Package postprocess - Anchor generation for voxel detection heads.
package postprocess

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-lidar/common"
)

// AnchorClass describes the reference box geometry of one detection class.
type AnchorClass struct {
	// Label is the class name emitted on detections.
	Label string `json:"label" koanf:"label" yaml:"label"`
	// W, L, H are the anchor box extents.
	W float32 `json:"w" koanf:"w" yaml:"w"`
	L float32 `json:"l" koanf:"l" yaml:"l"`
	H float32 `json:"h" koanf:"h" yaml:"h"`
	// ZCenter is the anchor center height for this class.
	ZCenter float32 `json:"zCenter" koanf:"zcenter" yaml:"zCenter"`
}

// AnchorConfig defines the dense anchor grid laid over the bird's-eye-view
// feature map.
type AnchorConfig struct {
	// GridW and GridH are the feature-map cell counts along x and y.
	GridW int `json:"gridW" koanf:"gridw" yaml:"gridW"`
	GridH int `json:"gridH" koanf:"gridh" yaml:"gridH"`
	// MinX/MaxX/MinY/MaxY bound the anchor centers on the ground plane.
	MinX float32 `json:"minX" koanf:"minx" yaml:"minX"`
	MaxX float32 `json:"maxX" koanf:"maxx" yaml:"maxX"`
	MinY float32 `json:"minY" koanf:"miny" yaml:"minY"`
	MaxY float32 `json:"maxY" koanf:"maxy" yaml:"maxY"`
	// Rotations are the anchor yaw angles per cell; defaults to 0 and pi/2.
	Rotations []float32 `json:"rotations" koanf:"rotations" yaml:"rotations"`
	// Classes are the per-class anchor geometries.
	Classes []AnchorClass `json:"classes" koanf:"classes" yaml:"classes"`
}

// Anchor is one reference box against which regression deltas are decoded.
type Anchor struct {
	Box   common.Box3D
	Class int
}

// AnchorSet is the ordered dense anchor list, index-aligned with the
// network's flattened candidate-major output tensors.
type AnchorSet struct {
	Anchors []Anchor
	Labels  []string
}

// NumClasses returns the number of detection classes.
func (s *AnchorSet) NumClasses() int {
	return len(s.Labels)
}

// Len returns the anchor count N.
func (s *AnchorSet) Len() int {
	return len(s.Anchors)
}

// GenerateAnchors produces the dense anchor set over the BEV grid.
//
// Anchor centers sit at cell centers. The flattened order matches the
// detection head's output layout: row-major over (y, x), then class, then
// rotation, so anchor index i = ((y*gridW + x)*numClasses + c)*numRots + r.
//
// Arguments:
//   - config: The anchor grid parameters.
//
// Returns:
//   - *AnchorSet: The ordered anchor set.
//   - error: An error if the configuration is degenerate.
func GenerateAnchors(config AnchorConfig) (*AnchorSet, error) {
	if config.GridW < 1 || config.GridH < 1 {
		return nil, errors.Errorf("anchor grid must be at least 1x1, got %dx%d", config.GridW, config.GridH)
	}
	if config.MaxX <= config.MinX || config.MaxY <= config.MinY {
		return nil, errors.Errorf(
			"anchor range must have positive extent, got x [%f, %f], y [%f, %f]",
			config.MinX, config.MaxX, config.MinY, config.MaxY,
		)
	}
	if len(config.Classes) == 0 {
		return nil, errors.New("anchor config declares no classes")
	}

	rotations := config.Rotations
	if len(rotations) == 0 {
		rotations = []float32{0, 1.5707963}
	}

	stepX := (config.MaxX - config.MinX) / float32(config.GridW)
	stepY := (config.MaxY - config.MinY) / float32(config.GridH)

	set := &AnchorSet{
		Anchors: make([]Anchor, 0, config.GridH*config.GridW*len(config.Classes)*len(rotations)),
		Labels:  make([]string, len(config.Classes)),
	}
	for c, class := range config.Classes {
		set.Labels[c] = class.Label
	}

	for y := 0; y < config.GridH; y++ {
		cy := config.MinY + (float32(y)+0.5)*stepY
		for x := 0; x < config.GridW; x++ {
			cx := config.MinX + (float32(x)+0.5)*stepX
			for c, class := range config.Classes {
				for _, rot := range rotations {
					set.Anchors = append(set.Anchors, Anchor{
						Box: common.Box3D{
							X: cx, Y: cy, Z: class.ZCenter,
							W: class.W, L: class.L, H: class.H,
							Yaw: rot,
						},
						Class: c,
					})
				}
			}
		}
	}

	return set, nil
}

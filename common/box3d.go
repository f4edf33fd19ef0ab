package common

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Box3D represents an oriented 3D bounding box: gravity center, dimensions,
// and yaw around the z axis.
type Box3D struct {
	// X, Y, Z is the box center.
	X, Y, Z float32
	// W, L, H are the extents along the box's own x, y and z axes.
	W, L, H float32
	// Yaw is the rotation around z in radians.
	Yaw float32
}

func (b *Box3D) String() string {
	return fmt.Sprintf("Box center (%f, %f, %f), dims (%f, %f, %f), yaw %f",
		b.X, b.Y, b.Z, b.W, b.L, b.H, b.Yaw)
}

// Volume returns the box volume.
func (b *Box3D) Volume() float32 {
	return b.W * b.L * b.H
}

// bevBounds returns the axis-aligned bounds of the box's ground-plane
// projection. The oriented footprint is widened to the axis-aligned
// rectangle that contains it, so the overlap estimate is an upper bound for
// rotated boxes and exact for axis-aligned ones. That bias is acceptable for
// suppression: it only ever suppresses more aggressively, never less.
func (b *Box3D) bevBounds() (x1, y1, x2, y2 float32) {
	sin := math32.Abs(math32.Sin(b.Yaw))
	cos := math32.Abs(math32.Cos(b.Yaw))
	halfX := (cos*b.W + sin*b.L) / 2
	halfY := (sin*b.W + cos*b.L) / 2
	return b.X - halfX, b.Y - halfY, b.X + halfX, b.Y + halfY
}

// BEVIntersection calculates the overlap area of the two boxes' ground-plane
// projections.
//
// Arguments:
//   - other: The other box.
//
// Returns:
//   - float32: The intersection area, 0 when the footprints do not overlap.
func (b *Box3D) BEVIntersection(other *Box3D) float32 {
	ax1, ay1, ax2, ay2 := b.bevBounds()
	bx1, by1, bx2, by2 := other.bevBounds()

	interW := math32.Min(ax2, bx2) - math32.Max(ax1, bx1)
	interH := math32.Min(ay2, by2) - math32.Max(ay1, by1)
	if interW <= 0 || interH <= 0 {
		return 0
	}
	return interW * interH
}

// BEVIoU calculates the Intersection over Union of the two boxes'
// ground-plane projections. This is the overlap metric used by Non-Maximum
// Suppression for bird's-eye-view detection.
//
// Arguments:
//   - other: The other box.
//
// Returns:
//   - float32: The IoU value between 0 and 1.
func (b *Box3D) BEVIoU(other *Box3D) float32 {
	inter := b.BEVIntersection(other)
	if inter == 0 {
		return 0
	}
	ax1, ay1, ax2, ay2 := b.bevBounds()
	bx1, by1, bx2, by2 := other.bevBounds()
	union := (ax2-ax1)*(ay2-ay1) + (bx2-bx1)*(by2-by1) - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// IoU3D calculates the volumetric Intersection over Union: the BEV overlap
// extruded by the overlap of the two boxes' z extents.
//
// Arguments:
//   - other: The other box.
//
// Returns:
//   - float32: The IoU value between 0 and 1.
func (b *Box3D) IoU3D(other *Box3D) float32 {
	bevInter := b.BEVIntersection(other)
	if bevInter == 0 {
		return 0
	}

	zOverlap := math32.Min(b.Z+b.H/2, other.Z+other.H/2) -
		math32.Max(b.Z-b.H/2, other.Z-other.H/2)
	if zOverlap <= 0 {
		return 0
	}

	inter := bevInter * zOverlap
	union := b.Volume() + other.Volume() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

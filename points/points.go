// Package points - Point cloud input records.
package points

import "fmt"

// Point is a single point-cloud record. Immutable once read from input.
type Point struct {
	X, Y, Z   float32
	Intensity float32
}

// Feature returns the i-th feature channel of the point (0=x, 1=y, 2=z,
// 3=intensity).
//
// Arguments:
//   - i: The feature channel index.
//
// Returns:
//   - float32: The feature value.
func (p Point) Feature(i int) float32 {
	switch i {
	case 0:
		return p.X
	case 1:
		return p.Y
	case 2:
		return p.Z
	case 3:
		return p.Intensity
	default:
		return 0
	}
}

// String formats the point for display.
func (p Point) String() string {
	return fmt.Sprintf("(%f, %f, %f, %f)", p.X, p.Y, p.Z, p.Intensity)
}

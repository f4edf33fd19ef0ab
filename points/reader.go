// Package points - Binary point-cloud file reading.
package points

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/pkg/errors"
)

// ReadBinFile reads a raw point-cloud file of little-endian float32 records.
//
// Each record holds numFeatures channels in x, y, z, intensity order. Files
// with numFeatures=3 carry no intensity channel; the intensity of every point
// is left at zero. This is the layout produced by the common lidar dataset
// export tools.
//
// Arguments:
//   - path: The path to the point-cloud file.
//   - numFeatures: The number of float32 channels per record (3 or 4).
//
// Returns:
//   - []Point: The decoded points, in file order.
//   - error: An error if the file cannot be read or is malformed.
func ReadBinFile(path string, numFeatures int) ([]Point, error) {
	if numFeatures != 3 && numFeatures != 4 {
		return nil, errors.Errorf("unsupported record width: %d channels (want 3 or 4)", numFeatures)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading point cloud %s", path)
	}
	return DecodeBin(data, numFeatures)
}

// DecodeBin decodes an in-memory buffer of little-endian float32 records.
//
// Arguments:
//   - data: The raw record bytes.
//   - numFeatures: The number of float32 channels per record (3 or 4).
//
// Returns:
//   - []Point: The decoded points, in buffer order.
//   - error: An error if the buffer length is not a whole number of records.
func DecodeBin(data []byte, numFeatures int) ([]Point, error) {
	recordSize := numFeatures * 4
	if len(data)%recordSize != 0 {
		return nil, errors.Errorf(
			"truncated point cloud: %d bytes is not a multiple of the %d byte record size",
			len(data), recordSize,
		)
	}

	n := len(data) / recordSize
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		offset := i * recordSize
		pts[i].X = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		pts[i].Y = math.Float32frombits(binary.LittleEndian.Uint32(data[offset+4:]))
		pts[i].Z = math.Float32frombits(binary.LittleEndian.Uint32(data[offset+8:]))
		if numFeatures == 4 {
			pts[i].Intensity = math.Float32frombits(binary.LittleEndian.Uint32(data[offset+12:]))
		}
	}
	return pts, nil
}

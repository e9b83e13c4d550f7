package domain

import "fmt"

// OrientationReading is the physical device orientation derived from the
// gravity vector, quantized to 90 degree sectors.
type OrientationReading string

const (
	ReadingUpright      OrientationReading = "upright"
	ReadingRotatedLeft  OrientationReading = "rotated-left"
	ReadingUpsideDown   OrientationReading = "upside-down"
	ReadingRotatedRight OrientationReading = "rotated-right"
)

// IsPortrait reports whether the device was held in a portrait-class
// position, i.e. the screen's long edge was vertical.
func (r OrientationReading) IsPortrait() bool {
	return r == ReadingUpright || r == ReadingUpsideDown
}

func (r OrientationReading) IsLandscape() bool {
	return r == ReadingRotatedLeft || r == ReadingRotatedRight
}

func ParseOrientationReading(s string) (OrientationReading, error) {
	switch OrientationReading(s) {
	case ReadingUpright, ReadingRotatedLeft, ReadingUpsideDown, ReadingRotatedRight:
		return OrientationReading(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOrientation, s)
}

// ExifOrientation is the orientation tag embedded in a captured file,
// using the standard EXIF values 1..8.
type ExifOrientation int

const (
	ExifNormal     ExifOrientation = 1
	ExifFlipH      ExifOrientation = 2
	ExifRotate180  ExifOrientation = 3
	ExifFlipV      ExifOrientation = 4
	ExifTranspose  ExifOrientation = 5
	ExifRotate90   ExifOrientation = 6
	ExifTransverse ExifOrientation = 7
	ExifRotate270  ExifOrientation = 8
)

func ParseExifOrientation(v int) (ExifOrientation, error) {
	if v < 1 || v > 8 {
		return ExifNormal, fmt.Errorf("%w: exif orientation %d", ErrUnknownOrientation, v)
	}
	return ExifOrientation(v), nil
}

// Angle returns the clockwise rotation in degrees needed to display the
// raster upright. Mirrored values (2, 4, 5, 7) are reduced to their rotation
// component; the capture hardware this pipeline serves never emits them.
func (o ExifOrientation) Angle() int {
	switch o {
	case ExifRotate180, ExifFlipV:
		return 180
	case ExifRotate90, ExifTranspose:
		return 90
	case ExifRotate270, ExifTransverse:
		return 270
	default:
		return 0
	}
}

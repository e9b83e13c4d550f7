package orientation

import (
	"image"
	"image/draw"

	"watermark-camera/internal/domain"
)

// Reconciler decides whether a raw capture needs a pixel-level rotation and
// performs it. It keeps no state across calls; the live device reading is
// owned by the capture session and passed in.
type Reconciler struct{}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Decide returns the clockwise rotation (0, 90, 180 or 270 degrees) to apply
// before storing the capture.
//
// The EXIF tag alone is not trustworthy: some sensors report a rotated tag
// even when the physical orientation already matches the sensor's native
// landscape frame. The device reading breaks the tie: a landscape-class
// reading over a landscape-shaped raster means the shapes already agree and
// the tag is ignored.
func (r *Reconciler) Decide(width, height int, tag domain.ExifOrientation, reading domain.OrientationReading) int {
	landscape := width > height
	switch {
	case reading.IsPortrait() && landscape && tag.Angle() != 0:
		return tag.Angle()
	case reading.IsLandscape() && landscape:
		return 0
	default:
		return tag.Angle()
	}
}

// Apply returns a new raster rotated clockwise by angle (multiples of 90
// only; anything else passes through). Zero degrees still allocates a fresh
// raster so callers can treat the result as exclusively owned.
func (r *Reconciler) Apply(img image.Image, angle int) *image.RGBA {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	switch angle {
	case 90:
		dst := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dst.Set(height-1-y, x, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		return dst
	case 180:
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dst.Set(width-1-x, height-1-y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		return dst
	case 270:
		dst := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dst.Set(y, width-1-x, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		return dst
	default:
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst
	}
}

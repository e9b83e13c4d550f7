package orientation

import (
	"image"
	"image/color"
	"testing"

	"watermark-camera/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide_PortraitReadingLandscapeImageRotatedTag(t *testing.T) {
	r := NewReconciler()

	// Device held upright but the sensor produced a landscape frame with a
	// rotated tag: the pixels need the tag's rotation.
	angle := r.Decide(400, 300, domain.ExifRotate90, domain.ReadingUpright)
	assert.Equal(t, 90, angle)

	angle = r.Decide(400, 300, domain.ExifRotate270, domain.ReadingUpsideDown)
	assert.Equal(t, 270, angle)
}

func TestDecide_LandscapeReadingLandscapeImage(t *testing.T) {
	r := NewReconciler()

	// Shapes agree; a rotated tag is sensor noise and is ignored.
	angle := r.Decide(400, 300, domain.ExifRotate90, domain.ReadingRotatedLeft)
	assert.Equal(t, 0, angle)

	angle = r.Decide(400, 300, domain.ExifNormal, domain.ReadingRotatedRight)
	assert.Equal(t, 0, angle)
}

func TestDecide_FallsBackToTag(t *testing.T) {
	r := NewReconciler()

	// Portrait-shaped image: the tag is trusted as-is.
	assert.Equal(t, 180, r.Decide(300, 400, domain.ExifRotate180, domain.ReadingUpright))
	assert.Equal(t, 0, r.Decide(300, 400, domain.ExifNormal, domain.ReadingUpright))
	assert.Equal(t, 90, r.Decide(300, 400, domain.ExifRotate90, domain.ReadingRotatedLeft))
}

func TestDecide_NormalTagLandscapePortraitReading(t *testing.T) {
	r := NewReconciler()

	// Tag says upright, so the first clause does not fire even though the
	// reading and shape disagree.
	assert.Equal(t, 0, r.Decide(400, 300, domain.ExifNormal, domain.ReadingUpright))
}

func markedImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 7, A: 255})
		}
	}
	return img
}

func TestApply_90SwapsDimensions(t *testing.T) {
	r := NewReconciler()
	src := markedImage(4, 3)

	dst := r.Apply(src, 90)

	require.Equal(t, 3, dst.Bounds().Dx())
	require.Equal(t, 4, dst.Bounds().Dy())
	// Top-left corner moves to the top-right under a clockwise rotation.
	assert.Equal(t, src.At(0, 0), dst.At(2, 0))
	assert.Equal(t, src.At(3, 2), dst.At(0, 3))
}

func TestApply_180KeepsDimensions(t *testing.T) {
	r := NewReconciler()
	src := markedImage(4, 3)

	dst := r.Apply(src, 180)

	require.Equal(t, 4, dst.Bounds().Dx())
	require.Equal(t, 3, dst.Bounds().Dy())
	assert.Equal(t, src.At(0, 0), dst.At(3, 2))
	assert.Equal(t, src.At(3, 2), dst.At(0, 0))
}

func TestApply_90Then270IsIdentity(t *testing.T) {
	r := NewReconciler()
	src := markedImage(5, 4)

	back := r.Apply(r.Apply(src, 90), 270)

	require.Equal(t, src.Bounds(), back.Bounds())
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, src.At(x, y), back.At(x, y))
		}
	}
}

func TestApply_ZeroReturnsFreshRaster(t *testing.T) {
	r := NewReconciler()
	src := markedImage(4, 3)

	dst := r.Apply(src, 0)

	require.NotSame(t, src, dst)
	assert.Equal(t, src.At(1, 2), dst.At(1, 2))

	// Mutating the copy leaves the source untouched.
	dst.Set(1, 2, color.RGBA{R: 99, G: 99, B: 99, A: 255})
	assert.NotEqual(t, dst.At(1, 2), src.At(1, 2))
}

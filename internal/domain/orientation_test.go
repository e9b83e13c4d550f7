package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOrientationReading(t *testing.T) {
	r, err := ParseOrientationReading("rotated-left")
	assert.NoError(t, err)
	assert.Equal(t, ReadingRotatedLeft, r)

	_, err = ParseOrientationReading("sideways")
	assert.ErrorIs(t, err, ErrUnknownOrientation)
}

func TestReadingClasses(t *testing.T) {
	assert.True(t, ReadingUpright.IsPortrait())
	assert.True(t, ReadingUpsideDown.IsPortrait())
	assert.True(t, ReadingRotatedLeft.IsLandscape())
	assert.True(t, ReadingRotatedRight.IsLandscape())
	assert.False(t, ReadingUpright.IsLandscape())
}

func TestParseExifOrientation(t *testing.T) {
	for v := 1; v <= 8; v++ {
		o, err := ParseExifOrientation(v)
		assert.NoError(t, err)
		assert.Equal(t, ExifOrientation(v), o)
	}

	_, err := ParseExifOrientation(0)
	assert.ErrorIs(t, err, ErrUnknownOrientation)
	_, err = ParseExifOrientation(9)
	assert.ErrorIs(t, err, ErrUnknownOrientation)
}

func TestExifAngle(t *testing.T) {
	assert.Equal(t, 0, ExifNormal.Angle())
	assert.Equal(t, 180, ExifRotate180.Angle())
	assert.Equal(t, 90, ExifRotate90.Angle())
	assert.Equal(t, 270, ExifRotate270.Angle())

	// Mirrored values reduce to their rotation component.
	assert.Equal(t, 0, ExifFlipH.Angle())
	assert.Equal(t, 180, ExifFlipV.Angle())
	assert.Equal(t, 90, ExifTranspose.Angle())
	assert.Equal(t, 270, ExifTransverse.Angle())
}

func TestArtifactPaths(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC)

	assert.Equal(t, "private/original/20240301_093015.jpg", PrivateOriginalPath(ts))
	assert.Equal(t, "gallery/original/Original_20240301_093015.jpg", GalleryOriginalPath(ts))
	assert.Equal(t, "gallery/watermarked/Watermark_20240301_093015.jpg", GalleryWatermarkedPath(ts))
	assert.Equal(t, "staging/abc.jpg", StagedPath("abc"))
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTextSpec() WatermarkSpec {
	return WatermarkSpec{
		Kind:      KindText,
		Content:   "hello",
		PositionX: 0.5,
		PositionY: 0.5,
		Scale:     0.04,
		Opacity:   255,
		Enabled:   true,
	}
}

func TestClamp_PositionPulledIntoUnitRange(t *testing.T) {
	s := validTextSpec()
	s.PositionX = -0.3
	s.PositionY = 1.7

	c := s.Clamp()
	assert.Equal(t, 0.0, c.PositionX)
	assert.Equal(t, 1.0, c.PositionY)
}

func TestClamp_ScaleCappedAtMax(t *testing.T) {
	s := validTextSpec()
	s.Scale = 0.9

	c := s.Clamp()
	assert.Equal(t, MaxScale, c.Scale)
}

func TestClamp_NonPositiveScaleBecomesDefault(t *testing.T) {
	s := validTextSpec()
	s.Scale = 0

	c := s.Clamp()
	assert.Equal(t, DefaultScale, c.Scale)

	s.Scale = -1
	assert.Equal(t, DefaultScale, s.Clamp().Scale)
}

func TestClamp_OpacityBounded(t *testing.T) {
	s := validTextSpec()
	s.Opacity = 300
	assert.Equal(t, 255, s.Clamp().Opacity)

	s.Opacity = -10
	assert.Equal(t, 0, s.Clamp().Opacity)
}

func TestClamp_DoesNotMutateReceiver(t *testing.T) {
	s := validTextSpec()
	s.Scale = 0.9

	_ = s.Clamp()
	assert.Equal(t, 0.9, s.Scale)
}

func TestValidate_AcceptsClampedSpec(t *testing.T) {
	s := validTextSpec()
	s.Scale = 3.0
	s.PositionX = 12

	assert.Error(t, s.Validate())
	assert.NoError(t, s.Clamp().Validate())
}

func TestValidate_RejectsUnknownKind(t *testing.T) {
	s := validTextSpec()
	s.Kind = "sticker"

	err := s.Validate()
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestValidate_TextRequiresContent(t *testing.T) {
	s := validTextSpec()
	s.Content = "   "

	assert.ErrorIs(t, s.Validate(), ErrInvalidSpec)
}

func TestValidate_TimestampRequiresLayout(t *testing.T) {
	s := validTextSpec()
	s.Kind = KindTimestamp
	s.Content = ""

	assert.ErrorIs(t, s.Validate(), ErrInvalidSpec)
}

func TestValidate_ImageRequiresReference(t *testing.T) {
	s := validTextSpec()
	s.Kind = KindImage
	s.Content = ""

	assert.ErrorIs(t, s.Validate(), ErrInvalidSpec)
}

func TestValidate_LocationContentMayBeEmpty(t *testing.T) {
	s := validTextSpec()
	s.Kind = KindLocation
	s.Content = ""

	assert.NoError(t, s.Validate())
}

func TestValidate_ScaleBoundaries(t *testing.T) {
	s := validTextSpec()

	s.Scale = MaxScale
	assert.NoError(t, s.Validate())

	s.Scale = MaxScale + 0.001
	assert.Error(t, s.Validate())

	s.Scale = 0
	assert.Error(t, s.Validate())
}

func TestWithAlpha(t *testing.T) {
	c := RGBA{R: 10, G: 20, B: 30, A: 255}
	half := c.WithAlpha(127)

	assert.Equal(t, uint8(10), half.R)
	assert.Equal(t, uint8(127), half.A)
	assert.Equal(t, uint8(255), c.A)
}

func TestKindDisplayName(t *testing.T) {
	assert.Equal(t, "Timestamp", KindTimestamp.DisplayName())
	assert.Equal(t, "Image", KindImage.DisplayName())
	assert.Equal(t, "mystery", WatermarkKind("mystery").DisplayName())
}

package overlays

import (
	"image"

	"watermark-camera/internal/domain"
)

type watermarkRegistry interface {
	Add(spec domain.WatermarkSpec) (int, error)
	Update(index int, spec domain.WatermarkSpec) error
	Remove(index int) error
	SetEnabled(index int, enabled bool) error
	Active() []domain.WatermarkSpec
	ResetToDefault()
	HasEnabled() bool
	EnabledCount() int
	Len() int
}

type previewCompositor interface {
	Composite(img image.Image, specs []domain.WatermarkSpec) *image.RGBA
}

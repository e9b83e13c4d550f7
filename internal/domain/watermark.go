package domain

import (
	"fmt"
	"image/color"
	"strings"
)

type WatermarkKind string

const (
	KindText      WatermarkKind = "text"
	KindTimestamp WatermarkKind = "timestamp"
	KindLocation  WatermarkKind = "location"
	KindImage     WatermarkKind = "image"
)

func (k WatermarkKind) Valid() bool {
	switch k {
	case KindText, KindTimestamp, KindLocation, KindImage:
		return true
	}
	return false
}

// DisplayName is what the compositor falls back to drawing when a spec's
// dynamic content cannot be resolved.
func (k WatermarkKind) DisplayName() string {
	switch k {
	case KindText:
		return "Text"
	case KindTimestamp:
		return "Timestamp"
	case KindLocation:
		return "Location"
	case KindImage:
		return "Image"
	default:
		return string(k)
	}
}

type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

func (c RGBA) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// WithAlpha returns the color with its alpha replaced.
func (c RGBA) WithAlpha(a uint8) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// WatermarkSpec describes one overlay. Position and scale are proportional
// to the target image, so a spec is resolution independent.
type WatermarkSpec struct {
	Kind            WatermarkKind `json:"kind"`
	Content         string        `json:"content"`
	PositionX       float64       `json:"position_x"`
	PositionY       float64       `json:"position_y"`
	Scale           float64       `json:"scale"`
	Opacity         int           `json:"opacity"`
	RotationDegrees float64       `json:"rotation_degrees"`
	Color           RGBA          `json:"color"`
	ShadowColor     RGBA          `json:"shadow_color"`
	HasShadow       bool          `json:"has_shadow"`
	Enabled         bool          `json:"enabled"`
}

const (
	MinScale       = 0.0
	MaxScale       = 0.5
	DefaultScale   = 0.04
	DefaultOpacity = 255
)

// Clamp pulls out-of-range numeric fields back into their legal ranges.
// It returns a copy; the receiver is never mutated.
func (s WatermarkSpec) Clamp() WatermarkSpec {
	s.PositionX = clampFloat(s.PositionX, 0, 1)
	s.PositionY = clampFloat(s.PositionY, 0, 1)
	if s.Scale > MaxScale {
		s.Scale = MaxScale
	}
	if s.Scale <= MinScale {
		s.Scale = DefaultScale
	}
	if s.Opacity < 0 {
		s.Opacity = 0
	}
	if s.Opacity > 255 {
		s.Opacity = 255
	}
	return s
}

// Validate reports the first invariant the spec violates. A spec that fails
// validation must never reach the compositor.
func (s WatermarkSpec) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, s.Kind)
	}
	if s.PositionX < 0 || s.PositionX > 1 || s.PositionY < 0 || s.PositionY > 1 {
		return fmt.Errorf("%w: position (%v, %v) outside [0,1]", ErrInvalidSpec, s.PositionX, s.PositionY)
	}
	if s.Scale <= MinScale || s.Scale > MaxScale {
		return fmt.Errorf("%w: scale %v outside (0,0.5]", ErrInvalidSpec, s.Scale)
	}
	if s.Opacity < 0 || s.Opacity > 255 {
		return fmt.Errorf("%w: opacity %d outside [0,255]", ErrInvalidSpec, s.Opacity)
	}
	switch s.Kind {
	case KindText, KindTimestamp:
		if strings.TrimSpace(s.Content) == "" {
			return fmt.Errorf("%w: %s watermark requires content", ErrInvalidSpec, s.Kind)
		}
	case KindImage:
		if strings.TrimSpace(s.Content) == "" {
			return fmt.Errorf("%w: image watermark requires a reference", ErrInvalidSpec)
		}
	}
	// Location content may be empty: it degrades to a placeholder at render
	// time because geocoding is resolved outside this pipeline.
	return nil
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"watermark-camera/internal/domain"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/wb-go/wbf/zlog"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// ImageLoader resolves the content reference of an image watermark to a
// decoded raster. A nil loader means image watermarks cannot be resolved
// and degrade to text.
type ImageLoader func(ref string) (image.Image, error)

// Engine renders a watermark set onto a raster. It never mutates the input
// image: Composite always returns a freshly allocated RGBA, even for an
// empty set, because the caller reuses the original independently.
type Engine struct {
	font   *truetype.Font
	load   ImageLoader
	now    func() time.Time
	logger *zlog.Zerolog
}

func NewEngine(load ImageLoader, logger *zlog.Zerolog) *Engine {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		// goregular is embedded and known-good; a parse failure means text
		// specs will be skipped at render time.
		f = nil
	}
	return &Engine{
		font:   f,
		load:   load,
		now:    time.Now,
		logger: logger,
	}
}

// Composite draws every enabled, valid spec onto a copy of img in set
// order. A single spec's failure is logged and skipped; it neither aborts
// the remaining specs nor discards work already drawn.
func (e *Engine) Composite(img image.Image, specs []domain.WatermarkSpec) *image.RGBA {
	base := cloneRGBA(img)
	for i, spec := range specs {
		if !spec.Enabled {
			continue
		}
		if err := spec.Validate(); err != nil {
			e.logger.Warn().Err(err).Int("index", i).Msg("Skipping invalid watermark")
			continue
		}
		if err := e.renderSpec(base, spec); err != nil {
			e.logger.Warn().Err(err).Int("index", i).Str("kind", string(spec.Kind)).Msg("Skipping watermark that failed to render")
		}
	}
	return base
}

func (e *Engine) renderSpec(base *image.RGBA, spec domain.WatermarkSpec) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic: %v", r)
		}
	}()

	if spec.Kind == domain.KindImage {
		if e.load != nil {
			overlay, loadErr := e.load(spec.Content)
			if loadErr == nil {
				return e.renderImage(base, spec, overlay)
			}
			e.logger.Debug().Err(loadErr).Str("ref", spec.Content).Msg("Image watermark unresolved, degrading to text")
		}
		// Unresolved reference degrades to the kind's display name.
		return e.renderText(base, spec, spec.Kind.DisplayName())
	}
	return e.renderText(base, spec, e.resolveContent(spec))
}

func (e *Engine) renderText(base *image.RGBA, spec domain.WatermarkSpec, text string) error {
	if e.font == nil {
		return ErrNoFont
	}
	if text == "" {
		return fmt.Errorf("%w: empty text", ErrContentResolution)
	}

	bounds := base.Bounds()
	sizePx := float64(bounds.Dx()) * spec.Scale
	if sizePx < 1 {
		sizePx = 1
	}

	tile, baseline, err := e.renderTextTile(text, sizePx, spec)
	if err != nil {
		return err
	}

	// The spec position is the baseline origin of the unrotated text.
	anchorX := int(float64(bounds.Dx()) * spec.PositionX)
	anchorY := int(float64(bounds.Dy()) * spec.PositionY)
	placed := image.Rect(anchorX, anchorY-baseline, anchorX+tile.Bounds().Dx(), anchorY-baseline+tile.Bounds().Dy())

	if spec.RotationDegrees != 0 {
		rotated := rotateTile(tile, spec.RotationDegrees)
		// Rotation is about the tile center; keep the center fixed.
		cx := placed.Min.X + placed.Dx()/2
		cy := placed.Min.Y + placed.Dy()/2
		placed = image.Rect(
			cx-rotated.Bounds().Dx()/2,
			cy-rotated.Bounds().Dy()/2,
			cx+rotated.Bounds().Dx()-rotated.Bounds().Dx()/2,
			cy+rotated.Bounds().Dy()-rotated.Bounds().Dy()/2,
		)
		tile = rotated
	}

	draw.Draw(base, placed.Intersect(bounds), tile, tileOffset(placed, bounds), draw.Over)
	return nil
}

// renderTextTile draws the text (shadow pass first, when enabled) into a
// transparent tile and returns the tile plus the baseline's y offset inside
// it.
func (e *Engine) renderTextTile(text string, sizePx float64, spec domain.WatermarkSpec) (*image.RGBA, int, error) {
	face := truetype.NewFace(e.font, &truetype.Options{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	advance := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()

	// The shadow is offset by 2% of the glyph size in both axes.
	shadowOffset := 0
	if spec.HasShadow {
		shadowOffset = int(math.Ceil(sizePx * 0.02))
		if shadowOffset < 1 {
			shadowOffset = 1
		}
	}

	tile := image.NewRGBA(image.Rect(0, 0, advance+shadowOffset+2, ascent+descent+shadowOffset+2))

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(e.font)
	c.SetFontSize(sizePx)
	c.SetClip(tile.Bounds())
	c.SetDst(tile)
	c.SetHinting(font.HintingFull)

	if spec.HasShadow {
		c.SetSrc(image.NewUniform(spec.ShadowColor.WithAlpha(uint8(spec.Opacity / 2))))
		if _, err := c.DrawString(text, freetype.Pt(shadowOffset, ascent+shadowOffset)); err != nil {
			return nil, 0, fmt.Errorf("failed to draw shadow: %w", err)
		}
	}

	c.SetSrc(image.NewUniform(spec.Color.WithAlpha(uint8(spec.Opacity))))
	if _, err := c.DrawString(text, freetype.Pt(0, ascent)); err != nil {
		return nil, 0, fmt.Errorf("failed to draw text: %w", err)
	}

	return tile, ascent, nil
}

func (e *Engine) renderImage(base *image.RGBA, spec domain.WatermarkSpec, overlay image.Image) error {
	bounds := base.Bounds()
	ob := overlay.Bounds()
	if ob.Dx() == 0 || ob.Dy() == 0 {
		return fmt.Errorf("%w: empty overlay image", ErrContentResolution)
	}

	targetW := int(float64(bounds.Dx()) * spec.Scale)
	if targetW < 1 {
		targetW = 1
	}
	targetH := int(float64(targetW) * float64(ob.Dy()) / float64(ob.Dx()))
	if targetH < 1 {
		targetH = 1
	}

	tile := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(tile, tile.Bounds(), overlay, ob, xdraw.Over, nil)

	if spec.RotationDegrees != 0 {
		tile = rotateTile(tile, spec.RotationDegrees)
	}

	anchorX := int(float64(bounds.Dx()) * spec.PositionX)
	anchorY := int(float64(bounds.Dy()) * spec.PositionY)
	placed := image.Rect(anchorX, anchorY, anchorX+tile.Bounds().Dx(), anchorY+tile.Bounds().Dy())

	mask := image.NewUniform(color.Alpha{A: uint8(spec.Opacity)})
	draw.DrawMask(base, placed.Intersect(bounds), tile, tileOffset(placed, bounds), mask, image.Point{}, draw.Over)
	return nil
}

// tileOffset maps the clipped placement rect back into tile coordinates.
func tileOffset(placed, bounds image.Rectangle) image.Point {
	clipped := placed.Intersect(bounds)
	return image.Pt(clipped.Min.X-placed.Min.X, clipped.Min.Y-placed.Min.Y)
}

// rotateTile rotates an RGBA tile clockwise by the given angle, expanding
// the bounds to fit. Sampling is nearest-neighbor over the inverse mapping;
// pixels outside the source stay transparent.
func rotateTile(src *image.RGBA, degrees float64) *image.RGBA {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	sw := float64(src.Bounds().Dx())
	sh := float64(src.Bounds().Dy())
	dw := int(math.Ceil(math.Abs(sw*cos) + math.Abs(sh*sin)))
	dh := int(math.Ceil(math.Abs(sw*sin) + math.Abs(sh*cos)))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	scx, scy := sw/2, sh/2
	dcx, dcy := float64(dw)/2, float64(dh)/2

	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			// Inverse rotation: destination pixel back to source space.
			dx := float64(x) + 0.5 - dcx
			dy := float64(y) + 0.5 - dcy
			sx := int(dx*cos + dy*sin + scx)
			sy := int(-dx*sin + dy*cos + scy)
			if sx >= 0 && sy >= 0 && sx < int(sw) && sy < int(sh) {
				dst.SetRGBA(x, y, src.RGBAAt(sx, sy))
			}
		}
	}
	return dst
}

func cloneRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"watermark-camera/internal/domain"
	"watermark-camera/internal/usecase/compositor"
	"watermark-camera/internal/usecase/orientation"

	"github.com/wb-go/wbf/zlog"
)

// Orchestrator runs the three-artifact save sequence for one capture:
// private original, gallery original (orientation corrected), gallery
// watermarked. Each step returns a result instead of aborting the rest, so
// degraded completions are first-class outcomes rather than catch blocks.
type Orchestrator struct {
	store      photoStore
	engine     *compositor.Engine
	reconciler *orientation.Reconciler
	logger     *zlog.Zerolog
	quality    int
}

func NewOrchestrator(store photoStore, engine *compositor.Engine, reconciler *orientation.Reconciler, logger *zlog.Zerolog) *Orchestrator {
	return &Orchestrator{
		store:      store,
		engine:     engine,
		reconciler: reconciler,
		logger:     logger,
		quality:    domain.DefaultJPEGQuality,
	}
}

// Process drives one capture to a terminal state. It always returns an
// outcome; errors along the way downgrade the state but never propagate as
// a bare error, so the caller always has something to report.
func (o *Orchestrator) Process(ctx context.Context, capture *domain.Capture) *domain.PersistenceOutcome {
	outcome := &domain.PersistenceOutcome{
		CaptureID: capture.ID,
		Artifacts: make(map[domain.ArtifactKind]string),
	}

	// Step 1: verbatim copy to the private store. A failure here is logged
	// only; the private copy is a convenience, not a user-visible guarantee.
	privatePath := domain.PrivateOriginalPath(capture.CapturedAt)
	if err := o.store.SaveObject(ctx, privatePath, bytes.NewReader(capture.Raw), int64(len(capture.Raw)), "image/jpeg"); err != nil {
		o.logger.Warn().Err(err).Str("capture_id", capture.ID).Str("path", privatePath).Msg("Failed to save private original")
	} else {
		outcome.Artifacts[domain.ArtifactPrivateOriginal] = privatePath
	}

	// Step 2: decode and make the pixels upright.
	img, _, err := image.Decode(bytes.NewReader(capture.Raw))
	if err != nil {
		o.logger.Error().Err(err).Str("capture_id", capture.ID).Msg("Failed to decode capture")
		return o.fallbackRaw(ctx, capture, outcome, fmt.Sprintf("photo could not be decoded: %v", err))
	}

	angle := o.reconciler.Decide(img.Bounds().Dx(), img.Bounds().Dy(), capture.Exif, capture.Device)
	upright := o.reconciler.Apply(img, angle)
	img = nil

	o.logger.Debug().
		Str("capture_id", capture.ID).
		Int("rotation", angle).
		Int("exif", int(capture.Exif)).
		Str("device", string(capture.Device)).
		Msg("Orientation reconciled")

	// Re-encoding writes no EXIF segment, so the stored orientation tag is
	// implicitly Normal and always agrees with the rotated pixels.
	originalPath := domain.GalleryOriginalPath(capture.CapturedAt)
	originalErr := o.saveJPEG(ctx, originalPath, upright)
	if originalErr != nil {
		o.logger.Error().Err(originalErr).Str("capture_id", capture.ID).Str("path", originalPath).Msg("Failed to save gallery original")
	} else {
		outcome.Artifacts[domain.ArtifactGalleryOriginal] = originalPath
	}

	// Step 3: composite the watermark snapshot taken at capture time.
	watermarked := o.engine.Composite(upright, capture.Watermarks)
	upright = nil

	watermarkedPath := domain.GalleryWatermarkedPath(capture.CapturedAt)
	watermarkedErr := o.saveJPEG(ctx, watermarkedPath, watermarked)
	watermarked = nil
	if watermarkedErr != nil {
		o.logger.Error().Err(watermarkedErr).Str("capture_id", capture.ID).Str("path", watermarkedPath).Msg("Failed to save gallery watermarked")
	} else {
		outcome.Artifacts[domain.ArtifactGalleryWatermarked] = watermarkedPath
	}

	switch {
	case originalErr == nil && watermarkedErr == nil:
		outcome.State = domain.StateCompleted
		outcome.Message = "saved original and watermarked photos to the gallery"
	case originalErr == nil:
		outcome.State = domain.StateDegradedCompleted
		outcome.Message = "saved the original photo, but watermarking failed"
	case watermarkedErr == nil:
		outcome.State = domain.StateDegradedCompleted
		outcome.Message = "saved the watermarked photo, but the gallery original failed"
	default:
		return o.fallbackRaw(ctx, capture, outcome, "both gallery saves failed")
	}

	o.logger.Info().
		Str("capture_id", capture.ID).
		Str("state", string(outcome.State)).
		Int("artifacts", len(outcome.Artifacts)).
		Msg("Capture persisted")
	return outcome
}

// fallbackRaw is the last resort when neither gallery artifact could be
// produced: store the unprocessed capture bytes so the photo is not lost.
func (o *Orchestrator) fallbackRaw(ctx context.Context, capture *domain.Capture, outcome *domain.PersistenceOutcome, reason string) *domain.PersistenceOutcome {
	path := domain.GalleryOriginalPath(capture.CapturedAt)
	err := o.store.SaveObject(ctx, path, bytes.NewReader(capture.Raw), int64(len(capture.Raw)), "image/jpeg")
	if err != nil {
		o.logger.Error().Err(err).Str("capture_id", capture.ID).Msg("Raw fallback save failed")
		outcome.State = domain.StateFailed
		outcome.Message = fmt.Sprintf("photo was not saved to the gallery: %s", reason)
		return outcome
	}

	outcome.Artifacts[domain.ArtifactGalleryOriginal] = path
	outcome.State = domain.StateDegradedCompleted
	outcome.Message = fmt.Sprintf("photo saved without orientation correction or watermarks: %s", reason)
	o.logger.Warn().Str("capture_id", capture.ID).Str("path", path).Msg("Capture persisted via raw fallback")
	return outcome
}

func (o *Orchestrator) saveJPEG(ctx context.Context, path string, img image.Image) error {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: o.quality}); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := o.store.SaveObject(ctx, path, buf, int64(buf.Len()), "image/jpeg"); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStorage, path, err)
	}
	return nil
}

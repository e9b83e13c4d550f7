package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"watermark-camera/internal/domain"
	"watermark-camera/internal/usecase/orientation"
	"watermark-camera/internal/usecase/watermarks"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// Usecase accepts raw captures from the camera collaborator, stages the
// bytes, and queues a processing task carrying a snapshot of the current
// watermark set. Edits made after submission only affect later captures.
type Usecase struct {
	repo     capturesRepository
	fileRepo fileRepository
	producer taskProducer
	registry *watermarks.Registry
	monitor  *orientation.Monitor
	logger   *zlog.Zerolog
	retries  retry.Strategy
}

func NewUsecase(repo capturesRepository, fileRepo fileRepository, producer taskProducer, registry *watermarks.Registry, monitor *orientation.Monitor, logger *zlog.Zerolog, retries retry.Strategy) *Usecase {
	return &Usecase{
		repo:     repo,
		fileRepo: fileRepo,
		producer: producer,
		registry: registry,
		monitor:  monitor,
		logger:   logger,
		retries:  retries,
	}
}

type SubmitInput struct {
	Data       io.Reader
	Size       int64
	Exif       domain.ExifOrientation
	Device     domain.OrientationReading
	Location   string
	CapturedAt time.Time
}

// Submit stages the raw bytes and enqueues the capture for the worker pool.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*domain.CaptureTask, error) {
	id := uuid.New().String()
	stagedPath := domain.StagedPath(id)

	if err := u.fileRepo.SaveObject(ctx, stagedPath, in.Data, in.Size, "image/jpeg"); err != nil {
		u.logger.Error().Err(err).Str("capture_id", id).Msg("Failed to stage capture")
		return nil, fmt.Errorf("failed to stage capture: %w", err)
	}

	if err := u.repo.Save(ctx, id, domain.StateReceived); err != nil {
		return nil, fmt.Errorf("failed to save capture record: %w", err)
	}

	capturedAt := in.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	task := &domain.CaptureTask{
		ID:         id,
		StagedPath: stagedPath,
		Exif:       in.Exif,
		Device:     in.Device,
		Location:   in.Location,
		CapturedAt: capturedAt,
		Watermarks: u.registry.Active(),
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal capture task: %w", err)
	}

	if err := u.producer.Send(ctx, u.retries, []byte(id), payload); err != nil {
		u.logger.Error().Err(err).Str("capture_id", id).Msg("Failed to enqueue capture task")
		return nil, fmt.Errorf("failed to enqueue capture task: %w", err)
	}

	u.logger.Info().
		Str("capture_id", id).
		Int("watermarks", len(task.Watermarks)).
		Str("device", string(task.Device)).
		Msg("Capture submitted for processing")
	return task, nil
}

// Get returns the recorded state and artifact paths for one capture.
func (u *Usecase) Get(ctx context.Context, id string) (*domain.CaptureRecord, error) {
	rec, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get capture: %w", err)
	}
	return rec, nil
}

// ObserveGravity feeds one gravity-angle sample into the session's
// orientation monitor and returns the registered reading.
func (u *Usecase) ObserveGravity(angleDegrees float64) domain.OrientationReading {
	return u.monitor.Update(angleDegrees)
}

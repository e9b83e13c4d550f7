package captures

import (
	"context"

	"watermark-camera/internal/domain"
	capture_uc "watermark-camera/internal/usecase/capture"
)

type captureUsecase interface {
	Submit(ctx context.Context, in capture_uc.SubmitInput) (*domain.CaptureTask, error)
	Get(ctx context.Context, id string) (*domain.CaptureRecord, error)
	ObserveGravity(angleDegrees float64) domain.OrientationReading
}

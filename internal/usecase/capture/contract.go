package capture

import (
	"context"
	"io"

	"watermark-camera/internal/domain"

	"github.com/wb-go/wbf/retry"
)

type capturesRepository interface {
	Save(ctx context.Context, id string, state domain.PersistenceState) error
	GetByID(ctx context.Context, id string) (*domain.CaptureRecord, error)
}

type fileRepository interface {
	SaveObject(ctx context.Context, path string, data io.Reader, size int64, contentType string) error
}

type taskProducer interface {
	Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error
}

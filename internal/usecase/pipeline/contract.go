package pipeline

import (
	"context"
	"io"
)

type photoStore interface {
	SaveObject(ctx context.Context, path string, data io.Reader, size int64, contentType string) error
}

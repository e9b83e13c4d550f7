package capture

import "errors"

var (
	ErrCaptureNotFound = errors.New("capture not found")
)

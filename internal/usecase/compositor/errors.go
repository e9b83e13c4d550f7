package compositor

import "errors"

var (
	ErrNoFont            = errors.New("no usable font")
	ErrContentResolution = errors.New("content resolution failed")
)

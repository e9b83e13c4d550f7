package domain

import "errors"

var (
	ErrInvalidSpec        = errors.New("invalid watermark spec")
	ErrUnknownOrientation = errors.New("unknown orientation value")
)

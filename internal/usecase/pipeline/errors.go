package pipeline

import "errors"

var (
	ErrStorage = errors.New("storage write failed")
)

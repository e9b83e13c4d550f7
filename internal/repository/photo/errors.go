package photo

import "errors"

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrStorage        = errors.New("storage error")
)

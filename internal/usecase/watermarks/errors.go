package watermarks

import "errors"

var (
	ErrIndexOutOfRange = errors.New("watermark index out of range")
)

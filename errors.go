package respcodec

import "errors"

// ErrInvalidConfig indicates invalid configuration options
var ErrInvalidConfig = errors.New("invalid configuration")

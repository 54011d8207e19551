package async

import "errors"

// ErrPanicked completes a Future whose function panicked.
var ErrPanicked = errors.New("async: computation panicked")

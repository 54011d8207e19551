package server

import "errors"

var (
	ErrStart       = errors.New("server: failed to start")
	ErrShutdown    = errors.New("server: failed to shut down gracefully")
	ErrNilHandler  = errors.New("server: handler is nil")
	ErrBadRequest  = errors.New("server: malformed validation request")
	ErrMissingRule = errors.New("server: rules are required")
)

package entity

import "errors"

var (
	// ErrTimeout is wrapped by every action or wait that gave up after its
	// timeout elapsed. The wrapping error names the selector or condition.
	ErrTimeout = errors.New("timeout")

	// ErrClosed is returned when a page, context or session is used after it
	// (or its owner) was closed.
	ErrClosed = errors.New("target closed")

	// ErrUnsupported marks a capability the active driver does not provide.
	ErrUnsupported = errors.New("not supported by driver")

	ErrNotFound   = errors.New("element not found")
	ErrInvalidURL = errors.New("invalid url")
)

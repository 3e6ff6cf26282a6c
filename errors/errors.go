package errors

import "fmt"

// The four rejection categories surfaced to clients. Every refused action
// wraps one of these so the transport can map it to an error_message.
var (
	ErrValidation    = fmt.Errorf("validation failed")
	ErrPermission    = fmt.Errorf("permission denied")
	ErrNotFound      = fmt.Errorf("not found")
	ErrStateConflict = fmt.Errorf("state conflict")
)

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrOnlyCensoredFiles = fmt.Errorf("censored directory contains directories")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
)

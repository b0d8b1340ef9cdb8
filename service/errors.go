package service

import (
	"errors"
	"fmt"
)

// Error taxonomy. Handlers map these onto HTTP/business codes; the socket
// layer maps them onto private error/muted events.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotMember        = fmt.Errorf("%w: not a community member", ErrPermissionDenied)
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrMuted            = errors.New("muted")

	// Live session state errors. The texts double as the machine-readable
	// codes the live endpoints return.
	ErrAlreadyEnded = errors.New("already-ended")
	ErrNoRecording  = errors.New("no-recording")
	ErrAlreadySaved = errors.New("already-saved")
)

package common

import "errors"

// Sentinel error kinds. Services wrap these with fmt.Errorf("%w: ...") so
// handlers can map any failure onto a response code with errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrInvalid     = errors.New("invalid request")
	ErrRateLimited = errors.New("rate limited")
	ErrCodeExpired = errors.New("verification code expired")
	ErrCodeInvalid = errors.New("verification code invalid or expired")
	ErrTransport   = errors.New("sms transport failure")
)

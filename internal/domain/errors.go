package domain

import "errors"

// Sentinel errors for the domain layer.
//
//nolint:gochecknoglobals // sentinel errors
var (
	ErrInvalidSender  = errors.New("domain: invalid sender")
	ErrInvalidSession = errors.New("domain: invalid session")
)

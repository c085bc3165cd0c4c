// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client/flow layers.
var (
	// ErrNoSession indicates no token is stored locally (login required).
	ErrNoSession = errors.New("no session (login required)")

	// ErrUnauthorized indicates the backend rejected the supplied credentials or token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested entity does not exist on the backend.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientCredits indicates the account balance cannot cover a job charge.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

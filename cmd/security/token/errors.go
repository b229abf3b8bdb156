package token

import "errors"

var (
	// ErrInvalidToken covers bad signatures, malformed structure, expiry in
	// the past, and non-integer subjects. Callers get one indistinguishable
	// failure on purpose.
	ErrInvalidToken = errors.New("invalid token")

	// ErrConfig reports unusable token configuration (e.g. missing secret).
	ErrConfig = errors.New("invalid token configuration")
)

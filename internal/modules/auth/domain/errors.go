package domain

import "errors"

var (
	// ErrInvalidToken means the token was checked and rejected.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrValidationFailed means the token could not be checked at all.
	ErrValidationFailed = errors.New("token validation failed")
)

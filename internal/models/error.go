package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternalServer = errors.New("internal server error")

	// Login decision errors
	ErrInvalidLocation = errors.New("missing or malformed location")
	ErrSuspiciousLogin = errors.New("suspicious login detected")
)

package domain

import "errors"

// Input and identity errors.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access forbidden")
	ErrUnsupportedHash    = errors.New("unsupported password hash format")
)

// Token errors.
var (
	ErrTokenMalformed  = errors.New("malformed token")
	ErrTokenExpired    = errors.New("token expired")
	ErrSubjectMismatch = errors.New("token subject mismatch")
)

// Task workflow errors.
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrWriteConflict is returned by a conditional status update whose
	// expected current status no longer matches the stored record.
	ErrWriteConflict = errors.New("concurrent update conflict")
)

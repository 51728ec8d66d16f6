package domain

import "errors"

var (
	// ErrValidation marks input that is missing required fields or carries an unknown enum value.
	ErrValidation = errors.New("validation error")
	// ErrMissingField marks an admin response without a selected status or time.
	ErrMissingField = errors.New("missing field")
	ErrNotFound     = errors.New("request not found")
	// ErrBackendUnavailable is returned by the remote backend for any transport or protocol failure.
	// The fallback store recovers from it, callers of the store never see it.
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrAlreadyAnswered    = errors.New("request already answered")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

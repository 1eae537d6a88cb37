// Package common defines sentinel errors shared by the upload service layers.
// Callers should use errors.Is to match these values; lower layers wrap them
// with context via fmt.Errorf("...: %w", err).
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors (client input, surfaced as 4xx).
	ErrValidation        = errors.New("validation error")
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrSizeExceeded      = errors.New("file size exceeds limit")
	ErrInvalidPartNumber = errors.New("invalid part number")

	// Object store errors.
	ErrStoreUnavailable = errors.New("object store unavailable")
	ErrInvalidParts     = errors.New("incomplete or invalid parts")

	// Service-level errors.
	ErrInternal = errors.New("internal error")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// IsClientError reports whether err originates from invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrSizeExceeded) ||
		errors.Is(err, ErrInvalidPartNumber)
}

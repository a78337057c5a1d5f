package domain

import "errors"

var (
	// ErrBackendUnavailable signals a failed call to the catalog backend.
	ErrBackendUnavailable = errors.New("catalog backend unavailable")
	// ErrUnauthorized signals a rejected API key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCriteria signals search criteria the backend cannot serve.
	ErrInvalidCriteria = errors.New("invalid search criteria")
)

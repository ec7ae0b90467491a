// Package common defines shared constants and sentinel errors used across
// the capture, dispatch and history layers of qrscan and by the history
// backend. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Auth errors (invalid or malformed token).
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrorForbidden    = errors.New("forbidden")

	// Request validation errors.
	ErrorEmptyCode    = errors.New("code is empty")
	ErrorEmptyContent = errors.New("content is empty")

	// Capture session errors.
	ErrPermissionDenied      = errors.New("camera permission denied")
	ErrCapabilityUnsupported = errors.New("capability unsupported")
	ErrLockUnavailable       = errors.New("device configuration lock unavailable")

	// Remote history errors.
	ErrAuthCredentialUnavailable = errors.New("auth credential unavailable")
	ErrNetworkFailure            = errors.New("network failure")
	ErrInvalidResponseShape      = errors.New("invalid response shape")

	// Redirect errors.
	ErrInvalidURIFormat = errors.New("invalid uri format")
)

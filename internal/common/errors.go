// Package common defines shared constants and sentinel errors used across
// client and server layers of TokenQuest. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Ledger errors.
	ErrInsufficientEnergy = errors.New("insufficient energy")
	ErrPersistence        = errors.New("persistence error")
	ErrAlreadyResolved    = errors.New("already resolved")

	// Validation errors (bad ids, unknown kinds, empty titles...).
	ErrValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	ErrorAlreadyExists = errors.New("already exists")
)

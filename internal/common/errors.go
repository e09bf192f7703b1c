// Package common defines shared constants and sentinel errors used across
// the server layers of SuggestionApp. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Suggestion-specific errors.
	ErrSelfVote            = errors.New("authors cannot vote on their own suggestion")
	ErrConflictingDecision = errors.New("suggestion cannot be both approved and rejected")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

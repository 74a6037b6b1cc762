package domain

import "errors"

// Failure taxonomy. Everything a handler can surface is one of these,
// so the response mapper stays a single table.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrMethodNotAllowed   = errors.New("method not allowed")
	ErrRateLimited        = errors.New("rate limited")
)

// BusinessRuleError is a declared domain-level violation. It carries a
// caller-facing message and, optionally, per-field errors; the mapper
// renders it as a 422 envelope instead of a generic failure.
type BusinessRuleError struct {
	Message string
	Fields  map[string][]string
}

func (e *BusinessRuleError) Error() string { return e.Message }

func NewBusinessRuleError(message string, fields map[string][]string) *BusinessRuleError {
	return &BusinessRuleError{Message: message, Fields: fields}
}

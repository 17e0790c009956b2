// Package service provides application-level services orchestrating the
// domain entities, persistence and background processing.
package service

import (
	"errors"
	"fmt"

	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

// Common service errors. Service methods return these sentinels for
// expected conditions; unexpected failures are wrapped in a ServiceError.
// The API layer maps both to HTTP status codes.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrStoryNotFound indicates the requested story does not exist.
	ErrStoryNotFound = errors.New("story not found")

	// ErrCharacterNotFound indicates the requested character does not exist.
	ErrCharacterNotFound = errors.New("character not found")

	// ErrGoalNotFound indicates the requested learning goal does not exist.
	ErrGoalNotFound = errors.New("learning goal not found")

	// ErrNotOwned indicates a resource is owned by a different user than the
	// one making the request. Maps to HTTP 403.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials indicates a failed login. It deliberately does
	// not distinguish unknown emails from wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken indicates a registration or update collides with an
	// existing account's email.
	ErrEmailTaken = errors.New("email address is already registered")
)

// ServiceError wraps unexpected errors with the operation that failed.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "register_user").
	Operation string
	// Message is a human-readable description of the failure.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// wrapError maps store sentinels to service sentinels and wraps anything
// else in a ServiceError. Service sentinels and domain errors pass through
// unchanged so handlers can match them.
func wrapError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrStoryNotFound),
		errors.Is(err, ErrCharacterNotFound),
		errors.Is(err, ErrGoalNotFound),
		errors.Is(err, ErrNotOwned),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrEmailTaken):
		return err
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrStoryNotFound):
		return ErrStoryNotFound
	case errors.Is(err, store.ErrCharacterNotFound):
		return ErrCharacterNotFound
	case errors.Is(err, store.ErrGoalNotFound):
		return ErrGoalNotFound
	case errors.Is(err, store.ErrEmailExists):
		return ErrEmailTaken
	}

	return &ServiceError{Operation: operation, Message: message, Err: err}
}

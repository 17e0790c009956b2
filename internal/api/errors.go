package api

import (
	"errors"
	"net/http"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/service"
	"github.com/dschilow/Avatales-Backend-sub001/internal/service/auth"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization and account-state errors
	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, domain.ErrAccountLocked),
		errors.Is(err, domain.ErrAccountDeactivated),
		errors.Is(err, domain.ErrEmailNotVerified),
		errors.Is(err, domain.ErrStoryQuotaExhausted),
		errors.Is(err, domain.ErrCharacterQuotaReached):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrStoryNotFound),
		errors.Is(err, service.ErrCharacterNotFound),
		errors.Is(err, service.ErrGoalNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, domain.ErrStoryNotPublishable):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyDisplayName),
		errors.Is(err, domain.ErrChildTooOld),
		errors.Is(err, domain.ErrChildNotLinked),
		errors.Is(err, domain.ErrOldPasswordRequired),
		errors.Is(err, domain.ErrInvalidSubscriptionTier),
		errors.Is(err, domain.ErrEmptyCharacterName),
		errors.Is(err, domain.ErrEmptyTraitName),
		errors.Is(err, domain.ErrEmptyMemory),
		errors.Is(err, domain.ErrNegativeExperience),
		errors.Is(err, domain.ErrEmptyStoryTitle),
		errors.Is(err, domain.ErrEmptyStoryPrompt),
		errors.Is(err, domain.ErrRatingOutOfRange),
		errors.Is(err, domain.ErrEmptyGoalTitle),
		errors.Is(err, domain.ErrEmptyGoalCategory),
		errors.Is(err, domain.ErrInvalidGoalDifficulty),
		errors.Is(err, domain.ErrInvalidGoalPriority),
		errors.Is(err, domain.ErrProgressOutOfRange),
		errors.Is(err, domain.ErrEmptyEvidence):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly message for the
// error. Internal details never reach the client.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken):
		return "Invalid refresh token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, domain.ErrAccountLocked):
		return "Account is temporarily locked"

	case errors.Is(err, domain.ErrAccountDeactivated):
		return "Account is deactivated"

	case errors.Is(err, domain.ErrEmailNotVerified):
		return "Email address is not verified"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not have access to this resource"

	case errors.Is(err, domain.ErrStoryQuotaExhausted):
		return "Monthly story limit reached"

	case errors.Is(err, domain.ErrCharacterQuotaReached):
		return "Character limit reached for your subscription"

	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, service.ErrStoryNotFound):
		return "Story not found"

	case errors.Is(err, service.ErrCharacterNotFound):
		return "Character not found"

	case errors.Is(err, service.ErrGoalNotFound):
		return "Learning goal not found"

	case errors.Is(err, service.ErrEmailTaken):
		return "Email already exists"

	case errors.Is(err, domain.ErrStoryNotPublishable):
		return "Story cannot be published yet"

	default:
		if MapErrorToStatusCode(err) == http.StatusBadRequest {
			// Domain validation messages carry no sensitive detail.
			return err.Error()
		}
		return "An unexpected error occurred"
	}
}

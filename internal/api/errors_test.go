package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/service"
	"github.com/dschilow/Avatales-Backend-sub001/internal/service/auth"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"account locked", domain.ErrAccountLocked, http.StatusForbidden},
		{"story quota", domain.ErrStoryQuotaExhausted, http.StatusForbidden},
		{"story not found", service.ErrStoryNotFound, http.StatusNotFound},
		{"store not found", store.ErrCharacterNotFound, http.StatusNotFound},
		{"email taken", service.ErrEmailTaken, http.StatusConflict},
		{"not publishable", domain.ErrStoryNotPublishable, http.StatusConflict},
		{"bad rating", domain.ErrRatingOutOfRange, http.StatusBadRequest},
		{"bad progress", domain.ErrProgressOutOfRange, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestMapErrorToStatusCodeUnwrapsServiceErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("create_story failed: %w", domain.ErrStoryQuotaExhausted)
	assert.Equal(t, http.StatusForbidden, MapErrorToStatusCode(wrapped))
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Invalid credentials", GetSafeErrorMessage(service.ErrInvalidCredentials))
	assert.Equal(t, "Story not found", GetSafeErrorMessage(service.ErrStoryNotFound))
	assert.Equal(t, "Email already exists", GetSafeErrorMessage(service.ErrEmailTaken))
	assert.Equal(t, "Monthly story limit reached", GetSafeErrorMessage(domain.ErrStoryQuotaExhausted))

	// Unknown internals never leak their message.
	leaky := errors.New("pq: connection to postgres://user:secret@db failed")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(leaky))

	// Validation errors are safe to pass through.
	assert.Equal(t, domain.ErrRatingOutOfRange.Error(), GetSafeErrorMessage(domain.ErrRatingOutOfRange))
}

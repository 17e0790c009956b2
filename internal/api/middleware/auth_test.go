package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dschilow/Avatales-Backend-sub001/internal/config"
	"github.com/dschilow/Avatales-Backend-sub001/internal/service/auth"
)

func newTestJWTService(t *testing.T, tokenLifetime time.Duration) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-that-is-32-chars-long!!",
		TokenLifetime:        tokenLifetime,
		RefreshTokenLifetime: 24 * time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r)
		require.True(t, ok)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(userID.String()))
	})
}

func TestAuthenticateValidToken(t *testing.T) {
	t.Parallel()

	jwtService := newTestJWTService(t, time.Hour)
	userID := uuid.New()
	token, err := jwtService.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	handler := NewAuthMiddleware(jwtService).Authenticate(protectedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestAuthenticateMissingHeader(t *testing.T) {
	t.Parallel()

	handler := NewAuthMiddleware(newTestJWTService(t, time.Hour)).Authenticate(protectedEcho(t))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	t.Parallel()

	handler := NewAuthMiddleware(newTestJWTService(t, time.Hour)).Authenticate(protectedEcho(t))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid authorization format")
}

func TestAuthenticateExpiredToken(t *testing.T) {
	t.Parallel()

	// Lifetime far enough in the past to clear clock-skew leeway.
	expiredService := newTestJWTService(t, -10*time.Minute)
	token, err := expiredService.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	handler := NewAuthMiddleware(expiredService).Authenticate(protectedEcho(t))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	t.Parallel()

	jwtService := newTestJWTService(t, time.Hour)
	refresh, err := jwtService.GenerateRefreshToken(context.Background(), uuid.New())
	require.NoError(t, err)

	handler := NewAuthMiddleware(jwtService).Authenticate(protectedEcho(t))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuthenticateTamperedToken(t *testing.T) {
	t.Parallel()

	jwtService := newTestJWTService(t, time.Hour)
	token, err := jwtService.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	handler := NewAuthMiddleware(jwtService).Authenticate(protectedEcho(t))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

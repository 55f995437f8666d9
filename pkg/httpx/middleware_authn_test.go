package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/probatio/probatio/pkg/cryptox"
	"github.com/probatio/probatio/pkg/httpx"
)

const (
	authnSecret = "test-staff-secret"
	authnIssuer = "test-dashboard"
)

func staffHandler(t *testing.T, apiKeyHash string) (http.Handler, *string) {
	t.Helper()

	var gotStaffID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStaffID = httpx.StaffIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return httpx.StaffAuthMiddleware([]byte(authnSecret), authnIssuer, apiKeyHash)(inner), &gotStaffID
}

func mintStaffJWT(t *testing.T, issuer string, ttl time.Duration) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "staff-42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(authnSecret))
	require.NoError(t, err)
	return signed
}

func authnRequest(bearer string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/documents/x", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req
}

func TestStaffAuthMiddleware(t *testing.T) {
	t.Run("valid jwt passes with its subject", func(t *testing.T) {
		handler, staffID := staffHandler(t, "")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authnRequest(mintStaffJWT(t, authnIssuer, time.Hour)))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "staff-42", *staffID)
	})

	t.Run("missing bearer is unauthorized", func(t *testing.T) {
		handler, _ := staffHandler(t, "")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authnRequest(""))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("wrong issuer is unauthorized", func(t *testing.T) {
		handler, _ := staffHandler(t, "")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authnRequest(mintStaffJWT(t, "someone-else", time.Hour)))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired jwt is unauthorized", func(t *testing.T) {
		handler, _ := staffHandler(t, "")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authnRequest(mintStaffJWT(t, authnIssuer, -time.Hour)))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("service api key verifies against its at-rest hash", func(t *testing.T) {
		hash, err := cryptox.HashCredential("svc-key-material")
		require.NoError(t, err)
		handler, staffID := staffHandler(t, hash)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authnRequest("svc-key-material"))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, httpx.StaffAPIKeySubject, *staffID)
	})

	t.Run("wrong api key is unauthorized", func(t *testing.T) {
		hash, err := cryptox.HashCredential("svc-key-material")
		require.NoError(t, err)
		handler, _ := staffHandler(t, hash)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authnRequest("not-the-key"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("api key is rejected when none is configured", func(t *testing.T) {
		handler, _ := staffHandler(t, "")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authnRequest("svc-key-material"))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

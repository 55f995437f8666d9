package evidence_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestBackOfficeRequiresStaffJWT(t *testing.T) {
	f := setupServer(t)

	t.Run("no token", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, f.baseURL+"/v1/documents", "", map[string]any{
			"kind": "agreement",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, f.baseURL+"/v1/documents", "not-a-jwt", nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "staff-e2e",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(staffSecret))
		require.NoError(t, err)

		resp := doJSON(t, http.MethodPost, f.baseURL+"/v1/documents", signed, nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    staffIssuer,
			Subject:   "staff-e2e",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(staffSecret))
		require.NoError(t, err)

		resp := doJSON(t, http.MethodPost, f.baseURL+"/v1/documents", signed, nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("service api key", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, f.baseURL+"/v1/documents", staffAPIKey, map[string]any{
			"kind":        "agreement",
			"employee_id": "emp-key",
			"recipient":   "worker@example.test",
			"subject":     "Notice",
			"body":        "Body.",
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = doJSON(t, http.MethodPost, f.baseURL+"/v1/documents", "not-the-api-key", nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRevokeKillsAccessToken(t *testing.T) {
	f := setupServer(t)
	docID, token := createDocument(t, f, "agreement", "")

	var revoked struct {
		Status string `json:"status"`
	}
	resp := doJSON(t, http.MethodPost, f.baseURL+"/v1/documents/"+docID+"/revoke", staffToken(t), nil, &revoked)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "revoked", revoked.Status)

	resp = doJSON(t, http.MethodPost, f.baseURL+"/v1/sign/"+token+"/accept", "", nil, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateDocumentValidation(t *testing.T) {
	f := setupServer(t)

	// Rebuttal without a tax id to validate against.
	resp := doJSON(t, http.MethodPost, f.baseURL+"/v1/documents", staffToken(t), map[string]any{
		"kind":        "rebuttal",
		"employee_id": "emp-e2e",
		"recipient":   "worker@example.test",
		"subject":     "Notice",
		"body":        "Body.",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	f := setupServer(t)

	var livez struct {
		Status string `json:"status"`
	}
	resp := doJSON(t, http.MethodGet, f.baseURL+"/livez", "", nil, &livez)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", livez.Status)

	var readyz struct {
		Status string `json:"status"`
		Checks struct {
			Database string `json:"database"`
		} `json:"checks"`
	}
	resp = doJSON(t, http.MethodGet, f.baseURL+"/readyz", "", nil, &readyz)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", readyz.Status)
	require.Equal(t, "ok", readyz.Checks.Database)
}

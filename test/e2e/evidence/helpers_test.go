package evidence_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/probatio/probatio/internal/evidence/clients"
	httpapi "github.com/probatio/probatio/internal/evidence/http"
	"github.com/probatio/probatio/internal/evidence/service"
	"github.com/probatio/probatio/internal/evidence/store/drivers/sqlite"
	"github.com/probatio/probatio/pkg/cryptox"
	"github.com/probatio/probatio/pkg/slogx"
)

const (
	staffSecret = "e2e-staff-secret"
	staffIssuer = "probatio-dashboard"
	staffAPIKey = "e2e-service-api-key"
)

// fixture runs the full service over an in-memory database, with httptest
// stand-ins for the timestamp authority, the ledger, and the notification
// gateway, so the real HTTP clients are exercised end to end.
type fixture struct {
	baseURL string

	mu            sync.Mutex
	notifications []notification
	authorityDown bool
	ledgerDown    bool

	escalation *service.EscalationService
}

type notification struct {
	Recipient  string            `json:"recipient"`
	DocumentID string            `json:"documentId"`
	Template   string            `json:"template"`
	Variables  map[string]string `json:"variables"`
}

func (f *fixture) lastOTPCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.notifications) - 1; i >= 0; i-- {
		if f.notifications[i].Template == "otp_code" {
			return f.notifications[i].Variables["code"]
		}
	}
	return ""
}

func setupServer(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{}

	authority := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		down := f.authorityDown
		f.mu.Unlock()
		if down {
			http.Error(w, "authority unavailable", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"timestamp":  time.Now().UTC(),
			"proofToken": "e2e-authority-proof",
		})
	}))
	t.Cleanup(authority.Close)

	ledger := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		down := f.ledgerDown
		f.mu.Unlock()
		if down {
			http.Error(w, "ledger unavailable", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"proofBlobEncoded": "ZTJlLWxlZGdlci1wcm9vZg==",
		})
	}))
	t.Cleanup(ledger.Close)

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n notification
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.notifications = append(f.notifications, n)
		f.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(gateway.Close)

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	anchor := &service.AnchorService{
		Store:     st,
		Authority: clients.NewAuthorityClient(authority.URL, ""),
		Ledger:    clients.NewLedgerClient(ledger.URL, ""),
	}
	notifier := clients.NewWebhookNotifier(gateway.URL, "")
	tokens := &service.TokenService{Store: st}

	f.escalation = &service.EscalationService{
		Store:    st,
		Notifier: notifier,
		Anchor:   anchor,
	}

	logger := slogx.New(slogx.Config{
		Service: "evidence-service",
		Version: "e2e",
		Env:     "test",
		Level:   "error",
		Format:  "text",
	})

	apiKeyHash, err := cryptox.HashCredential(staffAPIKey)
	require.NoError(t, err)

	router := httpapi.NewRouter([]byte(staffSecret), staffIssuer, apiKeyHash, "e2e", st, logger)
	router.TokenService = tokens
	router.DocumentService = &service.DocumentService{Store: st, Tokens: tokens}
	router.AgreementService = &service.AgreementService{
		Store:  st,
		OTP:    &service.OTPService{Store: st, Notifier: notifier},
		Anchor: anchor,
	}
	router.RebuttalService = &service.RebuttalService{Store: st, Anchor: anchor}
	router.EscalationService = f.escalation
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	f.baseURL = server.URL
	return f
}

// staffToken mints the HS256 bearer the dashboard would send.
func staffToken(t *testing.T) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Issuer:    staffIssuer,
		Subject:   "staff-e2e",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(staffSecret))
	require.NoError(t, err)
	return signed
}

// doJSON sends a request with an optional JSON body and bearer token, and
// decodes the JSON response into target when given.
func doJSON(t *testing.T, method, url, bearer string, body, target any) *http.Response {
	t.Helper()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, url, payload)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if target != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	}
	return resp
}

// createDocument drives the staff creation endpoint and returns the document
// id and raw access token.
func createDocument(t *testing.T, f *fixture, kind, taxID string) (string, string) {
	t.Helper()

	var created struct {
		Document struct {
			ID string `json:"id"`
		} `json:"document"`
		Token string `json:"token"`
	}
	resp := doJSON(t, http.MethodPost, f.baseURL+"/v1/documents", staffToken(t), map[string]any{
		"kind":            kind,
		"employee_id":     "emp-e2e",
		"employee_tax_id": taxID,
		"recipient":       "worker@example.test",
		"subject":         "End to end notice",
		"body":            "Full text of the notice under test.",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created.Token)
	return created.Document.ID, created.Token
}

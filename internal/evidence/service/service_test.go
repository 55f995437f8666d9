package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/probatio/probatio/internal/evidence/domain"
	"github.com/probatio/probatio/internal/evidence/service"
	"github.com/probatio/probatio/internal/evidence/store"
	"github.com/probatio/probatio/internal/evidence/store/drivers/sqlite"
)

var testActor = domain.Actor{Origin: "203.0.113.7", Agent: "go-test"}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// fakeNotifier records every hand-off and can be told to fail.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []service.Notification
	fail bool
}

func (f *fakeNotifier) Notify(_ context.Context, n service.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("notifier down")
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].Template == service.TemplateOTPCode {
			return f.sent[i].Variables["code"]
		}
	}
	return ""
}

func (f *fakeNotifier) templates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, n := range f.sent {
		out = append(out, n.Template)
	}
	return out
}

type fakeAuthority struct {
	fail    bool
	stamped []string
}

func (f *fakeAuthority) Stamp(_ context.Context, hash string) (service.AuthorityStamp, error) {
	if f.fail {
		return service.AuthorityStamp{}, errors.New("authority down")
	}
	f.stamped = append(f.stamped, hash)
	return service.AuthorityStamp{
		Timestamp:  time.Now().UTC(),
		ProofToken: "proof-" + hash[:8],
		URL:        "https://tsa.test/stamp",
	}, nil
}

type fakeLedger struct {
	mu       sync.Mutex
	fail     bool
	submits  int
	lastHash string
}

func (f *fakeLedger) Submit(_ context.Context, _, hash string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.fail {
		return "", errors.New("ledger down")
	}
	f.lastHash = hash
	return "blob-" + hash[:8], nil
}

// env bundles all services wired over one in-memory store, the way the
// application wires them.
type env struct {
	store     store.Store
	notifier  *fakeNotifier
	authority *fakeAuthority
	ledger    *fakeLedger

	anchor     *service.AnchorService
	tokens     *service.TokenService
	documents  *service.DocumentService
	agreement  *service.AgreementService
	rebuttal   *service.RebuttalService
	escalation *service.EscalationService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	st := newTestStore(t)
	notifier := &fakeNotifier{}
	authority := &fakeAuthority{}
	ledger := &fakeLedger{}

	anchor := &service.AnchorService{Store: st, Authority: authority, Ledger: ledger}
	tokens := &service.TokenService{Store: st}
	otp := &service.OTPService{Store: st, Notifier: notifier}

	return &env{
		store:     st,
		notifier:  notifier,
		authority: authority,
		ledger:    ledger,
		anchor:    anchor,
		tokens:    tokens,
		documents: &service.DocumentService{Store: st, Tokens: tokens},
		agreement: &service.AgreementService{Store: st, OTP: otp, Anchor: anchor},
		rebuttal:  &service.RebuttalService{Store: st, Anchor: anchor},
		escalation: &service.EscalationService{
			Store:    st,
			Notifier: notifier,
			Anchor:   anchor,
		},
	}
}

func (e *env) createAgreement(t *testing.T) (domain.Document, string) {
	t.Helper()
	res, err := e.documents.Create(context.Background(), service.CreateDocumentParams{
		Kind:       domain.KindAgreement,
		EmployeeID: "emp-001",
		Recipient:  "worker@example.test",
		Subject:    "Remote work domicile agreement",
		Body:       "The employee agrees to the registered domicile terms.",
	})
	require.NoError(t, err)
	return res.Document, res.Token
}

func (e *env) createRebuttal(t *testing.T) (domain.Document, string) {
	t.Helper()
	res, err := e.documents.Create(context.Background(), service.CreateDocumentParams{
		Kind:          domain.KindRebuttal,
		EmployeeID:    "emp-002",
		EmployeeTaxID: "12345678Z",
		Recipient:     "worker@example.test",
		Subject:       "Disciplinary notice",
		Body:          "Notice of disciplinary measure with right to rebuttal.",
	})
	require.NoError(t, err)
	return res.Document, res.Token
}

func (e *env) auditActions(t *testing.T, documentID string) []string {
	t.Helper()
	events, err := e.store.AuditEvents().ListByDocument(context.Background(), documentID)
	require.NoError(t, err)
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Action)
	}
	return out
}

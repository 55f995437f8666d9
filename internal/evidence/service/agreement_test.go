package service_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/probatio/probatio/internal/evidence/domain"
	"github.com/probatio/probatio/internal/evidence/service"
)

var hexHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestAgreementService_FullFlow(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	doc, raw := e.createAgreement(t)

	// Accept terms.
	accepted, already, err := e.agreement.AcceptTerms(ctx, raw, testActor)
	require.NoError(t, err)
	require.False(t, already)
	require.Equal(t, domain.StatusTermsAccepted, accepted.Status)
	require.NotNil(t, accepted.TermsAcceptedAt)

	// Request and verify the passcode.
	require.NoError(t, e.agreement.RequestOTP(ctx, raw, testActor))
	code := e.notifier.lastCode()
	require.Len(t, code, 6)

	verified, err := e.agreement.VerifyOTP(ctx, raw, code, testActor)
	require.NoError(t, err)
	require.Equal(t, domain.StatusOTPVerified, verified.Status)

	// Finalize.
	result, err := e.agreement.FinalizeSignature(ctx, raw, testActor)
	require.NoError(t, err)
	require.Equal(t, doc.ID, result.DocumentID)
	require.Regexp(t, hexHash, result.Hash)

	final, err := e.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSigned, final.Status)
	require.Equal(t, result.Hash, final.DocumentHash)

	// Proof carries both halves: the authority stamp and, since the fake
	// ledger succeeded immediately, the ledger blob.
	proof, err := e.documents.GetProof(ctx, doc.ID)
	require.NoError(t, err)
	require.Equal(t, result.Hash, proof.Hash)
	require.NotEmpty(t, proof.AuthorityProof)
	require.Equal(t, domain.LedgerAnchored, proof.LedgerState)
	require.NotEmpty(t, proof.LedgerProof)

	// The consumed token no longer opens the workflow.
	_, _, err = e.agreement.AcceptTerms(ctx, raw, testActor)
	require.ErrorIs(t, err, domain.ErrDocumentTerminal)

	actions := e.auditActions(t, doc.ID)
	require.Subset(t, actions, []string{
		domain.ActionTermsAccepted,
		domain.ActionOTPIssued,
		domain.ActionOTPVerified,
		domain.ActionSignatureFinalized,
		domain.ActionAnchorRequested,
		domain.ActionLedgerAnchored,
	})
}

func TestAgreementService_AcceptTerms(t *testing.T) {
	ctx := context.Background()

	t.Run("re-acceptance is idempotent", func(t *testing.T) {
		e := newEnv(t)
		doc, raw := e.createAgreement(t)

		first, already, err := e.agreement.AcceptTerms(ctx, raw, testActor)
		require.NoError(t, err)
		require.False(t, already)

		second, already, err := e.agreement.AcceptTerms(ctx, raw, testActor)
		require.NoError(t, err)
		require.True(t, already)
		require.WithinDuration(t, *first.TermsAcceptedAt, *second.TermsAcceptedAt, time.Second)

		// Both invocations are audited; the repeat carries the marker.
		events, err := e.documents.ListAudit(ctx, doc.ID)
		require.NoError(t, err)
		var accepts []domain.AuditEvent
		for _, ev := range events {
			if ev.Action == domain.ActionTermsAccepted {
				accepts = append(accepts, ev)
			}
		}
		require.Len(t, accepts, 2)
		require.NotContains(t, accepts[0].Metadata, "already_accepted")
		require.Equal(t, true, accepts[1].Metadata["already_accepted"])
	})

	t.Run("rebuttal token is rejected", func(t *testing.T) {
		e := newEnv(t)
		_, raw := e.createRebuttal(t)

		_, _, err := e.agreement.AcceptTerms(ctx, raw, testActor)
		require.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestAgreementService_VerifyOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong code is rejected and audited", func(t *testing.T) {
		e := newEnv(t)
		doc, raw := e.createAgreement(t)

		_, _, err := e.agreement.AcceptTerms(ctx, raw, testActor)
		require.NoError(t, err)
		require.NoError(t, e.agreement.RequestOTP(ctx, raw, testActor))

		wrong := "000000"
		if e.notifier.lastCode() == wrong {
			wrong = "000001"
		}
		_, err = e.agreement.VerifyOTP(ctx, raw, wrong, testActor)
		require.ErrorIs(t, err, service.ErrOTPInvalid)
		require.Contains(t, e.auditActions(t, doc.ID), domain.ActionOTPRejected)

		got, err := e.documents.Get(ctx, doc.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusTermsAccepted, got.Status)
	})

	t.Run("a code verifies exactly once", func(t *testing.T) {
		e := newEnv(t)
		_, raw := e.createAgreement(t)

		_, _, err := e.agreement.AcceptTerms(ctx, raw, testActor)
		require.NoError(t, err)
		require.NoError(t, e.agreement.RequestOTP(ctx, raw, testActor))
		code := e.notifier.lastCode()

		_, err = e.agreement.VerifyOTP(ctx, raw, code, testActor)
		require.NoError(t, err)

		// Replay with the correct code: the document already moved on.
		_, err = e.agreement.VerifyOTP(ctx, raw, code, testActor)
		require.ErrorIs(t, err, domain.ErrStateConflict)
	})

	t.Run("re-request supersedes the previous code", func(t *testing.T) {
		e := newEnv(t)
		_, raw := e.createAgreement(t)

		_, _, err := e.agreement.AcceptTerms(ctx, raw, testActor)
		require.NoError(t, err)
		require.NoError(t, e.agreement.RequestOTP(ctx, raw, testActor))
		stale := e.notifier.lastCode()

		require.NoError(t, e.agreement.RequestOTP(ctx, raw, testActor))
		fresh := e.notifier.lastCode()

		if stale != fresh {
			_, err = e.agreement.VerifyOTP(ctx, raw, stale, testActor)
			require.ErrorIs(t, err, service.ErrOTPInvalid)
		}

		_, err = e.agreement.VerifyOTP(ctx, raw, fresh, testActor)
		require.NoError(t, err)
	})

	t.Run("cannot verify before accepting terms", func(t *testing.T) {
		e := newEnv(t)
		_, raw := e.createAgreement(t)

		_, err := e.agreement.VerifyOTP(ctx, raw, "123456", testActor)
		require.ErrorIs(t, err, domain.ErrStateConflict)
	})
}

func TestAgreementService_FinalizeSignature(t *testing.T) {
	ctx := context.Background()

	t.Run("cannot skip the passcode step", func(t *testing.T) {
		e := newEnv(t)
		_, raw := e.createAgreement(t)

		_, _, err := e.agreement.AcceptTerms(ctx, raw, testActor)
		require.NoError(t, err)

		_, err = e.agreement.FinalizeSignature(ctx, raw, testActor)
		require.ErrorIs(t, err, domain.ErrStateConflict)
	})

	t.Run("authority outage aborts the transition", func(t *testing.T) {
		e := newEnv(t)
		doc, raw := e.createAgreement(t)

		_, _, err := e.agreement.AcceptTerms(ctx, raw, testActor)
		require.NoError(t, err)
		require.NoError(t, e.agreement.RequestOTP(ctx, raw, testActor))
		_, err = e.agreement.VerifyOTP(ctx, raw, e.notifier.lastCode(), testActor)
		require.NoError(t, err)

		e.authority.fail = true
		_, err = e.agreement.FinalizeSignature(ctx, raw, testActor)
		require.ErrorIs(t, err, service.ErrAnchorUnavailable)

		// The document is untouched and the transition can be retried.
		got, err := e.documents.Get(ctx, doc.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusOTPVerified, got.Status)

		e.authority.fail = false
		result, err := e.agreement.FinalizeSignature(ctx, raw, testActor)
		require.NoError(t, err)
		require.Regexp(t, hexHash, result.Hash)
	})
}

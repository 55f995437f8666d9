package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/probatio/probatio/internal/evidence/domain"
	"github.com/probatio/probatio/internal/evidence/service"
	"github.com/probatio/probatio/pkg/idx"
)

// seedAgedDocument inserts a pending document whose creation time is in the
// past, the way a long-unattended notice looks to the sweep.
func seedAgedDocument(t *testing.T, e *env, age time.Duration, expiresIn time.Duration) domain.Document {
	t.Helper()

	now := time.Now().UTC()
	doc := domain.Document{
		ID:         idx.New().String(),
		Kind:       domain.KindAgreement,
		Status:     domain.StatusPending,
		EmployeeID: "emp-010",
		Recipient:  "worker@example.test",
		Subject:    "Unattended notice",
		Body:       "Body of the unattended notice.",
		ExpiresAt:  now.Add(expiresIn),
		CreatedAt:  now.Add(-age),
		UpdatedAt:  now.Add(-age),
	}
	require.NoError(t, e.store.Documents().CreateDocument(context.Background(), doc))
	return doc
}

func countTier(t *testing.T, e *env, documentID string, tier domain.EscalationTier) int {
	t.Helper()
	alerts, err := e.store.Escalations().ListAlertsByDocument(context.Background(), documentID)
	require.NoError(t, err)
	n := 0
	for _, a := range alerts {
		if a.Tier == tier {
			n++
		}
	}
	return n
}

func TestEscalationService_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("73 hours in, exactly the first tier fires", func(t *testing.T) {
		e := newEnv(t)
		doc := seedAgedDocument(t, e, 73*time.Hour, 14*24*time.Hour)

		require.NoError(t, e.escalation.Sweep(ctx))

		require.Equal(t, 1, countTier(t, e, doc.ID, domain.Tier72Hours))
		require.Equal(t, 0, countTier(t, e, doc.ID, domain.TierFiveDays))

		got, err := e.documents.Get(ctx, doc.ID)
		require.NoError(t, err)
		require.Equal(t, domain.Tier72Hours, got.EscalationTier)
		require.Equal(t, domain.DeliveryNone, got.Delivery)
		require.Contains(t, e.notifier.templates(), service.TemplateEscalation72h)
	})

	t.Run("a second sweep does not re-alert", func(t *testing.T) {
		e := newEnv(t)
		doc := seedAgedDocument(t, e, 73*time.Hour, 14*24*time.Hour)

		require.NoError(t, e.escalation.Sweep(ctx))
		require.NoError(t, e.escalation.Sweep(ctx))

		require.Equal(t, 1, countTier(t, e, doc.ID, domain.Tier72Hours))
		count := 0
		for _, action := range e.auditActions(t, doc.ID) {
			if action == domain.ActionEscalationAlerted {
				count++
			}
		}
		require.Equal(t, 1, count)
	})

	t.Run("eight days in, all tiers fire and delivery goes physical", func(t *testing.T) {
		e := newEnv(t)
		doc := seedAgedDocument(t, e, 8*24*time.Hour, 14*24*time.Hour)

		require.NoError(t, e.escalation.Sweep(ctx))

		require.Equal(t, 1, countTier(t, e, doc.ID, domain.Tier72Hours))
		require.Equal(t, 1, countTier(t, e, doc.ID, domain.TierFiveDays))
		require.Equal(t, 1, countTier(t, e, doc.ID, domain.TierSevenDays))

		got, err := e.documents.Get(ctx, doc.ID)
		require.NoError(t, err)
		require.Equal(t, domain.TierSevenDays, got.EscalationTier)
		require.Equal(t, domain.DeliveryPendingPhysical, got.Delivery)
		require.Contains(t, e.notifier.templates(), service.TemplatePhysicalDelivery)
	})

	t.Run("fresh documents are untouched", func(t *testing.T) {
		e := newEnv(t)
		doc := seedAgedDocument(t, e, time.Hour, 14*24*time.Hour)

		require.NoError(t, e.escalation.Sweep(ctx))

		require.Equal(t, 0, countTier(t, e, doc.ID, domain.Tier72Hours))
	})

	t.Run("overdue documents are expired, not escalated", func(t *testing.T) {
		e := newEnv(t)
		doc := seedAgedDocument(t, e, 4*24*time.Hour, -time.Hour)

		require.NoError(t, e.escalation.Sweep(ctx))

		got, err := e.documents.Get(ctx, doc.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusExpired, got.Status)
		require.Equal(t, 0, countTier(t, e, doc.ID, domain.Tier72Hours))
		require.Contains(t, e.auditActions(t, doc.ID), domain.ActionExpired)
	})

	t.Run("notifier outage does not block the marker", func(t *testing.T) {
		e := newEnv(t)
		doc := seedAgedDocument(t, e, 73*time.Hour, 14*24*time.Hour)
		e.notifier.fail = true

		require.NoError(t, e.escalation.Sweep(ctx))

		// The alert is recorded even though delivery failed.
		require.Equal(t, 1, countTier(t, e, doc.ID, domain.Tier72Hours))
	})
}

func TestEscalationService_StartStop(t *testing.T) {
	e := newEnv(t)
	e.escalation.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e.escalation.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	e.escalation.Stop()
}

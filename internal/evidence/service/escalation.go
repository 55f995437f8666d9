package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/probatio/probatio/internal/evidence/domain"
	"github.com/probatio/probatio/internal/evidence/store"
	"github.com/probatio/probatio/pkg/idx"
	"github.com/probatio/probatio/pkg/slogx"
)

// DefaultSweepInterval is how often the background sweep runs.
const DefaultSweepInterval = 5 * time.Minute

// sweepActor marks audit events written by the scheduler rather than a
// network peer.
var sweepActor = domain.Actor{Origin: "system", Agent: "escalation-sweep"}

// EscalationService watches unattended documents and raises tiered alerts as
// time passes without a terminal transition: 72 hours, 5 days, then 7 days,
// each exactly once. The final tier also flags the document for physical
// delivery. The same sweep performs lazy expiry and ledger outbox
// reconciliation, so a single periodic pass keeps all deferred work moving.
type EscalationService struct {
	Store    store.Store
	Notifier Notifier
	Anchor   *AnchorService
	Interval time.Duration

	stopChan chan struct{}
	doneChan chan struct{}
}

// Start launches the periodic sweep. Call Stop to halt it.
func (s *EscalationService) Start(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})

	go func() {
		defer close(s.doneChan)

		log := slogx.FromContext(ctx)
		log.Info("escalation sweep started", slog.Duration("interval", interval))

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				if err := s.Sweep(ctx); err != nil {
					log.Error("escalation sweep failed", slog.String("error", err.Error()))
				}
			}
		}
	}()
}

// Stop halts the periodic sweep and waits for an in-flight pass to finish.
func (s *EscalationService) Stop() {
	if s.stopChan == nil {
		return
	}
	close(s.stopChan)
	<-s.doneChan
}

// Sweep runs one full pass: expire overdue documents, dispatch due escalation
// tiers, and reconcile the ledger outbox. Exported so tests and operators can
// drive it directly; safe to run concurrently because every dispatch is
// guarded by a persisted per-tier marker.
func (s *EscalationService) Sweep(ctx context.Context) error {
	now := time.Now().UTC()

	if err := s.expireOverdue(ctx, now); err != nil {
		return err
	}
	if err := s.dispatchDue(ctx, now); err != nil {
		return err
	}
	return s.Anchor.Reconcile(ctx)
}

func (s *EscalationService) expireOverdue(ctx context.Context, now time.Time) error {
	overdue, err := s.Store.Documents().ListOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list overdue documents: %w", err)
	}
	for _, doc := range overdue {
		if err := expireDocument(ctx, s.Store, doc, sweepActor, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *EscalationService) dispatchDue(ctx context.Context, now time.Time) error {
	log := slogx.FromContext(ctx)

	cutoff := now.Add(-domain.Tier72Hours.Threshold())
	docs, err := s.Store.Documents().ListEscalatable(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list escalatable documents: %w", err)
	}

	for _, doc := range docs {
		cur := doc.EscalationTier
		for _, tier := range domain.DueTiers(doc.CreatedAt, now, cur) {
			dispatched, err := s.dispatchTier(ctx, doc, cur, tier, now)
			if err != nil {
				return err
			}
			if !dispatched {
				// Another sweep owns this document's remaining tiers.
				break
			}
			cur = tier

			log.Info("escalation alert dispatched",
				slog.String("document_id", doc.ID),
				slog.String("tier", tier.Label()),
			)
		}
	}
	return nil
}

// dispatchTier commits the per-tier marker, the tier bump, and the audit
// event atomically, then notifies. The (document, tier) uniqueness plus the
// tier compare-and-swap make dispatch exactly-once under concurrent sweeps:
// the loser sees ErrAlreadyExists or ErrConflict and backs off.
func (s *EscalationService) dispatchTier(
	ctx context.Context,
	doc domain.Document,
	fromTier, tier domain.EscalationTier,
	now time.Time,
) (bool, error) {
	log := slogx.FromContext(ctx)

	delivery := doc.Delivery
	if tier == domain.TierSevenDays {
		delivery = domain.DeliveryPendingPhysical
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Escalations().CreateAlert(ctx, domain.EscalationAlert{
			ID:         idx.New().String(),
			DocumentID: doc.ID,
			Tier:       tier,
			SentAt:     now,
		}); err != nil {
			return err
		}
		if err := tx.Documents().UpdateEscalationCAS(ctx, doc.ID, fromTier, tier, delivery); err != nil {
			return err
		}
		return tx.AuditEvents().Append(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			DocumentID: doc.ID,
			Action:     domain.ActionEscalationAlerted,
			Origin:     sweepActor.Origin,
			Agent:      sweepActor.Agent,
			Metadata:   map[string]any{"tier": tier.Label()},
			RecordedAt: now,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) || errors.Is(err, store.ErrConflict) {
			return false, nil
		}
		return false, err
	}

	// Notify after commit. A failed hand-off is logged, never retried against
	// the marker: the alert is recorded, delivery is the sender's problem.
	if err := s.Notifier.Notify(ctx, Notification{
		Recipient:  doc.Recipient,
		DocumentID: doc.ID,
		Template:   tierTemplate(tier),
		Variables:  map[string]string{"subject": doc.Subject},
	}); err != nil {
		log.Warn("escalation notification failed",
			slog.String("document_id", doc.ID),
			slog.String("tier", tier.Label()),
			slog.String("error", err.Error()),
		)
	}

	if tier == domain.TierSevenDays {
		if err := s.Notifier.Notify(ctx, Notification{
			Recipient:  doc.Recipient,
			DocumentID: doc.ID,
			Template:   TemplatePhysicalDelivery,
			Variables:  map[string]string{"subject": doc.Subject},
		}); err != nil {
			log.Warn("physical delivery notification failed",
				slog.String("document_id", doc.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return true, nil
}

func tierTemplate(t domain.EscalationTier) string {
	switch t {
	case domain.Tier72Hours:
		return TemplateEscalation72h
	case domain.TierFiveDays:
		return TemplateEscalation5d
	default:
		return TemplateEscalation7d
	}
}

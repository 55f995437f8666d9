package domain

import "time"

// EscalationTier is a time-elapsed threshold triggering an alert exactly once.
type EscalationTier int

const (
	TierNone EscalationTier = iota
	Tier72Hours
	TierFiveDays
	TierSevenDays
)

// tierThresholds maps each tier to its elapsed-time threshold since document
// creation.
var tierThresholds = map[EscalationTier]time.Duration{
	Tier72Hours:   72 * time.Hour,
	TierFiveDays:  5 * 24 * time.Hour,
	TierSevenDays: 7 * 24 * time.Hour,
}

// Label returns the wire/audit name of the tier.
func (t EscalationTier) Label() string {
	switch t {
	case Tier72Hours:
		return "72h"
	case TierFiveDays:
		return "5d"
	case TierSevenDays:
		return "7d"
	default:
		return "none"
	}
}

// Threshold returns the elapsed-time threshold for the tier.
func (t EscalationTier) Threshold() time.Duration {
	return tierThresholds[t]
}

// DueTiers returns the tiers whose thresholds have elapsed for a document
// created at createdAt and currently escalated to currentTier, in ascending
// order. A sweep dispatches at most these; persisted per-tier markers make
// the dispatch itself exactly-once under concurrent sweeps.
func DueTiers(createdAt, now time.Time, currentTier EscalationTier) []EscalationTier {
	elapsed := now.Sub(createdAt)

	var due []EscalationTier
	for _, tier := range []EscalationTier{Tier72Hours, TierFiveDays, TierSevenDays} {
		if tier <= currentTier {
			continue
		}
		if elapsed >= tierThresholds[tier] {
			due = append(due, tier)
		}
	}
	return due
}

// EscalationAlert is the persisted per-tier marker. Its (document, tier)
// uniqueness is what makes concurrent sweeps dispatch a tier at most once.
type EscalationAlert struct {
	ID         string
	DocumentID string
	Tier       EscalationTier
	SentAt     time.Time
}

package service

import "context"

// Notification templates dispatched through the external sender.
const (
	TemplateOTPCode          = "otp_code"
	TemplateEscalation72h    = "escalation_72h"
	TemplateEscalation5d     = "escalation_5d"
	TemplateEscalation7d     = "escalation_7d"
	TemplatePhysicalDelivery = "physical_delivery_required"
)

// Notification is one out-of-band message (email or SMS, the transport is the
// sender's concern).
type Notification struct {
	Recipient  string
	DocumentID string
	Template   string
	Variables  map[string]string
}

// Notifier is the external email/messaging sender. It is fire-and-report:
// delivery guarantees and retries are its own concern, the caller only learns
// whether the hand-off succeeded.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

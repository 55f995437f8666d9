package clients

import (
	"context"

	"github.com/probatio/probatio/internal/evidence/service"
)

// WebhookNotifier hands notifications to the messaging gateway. The gateway
// owns templating, transport selection, and retries; this client only reports
// whether the hand-off was accepted.
type WebhookNotifier struct {
	httpClient
}

func NewWebhookNotifier(baseURL, apiKey string) *WebhookNotifier {
	return &WebhookNotifier{httpClient: newHTTPClient(baseURL, apiKey)}
}

type notifyRequest struct {
	Recipient  string            `json:"recipient"`
	DocumentID string            `json:"documentId"`
	Template   string            `json:"template"`
	Variables  map[string]string `json:"variables,omitempty"`
}

func (c *WebhookNotifier) Notify(ctx context.Context, n service.Notification) error {
	return c.postJSON(ctx, "/v1/notifications", notifyRequest{
		Recipient:  n.Recipient,
		DocumentID: n.DocumentID,
		Template:   n.Template,
		Variables:  n.Variables,
	}, nil)
}

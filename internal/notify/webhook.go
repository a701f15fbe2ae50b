package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"evreserve/internal/models"
)

// HTTPDoer defines the http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// WebhookNotifier POSTs transition events to an external endpoint, e.g.
// a charge-point management bridge.
type WebhookNotifier struct {
	url    string
	client HTTPDoer
}

// NewWebhookNotifier builds a webhook notifier for the given URL.
func NewWebhookNotifier(url string, client HTTPDoer) *WebhookNotifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &WebhookNotifier{
		url:    strings.TrimRight(url, "/"),
		client: client,
	}
}

type webhookPayload struct {
	Event   models.EventType `json:"event"`
	Session *models.Session  `json:"session"`
}

// Notify delivers the event; non-2xx responses count as failures.
func (n *WebhookNotifier) Notify(ctx context.Context, session *models.Session, event models.EventType) error {
	body, err := json.Marshal(webhookPayload{Event: event, Session: session})
	if err != nil {
		return fmt.Errorf("notify: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: deliver: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

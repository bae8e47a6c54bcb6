package notify

import (
	"context"
	"time"

	"OeeForecast/internal/domain/models"
	xhttp "OeeForecast/pkg/http"
)

// WebhookPayload is the JSON body posted to the webhook.
type WebhookPayload struct {
	Source string               `json:"source"`
	SentAt time.Time            `json:"sentAt"`
	Alerts []*models.AlertEvent `json:"alerts"`
}

// WebhookNotifier posts alert batches as JSON.
type WebhookNotifier struct {
	client  *xhttp.Client
	url     string
	retries int
}

func NewWebhookNotifier(client *xhttp.Client, url string, retries int) *WebhookNotifier {
	if retries < 1 {
		retries = 3
	}
	return &WebhookNotifier{client: client, url: url, retries: retries}
}

func (n *WebhookNotifier) Name() string { return "webhook" }

func (n *WebhookNotifier) Notify(ctx context.Context, evs []*models.AlertEvent) error {
	if len(evs) == 0 {
		return nil
	}
	payload := WebhookPayload{Source: "oee-forecast", SentAt: time.Now().UTC(), Alerts: evs}
	return n.client.PostJSONWithRetry(ctx, n.url, payload, nil, n.retries)
}

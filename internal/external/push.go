package external

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/config"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// PushTransport delivers a single Web Push payload to a subscription.
// Implementations classify failures precisely: a gone subscription must be
// reported distinctly from a merely transient transport error so the push
// outbox can decide whether to delete the subscription (spec.md §4.G).
type PushTransport interface {
	Deliver(ctx context.Context, sub models.PushSubscription, payload []byte) error
}

// WebPushTransport posts the payload to the subscription's push-service
// endpoint over plain HTTP, the way the teacher's mountainproject.Client
// wraps a bare REST dependency with its own *http.Client and timeout.
//
// It does not implement the Web Push message encryption scheme (RFC 8291) —
// a production deployment should replace this with a VAPID-aware client
// library; this transport is the wiring point, not a complete
// implementation of the wire protocol.
type WebPushTransport struct {
	httpClient   *http.Client
	contactEmail string
}

// NewWebPushTransport builds a transport with a 10-second HTTP timeout and
// records cfg's contact email; Deliver does not send that email to the push
// service.
func NewWebPushTransport(cfg config.PushConfig) *WebPushTransport {
	return &WebPushTransport{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		contactEmail: cfg.ContactEmail,
	}
}

// NoopPushTransport reports every delivery as DependencyGone without making
// a network call. Notifications still journal; the outbox then records the
// subscription as gone, so nothing leaves the outbox.
type NoopPushTransport struct{}

// NewNoopPushTransport builds a transport that treats every delivery as
// gone, so the outbox journals but never retries it.
func NewNoopPushTransport() *NoopPushTransport { return &NoopPushTransport{} }

func (NoopPushTransport) Deliver(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	return dberrors.DependencyGone("push delivery not configured")
}

func (t *WebPushTransport) Deliver(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return dberrors.TransientFailure("build push request: %v", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("TTL", "86400")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return dberrors.TransientFailure("push transport: %v", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return dberrors.DependencyGone("push subscription %s rejected with %d", sub.UserID, resp.StatusCode)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		return dberrors.TransientFailure("push service returned %d", resp.StatusCode)
	}
}

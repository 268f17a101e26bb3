package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/safiripay/payment-core/internal/domain/port/core"
	notifyport "github.com/safiripay/payment-core/internal/domain/port/notify"
	"github.com/safiripay/payment-core/internal/infrastructure/config"
)

// HTTPNotifier posts payment events to the notification service. Delivery is
// fire-and-forget: failures are logged and swallowed, never surfaced to the
// payment path.
type HTTPNotifier struct {
	cfg        config.NotifierConfig
	httpClient *http.Client
	logger     core.Logger
}

// NewHTTPNotifier creates a notifier from configuration
func NewHTTPNotifier(cfg config.NotifierConfig, logger core.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// PaymentCompleted announces a completed payment
func (n *HTTPNotifier) PaymentCompleted(ctx context.Context, event notifyport.PaymentEvent) {
	n.post(ctx, "/v1/events/payment-completed", map[string]any{
		"paymentId": event.PaymentID,
		"userId":    event.UserID,
		"provider":  string(event.Provider),
		"amount":    event.Amount,
		"currency":  event.Currency,
		"status":    string(event.Status),
	})
}

// WalletCredited announces a wallet credit
func (n *HTTPNotifier) WalletCredited(ctx context.Context, userID, currency, amount string) {
	n.post(ctx, "/v1/events/wallet-credited", map[string]any{
		"userId":   userID,
		"currency": currency,
		"amount":   amount,
	})
}

func (n *HTTPNotifier) post(ctx context.Context, path string, payload map[string]any) {
	if n.cfg.BaseURL == "" {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("Notification delivery failed", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		n.logger.Warn("Notification rejected", map[string]any{
			"path":   path,
			"status": resp.StatusCode,
		})
	}
}

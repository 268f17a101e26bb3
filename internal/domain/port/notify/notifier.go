package notify

import (
	"context"

	"github.com/safiripay/payment-core/internal/domain/entity"
)

// PaymentEvent describes a payment lifecycle change worth announcing
type PaymentEvent struct {
	PaymentID string
	UserID    string
	Provider  entity.Provider
	Amount    string
	Currency  string
	Status    entity.PaymentStatus
}

// Notifier delivers fire-and-forget notifications. Implementations must
// swallow delivery failures; a notification problem never fails a payment.
type Notifier interface {
	PaymentCompleted(ctx context.Context, event PaymentEvent)
	WalletCredited(ctx context.Context, userID, currency, amount string)
}

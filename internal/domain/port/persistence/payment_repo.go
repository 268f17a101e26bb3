package persistence

import (
	"context"

	"github.com/safiripay/payment-core/internal/domain/entity"
)

// PaymentRepository defines durable storage for payment transactions.
// The core only needs point lookups by primary key.
type PaymentRepository interface {
	// Create persists a new payment transaction
	Create(ctx context.Context, payment *entity.PaymentTransaction) error
	// GetByID retrieves a payment by its ID, returning ErrPaymentNotFound if absent
	GetByID(ctx context.Context, id string) (*entity.PaymentTransaction, error)
	// Update persists status, provider reference, failure reason and confirmation time
	Update(ctx context.Context, payment *entity.PaymentTransaction) error
}

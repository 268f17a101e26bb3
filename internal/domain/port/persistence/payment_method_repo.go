package persistence

import (
	"context"

	"github.com/safiripay/payment-core/internal/domain/entity"
)

// PaymentMethodRepository stores saved payment instruments
type PaymentMethodRepository interface {
	// GetByUser returns all saved methods for a user, newest first
	GetByUser(ctx context.Context, userID string) ([]entity.SavedPaymentMethod, error)
	// GetDefault returns the user's default method, or (nil, nil) if none is set
	GetDefault(ctx context.Context, userID string) (*entity.SavedPaymentMethod, error)
	// Save inserts or updates a method; setting IsDefault clears the previous default
	Save(ctx context.Context, method *entity.SavedPaymentMethod) error
	// Delete removes a method owned by the user
	Delete(ctx context.Context, userID, methodID string) error
}

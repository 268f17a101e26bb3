package persistence

import (
	"context"

	"github.com/safiripay/payment-core/internal/domain/entity"
)

// ProviderHealthRepository defines durable storage for provider health records.
// Records are upserted by provider and never deleted.
type ProviderHealthRepository interface {
	// GetByProvider retrieves the record for a provider; (nil, nil) when none exists
	GetByProvider(ctx context.Context, provider entity.Provider) (*entity.ProviderHealth, error)
	// Upsert inserts or replaces the record for the provider
	Upsert(ctx context.Context, health *entity.ProviderHealth) error
}

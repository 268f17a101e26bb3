package readcache

import (
	"context"
	"time"

	"github.com/safiripay/payment-core/internal/domain/entity"
	cacheport "github.com/safiripay/payment-core/internal/domain/port/cache"
	"github.com/safiripay/payment-core/internal/domain/port/core"
	"github.com/safiripay/payment-core/internal/domain/port/persistence"
)

const (
	methodsKeyPrefix       = "payment:methods:"
	defaultMethodKeyPrefix = "payment:methods:default:"
)

// PaymentMethodCache caches a user's saved instruments and their default
// instrument. The two entries are always invalidated together: changing the
// default rewrites the method list too, and serving a fresh list against a
// stale default would misroute charges.
type PaymentMethodCache struct {
	methods  *ReadThrough[[]entity.SavedPaymentMethod]
	defaults *ReadThrough[entity.SavedPaymentMethod]
	repo     persistence.PaymentMethodRepository
}

// NewPaymentMethodCache creates a cache over the payment-method repository
func NewPaymentMethodCache(
	store cacheport.Store,
	repo persistence.PaymentMethodRepository,
	logger core.Logger,
	ttl time.Duration,
) *PaymentMethodCache {
	return &PaymentMethodCache{
		methods:  NewReadThrough[[]entity.SavedPaymentMethod](store, logger, methodsKeyPrefix, ttl),
		defaults: NewReadThrough[entity.SavedPaymentMethod](store, logger, defaultMethodKeyPrefix, ttl),
		repo:     repo,
	}
}

// GetMethods returns all saved methods for the user
func (c *PaymentMethodCache) GetMethods(ctx context.Context, userID string) ([]entity.SavedPaymentMethod, error) {
	methods, err := c.methods.GetOrFetch(ctx, userID, func(ctx context.Context) (*[]entity.SavedPaymentMethod, error) {
		list, err := c.repo.GetByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []entity.SavedPaymentMethod{}
		}
		return &list, nil
	})
	if err != nil {
		return nil, err
	}
	if methods == nil {
		return []entity.SavedPaymentMethod{}, nil
	}
	return *methods, nil
}

// GetDefaultMethod returns the user's default method, or nil when none is set.
// Absence is never cached.
func (c *PaymentMethodCache) GetDefaultMethod(ctx context.Context, userID string) (*entity.SavedPaymentMethod, error) {
	return c.defaults.GetOrFetch(ctx, userID, func(ctx context.Context) (*entity.SavedPaymentMethod, error) {
		return c.repo.GetDefault(ctx, userID)
	})
}

// SaveMethod persists a method and invalidates the user's cached entries
func (c *PaymentMethodCache) SaveMethod(ctx context.Context, method *entity.SavedPaymentMethod) error {
	if err := c.repo.Save(ctx, method); err != nil {
		return err
	}
	return c.Invalidate(ctx, method.UserID)
}

// DeleteMethod removes a method and invalidates the user's cached entries
func (c *PaymentMethodCache) DeleteMethod(ctx context.Context, userID, methodID string) error {
	if err := c.repo.Delete(ctx, userID, methodID); err != nil {
		return err
	}
	return c.Invalidate(ctx, userID)
}

// Invalidate drops both the method list and the default entry for the user
func (c *PaymentMethodCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.methods.Invalidate(ctx, userID); err != nil {
		return err
	}
	return c.defaults.Invalidate(ctx, userID)
}

package readcache

import (
	"context"
	"fmt"
	"time"

	"github.com/safiripay/payment-core/internal/domain/entity"
	cacheport "github.com/safiripay/payment-core/internal/domain/port/cache"
	"github.com/safiripay/payment-core/internal/domain/port/core"
	walletport "github.com/safiripay/payment-core/internal/domain/port/wallet"
)

const balanceKeyPrefix = "wallet:balance:"

// WalletBalanceCache is a read-through projection of the ledger's balances.
// Reads may be momentarily stale; settlement invalidates the user's entries
// after every credit so the next read refetches from the ledger.
type WalletBalanceCache struct {
	cache      *ReadThrough[entity.WalletBalance]
	ledger     walletport.Ledger
	currencies []string
}

// NewWalletBalanceCache creates a balance cache. currencies is the platform's
// supported-currency list, used for wholesale per-user invalidation.
func NewWalletBalanceCache(
	store cacheport.Store,
	ledger walletport.Ledger,
	logger core.Logger,
	ttl time.Duration,
	currencies []string,
) *WalletBalanceCache {
	return &WalletBalanceCache{
		cache:      NewReadThrough[entity.WalletBalance](store, logger, balanceKeyPrefix, ttl),
		ledger:     ledger,
		currencies: currencies,
	}
}

// GetBalance returns the user's balance for currency, reading through to the
// ledger on a miss
func (c *WalletBalanceCache) GetBalance(ctx context.Context, userID, currency string) (*entity.WalletBalance, error) {
	return c.cache.GetOrFetch(ctx, balanceKey(userID, currency), func(ctx context.Context) (*entity.WalletBalance, error) {
		return c.ledger.GetBalance(ctx, userID, currency)
	})
}

// InvalidateUser drops every cached balance for the user across all supported
// currencies
func (c *WalletBalanceCache) InvalidateUser(ctx context.Context, userID string) error {
	keys := make([]string, len(c.currencies))
	for i, currency := range c.currencies {
		keys[i] = balanceKey(userID, currency)
	}
	return c.cache.Invalidate(ctx, keys...)
}

func balanceKey(userID, currency string) string {
	return fmt.Sprintf("%s:%s", userID, currency)
}

package readcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safiripay/payment-core/internal/domain/entity"
	walletport "github.com/safiripay/payment-core/internal/domain/port/wallet"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/cache"
	"github.com/safiripay/payment-core/internal/infrastructure/adapter/logger"
)

type fakeLedger struct {
	balances map[string]*entity.WalletBalance
	reads    int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[string]*entity.WalletBalance)}
}

func (l *fakeLedger) TopUp(ctx context.Context, req walletport.TopUpRequest) (*walletport.TopUpResult, error) {
	return nil, nil
}

func (l *fakeLedger) Debit(ctx context.Context, req walletport.DebitRequest) (*walletport.DebitResult, error) {
	return nil, nil
}

func (l *fakeLedger) GetBalance(ctx context.Context, userID, currency string) (*entity.WalletBalance, error) {
	l.reads++
	return l.balances[userID+":"+currency], nil
}

func newTestBalanceCache() (*WalletBalanceCache, *fakeLedger) {
	tp := newFakeTimeProvider()
	ledger := newFakeLedger()
	store := cache.NewMemoryStore(tp)
	currencies := []string{"KES", "NGN", "USD"}
	return NewWalletBalanceCache(store, ledger, logger.NewNoopLogger(), 30*time.Second, currencies), ledger
}

func TestGetBalanceReadsThrough(t *testing.T) {
	balanceCache, ledger := newTestBalanceCache()
	ctx := context.Background()

	ledger.balances["user-1:KES"] = &entity.WalletBalance{
		UserID:           "user-1",
		Currency:         "KES",
		Balance:          "150.00",
		AvailableBalance: "150.00",
	}

	balance, err := balanceCache.GetBalance(ctx, "user-1", "KES")
	require.NoError(t, err)
	assert.Equal(t, "150.00", balance.Balance)

	_, err = balanceCache.GetBalance(ctx, "user-1", "KES")
	require.NoError(t, err)
	assert.Equal(t, 1, ledger.reads)
}

func TestBalancesAreKeyedPerCurrency(t *testing.T) {
	balanceCache, ledger := newTestBalanceCache()
	ctx := context.Background()

	ledger.balances["user-1:KES"] = &entity.WalletBalance{UserID: "user-1", Currency: "KES", Balance: "150.00"}
	ledger.balances["user-1:USD"] = &entity.WalletBalance{UserID: "user-1", Currency: "USD", Balance: "12.00"}

	kes, err := balanceCache.GetBalance(ctx, "user-1", "KES")
	require.NoError(t, err)
	usd, err := balanceCache.GetBalance(ctx, "user-1", "USD")
	require.NoError(t, err)

	assert.Equal(t, "150.00", kes.Balance)
	assert.Equal(t, "12.00", usd.Balance)
}

func TestInvalidateUserDropsAllCurrencies(t *testing.T) {
	balanceCache, ledger := newTestBalanceCache()
	ctx := context.Background()

	ledger.balances["user-1:KES"] = &entity.WalletBalance{UserID: "user-1", Currency: "KES", Balance: "150.00"}
	ledger.balances["user-1:USD"] = &entity.WalletBalance{UserID: "user-1", Currency: "USD", Balance: "12.00"}

	_, _ = balanceCache.GetBalance(ctx, "user-1", "KES")
	_, _ = balanceCache.GetBalance(ctx, "user-1", "USD")
	require.Equal(t, 2, ledger.reads)

	require.NoError(t, balanceCache.InvalidateUser(ctx, "user-1"))

	// The next reads hit the ledger again
	ledger.balances["user-1:KES"].Balance = "250.00"
	balance, err := balanceCache.GetBalance(ctx, "user-1", "KES")
	require.NoError(t, err)
	assert.Equal(t, "250.00", balance.Balance)
	assert.Equal(t, 3, ledger.reads)
}

package payment

import (
	"context"
	"fmt"

	"github.com/safiripay/payment-core/internal/domain/entity"
	errs "github.com/safiripay/payment-core/internal/domain/error"
	"github.com/safiripay/payment-core/internal/domain/port/notify"
	walletport "github.com/safiripay/payment-core/internal/domain/port/wallet"
)

// CompletePaymentToWallet credits a completed payment into the user's wallet.
// The ledger top-up runs under the wallet-scoped distributed lock and carries
// an idempotency key derived from the payment ID, so webhook redelivery and
// crash-and-retry can never double-credit.
func (s *Service) CompletePaymentToWallet(ctx context.Context, id string, accountType entity.AccountType) (*walletport.TopUpResult, error) {
	txn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.Status != entity.StatusCompleted {
		return nil, fmt.Errorf("%w: payment %s is %s", errs.ErrPaymentNotCompleted, id, txn.Status)
	}

	lockKey := fmt.Sprintf("wallet:%s:%s:%s", txn.UserID, txn.Currency, accountType)

	var result *walletport.TopUpResult
	err = s.locks.WithLock(ctx, lockKey, s.lockOpts, func(ctx context.Context) error {
		topUp, topUpErr := s.ledger.TopUp(ctx, walletport.TopUpRequest{
			UserID:         txn.UserID,
			AccountType:    accountType,
			Amount:         txn.Amount,
			Currency:       txn.Currency,
			IdempotencyKey: "payment-" + txn.ID,
			Description:    "Payment top-up via " + string(txn.Provider),
			Metadata: map[string]string{
				"payment_id": txn.ID,
				"provider":   string(txn.Provider),
			},
		})
		if topUpErr != nil {
			return fmt.Errorf("ledger top-up for payment %s: %w", txn.ID, topUpErr)
		}
		result = topUp
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stale balance reads are acceptable; an invalidation failure is not fatal
	if err := s.balances.InvalidateUser(ctx, txn.UserID); err != nil {
		s.logger.Warn("Failed to invalidate balance cache after settlement", map[string]any{
			"user_id": txn.UserID,
			"error":   err.Error(),
		})
	}

	s.notifier.PaymentCompleted(ctx, notify.PaymentEvent{
		PaymentID: txn.ID,
		UserID:    txn.UserID,
		Provider:  txn.Provider,
		Amount:    txn.Amount,
		Currency:  txn.Currency,
		Status:    txn.Status,
	})
	s.notifier.WalletCredited(ctx, txn.UserID, txn.Currency, txn.Amount)

	s.logger.Info("Payment settled to wallet", map[string]any{
		"payment_id":   txn.ID,
		"user_id":      txn.UserID,
		"currency":     txn.Currency,
		"account_type": accountType,
	})
	return result, nil
}

package entity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domainerrs "github.com/safiripay/payment-core/internal/domain/error"
)

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time                 { return p.now }
func (p *fixedTimeProvider) Since(t time.Time) time.Duration { return p.now.Sub(t) }
func (p *fixedTimeProvider) Sleep(ctx context.Context, d time.Duration) error {
	p.now = p.now.Add(d)
	return nil
}

func testTimeProvider() *fixedTimeProvider {
	return &fixedTimeProvider{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestNewPaymentTransaction(t *testing.T) {
	tp := testTimeProvider()

	tests := []struct {
		name          string
		userID        string
		amount        string
		currency      string
		expectedError error
	}{
		{
			name:     "Valid Payment",
			userID:   "user-1",
			amount:   "100.50",
			currency: "KES",
		},
		{
			name:          "Empty User ID",
			userID:        "",
			amount:        "100.50",
			currency:      "KES",
			expectedError: domainerrs.ErrInvalidUserID,
		},
		{
			name:          "Empty Currency",
			userID:        "user-1",
			amount:        "100.50",
			currency:      "",
			expectedError: domainerrs.ErrInvalidCurrency,
		},
		{
			name:          "Zero Amount",
			userID:        "user-1",
			amount:        "0",
			currency:      "KES",
			expectedError: domainerrs.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := NewPaymentTransaction("pay-1", tt.userID, tt.amount, tt.currency, ProviderMpesa, tp)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, txn)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, StatusPending, txn.Status)
			assert.Equal(t, int64(10050), txn.AmountInCents)
			assert.Equal(t, "100.50", txn.Amount)
			assert.Equal(t, "KES", txn.Currency)
			assert.Equal(t, tp.now, txn.CreatedAt)
		})
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	tp := testTimeProvider()

	t.Run("Pending To Completed", func(t *testing.T) {
		txn, _ := NewPaymentTransaction("pay-1", "user-1", "10.00", "KES", ProviderMpesa, tp)

		err := txn.MarkCompleted(tp)

		assert.NoError(t, err)
		assert.Equal(t, StatusCompleted, txn.Status)
		assert.NotNil(t, txn.ConfirmedAt)
		assert.True(t, txn.IsTerminal())
	})

	t.Run("Pending To Failed", func(t *testing.T) {
		txn, _ := NewPaymentTransaction("pay-1", "user-1", "10.00", "KES", ProviderMpesa, tp)

		err := txn.MarkFailed(tp, "provider timeout")

		assert.NoError(t, err)
		assert.Equal(t, StatusFailed, txn.Status)
		assert.Equal(t, "provider timeout", txn.FailureReason)
		assert.True(t, txn.IsTerminal())
	})

	t.Run("Completed Is Terminal", func(t *testing.T) {
		txn, _ := NewPaymentTransaction("pay-1", "user-1", "10.00", "KES", ProviderMpesa, tp)
		_ = txn.MarkCompleted(tp)

		assert.ErrorIs(t, txn.MarkFailed(tp, "too late"), domainerrs.ErrInvalidStatusTransition)
		assert.ErrorIs(t, txn.MarkCompleted(tp), domainerrs.ErrInvalidStatusTransition)
		assert.Equal(t, StatusCompleted, txn.Status)
	})

	t.Run("Failed Is Terminal", func(t *testing.T) {
		txn, _ := NewPaymentTransaction("pay-1", "user-1", "10.00", "KES", ProviderMpesa, tp)
		_ = txn.MarkFailed(tp, "declined")

		assert.ErrorIs(t, txn.MarkCompleted(tp), domainerrs.ErrInvalidStatusTransition)
	})
}

func TestSetProviderReference(t *testing.T) {
	tp := testTimeProvider()

	t.Run("Set Once", func(t *testing.T) {
		txn, _ := NewPaymentTransaction("pay-1", "user-1", "10.00", "KES", ProviderMpesa, tp)

		assert.NoError(t, txn.SetProviderReference("ref-1"))
		assert.Equal(t, "ref-1", txn.ProviderReference)
	})

	t.Run("Same Value Is Idempotent", func(t *testing.T) {
		txn, _ := NewPaymentTransaction("pay-1", "user-1", "10.00", "KES", ProviderMpesa, tp)
		_ = txn.SetProviderReference("ref-1")

		assert.NoError(t, txn.SetProviderReference("ref-1"))
	})

	t.Run("Overwrite Is Rejected", func(t *testing.T) {
		txn, _ := NewPaymentTransaction("pay-1", "user-1", "10.00", "KES", ProviderMpesa, tp)
		_ = txn.SetProviderReference("ref-1")

		assert.ErrorIs(t, txn.SetProviderReference("ref-2"), domainerrs.ErrProviderReferenceSet)
		assert.Equal(t, "ref-1", txn.ProviderReference)
	})

	t.Run("Empty Reference Is Ignored", func(t *testing.T) {
		txn, _ := NewPaymentTransaction("pay-1", "user-1", "10.00", "KES", ProviderMpesa, tp)

		assert.NoError(t, txn.SetProviderReference(""))
		assert.Equal(t, "", txn.ProviderReference)
	})
}

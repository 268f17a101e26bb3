package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/safiripay/payment-core/internal/domain/error"
	"github.com/safiripay/payment-core/internal/domain/port/core"
)

// Provider identifies an external money-movement rail
type Provider string

// Configured providers
const (
	ProviderMpesa    Provider = "mpesa"
	ProviderPaystack Provider = "paystack"
)

// PaymentMethod is the instrument requested by the payer
type PaymentMethod string

// Payment methods. MethodAuto lets routing pick the best rail for the currency.
const (
	MethodMobileMoney PaymentMethod = "mobile_money"
	MethodCard        PaymentMethod = "card"
	MethodAuto        PaymentMethod = "auto"
)

// IsValidPaymentMethod validates the method string
func IsValidPaymentMethod(method string) bool {
	switch PaymentMethod(method) {
	case MethodMobileMoney, MethodCard, MethodAuto:
		return true
	}
	return false
}

// PaymentStatus defines the lifecycle state of a payment transaction
type PaymentStatus string

// Statuses move forward only: pending -> completed|failed, both terminal.
const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
)

// PaymentTransaction represents one attempt to move money from a payer into the platform
type PaymentTransaction struct {
	ID                string        // Unique identifier for the payment
	UserID            string        // Payer's user ID
	Provider          Provider      // Rail the payment was routed to
	Amount            string        // Amount as a fixed-point decimal string
	AmountInCents     int64         // Amount in minor units for arithmetic
	Currency          string        // ISO currency code
	Status            PaymentStatus // Current lifecycle status
	ProviderReference string        // Opaque reference from the provider, set at most once
	FailureReason     string        // Reason the payment failed, if it did
	CreatedAt         time.Time     // When the payment was initiated
	ConfirmedAt       *time.Time    // When the provider confirmed completion
}

// NewPaymentTransaction creates a pending payment after validating its fields
func NewPaymentTransaction(
	id string,
	userID string,
	amount string,
	currency string,
	provider Provider,
	timeProvider core.TimeProvider,
) (*PaymentTransaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errs.ErrInvalidUserID
	}
	if strings.TrimSpace(currency) == "" {
		return nil, fmt.Errorf("%w: empty currency", errs.ErrInvalidCurrency)
	}

	cents, err := ParseAmount(amount)
	if err != nil {
		return nil, err
	}

	return &PaymentTransaction{
		ID:            id,
		UserID:        userID,
		Provider:      provider,
		Amount:        NormalizeAmount(amount),
		AmountInCents: cents,
		Currency:      strings.ToUpper(currency),
		Status:        StatusPending,
		CreatedAt:     timeProvider.Now(),
	}, nil
}

// IsTerminal reports whether the payment has reached a final status
func (p *PaymentTransaction) IsTerminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusFailed
}

// SetProviderReference records the provider's opaque reference. The reference
// is write-once: a conflicting overwrite is rejected, re-setting the same
// value is a no-op (webhook redelivery).
func (p *PaymentTransaction) SetProviderReference(ref string) error {
	if ref == "" {
		return nil
	}
	if p.ProviderReference != "" && p.ProviderReference != ref {
		return errs.ErrProviderReferenceSet
	}
	p.ProviderReference = ref
	return nil
}

// MarkCompleted transitions a pending payment to completed
func (p *PaymentTransaction) MarkCompleted(timeProvider core.TimeProvider) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", errs.ErrInvalidStatusTransition, p.Status, StatusCompleted)
	}
	now := timeProvider.Now()
	p.ConfirmedAt = &now
	p.Status = StatusCompleted
	return nil
}

// MarkFailed transitions a pending payment to failed with a reason
func (p *PaymentTransaction) MarkFailed(timeProvider core.TimeProvider, reason string) error {
	if p.Status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", errs.ErrInvalidStatusTransition, p.Status, StatusFailed)
	}
	now := timeProvider.Now()
	p.ConfirmedAt = &now
	p.Status = StatusFailed
	p.FailureReason = reason
	return nil
}

package provider

import (
	"context"

	"github.com/safiripay/payment-core/internal/domain/entity"
)

// InitiateRequest is the normalized request handed to a provider adapter
type InitiateRequest struct {
	UserID        string
	PhoneOrEmail  string
	Amount        string
	Currency      string
	TransactionID string
	Description   string
}

// InitiateResponse is the normalized adapter result. ContinuationToken carries
// the provider-specific handle the caller needs to finish the flow (checkout
// id, authorization URL, STK request id).
type InitiateResponse struct {
	ProviderTransactionID string
	Status                string
	ContinuationToken     string
}

// ChargeRequest charges a stored instrument without payer interaction
type ChargeRequest struct {
	UserID        string
	MethodToken   string
	Amount        string
	Currency      string
	TransactionID string
	Description   string
}

// Adapter is the boundary to one money-movement rail. Implementations own
// their wire protocol, auth and timeouts; a timeout expiry must surface as an
// error like any other provider failure.
type Adapter interface {
	// Name returns the provider this adapter drives
	Name() entity.Provider
	// InitiatePayment starts a payment on the rail
	InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
}

// SavedMethodCharger is an optional adapter capability for charging stored
// instruments. Adapters that cannot do this simply don't implement it.
type SavedMethodCharger interface {
	ChargeSavedMethod(ctx context.Context, req ChargeRequest) (*InitiateResponse, error)
}

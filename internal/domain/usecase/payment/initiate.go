package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/safiripay/payment-core/internal/domain/entity"
	errs "github.com/safiripay/payment-core/internal/domain/error"
	providerport "github.com/safiripay/payment-core/internal/domain/port/provider"
)

// InitiateRequest is a caller's payment intent
type InitiateRequest struct {
	UserID       string
	Amount       string
	Currency     string
	Method       string
	PhoneOrEmail string
	Description  string
}

// InitiateResponse is the normalized result of starting a payment
type InitiateResponse struct {
	TransactionID     string               `json:"transactionId"`
	Provider          entity.Provider      `json:"provider"`
	Status            entity.PaymentStatus `json:"status"`
	ProviderReference string               `json:"providerReference,omitempty"`
	ContinuationToken string               `json:"continuationToken,omitempty"`
}

// ChargeSavedMethodRequest charges a stored instrument. Empty MethodID means
// the user's default method.
type ChargeSavedMethodRequest struct {
	UserID      string
	MethodID    string
	Amount      string
	Currency    string
	Description string
}

// InitiatePayment validates the intent, routes it to a provider and starts the
// payment on that rail. Adapter failures are recorded against provider health
// and surfaced as a typed provider error; the caller retries by re-invoking
// this method, which routes around the now-unhealthy provider.
func (s *Service) InitiatePayment(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	method, err := validateMethod(req.Method)
	if err != nil {
		return nil, err
	}
	// Amount is checked before any provider is contacted
	if _, err := entity.ParseAmount(req.Amount); err != nil {
		return nil, err
	}

	adapter, err := s.selectProvider(ctx, req.Currency, method)
	if err != nil {
		return nil, err
	}

	txn, err := entity.NewPaymentTransaction(uuid.NewString(), req.UserID, req.Amount, req.Currency, adapter.Name(), s.timeProvider)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("create payment %s: %w", txn.ID, err)
	}

	resp, err := s.timedInitiate(ctx, adapter, providerport.InitiateRequest{
		UserID:        req.UserID,
		PhoneOrEmail:  req.PhoneOrEmail,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		TransactionID: txn.ID,
		Description:   req.Description,
	})
	if err != nil {
		return nil, s.failPayment(ctx, txn, "InitiatePayment", err)
	}

	return s.acceptProviderResponse(ctx, txn, resp)
}

// ChargeSavedMethod charges a stored instrument with the same routing health
// and timing discipline as InitiatePayment. Providers that cannot charge
// stored instruments fail with a typed unsupported-operation error.
func (s *Service) ChargeSavedMethod(ctx context.Context, req ChargeSavedMethodRequest) (*InitiateResponse, error) {
	if _, err := entity.ParseAmount(req.Amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, errs.ErrInvalidUserID
	}

	method, err := s.resolveSavedMethod(ctx, req.UserID, req.MethodID)
	if err != nil {
		return nil, err
	}

	adapter, configured := s.adapters[method.Provider]
	if !configured || !s.health.IsHealthy(ctx, method.Provider) {
		return nil, &errs.NoProviderAvailableError{
			Currency: strings.ToUpper(req.Currency),
			Method:   string(method.Method),
		}
	}

	charger, ok := adapter.(providerport.SavedMethodCharger)
	if !ok {
		return nil, &errs.UnsupportedOperationError{
			Provider:  string(method.Provider),
			Operation: "ChargeSavedMethod",
		}
	}

	txn, err := entity.NewPaymentTransaction(uuid.NewString(), req.UserID, req.Amount, req.Currency, method.Provider, s.timeProvider)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("create payment %s: %w", txn.ID, err)
	}

	start := s.timeProvider.Now()
	resp, err := charger.ChargeSavedMethod(ctx, providerport.ChargeRequest{
		UserID:        req.UserID,
		MethodToken:   method.Token,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		TransactionID: txn.ID,
		Description:   req.Description,
	})
	latency := s.timeProvider.Since(start)
	if err != nil {
		s.health.RecordFailure(ctx, method.Provider, latency, err.Error())
		return nil, s.failPayment(ctx, txn, "ChargeSavedMethod", err)
	}
	s.health.RecordSuccess(ctx, method.Provider, latency)

	return s.acceptProviderResponse(ctx, txn, resp)
}

// timedInitiate runs the adapter call under the clock and records the outcome
// against provider health either way
func (s *Service) timedInitiate(ctx context.Context, adapter providerport.Adapter, req providerport.InitiateRequest) (*providerport.InitiateResponse, error) {
	start := s.timeProvider.Now()
	resp, err := adapter.InitiatePayment(ctx, req)
	latency := s.timeProvider.Since(start)

	if err != nil {
		s.health.RecordFailure(ctx, adapter.Name(), latency, err.Error())
		return nil, err
	}
	s.health.RecordSuccess(ctx, adapter.Name(), latency)
	return resp, nil
}

// failPayment marks the transaction failed and wraps the adapter error with
// provider and reason
func (s *Service) failPayment(ctx context.Context, txn *entity.PaymentTransaction, operation string, cause error) error {
	if markErr := txn.MarkFailed(s.timeProvider, cause.Error()); markErr == nil {
		if updateErr := s.repo.Update(ctx, txn); updateErr != nil {
			s.logger.Error("Failed to persist failed payment", map[string]any{
				"payment_id": txn.ID,
				"error":      updateErr.Error(),
			})
		}
	}

	providerErr := &errs.ProviderError{
		Provider:  string(txn.Provider),
		Operation: operation,
		Reason:    cause.Error(),
		Err:       cause,
	}
	s.logger.Error("Provider call failed", providerErr.LogFields())
	return providerErr
}

// acceptProviderResponse records the provider reference and returns the
// normalized response
func (s *Service) acceptProviderResponse(ctx context.Context, txn *entity.PaymentTransaction, resp *providerport.InitiateResponse) (*InitiateResponse, error) {
	if err := txn.SetProviderReference(resp.ProviderTransactionID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, txn); err != nil {
		return nil, fmt.Errorf("update payment %s: %w", txn.ID, err)
	}

	s.logger.Info("Payment initiated", map[string]any{
		"payment_id": txn.ID,
		"provider":   txn.Provider,
		"amount":     txn.Amount,
		"currency":   txn.Currency,
	})

	return &InitiateResponse{
		TransactionID:     txn.ID,
		Provider:          txn.Provider,
		Status:            txn.Status,
		ProviderReference: txn.ProviderReference,
		ContinuationToken: resp.ContinuationToken,
	}, nil
}

// resolveSavedMethod loads the requested instrument, or the user's default
// when no ID is given
func (s *Service) resolveSavedMethod(ctx context.Context, userID, methodID string) (*entity.SavedPaymentMethod, error) {
	if methodID == "" {
		method, err := s.methods.GetDefaultMethod(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load default payment method: %w", err)
		}
		if method == nil {
			return nil, fmt.Errorf("%w: no default payment method", errs.ErrInvalidRequest)
		}
		return method, nil
	}

	list, err := s.methods.GetMethods(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load payment methods: %w", err)
	}
	for i := range list {
		if list[i].ID == methodID {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("%w: unknown payment method %s", errs.ErrInvalidRequest, methodID)
}

func validateMethod(method string) (entity.PaymentMethod, error) {
	if method == "" {
		return entity.MethodAuto, nil
	}
	if !entity.IsValidPaymentMethod(method) {
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidPaymentMethod, method)
	}
	return entity.PaymentMethod(method), nil
}

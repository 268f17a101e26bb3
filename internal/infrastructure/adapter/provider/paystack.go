package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/safiripay/payment-core/internal/domain/entity"
	"github.com/safiripay/payment-core/internal/domain/port/core"
	providerport "github.com/safiripay/payment-core/internal/domain/port/provider"
	"github.com/safiripay/payment-core/internal/infrastructure/config"
)

// PaystackAdapter drives the card rail. It supports stored-instrument charges
// through authorization codes saved from prior payments.
type PaystackAdapter struct {
	cfg        config.PaystackConfig
	httpClient *http.Client
	logger     core.Logger
}

// NewPaystackAdapter creates the card adapter
func NewPaystackAdapter(cfg config.PaystackConfig, logger core.Logger) *PaystackAdapter {
	return &PaystackAdapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Name returns the provider this adapter drives
func (a *PaystackAdapter) Name() entity.Provider {
	return entity.ProviderPaystack
}

// InitiatePayment creates a checkout session the payer completes in a browser
func (a *PaystackAdapter) InitiatePayment(ctx context.Context, req providerport.InitiateRequest) (*providerport.InitiateResponse, error) {
	amountMinor, err := entity.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"email":        req.PhoneOrEmail,
		"amount":       amountMinor,
		"currency":     req.Currency,
		"reference":    req.TransactionID,
		"callback_url": a.cfg.CallbackURL,
		"metadata": map[string]any{
			"user_id":     req.UserID,
			"description": req.Description,
		},
	}

	var res paystackResponse
	if err := a.postJSON(ctx, "/transaction/initialize", payload, &res); err != nil {
		return nil, err
	}
	if !res.Status {
		return nil, fmt.Errorf("paystack initialize rejected: %s", res.Message)
	}

	return &providerport.InitiateResponse{
		ProviderTransactionID: res.Data.Reference,
		Status:                "pending",
		ContinuationToken:     res.Data.AuthorizationURL,
	}, nil
}

// ChargeSavedMethod charges a stored authorization without payer interaction
func (a *PaystackAdapter) ChargeSavedMethod(ctx context.Context, req providerport.ChargeRequest) (*providerport.InitiateResponse, error) {
	amountMinor, err := entity.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"email":              req.UserID,
		"amount":             amountMinor,
		"currency":           req.Currency,
		"reference":          req.TransactionID,
		"authorization_code": req.MethodToken,
		"metadata": map[string]any{
			"description": req.Description,
		},
	}

	var res paystackResponse
	if err := a.postJSON(ctx, "/transaction/charge_authorization", payload, &res); err != nil {
		return nil, err
	}
	if !res.Status {
		return nil, fmt.Errorf("paystack charge rejected: %s", res.Message)
	}

	return &providerport.InitiateResponse{
		ProviderTransactionID: res.Data.Reference,
		Status:                res.Data.Status,
		ContinuationToken:     "",
	}, nil
}

type paystackResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference        string `json:"reference"`
		Status           string `json:"status"`
		AuthorizationURL string `json:"authorization_url"`
	} `json:"data"`
}

func (a *PaystackAdapter) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal paystack request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paystack request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode paystack response: %w", err)
	}
	return nil
}
